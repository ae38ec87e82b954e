package dto

// RegisterRequest тело POST /api/auth/register для любого шага.
type RegisterRequest struct {
	Step        string `json:"step"`
	Phone       string `json:"phone"`
	OTP         string `json:"otp"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
}

// LoginRequest тело POST /api/auth/login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RefreshRequest тело POST /api/auth/refresh и /api/auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest частичное обновление профиля.
type UpdateProfileRequest struct {
	Phone       *string `json:"phone"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"dateOfBirth"`
}

// CreateBrandRequest тело POST /brand.
type CreateBrandRequest struct {
	Name string `json:"name"`
}

// UpdateBrandRequest тело PUT /brand.
type UpdateBrandRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DeleteBrandRequest тело DELETE /brand.
type DeleteBrandRequest struct {
	ID string `json:"id"`
}

// SelectBrandRequest тело PUT /brand/select.
type SelectBrandRequest struct {
	BrandID string `json:"brandId"`
}

// UpdateChannelRequest тело PUT /channel.
type UpdateChannelRequest struct {
	ChannelID   string `json:"channelId"`
	AccessToken string `json:"accessToken"`
}

// DeleteChannelRequest тело DELETE /channel.
type DeleteChannelRequest struct {
	ChannelID string `json:"channelId"`
}
