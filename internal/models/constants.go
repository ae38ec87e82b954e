package models

// Gender значения пола пользователя
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Platform поддерживаемые платформы для привязки
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)

// RegistrationStep шаги регистрации по телефону
const (
	StepSendOTP              = "send_otp"
	StepVerifyOTP            = "verify_otp"
	StepCompleteRegistration = "complete_registration"
)

// ValidGenders список допустимых значений пола
var ValidGenders = map[string]struct{}{
	GenderMale:   {},
	GenderFemale: {},
}

// ValidPlatforms список поддерживаемых платформ
var ValidPlatforms = map[string]struct{}{
	PlatformFacebook:  {},
	PlatformInstagram: {},
}
