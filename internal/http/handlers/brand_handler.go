package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/brandlink-backend/internal/dto"
	"github.com/ignatzorin/brandlink-backend/internal/http/handlers/common"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/service"
)

var (
	errBrandIDRequired     = apperror.Validation("Brand ID is required")
	errBrandUpdateRequired = apperror.Validation("Brand ID and new name are required")
)

// BrandHandler CRUD брендов и выбор активного бренда.
type BrandHandler struct {
	brands *service.BrandService
}

// NewBrandHandler создаёт хэндлер брендов.
func NewBrandHandler(brands *service.BrandService) *BrandHandler {
	return &BrandHandler{brands: brands}
}

// List обрабатывает GET /api/v1/brand.
func (h *BrandHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	brands, err := h.brands.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// Create обрабатывает POST /api/v1/brand.
func (h *BrandHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// name другого типа ломает разбор тела
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeValidation, "Brand name is required and must be a string"))
		return
	}

	res, err := h.brands.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.BrandResponse{
		Message: "Brand created successfully",
		Brand:   res.Brand,
		Active:  res.Active,
	})
}

// Update обрабатывает PUT /api/v1/brand.
func (h *BrandHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.UpdateBrandRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.ID == "" || strings.TrimSpace(req.Name) == "" {
		_ = c.Error(errBrandUpdateRequired)
		return
	}

	brandID, err := common.ParseID(req.ID, apperror.ErrBrandNotFound)
	if err != nil {
		_ = c.Error(err)
		return
	}

	brand, err := h.brands.Rename(c.Request.Context(), userID, brandID, req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.BrandResponse{Message: "Brand updated successfully", Brand: brand})
}

// Delete обрабатывает DELETE /api/v1/brand.
func (h *BrandHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	brandID, err := h.bindBrandID(c, func() (string, error) {
		var req dto.DeleteBrandRequest
		err := common.BindJSON(c, &req)
		return req.ID, err
	}, apperror.ErrBrandNotFound)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.brands.Delete(c.Request.Context(), userID, brandID); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondMessage(c, http.StatusOK, "Brand deleted successfully")
}

// Select обрабатывает PUT /api/v1/brand/select.
func (h *BrandHandler) Select(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	brandID, err := h.bindBrandID(c, func() (string, error) {
		var req dto.SelectBrandRequest
		err := common.BindJSON(c, &req)
		return req.BrandID, err
	}, apperror.ErrBrandNotOwned)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.brands.Select(c.Request.Context(), userID, brandID); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondMessage(c, http.StatusOK, "Brand selected successfully")
}

// bindBrandID читает ID бренда из тела: пустой ID даёт 400, некорректный notFound.
func (h *BrandHandler) bindBrandID(c *gin.Context, read func() (string, error), notFound error) (uuid.UUID, error) {
	raw, err := read()
	if err != nil {
		return uuid.Nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, errBrandIDRequired
	}
	return common.ParseID(raw, notFound)
}
