package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gastrolink/mesa-api/internal/application/service"
	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/presentation/http/dto/request"
	"github.com/gastrolink/mesa-api/internal/presentation/http/dto/response"
)

// EstablishmentHandler handles establishment HTTP requests
type EstablishmentHandler struct {
	establishmentService *service.EstablishmentService
}

// NewEstablishmentHandler creates a new establishment handler
func NewEstablishmentHandler(establishmentService *service.EstablishmentService) *EstablishmentHandler {
	return &EstablishmentHandler{establishmentService: establishmentService}
}

// GetCurrent returns the caller's establishment
func (h *EstablishmentHandler) GetCurrent(c *gin.Context) {
	establishment, err := h.establishmentService.GetCurrent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Establishment retrieved successfully", establishment)
}

// UpdateSettings replaces the establishment behavior settings
func (h *EstablishmentHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	establishment, err := h.establishmentService.UpdateSettings(c.Request.Context(), entity.EstablishmentSettings{
		AllowEarlySettlement: req.AllowEarlySettlement,
		DefaultTipPercent:    req.DefaultTipPercent,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", establishment)
}
