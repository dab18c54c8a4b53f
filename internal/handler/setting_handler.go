package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/service"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
	"github.com/hearthworks/volunteer-api/pkg/response"
)

// SettingHandler manages the settings endpoints.
type SettingHandler struct {
	service *service.SettingService
}

// NewSettingHandler constructs handler.
func NewSettingHandler(svc *service.SettingService) *SettingHandler {
	return &SettingHandler{service: svc}
}

// Get godoc
// @Summary Get settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingHandler) Get(c *gin.Context) {
	settings, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Update(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
