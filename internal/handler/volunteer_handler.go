package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	"github.com/hearthworks/volunteer-api/internal/service"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
	"github.com/hearthworks/volunteer-api/pkg/response"
)

// VolunteerHandler manages volunteer endpoints.
type VolunteerHandler struct {
	service *service.VolunteerService
}

// NewVolunteerHandler constructs handler.
func NewVolunteerHandler(svc *service.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{service: svc}
}

// List godoc
// @Summary List volunteers
// @Tags Volunteers
// @Produce json
// @Param skill query string false "Filter by declared skill"
// @Param active query bool false "Filter by active flag"
// @Param availableAt query string false "Keep only volunteers available at this RFC3339 instant"
// @Success 200 {object} response.Envelope
// @Router /volunteers [get]
func (h *VolunteerHandler) List(c *gin.Context) {
	var filter models.VolunteerFilter
	filter.Skill = c.Query("skill")
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	if raw := c.Query("availableAt"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "availableAt must be RFC3339"))
			return
		}
		filter.AvailableAt = &at
	}

	volunteers, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteers, nil)
}

// Get godoc
// @Summary Get volunteer
// @Tags Volunteers
// @Produce json
// @Param id path string true "Volunteer ID"
// @Success 200 {object} response.Envelope
// @Router /volunteers/{id} [get]
func (h *VolunteerHandler) Get(c *gin.Context) {
	volunteer, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteer, nil)
}

// Create godoc
// @Summary Create volunteer
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param payload body dto.CreateVolunteerRequest true "Volunteer payload"
// @Success 201 {object} response.Envelope
// @Router /volunteers [post]
func (h *VolunteerHandler) Create(c *gin.Context) {
	var req dto.CreateVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	volunteer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, volunteer)
}

// Update godoc
// @Summary Update volunteer
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param id path string true "Volunteer ID"
// @Param payload body dto.UpdateVolunteerRequest true "Volunteer payload"
// @Success 200 {object} response.Envelope
// @Router /volunteers/{id} [patch]
func (h *VolunteerHandler) Update(c *gin.Context) {
	var req dto.UpdateVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	volunteer, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteer, nil)
}

// Delete godoc
// @Summary Delete volunteer
// @Tags Volunteers
// @Param id path string true "Volunteer ID"
// @Success 204
// @Router /volunteers/{id} [delete]
func (h *VolunteerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReplaceAvailability godoc
// @Summary Replace availability windows
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param id path string true "Volunteer ID"
// @Param payload body dto.ReplaceAvailabilityRequest true "Windows payload"
// @Success 200 {object} response.Envelope
// @Router /volunteers/{id}/availability [put]
func (h *VolunteerHandler) ReplaceAvailability(c *gin.Context) {
	var req dto.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.ReplaceAvailability(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"replaced": len(req.Windows)}, nil)
}

// AddBlackout godoc
// @Summary Add blackout exception
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param id path string true "Volunteer ID"
// @Param payload body dto.CreateBlackoutRequest true "Blackout payload"
// @Success 201 {object} response.Envelope
// @Router /volunteers/{id}/blackouts [post]
func (h *VolunteerHandler) AddBlackout(c *gin.Context) {
	var req dto.CreateBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	blackout, err := h.service.AddBlackout(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, blackout)
}

// DeleteBlackout godoc
// @Summary Delete blackout exception
// @Tags Volunteers
// @Param id path string true "Volunteer ID"
// @Param blackoutId path string true "Blackout ID"
// @Success 204
// @Router /volunteers/{id}/blackouts/{blackoutId} [delete]
func (h *VolunteerHandler) DeleteBlackout(c *gin.Context) {
	if err := h.service.DeleteBlackout(c.Request.Context(), c.Param("id"), c.Param("blackoutId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
