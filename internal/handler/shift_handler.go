package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/service"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
	"github.com/hearthworks/volunteer-api/pkg/response"
)

// ShiftHandler manages shift, requirement, eligibility, and assignment
// endpoints.
type ShiftHandler struct {
	shifts      *service.ShiftService
	eligibility *service.EligibilityService
	assignments *service.AssignmentService
}

// NewShiftHandler constructs handler.
func NewShiftHandler(shifts *service.ShiftService, eligibility *service.EligibilityService, assignments *service.AssignmentService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts, eligibility: eligibility, assignments: assignments}
}

// Get godoc
// @Summary Get shift detail
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	detail, err := h.shifts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.UpdateShiftRequest true "Shift payload"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id} [patch]
func (h *ShiftHandler) Update(c *gin.Context) {
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	shift, err := h.shifts.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// Delete godoc
// @Summary Delete shift
// @Tags Shifts
// @Param id path string true "Shift ID"
// @Success 204
// @Router /shifts/{id} [delete]
func (h *ShiftHandler) Delete(c *gin.Context) {
	if err := h.shifts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Clone godoc
// @Summary Clone shift with its requirements
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.UpdateShiftRequest false "Override bounds or description"
// @Success 201 {object} response.Envelope
// @Router /shifts/{id}/clone [post]
func (h *ShiftHandler) Clone(c *gin.Context) {
	var req dto.UpdateShiftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	clone, err := h.shifts.Clone(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, clone)
}

// ListRequirements godoc
// @Summary List shift requirements with fill counts
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id}/requirements [get]
func (h *ShiftHandler) ListRequirements(c *gin.Context) {
	fills, err := h.shifts.Requirements(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fills, nil)
}

// AddRequirement godoc
// @Summary Add skill requirement
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.AddRequirementRequest true "Requirement payload"
// @Success 201 {object} response.Envelope
// @Router /shifts/{id}/requirements [post]
func (h *ShiftHandler) AddRequirement(c *gin.Context) {
	var req dto.AddRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	requirement, err := h.shifts.AddRequirement(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, requirement)
}

// DeleteRequirement godoc
// @Summary Delete requirement
// @Tags Shifts
// @Param id path string true "Requirement ID"
// @Success 204
// @Router /requirements/{id} [delete]
func (h *ShiftHandler) DeleteRequirement(c *gin.Context) {
	if err := h.shifts.DeleteRequirement(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Eligible godoc
// @Summary List eligible volunteers for a shift
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Param requireSkills query bool false "Override the persisted must-match-skills setting"
// @Param debug query bool false "Return excluded volunteers with reasons and context"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id}/eligible [get]
func (h *ShiftHandler) Eligible(c *gin.Context) {
	q := dto.EligibilityQuery{ShiftID: c.Param("id")}
	if raw := c.Query("requireSkills"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requireSkills must be a boolean"))
			return
		}
		q.RequireSkills = &v
	}
	if raw := c.Query("debug"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			q.Debug = v
		}
	}

	result, err := h.eligibility.ListEligible(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Assign godoc
// @Summary Assign a volunteer to a shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.AssignRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /shifts/{id}/assign [post]
func (h *ShiftHandler) Assign(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	signup, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, signup)
}

// Unassign godoc
// @Summary Remove a volunteer's signup
// @Tags Shifts
// @Param id path string true "Shift ID"
// @Param volunteerId path string true "Volunteer ID"
// @Success 204
// @Router /shifts/{id}/signups/{volunteerId} [delete]
func (h *ShiftHandler) Unassign(c *gin.Context) {
	if err := h.assignments.Unassign(c.Request.Context(), c.Param("id"), c.Param("volunteerId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
