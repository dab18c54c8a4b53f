package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	"github.com/hearthworks/volunteer-api/internal/service"
	"github.com/hearthworks/volunteer-api/pkg/response"
)

type shiftReaderStub struct {
	shift        *models.Shift
	shiftErr     error
	requirements []models.Requirement
}

func (s *shiftReaderStub) FindByID(_ context.Context, _ string) (*models.Shift, error) {
	if s.shiftErr != nil {
		return nil, s.shiftErr
	}
	return s.shift, nil
}

func (s *shiftReaderStub) ListRequirements(_ context.Context, _ string) ([]models.Requirement, error) {
	return s.requirements, nil
}

type volunteerListerStub struct {
	volunteers []models.Volunteer
}

func (s *volunteerListerStub) ListActive(_ context.Context) ([]models.Volunteer, error) {
	return s.volunteers, nil
}

type volunteerFinderStub struct {
	volunteer *models.Volunteer
	err       error
}

func (s *volunteerFinderStub) FindByID(_ context.Context, _ string) (*models.Volunteer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.volunteer, nil
}

type conflictReaderStub struct {
	conflicts map[string][]models.SignupConflict
}

func (s *conflictReaderStub) ConflictsByVolunteer(_ context.Context, _, _ time.Time, _ string) (map[string][]models.SignupConflict, error) {
	return s.conflicts, nil
}

type signupRepoStub struct {
	overlapping []models.SignupConflict
	upserted    *models.Signup
}

func (s *signupRepoStub) Upsert(_ context.Context, signup *models.Signup) error {
	s.upserted = signup
	return nil
}

func (s *signupRepoStub) FindConfirmedOverlapping(_ context.Context, _ string, _, _ time.Time, _ string) ([]models.SignupConflict, error) {
	return s.overlapping, nil
}

func (s *signupRepoStub) Delete(_ context.Context, _, _ string) error {
	return nil
}

type policyStub struct {
	policy service.EnginePolicy
}

func (s *policyStub) EnginePolicy(_ context.Context) (service.EnginePolicy, error) {
	return s.policy, nil
}

func testShift() *models.Shift {
	return &models.Shift{
		ID:         "shift-1",
		EventID:    "event-1",
		EventTitle: "Wall Raising",
		StartAt:    time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC),
	}
}

func testRequest(c *gin.Context, method, target string, body interface{}) {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func newEligibilityHandler(shifts *shiftReaderStub, lister *volunteerListerStub, conflicts *conflictReaderStub, policy *policyStub) *ShiftHandler {
	eligibility := service.NewEligibilityService(shifts, lister, conflicts, policy, nil, time.UTC, zap.NewNop())
	return NewShiftHandler(nil, eligibility, nil)
}

func TestShiftHandlerEligible(t *testing.T) {
	gin.SetMode(gin.TestMode)
	shifts := &shiftReaderStub{shift: testShift()}
	lister := &volunteerListerStub{volunteers: []models.Volunteer{
		{ID: "v-1", Name: "Ana", Availability: []models.AvailabilityWindow{
			{Weekday: 1, StartTime: "08:00", EndTime: "17:00"},
		}},
	}}
	handler := newEligibilityHandler(shifts, lister, &conflictReaderStub{}, &policyStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	testRequest(c, http.MethodGet, "/shifts/shift-1/eligible", nil)
	c.Params = gin.Params{{Key: "id", Value: "shift-1"}}

	handler.Eligible(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.EligibilityResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Eligible, 1)
	assert.Equal(t, "v-1", envelope.Data.Eligible[0].ID)
}

func TestShiftHandlerEligibleDebugQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	shifts := &shiftReaderStub{shift: testShift()}
	lister := &volunteerListerStub{volunteers: []models.Volunteer{
		{ID: "v-1", Name: "Ana", Availability: []models.AvailabilityWindow{
			{Weekday: 4, StartTime: "08:00", EndTime: "17:00"},
		}},
	}}
	handler := newEligibilityHandler(shifts, lister, &conflictReaderStub{}, &policyStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	testRequest(c, http.MethodGet, "/shifts/shift-1/eligible?debug=true", nil)
	c.Params = gin.Params{{Key: "id", Value: "shift-1"}}

	handler.Eligible(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.EligibilityResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Eligible)
	require.Len(t, envelope.Data.Excluded, 1)
	assert.NotNil(t, envelope.Data.Excluded[0].AvailabilityContext)
}

func TestShiftHandlerEligibleBadRequireSkills(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEligibilityHandler(&shiftReaderStub{shift: testShift()}, &volunteerListerStub{}, &conflictReaderStub{}, &policyStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	testRequest(c, http.MethodGet, "/shifts/shift-1/eligible?requireSkills=maybe", nil)
	c.Params = gin.Params{{Key: "id", Value: "shift-1"}}

	handler.Eligible(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShiftHandlerEligibleNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEligibilityHandler(&shiftReaderStub{shiftErr: sql.ErrNoRows}, &volunteerListerStub{}, &conflictReaderStub{}, &policyStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	testRequest(c, http.MethodGet, "/shifts/missing/eligible", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Eligible(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func newAssignmentHandler(shifts *shiftReaderStub, finder *volunteerFinderStub, signups *signupRepoStub, policy *policyStub) *ShiftHandler {
	assignments := service.NewAssignmentService(shifts, finder, signups, policy, nil, time.UTC, zap.NewNop())
	return NewShiftHandler(nil, nil, assignments)
}

func TestShiftHandlerAssign(t *testing.T) {
	gin.SetMode(gin.TestMode)
	volunteer := &models.Volunteer{ID: "v-1", Name: "Ana", Availability: []models.AvailabilityWindow{
		{Weekday: 1, StartTime: "08:00", EndTime: "17:00"},
	}}
	signups := &signupRepoStub{}
	handler := newAssignmentHandler(&shiftReaderStub{shift: testShift()}, &volunteerFinderStub{volunteer: volunteer}, signups, &policyStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	testRequest(c, http.MethodPost, "/shifts/shift-1/assign", dto.AssignRequest{VolunteerID: "v-1"})
	c.Params = gin.Params{{Key: "id", Value: "shift-1"}}

	handler.Assign(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, signups.upserted)
	assert.Equal(t, models.SignupStatusConfirmed, signups.upserted.Status)
}

func TestShiftHandlerAssignConflictPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	volunteer := &models.Volunteer{ID: "v-1", Name: "Ana", Availability: []models.AvailabilityWindow{
		{Weekday: 1, StartTime: "08:00", EndTime: "17:00"},
	}}
	signups := &signupRepoStub{overlapping: []models.SignupConflict{{
		SignupID: "sg-1", ShiftID: "shift-9", EventTitle: "Roofing",
		StartAt: time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC),
	}}}
	handler := newAssignmentHandler(&shiftReaderStub{shift: testShift()}, &volunteerFinderStub{volunteer: volunteer}, signups, &policyStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	testRequest(c, http.MethodPost, "/shifts/shift-1/assign", dto.AssignRequest{VolunteerID: "v-1"})
	c.Params = gin.Params{{Key: "id", Value: "shift-1"}}

	handler.Assign(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "DOUBLE_BOOKED", envelope.Error.Code)

	// The body must identify the conflicting signup, not just the code.
	require.NotNil(t, envelope.Error.Details)
	raw, err := json.Marshal(envelope.Error.Details)
	require.NoError(t, err)
	var detail models.AssignmentConflictError
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Equal(t, "shift-9", detail.Conflict.ShiftID)
	assert.Equal(t, "Roofing", detail.Conflict.EventTitle)
	assert.True(t, detail.Conflict.StartAt.Equal(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)))
	assert.True(t, detail.Conflict.EndAt.Equal(time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC)))
}

func TestShiftHandlerAssignUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	volunteer := &models.Volunteer{ID: "v-1", Name: "Ana", Availability: []models.AvailabilityWindow{
		{Weekday: 5, StartTime: "08:00", EndTime: "17:00"},
	}}
	handler := newAssignmentHandler(&shiftReaderStub{shift: testShift()}, &volunteerFinderStub{volunteer: volunteer}, &signupRepoStub{}, &policyStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	testRequest(c, http.MethodPost, "/shifts/shift-1/assign", dto.AssignRequest{VolunteerID: "v-1"})
	c.Params = gin.Params{{Key: "id", Value: "shift-1"}}

	handler.Assign(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestShiftHandlerAssignInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAssignmentHandler(&shiftReaderStub{shift: testShift()}, &volunteerFinderStub{}, &signupRepoStub{}, &policyStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/shifts/shift-1/assign", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "shift-1"}}

	handler.Assign(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
