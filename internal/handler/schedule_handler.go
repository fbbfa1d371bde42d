package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduling"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type scheduleService interface {
	Check(ctx context.Context, req dto.ScheduleRequest) (*dto.CheckResponse, error)
	Commit(ctx context.Context, req dto.ScheduleRequest) (*models.TimetableEntry, error)
	Suggest(ctx context.Context, query dto.SuggestionQuery) (*models.Suggestions, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.TimetableEntry, error)
	Delete(ctx context.Context, id int64) error
}

// ScheduleHandler exposes conflict checks, commits and timetable views.
type ScheduleHandler struct {
	schedules scheduleService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(schedules scheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// Check godoc
// @Summary Check a proposed meeting for conflicts
// @Description Runs the conflict scan without committing. Conflicting requests include suggestions.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Proposed meeting"
// @Success 200 {object} response.Envelope
// @Router /schedules/check [post]
func (h *ScheduleHandler) Check(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid schedule payload"))
		return
	}
	result, err := h.schedules.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Commit a meeting
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Meeting"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid schedule payload"))
		return
	}
	entry, err := h.schedules.Commit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// List godoc
// @Summary List timetable entries
// @Tags Schedules
// @Produce json
// @Param sectionId query int false "Section ID"
// @Param roomId query int false "Room ID"
// @Param teacherId query int false "Teacher ID"
// @Param day query string false "Day name or number (1 = Monday)"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var filter models.ScheduleFilter
	var ok bool
	if filter.SectionID, ok = queryID(c, "sectionId"); !ok {
		return
	}
	if filter.RoomID, ok = queryID(c, "roomId"); !ok {
		return
	}
	if filter.TeacherID, ok = queryID(c, "teacherId"); !ok {
		return
	}
	if raw := strings.TrimSpace(c.Query("day")); raw != "" {
		day, err := scheduling.ParseDay(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day"))
			return
		}
		filter.DayID = int(day)
	}
	entries, err := h.schedules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Suggestions godoc
// @Summary Suggest free start times
// @Tags Schedules
// @Produce json
// @Param day query string true "Day name or number"
// @Param duration query int true "Duration in minutes"
// @Param roomId query int false "Room ID"
// @Param sectionId query int false "Section ID"
// @Param teacherId query int false "Teacher ID"
// @Param startTime query string false "Preferred start (HH:MM) for duration alternatives"
// @Success 200 {object} response.Envelope
// @Router /schedules/suggestions [get]
func (h *ScheduleHandler) Suggestions(c *gin.Context) {
	var query dto.SuggestionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid suggestion query"))
		return
	}
	suggestions, err := h.schedules.Suggest(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// Delete godoc
// @Summary Cancel a meeting
// @Tags Schedules
// @Param id path int true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
