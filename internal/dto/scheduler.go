package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduling"
)

// ScheduleRequest describes a proposed meeting. Either EndTime or DurationMinutes must be set.
type ScheduleRequest struct {
	TeacherID       int64  `json:"teacherId" validate:"required,min=1"`
	SubjectID       int64  `json:"subjectId" validate:"required,min=1"`
	RoomID          int64  `json:"roomId" validate:"required,min=1"`
	SectionID       int64  `json:"sectionId" validate:"required,min=1"`
	Day             string `json:"day" validate:"required"`
	StartTime       string `json:"startTime" validate:"required,hhmm"`
	EndTime         string `json:"endTime" validate:"required_without=DurationMinutes,omitempty,hhmm"`
	DurationMinutes int    `json:"durationMinutes" validate:"required_without=EndTime,omitempty,min=1"`
}

// AssignSubjectRequest is ScheduleRequest without the teacher, which comes from the path.
type AssignSubjectRequest struct {
	SubjectID       int64  `json:"subjectId" validate:"required,min=1"`
	RoomID          int64  `json:"roomId" validate:"required,min=1"`
	SectionID       int64  `json:"sectionId" validate:"required,min=1"`
	Day             string `json:"day" validate:"required"`
	StartTime       string `json:"startTime" validate:"required,hhmm"`
	EndTime         string `json:"endTime" validate:"required_without=DurationMinutes,omitempty,hhmm"`
	DurationMinutes int    `json:"durationMinutes" validate:"required_without=EndTime,omitempty,min=1"`
}

// ScheduleRequest binds the payload to a teacher.
func (r AssignSubjectRequest) ScheduleRequest(teacherID int64) ScheduleRequest {
	return ScheduleRequest{
		TeacherID:       teacherID,
		SubjectID:       r.SubjectID,
		RoomID:          r.RoomID,
		SectionID:       r.SectionID,
		Day:             r.Day,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
	}
}

// CheckResponse reports whether a candidate is free and, when it is not, what blocks it.
type CheckResponse struct {
	Available   bool                `json:"available"`
	Conflicts   models.ConflictSet  `json:"conflicts"`
	Suggestions *models.Suggestions `json:"suggestions,omitempty"`
}

// SuggestionQuery selects the dimensions and duration to search free starts for.
type SuggestionQuery struct {
	Day             string `form:"day" validate:"required"`
	DurationMinutes int    `form:"duration" validate:"required,min=1"`
	RoomID          int64  `form:"roomId" validate:"omitempty,min=1"`
	SectionID       int64  `form:"sectionId" validate:"omitempty,min=1"`
	TeacherID       int64  `form:"teacherId" validate:"omitempty,min=1"`
	StartTime       string `form:"startTime" validate:"omitempty,hhmm"`
}

// TimeOfDayTag is the validation tag for HH:MM clock times.
const TimeOfDayTag = "hhmm"

// RegisterValidators installs the custom tags used by scheduling payloads.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation(TimeOfDayTag, func(fl validator.FieldLevel) bool {
		_, err := scheduling.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
}

// NewValidator returns a validator with the scheduling tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}
