package models

import (
	"fmt"
	"time"

	"github.com/noah-isme/timetable-api/internal/scheduling"
)

// Schedule is the persisted assignment row binding teacher, subject, room and section to a day and interval.
type Schedule struct {
	ID           int64     `db:"id" json:"id"`
	TeacherID    int64     `db:"teacher_id" json:"teacher_id"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	RoomID       int64     `db:"room_id" json:"room_id"`
	SectionID    int64     `db:"section_id" json:"section_id"`
	DayID        int       `db:"day_id" json:"day_id"`
	StartMinutes int       `db:"start_minutes" json:"start_minutes"`
	EndMinutes   int       `db:"end_minutes" json:"end_minutes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Assignment converts the row into the scheduling core representation.
func (s Schedule) Assignment() scheduling.Assignment {
	return scheduling.Assignment{
		ID:        s.ID,
		TeacherID: s.TeacherID,
		SubjectID: s.SubjectID,
		RoomID:    s.RoomID,
		SectionID: s.SectionID,
		Day:       scheduling.Day(s.DayID),
		Interval:  scheduling.Interval{Start: scheduling.TimeOfDay(s.StartMinutes), End: scheduling.TimeOfDay(s.EndMinutes)},
	}
}

// ScheduleFromAssignment converts a core assignment into a row.
func ScheduleFromAssignment(a scheduling.Assignment) Schedule {
	return Schedule{
		ID:           a.ID,
		TeacherID:    a.TeacherID,
		SubjectID:    a.SubjectID,
		RoomID:       a.RoomID,
		SectionID:    a.SectionID,
		DayID:        int(a.Day),
		StartMinutes: int(a.Interval.Start),
		EndMinutes:   int(a.Interval.End),
	}
}

// ScheduleDetail is a schedule joined with display names.
type ScheduleDetail struct {
	Schedule
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	RoomCode    string `db:"room_code" json:"room_code"`
	RoomName    string `db:"room_name" json:"room_name"`
	SectionName string `db:"section_name" json:"section_name"`
	SectionYear int    `db:"section_year" json:"section_year"`
}

// TimetableEntry is the display shape for timetable views.
type TimetableEntry struct {
	ScheduleID  int64   `json:"schedule_id"`
	DayID       int     `json:"day_id"`
	DayName     string  `json:"day_name"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	StartHour   float64 `json:"start_hour"`
	EndHour     float64 `json:"end_hour"`
	TeacherID   int64   `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
	SubjectID   int64   `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	RoomID      int64   `json:"room_id"`
	RoomCode    string  `json:"room_code"`
	RoomName    string  `json:"room_name"`
	SectionID   int64   `json:"section_id"`
	SectionName string  `json:"section_name"`
	Year        int     `json:"year"`
}

// Entry renders a detail row for display.
func (d ScheduleDetail) Entry() TimetableEntry {
	day := scheduling.Day(d.DayID)
	start, end := scheduling.TimeOfDay(d.StartMinutes), scheduling.TimeOfDay(d.EndMinutes)
	return TimetableEntry{
		ScheduleID:  d.ID,
		DayID:       d.DayID,
		DayName:     day.String(),
		StartTime:   start.String(),
		EndTime:     end.String(),
		StartHour:   start.Hours(),
		EndHour:     end.Hours(),
		TeacherID:   d.TeacherID,
		TeacherName: d.TeacherName,
		SubjectID:   d.SubjectID,
		SubjectName: d.SubjectName,
		RoomID:      d.RoomID,
		RoomCode:    d.RoomCode,
		RoomName:    d.RoomName,
		SectionID:   d.SectionID,
		SectionName: d.SectionName,
		Year:        d.SectionYear,
	}
}

// ScheduleFilter describes query params for listing timetable entries.
type ScheduleFilter struct {
	SectionID int64
	RoomID    int64
	TeacherID int64
	DayID     int
}

// CacheKey returns a stable cache key for the filter.
func (f ScheduleFilter) CacheKey() string {
	return fmt.Sprintf("timetable:section=%d:room=%d:teacher=%d:day=%d", f.SectionID, f.RoomID, f.TeacherID, f.DayID)
}

// Conflict is the display record for one blocking assignment.
type Conflict struct {
	ScheduleID      int64  `json:"schedule_id"`
	Dimension       string `json:"dimension"`
	CounterpartName string `json:"counterpart_name"`
	SubjectName     string `json:"subject_name"`
	RoomName        string `json:"room_name"`
	ConflictStart   string `json:"conflict_start"`
	ConflictEnd     string `json:"conflict_end"`
}

// ConflictSet groups display conflicts by dimension.
type ConflictSet struct {
	Room    []Conflict `json:"room"`
	Section []Conflict `json:"section"`
	Teacher []Conflict `json:"teacher"`
}

// Empty reports whether the set carries no conflicts.
func (cs ConflictSet) Empty() bool {
	return len(cs.Room) == 0 && len(cs.Section) == 0 && len(cs.Teacher) == 0
}

// Suggestions lists alternatives offered alongside conflicts.
type Suggestions struct {
	DurationMinutes  int             `json:"duration_minutes"`
	Starts           []string        `json:"starts"`
	Days             []DaySuggestion `json:"days,omitempty"`
	Durations        []int           `json:"durations,omitempty"`
	DurationsAtStart []int           `json:"durations_at_start,omitempty"`
}

// DaySuggestion lists free starts on another day.
type DaySuggestion struct {
	DayID   int      `json:"day_id"`
	DayName string   `json:"day_name"`
	Starts  []string `json:"starts"`
}

// ScheduleConflictError is returned when a candidate collides with existing schedules.
type ScheduleConflictError struct {
	Message     string       `json:"message"`
	Conflicts   ConflictSet  `json:"conflicts"`
	Suggestions *Suggestions `json:"suggestions,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
