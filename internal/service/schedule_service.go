package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/scheduling"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const timetableCachePattern = "timetable:*"

type scheduleRepository interface {
	scheduling.Serializer
	ListDetails(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error)
	FindDetails(ctx context.Context, ids []int64) ([]models.ScheduleDetail, error)
	ListInvolving(ctx context.Context, roomID, sectionID, teacherID int64) ([]models.Schedule, error)
	FindByID(ctx context.Context, id int64) (*models.Schedule, error)
	Delete(ctx context.Context, id int64) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Room, error)
}

type sectionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Section, error)
}

// ScheduleReferences resolves the entities a schedule points at. Nil lookups are skipped.
type ScheduleReferences struct {
	Teachers teacherFinder
	Subjects subjectFinder
	Rooms    roomFinder
	Sections sectionFinder
}

// ScheduleService coordinates conflict checks, commits, suggestions and timetable views.
type ScheduleService struct {
	repo      scheduleRepository
	refs      ScheduleReferences
	committer *scheduling.Committer
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, refs ScheduleReferences, committer *scheduling.Committer, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if committer == nil {
		committer = scheduling.NewCommitter(scheduling.DefaultWindow, 0)
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		repo:      repo,
		refs:      refs,
		committer: committer,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Window returns the scheduling window in effect.
func (s *ScheduleService) Window() scheduling.Window {
	return s.committer.Window()
}

// Check runs the conflict scan for a proposed meeting without persisting it.
func (s *ScheduleService) Check(ctx context.Context, req dto.ScheduleRequest) (*dto.CheckResponse, error) {
	draft, err := s.draftFrom(req)
	if err != nil {
		s.metrics.RecordScheduleDecision("check", OutcomeInvalid)
		return nil, err
	}

	existing, err := s.involving(ctx, draft.Candidate)
	if err != nil {
		s.metrics.RecordScheduleDecision("check", OutcomeError)
		return nil, err
	}

	conflicts, err := scheduling.FindConflicts(draft.Candidate, existing, s.Window())
	if err != nil {
		s.metrics.RecordScheduleDecision("check", OutcomeInvalid)
		return nil, mapSchedulingError(err)
	}

	resp := &dto.CheckResponse{Available: conflicts.Empty(), Conflicts: emptyConflictSet()}
	if conflicts.Empty() {
		s.metrics.RecordScheduleDecision("check", OutcomeAccepted)
		return resp, nil
	}

	s.metrics.RecordScheduleDecision("check", OutcomeConflict)
	s.metrics.RecordConflicts(len(conflicts.Room), len(conflicts.Section), len(conflicts.Teacher))
	resp.Conflicts, err = s.describeConflicts(ctx, conflicts)
	if err != nil {
		return nil, err
	}
	resp.Suggestions = s.suggestionsFor(draft.Candidate, existing)
	return resp, nil
}

// Commit checks and inserts the meeting as one serialized step. A conflict is returned as a
// *models.ScheduleConflictError wrapped in appErrors.ErrScheduleConflict.
func (s *ScheduleService) Commit(ctx context.Context, req dto.ScheduleRequest) (*models.TimetableEntry, error) {
	draft, err := s.draftFrom(req)
	if err != nil {
		s.metrics.RecordScheduleDecision("commit", OutcomeInvalid)
		return nil, err
	}
	names, err := s.resolveReferences(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	decision, err := s.committer.Commit(ctx, s.repo, draft)
	s.metrics.ObserveCommit(time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrCommitRace):
			s.metrics.RecordScheduleDecision("commit", OutcomeRace)
			s.logger.Warn("schedule commit kept racing", zap.Int64("room_id", req.RoomID), zap.Int64("section_id", req.SectionID), zap.Int64("teacher_id", req.TeacherID), zap.Error(err))
		case errors.Is(err, scheduling.ErrInvalidCandidate):
			s.metrics.RecordScheduleDecision("commit", OutcomeInvalid)
		default:
			s.metrics.RecordScheduleDecision("commit", OutcomeError)
			if !errors.Is(err, repository.ErrReferenceNotFound) {
				s.logger.Error("schedule commit failed", zap.Error(err))
			}
		}
		return nil, mapSchedulingError(err)
	}

	if !decision.Accepted {
		s.metrics.RecordScheduleDecision("commit", OutcomeConflict)
		s.metrics.RecordConflicts(len(decision.Conflicts.Room), len(decision.Conflicts.Section), len(decision.Conflicts.Teacher))
		s.logger.Debug("schedule conflict", zap.Strings("dimensions", dimensionNames(decision.Conflicts)), zap.Int("count", decision.Conflicts.Total()))
		return nil, s.conflictError(ctx, draft.Candidate, decision.Conflicts)
	}

	s.metrics.RecordScheduleDecision("commit", OutcomeAccepted)
	if err := s.cache.Invalidate(ctx, timetableCachePattern); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}

	a := decision.Assignment
	entry := models.ScheduleDetail{
		Schedule:    models.ScheduleFromAssignment(a),
		TeacherName: names.teacher,
		SubjectName: names.subject,
		SubjectCode: names.subjectCode,
		RoomCode:    names.roomCode,
		RoomName:    names.room,
		SectionName: names.section,
		SectionYear: names.sectionYear,
	}.Entry()
	return &entry, nil
}

// Suggest lists free starts for a duration on a day, plus alternative days and durations.
func (s *ScheduleService) Suggest(ctx context.Context, query dto.SuggestionQuery) (*models.Suggestions, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, payloadError(err, "invalid suggestion query")
	}
	if query.RoomID == 0 && query.SectionID == 0 && query.TeacherID == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one of roomId, sectionId or teacherId is required")
	}
	day, err := scheduling.ParseDay(query.Day)
	if err != nil {
		return nil, mapSchedulingError(err)
	}
	w := s.Window()
	if err := scheduling.ValidateDuration(query.DurationMinutes, w); err != nil {
		return nil, mapSchedulingError(err)
	}

	candidate := scheduling.Candidate{Day: day, RoomID: query.RoomID, SectionID: query.SectionID, TeacherID: query.TeacherID}
	existing, err := s.involving(ctx, candidate)
	if err != nil {
		return nil, err
	}

	busy := scheduling.BusyIntervals(candidate, existing)
	starts, err := scheduling.SuggestSlots(query.DurationMinutes, busy, w)
	if err != nil {
		return nil, mapSchedulingError(err)
	}
	out := &models.Suggestions{DurationMinutes: query.DurationMinutes, Starts: formatStarts(starts)}
	out.Days = s.otherDays(query.DurationMinutes, candidate, existing)
	if out.Durations, err = scheduling.SuggestDurations(busy, w); err != nil {
		return nil, mapSchedulingError(err)
	}
	if query.StartTime != "" {
		at, err := scheduling.ParseTimeOfDay(query.StartTime)
		if err != nil {
			return nil, mapSchedulingError(err)
		}
		out.DurationsAtStart = scheduling.DurationsAt(at, busy, w)
	}
	return out, nil
}

// List returns the timetable view for the filter, served from cache when possible.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.TimetableEntry, error) {
	key := filter.CacheKey()
	var cached []models.TimetableEntry
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	details, err := s.repo.ListDetails(ctx, filter)
	s.metrics.ObserveDBQuery("schedule_list", time.Since(start))
	if err != nil {
		s.logger.Error("failed to list schedules", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}

	entries := make([]models.TimetableEntry, 0, len(details))
	for _, d := range details {
		entries = append(entries, d.Entry())
	}
	_ = s.cache.Set(ctx, key, entries, 0)
	return entries, nil
}

// Delete cancels a meeting. Assignments are never edited in place.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	if err := s.cache.Invalidate(ctx, timetableCachePattern); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}
	return nil
}

func (s *ScheduleService) draftFrom(req dto.ScheduleRequest) (scheduling.Draft, error) {
	if err := s.validator.Struct(req); err != nil {
		return scheduling.Draft{}, payloadError(err, "invalid schedule payload")
	}
	day, err := scheduling.ParseDay(req.Day)
	if err != nil {
		return scheduling.Draft{}, mapSchedulingError(err)
	}
	start, err := scheduling.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return scheduling.Draft{}, mapSchedulingError(err)
	}

	var interval scheduling.Interval
	if req.EndTime != "" {
		end, err := scheduling.ParseTimeOfDay(req.EndTime)
		if err != nil {
			return scheduling.Draft{}, mapSchedulingError(err)
		}
		interval, err = scheduling.NewInterval(start, end)
		if err != nil {
			return scheduling.Draft{}, mapSchedulingError(err)
		}
		if req.DurationMinutes > 0 && req.DurationMinutes != interval.Minutes() {
			return scheduling.Draft{}, appErrors.Clone(appErrors.ErrValidation, "durationMinutes does not match startTime and endTime")
		}
	} else {
		interval, err = scheduling.IntervalOf(start, req.DurationMinutes)
		if err != nil {
			return scheduling.Draft{}, mapSchedulingError(err)
		}
	}

	draft := scheduling.Draft{
		Candidate: scheduling.Candidate{
			Day:       day,
			Interval:  interval,
			RoomID:    req.RoomID,
			SectionID: req.SectionID,
			TeacherID: req.TeacherID,
		},
		SubjectID: req.SubjectID,
	}
	if err := draft.Validate(s.Window()); err != nil {
		return scheduling.Draft{}, mapSchedulingError(err)
	}
	return draft, nil
}

func (s *ScheduleService) involving(ctx context.Context, c scheduling.Candidate) ([]scheduling.Assignment, error) {
	start := time.Now()
	rows, err := s.repo.ListInvolving(ctx, c.RoomID, c.SectionID, c.TeacherID)
	s.metrics.ObserveDBQuery("schedule_involving", time.Since(start))
	if err != nil {
		s.logger.Error("failed to load existing schedules", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing schedules")
	}
	out := make([]scheduling.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Assignment())
	}
	return out, nil
}

type referenceNames struct {
	teacher     string
	subject     string
	subjectCode string
	room        string
	roomCode    string
	section     string
	sectionYear int
}

func (s *ScheduleService) resolveReferences(ctx context.Context, req dto.ScheduleRequest) (referenceNames, error) {
	var names referenceNames
	if s.refs.Teachers != nil {
		t, err := s.refs.Teachers.FindByID(ctx, req.TeacherID)
		if err != nil {
			return names, referenceError(err, "teacher")
		}
		names.teacher = t.Name
	}
	if s.refs.Subjects != nil {
		sub, err := s.refs.Subjects.FindByID(ctx, req.SubjectID)
		if err != nil {
			return names, referenceError(err, "subject")
		}
		names.subject, names.subjectCode = sub.Name, sub.Code
	}
	if s.refs.Rooms != nil {
		r, err := s.refs.Rooms.FindByID(ctx, req.RoomID)
		if err != nil {
			return names, referenceError(err, "room")
		}
		names.room, names.roomCode = r.Name, r.Code
	}
	if s.refs.Sections != nil {
		sec, err := s.refs.Sections.FindByID(ctx, req.SectionID)
		if err != nil {
			return names, referenceError(err, "section")
		}
		names.section, names.sectionYear = sec.Name, sec.Year
	}
	return names, nil
}

func referenceError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
}

func (s *ScheduleService) conflictError(ctx context.Context, c scheduling.Candidate, conflicts scheduling.ConflictSet) error {
	described, err := s.describeConflicts(ctx, conflicts)
	if err != nil {
		return err
	}
	var suggestions *models.Suggestions
	if existing, err := s.involving(ctx, c); err == nil {
		suggestions = s.suggestionsFor(c, existing)
	}
	msg := fmt.Sprintf("schedule conflicts on %s", strings.Join(dimensionNames(conflicts), ", "))
	conflictErr := &models.ScheduleConflictError{Message: msg, Conflicts: described, Suggestions: suggestions}
	return appErrors.Wrap(conflictErr, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, msg)
}

// describeConflicts attaches display names to the scanner's conflicts.
func (s *ScheduleService) describeConflicts(ctx context.Context, conflicts scheduling.ConflictSet) (models.ConflictSet, error) {
	ids := make([]int64, 0, conflicts.Total())
	seen := make(map[int64]bool, conflicts.Total())
	for _, group := range [][]scheduling.Assignment{conflicts.Room, conflicts.Section, conflicts.Teacher} {
		for _, a := range group {
			if !seen[a.ID] {
				seen[a.ID] = true
				ids = append(ids, a.ID)
			}
		}
	}

	details, err := s.repo.FindDetails(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load conflict details", zap.Error(err))
		return models.ConflictSet{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflict details")
	}
	byID := make(map[int64]models.ScheduleDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	out := emptyConflictSet()
	for _, a := range conflicts.Room {
		out.Room = append(out.Room, describe(a, scheduling.DimensionRoom, byID[a.ID]))
	}
	for _, a := range conflicts.Section {
		out.Section = append(out.Section, describe(a, scheduling.DimensionSection, byID[a.ID]))
	}
	for _, a := range conflicts.Teacher {
		out.Teacher = append(out.Teacher, describe(a, scheduling.DimensionTeacher, byID[a.ID]))
	}
	return out, nil
}

// describe names the other party of a clash: the teacher for room and section conflicts, the
// section for teacher conflicts.
func describe(a scheduling.Assignment, dim scheduling.Dimension, d models.ScheduleDetail) models.Conflict {
	counterpart := d.TeacherName
	if dim == scheduling.DimensionTeacher {
		counterpart = d.SectionName
	}
	return models.Conflict{
		ScheduleID:      a.ID,
		Dimension:       string(dim),
		CounterpartName: counterpart,
		SubjectName:     d.SubjectName,
		RoomName:        d.RoomName,
		ConflictStart:   a.Interval.Start.String(),
		ConflictEnd:     a.Interval.End.String(),
	}
}

func (s *ScheduleService) suggestionsFor(c scheduling.Candidate, existing []scheduling.Assignment) *models.Suggestions {
	w := s.Window()
	duration := c.Interval.Minutes()
	busy := scheduling.BusyIntervals(c, existing)
	starts, err := scheduling.SuggestSlots(duration, busy, w)
	if err != nil {
		s.logger.Debug("no slot suggestions", zap.Error(err))
		return nil
	}
	out := &models.Suggestions{DurationMinutes: duration, Starts: formatStarts(starts)}
	out.Days = s.otherDays(duration, c, existing)
	if durations, err := scheduling.SuggestDurations(busy, w); err == nil {
		out.Durations = durations
	}
	out.DurationsAtStart = scheduling.DurationsAt(c.Interval.Start, busy, w)
	return out
}

func (s *ScheduleService) otherDays(duration int, c scheduling.Candidate, existing []scheduling.Assignment) []models.DaySuggestion {
	days, err := scheduling.SuggestDays(duration, scheduling.BusyByDay(c, existing), c.Day, s.Window())
	if err != nil {
		return nil
	}
	out := make([]models.DaySuggestion, 0, len(days))
	for _, d := range days {
		out = append(out, models.DaySuggestion{DayID: int(d.Day), DayName: d.Day.String(), Starts: formatStarts(d.Starts)})
	}
	return out
}

func formatStarts(starts []scheduling.TimeOfDay) []string {
	out := make([]string, 0, len(starts))
	for _, t := range starts {
		out = append(out, t.String())
	}
	return out
}

func dimensionNames(cs scheduling.ConflictSet) []string {
	dims := cs.Dimensions()
	out := make([]string, 0, len(dims))
	for _, d := range dims {
		out = append(out, string(d))
	}
	return out
}

func emptyConflictSet() models.ConflictSet {
	return models.ConflictSet{Room: []models.Conflict{}, Section: []models.Conflict{}, Teacher: []models.Conflict{}}
}

// payloadError reports a malformed clock time as INVALID_TIME_FORMAT and anything else the
// validator rejects as VALIDATION_ERROR.
func payloadError(err error, msg string) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		for _, fe := range fields {
			if fe.Tag() == dto.TimeOfDayTag {
				return appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, fe.Field()+" must use HH:MM")
			}
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
}

// mapSchedulingError converts scheduling and repository sentinels into API errors.
func mapSchedulingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, scheduling.ErrInvalidTimeFormat):
		return appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, appErrors.ErrInvalidTimeFormat.Message)
	case errors.Is(err, scheduling.ErrInvalidDay):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "day must be Monday through Sunday")
	case errors.Is(err, scheduling.ErrInvalidDuration):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	case errors.Is(err, scheduling.ErrInvalidInterval), errors.Is(err, scheduling.ErrInvalidCandidate):
		return appErrors.Wrap(err, appErrors.ErrInvalidInterval.Code, appErrors.ErrInvalidInterval.Status, err.Error())
	case errors.Is(err, scheduling.ErrCommitRace):
		return appErrors.Wrap(err, appErrors.ErrCommitRace.Code, appErrors.ErrCommitRace.Status, appErrors.ErrCommitRace.Message)
	case errors.Is(err, repository.ErrReferenceNotFound):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "referenced teacher, subject, room or section not found")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process schedule")
	}
}
