package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduling"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type mockScheduleRepo struct {
	*scheduling.MemoryStore
	details  map[int64]models.ScheduleDetail
	listErr  error
	listHits int
}

func newMockScheduleRepo(seed ...scheduling.Assignment) *mockScheduleRepo {
	return &mockScheduleRepo{MemoryStore: scheduling.NewMemoryStore(seed...), details: map[int64]models.ScheduleDetail{}}
}

func (m *mockScheduleRepo) ListDetails(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error) {
	m.listHits++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.ScheduleDetail
	for _, a := range m.List() {
		if filter.SectionID > 0 && a.SectionID != filter.SectionID {
			continue
		}
		d, ok := m.details[a.ID]
		if !ok {
			d = models.ScheduleDetail{Schedule: models.ScheduleFromAssignment(a)}
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *mockScheduleRepo) FindDetails(ctx context.Context, ids []int64) ([]models.ScheduleDetail, error) {
	var out []models.ScheduleDetail
	for _, id := range ids {
		if d, ok := m.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) ListInvolving(ctx context.Context, roomID, sectionID, teacherID int64) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, a := range m.List() {
		if (roomID > 0 && a.RoomID == roomID) || (sectionID > 0 && a.SectionID == sectionID) || (teacherID > 0 && a.TeacherID == teacherID) {
			out = append(out, models.ScheduleFromAssignment(a))
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id int64) (*models.Schedule, error) {
	for _, a := range m.List() {
		if a.ID == id {
			row := models.ScheduleFromAssignment(a)
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id int64) error {
	if !m.MemoryStore.Delete(id) {
		return sql.ErrNoRows
	}
	return nil
}

type racingScheduleRepo struct {
	*mockScheduleRepo
	attempts int
}

func (r *racingScheduleRepo) Serialize(ctx context.Context, keys []scheduling.LockKey, fn func(ctx context.Context, book scheduling.Book) error) error {
	r.attempts++
	return scheduling.ErrCommitRace
}

type mockTeacherFinder map[int64]models.Teacher

func (m mockTeacherFinder) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	if t, ok := m[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

// Monday 09:00-10:00, teacher 7 teaching section 8 in room 1.
func seededScheduleRepo() *mockScheduleRepo {
	existing := scheduling.Assignment{
		ID:        1,
		TeacherID: 7,
		SubjectID: 5,
		RoomID:    1,
		SectionID: 8,
		Day:       scheduling.Monday,
		Interval:  scheduling.Interval{Start: scheduling.MustTime("09:00"), End: scheduling.MustTime("10:00")},
	}
	repo := newMockScheduleRepo(existing)
	repo.details[1] = models.ScheduleDetail{
		Schedule:    models.ScheduleFromAssignment(existing),
		TeacherName: "Ada Reyes",
		SubjectName: "Algebra",
		RoomName:    "Room 101",
		SectionName: "BSCS 1A",
	}
	return repo
}

func newTestScheduleService(repo scheduleRepository, metrics *MetricsService) *ScheduleService {
	return NewScheduleService(repo, ScheduleReferences{}, scheduling.NewCommitter(scheduling.DefaultWindow, 3), nil, metrics, nil, nil)
}

func mondayRequest(start, end string) dto.ScheduleRequest {
	return dto.ScheduleRequest{TeacherID: 2, SubjectID: 3, RoomID: 4, SectionID: 5, Day: "Monday", StartTime: start, EndTime: end}
}

func TestScheduleServiceCheckAvailable(t *testing.T) {
	svc := newTestScheduleService(seededScheduleRepo(), nil)

	resp, err := svc.Check(context.Background(), mondayRequest("09:00", "10:00"))
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Empty(t, resp.Conflicts.Room)
	assert.Nil(t, resp.Suggestions)
}

func TestScheduleServiceCheckTouchingIsFree(t *testing.T) {
	svc := newTestScheduleService(seededScheduleRepo(), nil)

	req := mondayRequest("10:00", "11:00")
	req.RoomID = 1
	resp, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Available)
}

func TestScheduleServiceCheckReportsRoomConflictWithSuggestions(t *testing.T) {
	svc := newTestScheduleService(seededScheduleRepo(), nil)

	req := mondayRequest("09:30", "10:30")
	req.RoomID = 1
	resp, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Available)
	require.Len(t, resp.Conflicts.Room, 1)
	assert.Empty(t, resp.Conflicts.Section)
	assert.Empty(t, resp.Conflicts.Teacher)

	conflict := resp.Conflicts.Room[0]
	assert.Equal(t, int64(1), conflict.ScheduleID)
	assert.Equal(t, "room", conflict.Dimension)
	assert.Equal(t, "Ada Reyes", conflict.CounterpartName)
	assert.Equal(t, "Algebra", conflict.SubjectName)
	assert.Equal(t, "09:00", conflict.ConflictStart)
	assert.Equal(t, "10:00", conflict.ConflictEnd)

	require.NotNil(t, resp.Suggestions)
	assert.Equal(t, 60, resp.Suggestions.DurationMinutes)
	assert.Contains(t, resp.Suggestions.Starts, "08:00")
	assert.Contains(t, resp.Suggestions.Starts, "10:00")
	assert.NotContains(t, resp.Suggestions.Starts, "08:30")
	assert.NotContains(t, resp.Suggestions.Starts, "09:30")
	require.NotEmpty(t, resp.Suggestions.Days)
	assert.Equal(t, "Tuesday", resp.Suggestions.Days[0].DayName)
}

func TestScheduleServiceCommitAccepted(t *testing.T) {
	metrics := NewMetricsService()
	repo := seededScheduleRepo()
	refs := ScheduleReferences{Teachers: mockTeacherFinder{2: {ID: 2, Name: "Lin Cruz"}}}
	svc := NewScheduleService(repo, refs, scheduling.NewCommitter(scheduling.DefaultWindow, 3), nil, metrics, nil, nil)

	entry, err := svc.Commit(context.Background(), mondayRequest("13:00", "14:30"))
	require.NoError(t, err)
	assert.NotZero(t, entry.ScheduleID)
	assert.Equal(t, "Lin Cruz", entry.TeacherName)
	assert.Equal(t, "13:00", entry.StartTime)
	assert.Equal(t, "14:30", entry.EndTime)
	assert.Equal(t, 13.0, entry.StartHour)
	assert.Equal(t, 14.5, entry.EndHour)
	assert.Len(t, repo.List(), 2)
	assert.Equal(t, uint64(1), metrics.Snapshot().ScheduleOutcomes["commit_accepted"])
}

func TestScheduleServiceCommitByDuration(t *testing.T) {
	svc := newTestScheduleService(seededScheduleRepo(), nil)

	req := mondayRequest("15:00", "")
	req.DurationMinutes = 120
	entry, err := svc.Commit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "17:00", entry.EndTime)
}

func TestScheduleServiceCommitTeacherConflict(t *testing.T) {
	metrics := NewMetricsService()
	repo := seededScheduleRepo()
	svc := newTestScheduleService(repo, metrics)

	req := mondayRequest("08:30", "09:30")
	req.TeacherID = 7
	_, err := svc.Commit(context.Background(), req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErr.Code)

	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts.Teacher, 1)
	assert.Equal(t, "BSCS 1A", conflictErr.Conflicts.Teacher[0].CounterpartName)
	assert.Empty(t, conflictErr.Conflicts.Room)
	require.NotNil(t, conflictErr.Suggestions)
	assert.Len(t, repo.List(), 1)
	assert.Equal(t, uint64(1), metrics.Snapshot().ScheduleOutcomes["commit_conflict"])
}

func TestScheduleServiceCommitAllDimensions(t *testing.T) {
	svc := newTestScheduleService(seededScheduleRepo(), nil)

	req := dto.ScheduleRequest{TeacherID: 7, SubjectID: 3, RoomID: 1, SectionID: 8, Day: "1", StartTime: "09:00", EndTime: "10:00"}
	_, err := svc.Commit(context.Background(), req)

	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Len(t, conflictErr.Conflicts.Room, 1)
	assert.Len(t, conflictErr.Conflicts.Section, 1)
	assert.Len(t, conflictErr.Conflicts.Teacher, 1)
	assert.Equal(t, "schedule conflicts on room, section, teacher", conflictErr.Message)
}

func TestScheduleServiceRejectsInvalidInput(t *testing.T) {
	svc := newTestScheduleService(seededScheduleRepo(), nil)
	ctx := context.Background()

	for _, raw := range []string{"9am", "25:00", "9:5"} {
		_, err := svc.Check(ctx, mondayRequest(raw, "10:00"))
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidTimeFormat.Code, appErr.Code, raw)
		assert.Equal(t, http.StatusBadRequest, appErr.Status, raw)
	}
	_, err := svc.Commit(ctx, mondayRequest("09:00", "10h00"))
	assert.Equal(t, appErrors.ErrInvalidTimeFormat.Code, appErrors.FromError(err).Code)

	_, err = svc.Suggest(ctx, dto.SuggestionQuery{Day: "Monday", DurationMinutes: 60, RoomID: 1, StartTime: "noon"})
	assert.Equal(t, appErrors.ErrInvalidTimeFormat.Code, appErrors.FromError(err).Code)

	missing := mondayRequest("09:00", "10:00")
	missing.RoomID = 0
	_, err = svc.Check(ctx, missing)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Commit(ctx, mondayRequest("10:00", "09:00"))
	assert.Equal(t, appErrors.ErrInvalidInterval.Code, appErrors.FromError(err).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErrors.FromError(err).Status)

	_, err = svc.Check(ctx, mondayRequest("06:00", "08:00"))
	assert.Equal(t, appErrors.ErrInvalidInterval.Code, appErrors.FromError(err).Code)

	mismatch := mondayRequest("13:00", "14:00")
	mismatch.DurationMinutes = 90
	_, err = svc.Check(ctx, mismatch)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	bad := mondayRequest("09:00", "10:00")
	bad.Day = "Funday"
	_, err = svc.Check(ctx, bad)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceCommitUnknownTeacher(t *testing.T) {
	refs := ScheduleReferences{Teachers: mockTeacherFinder{}}
	svc := NewScheduleService(seededScheduleRepo(), refs, nil, nil, nil, nil, nil)

	_, err := svc.Commit(context.Background(), mondayRequest("13:00", "14:00"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "teacher not found", appErr.Message)
}

func TestScheduleServiceCommitGivesUpAfterRaces(t *testing.T) {
	repo := &racingScheduleRepo{mockScheduleRepo: seededScheduleRepo()}
	svc := NewScheduleService(repo, ScheduleReferences{}, scheduling.NewCommitter(scheduling.DefaultWindow, 2), nil, nil, nil, nil)

	_, err := svc.Commit(context.Background(), mondayRequest("13:00", "14:00"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCommitRace.Code, appErr.Code)
	assert.Equal(t, 2, repo.attempts)
}

func TestScheduleServiceSuggest(t *testing.T) {
	svc := newTestScheduleService(seededScheduleRepo(), nil)
	ctx := context.Background()

	out, err := svc.Suggest(ctx, dto.SuggestionQuery{Day: "Monday", DurationMinutes: 60, RoomID: 1, StartTime: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, "07:00", out.Starts[0])
	assert.NotContains(t, out.Starts, "08:30")
	assert.NotContains(t, out.Starts, "09:00")
	assert.Contains(t, out.Starts, "10:00")
	assert.Equal(t, []int{60}, out.DurationsAtStart)
	assert.Len(t, out.Days, 6)

	_, err = svc.Suggest(ctx, dto.SuggestionQuery{Day: "Monday", DurationMinutes: 45, RoomID: 1})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Suggest(ctx, dto.SuggestionQuery{Day: "Monday", DurationMinutes: 60})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceListAndDelete(t *testing.T) {
	repo := seededScheduleRepo()
	svc := newTestScheduleService(repo, nil)
	ctx := context.Background()

	entries, err := svc.List(ctx, models.ScheduleFilter{SectionID: 8})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Monday", entries[0].DayName)
	assert.Equal(t, "Algebra", entries[0].SubjectName)

	require.NoError(t, svc.Delete(ctx, 1))
	err = svc.Delete(ctx, 1)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	repo.listErr = errors.New("db down")
	_, err = svc.List(ctx, models.ScheduleFilter{})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
