package service

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type mockRoomRepo struct {
	items map[int64]*models.Room
}

func (m *mockRoomRepo) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	var out []models.Room
	for _, r := range m.items {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	if r, ok := m.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	for id, r := range m.items {
		if strings.EqualFold(r.Code, code) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	room.ID = int64(len(m.items) + 1)
	cp := *room
	m.items[room.ID] = &cp
	return nil
}

func (m *mockRoomRepo) Update(ctx context.Context, room *models.Room) error {
	cp := *room
	m.items[room.ID] = &cp
	return nil
}

func (m *mockRoomRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type mockSectionRepo struct {
	items map[int64]*models.Section
}

func (m *mockSectionRepo) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, int, error) {
	return nil, 0, nil
}

func (m *mockSectionRepo) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionRepo) ExistsByNameYear(ctx context.Context, name string, year int, excludeID int64) (bool, error) {
	for id, s := range m.items {
		if strings.EqualFold(s.Name, name) && s.Year == year && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSectionRepo) Create(ctx context.Context, section *models.Section) error {
	section.ID = int64(len(m.items) + 1)
	cp := *section
	m.items[section.ID] = &cp
	return nil
}

func (m *mockSectionRepo) Update(ctx context.Context, section *models.Section) error {
	cp := *section
	m.items[section.ID] = &cp
	return nil
}

func (m *mockSectionRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type mockCourseRepo struct {
	items map[int64]*models.Course
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var out []models.Course
	for _, c := range m.items {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if c, ok := m.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, c := range m.items {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = int64(len(m.items) + 1)
	cp := *course
	m.items[course.ID] = &cp
	return nil
}

func TestCourseServiceNormalizesCodes(t *testing.T) {
	repo := &mockCourseRepo{items: map[int64]*models.Course{1: {ID: 1, Code: "BSCS", Name: "Computer Science"}}}
	svc := NewCourseService(repo, nil, nil)
	ctx := context.Background()

	free, err := svc.CodeAvailable(ctx, " bscs ")
	require.NoError(t, err)
	assert.False(t, free)

	_, err = svc.Create(ctx, CourseRequest{Code: "bscs", Name: "Duplicate"})
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)

	course, err := svc.Create(ctx, CourseRequest{Code: " bsit ", Name: "Information Technology"})
	require.NoError(t, err)
	assert.Equal(t, "BSIT", course.Code)
	assert.Equal(t, "BSIT", repo.items[course.ID].Code)

	_, err = svc.Create(ctx, CourseRequest{Code: "", Name: "Nameless"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	_, err = svc.CodeAvailable(ctx, "  ")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(ctx, 99)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestRoomServiceCodeAvailability(t *testing.T) {
	repo := &mockRoomRepo{items: map[int64]*models.Room{1: {ID: 1, Code: "R-101", Name: "Room 101"}}}
	svc := NewRoomService(repo, nil, nil, nil)
	ctx := context.Background()

	free, err := svc.CodeAvailable(ctx, "r-101")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = svc.CodeAvailable(ctx, "R-102")
	require.NoError(t, err)
	assert.True(t, free)

	_, err = svc.CodeAvailable(ctx, " ")
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestRoomServiceCreateAndUpdate(t *testing.T) {
	repo := &mockRoomRepo{items: map[int64]*models.Room{1: {ID: 1, Code: "R-101", Name: "Room 101"}}}
	svc := NewRoomService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, RoomRequest{Code: "R-101", Name: "Duplicate"})
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)

	room, err := svc.Create(ctx, RoomRequest{Code: "LAB-1", Name: "Computer Lab"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), room.ID)

	updated, err := svc.Update(ctx, 1, RoomRequest{Code: "R-101", Name: "Lecture Room 101"})
	require.NoError(t, err)
	assert.Equal(t, "Lecture Room 101", updated.Name)

	assert.Equal(t, http.StatusNotFound, appErrors.FromError(svc.Delete(ctx, 42)).Status)
}

func TestSectionServiceUniquenessPerYear(t *testing.T) {
	repo := &mockSectionRepo{items: map[int64]*models.Section{1: {ID: 1, Name: "BSCS 1A", Year: 1, CourseID: 1}}}
	courses := &mockCourseRepo{items: map[int64]*models.Course{1: {ID: 1, Code: "BSCS", Name: "Computer Science"}}}
	svc := NewSectionService(repo, courses, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, SectionRequest{Name: "BSCS 1A", Year: 1, CourseID: 1})
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)

	section, err := svc.Create(ctx, SectionRequest{Name: "BSCS 1A", Year: 2, CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, section.Year)
	assert.Equal(t, "BSCS", section.CourseCode)

	_, err = svc.Create(ctx, SectionRequest{Name: "BSCS 1B", Year: 2, CourseID: 7})
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "course not found", appErr.Message)

	free, err := svc.NameAvailable(ctx, "bscs 1a", 1)
	require.NoError(t, err)
	assert.False(t, free)

	_, err = svc.NameAvailable(ctx, "BSCS 1B", 0)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
