package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type mockTeacherRepo struct {
	items      map[int64]*models.Teacher
	employeeID map[string]int64
	nextID     int64
	deleted    []int64
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	var out []models.Teacher
	for _, t := range m.items {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	if teacher, ok := m.items[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) ExistsByEmployeeID(ctx context.Context, employeeID string, excludeID int64) (bool, error) {
	if owner, ok := m.employeeID[employeeID]; ok && owner != excludeID {
		return true, nil
	}
	return false, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.items == nil {
		m.items = make(map[int64]*models.Teacher)
	}
	m.nextID++
	teacher.ID = m.nextID
	teacher.CreatedAt = time.Now()
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestTeacherServiceCreate(t *testing.T) {
	repo := &mockTeacherRepo{}
	service := NewTeacherService(repo, nil, validator.New(), zap.NewNop())

	teacher, err := service.Create(context.Background(), TeacherRequest{
		EmployeeID:   " EMP-001 ",
		Name:         "Ada Reyes",
		Email:        "ada@example.com",
		MajorSubject: "Mathematics",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), teacher.ID)
	assert.Equal(t, "EMP-001", teacher.EmployeeID)
	assert.Nil(t, teacher.ImageURL)
	assert.Len(t, repo.items, 1)
}

func TestTeacherServiceCreateDuplicateEmployeeID(t *testing.T) {
	repo := &mockTeacherRepo{employeeID: map[string]int64{"EMP-001": 4}}
	service := NewTeacherService(repo, nil, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), TeacherRequest{EmployeeID: "EMP-001", Name: "Ada Reyes", Email: "ada@example.com"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestTeacherServiceUpdate(t *testing.T) {
	repo := &mockTeacherRepo{
		items:      map[int64]*models.Teacher{1: {ID: 1, EmployeeID: "EMP-001", Name: "Ada Reyes", Email: "ada@example.com"}},
		employeeID: map[string]int64{"EMP-001": 1},
	}
	service := NewTeacherService(repo, nil, validator.New(), zap.NewNop())

	updated, err := service.Update(context.Background(), 1, TeacherRequest{EmployeeID: "EMP-001", Name: "Ada R. Reyes", Email: "ada.reyes@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ada.reyes@example.com", updated.Email)
	assert.Equal(t, "Ada R. Reyes", repo.items[1].Name)

	_, err = service.Update(context.Background(), 9, TeacherRequest{EmployeeID: "EMP-009", Name: "Nobody", Email: "x@example.com"})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestTeacherServiceValidation(t *testing.T) {
	service := NewTeacherService(&mockTeacherRepo{}, nil, nil, nil)

	_, err := service.Create(context.Background(), TeacherRequest{EmployeeID: "EMP-001", Name: "Ada", Email: "not-an-email"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceDelete(t *testing.T) {
	repo := &mockTeacherRepo{items: map[int64]*models.Teacher{1: {ID: 1, Name: "Ada Reyes"}}}
	service := NewTeacherService(repo, nil, validator.New(), zap.NewNop())

	require.NoError(t, service.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, repo.deleted)

	err := service.Delete(context.Background(), 1)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}
