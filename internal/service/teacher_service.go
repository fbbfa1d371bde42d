package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
	ExistsByEmployeeID(ctx context.Context, employeeID string, excludeID int64) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
}

// TeacherRequest represents payload for creating or updating teachers.
type TeacherRequest struct {
	EmployeeID   string  `json:"employee_id" validate:"required,max=50"`
	Name         string  `json:"name" validate:"required,max=200"`
	Email        string  `json:"email" validate:"required,email"`
	MajorSubject string  `json:"major_subject" validate:"omitempty,max=200"`
	ImageURL     *string `json:"image_url" validate:"omitempty,url"`
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id int64) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "teacher")
	}
	return teacher, nil
}

// Create registers a new teacher record.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if err := s.ensureUniqueEmployeeID(ctx, req.EmployeeID, 0); err != nil {
		return nil, err
	}

	teacher := &models.Teacher{}
	applyTeacherRequest(teacher, req)
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id int64, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "teacher")
	}
	if err := s.ensureUniqueEmployeeID(ctx, req.EmployeeID, id); err != nil {
		return nil, err
	}

	applyTeacherRequest(teacher, req)
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	invalidateTimetables(ctx, s.cache, s.logger)
	return teacher, nil
}

// Delete removes a teacher along with their schedules.
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "teacher")
	}
	invalidateTimetables(ctx, s.cache, s.logger)
	return nil
}

func (s *TeacherService) ensureUniqueEmployeeID(ctx context.Context, employeeID string, excludeID int64) error {
	exists, err := s.repo.ExistsByEmployeeID(ctx, strings.TrimSpace(employeeID), excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee id uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "employee id already used")
	}
	return nil
}

func applyTeacherRequest(teacher *models.Teacher, req TeacherRequest) {
	teacher.EmployeeID = strings.TrimSpace(req.EmployeeID)
	teacher.Name = strings.TrimSpace(req.Name)
	teacher.Email = strings.TrimSpace(req.Email)
	teacher.MajorSubject = strings.TrimSpace(req.MajorSubject)
	teacher.ImageURL = normalizeOptional(req.ImageURL)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func notFoundOrInternal(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process "+entity)
}

// invalidateTimetables drops cached timetable views after a change to a referenced entity.
func invalidateTimetables(ctx context.Context, cache *CacheService, logger *zap.Logger) {
	if err := cache.Invalidate(ctx, timetableCachePattern); err != nil {
		logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}
}
