package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type sectionRepository interface {
	List(ctx context.Context, filter models.SectionFilter) ([]models.Section, int, error)
	FindByID(ctx context.Context, id int64) (*models.Section, error)
	ExistsByNameYear(ctx context.Context, name string, year int, excludeID int64) (bool, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id int64) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// SectionRequest is the payload for creating or updating sections.
type SectionRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Year     int    `json:"year" validate:"required,min=1,max=6"`
	CourseID int64  `json:"courseId" validate:"required,min=1"`
}

// SectionService handles section business logic.
type SectionService struct {
	repo      sectionRepository
	courses   courseFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService creates a section service. A nil course finder skips the course lookup.
func NewSectionService(repo sectionRepository, courses courseFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, courses: courses, cache: cache, validator: validate, logger: logger}
}

// List returns sections with pagination.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, *models.Pagination, error) {
	sections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a section by ID.
func (s *SectionService) Get(ctx context.Context, id int64) (*models.Section, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "section")
	}
	return section, nil
}

// NameAvailable reports whether the section name is unused for the year.
func (s *SectionService) NameAvailable(ctx context.Context, name string, year int) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" || year <= 0 {
		return false, appErrors.Clone(appErrors.ErrValidation, "name and year are required")
	}
	exists, err := s.repo.ExistsByNameYear(ctx, name, year, 0)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section name")
	}
	return !exists, nil
}

// Create registers a section.
func (s *SectionService) Create(ctx context.Context, req SectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if err := s.ensureUnique(ctx, req, 0); err != nil {
		return nil, err
	}
	code, err := s.courseCode(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	section := &models.Section{Name: strings.TrimSpace(req.Name), Year: req.Year, CourseID: req.CourseID, CourseCode: code}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	return section, nil
}

// Update modifies a section.
func (s *SectionService) Update(ctx context.Context, id int64, req SectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "section")
	}
	if err := s.ensureUnique(ctx, req, id); err != nil {
		return nil, err
	}
	code, err := s.courseCode(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	section.Name = strings.TrimSpace(req.Name)
	section.Year = req.Year
	section.CourseID = req.CourseID
	section.CourseCode = code
	if err := s.repo.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	invalidateTimetables(ctx, s.cache, s.logger)
	return section, nil
}

// Delete removes a section along with its schedules.
func (s *SectionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "section")
	}
	invalidateTimetables(ctx, s.cache, s.logger)
	return nil
}

func (s *SectionService) ensureUnique(ctx context.Context, req SectionRequest, excludeID int64) error {
	exists, err := s.repo.ExistsByNameYear(ctx, strings.TrimSpace(req.Name), req.Year, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "section already exists for this year")
	}
	return nil
}

func (s *SectionService) courseCode(ctx context.Context, courseID int64) (string, error) {
	if s.courses == nil {
		return "", nil
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return "", notFoundOrInternal(err, "course")
	}
	return course.Code, nil
}
