package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/neetrino-com/neetrino-academy-sub005/internal/dto"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	appErrors "github.com/neetrino-com/neetrino-academy-sub005/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	ListModules(ctx context.Context, courseID string) ([]models.CourseModule, error)
	FindModuleByID(ctx context.Context, id string) (*models.CourseModule, error)
	CreateModule(ctx context.Context, module *models.CourseModule) error
	ListLessons(ctx context.Context, moduleID string) ([]models.Lesson, error)
	FindLessonByID(ctx context.Context, id string) (*models.Lesson, error)
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	UpdateLesson(ctx context.Context, lesson *models.Lesson) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type catalogPage struct {
	Courses []models.Course `json:"courses"`
	Total   int             `json:"total"`
}

// CourseService manages courses, modules and lessons. The published catalog
// listing is cached in redis; any write invalidates the cached pages.
type CourseService struct {
	repo      courseRepository
	cache     catalogCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, cache catalogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

func catalogKey(page, pageSize int) string {
	return fmt.Sprintf("catalog:courses:p%d:s%d", page, pageSize)
}

// ListCatalog returns published courses, served from cache when the filter is
// a plain catalog page.
func (s *CourseService) ListCatalog(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	published := true
	filter.Published = &published

	cacheable := s.cache != nil && filter.TeacherID == "" && filter.Search == ""
	key := catalogKey(filter.Page, filter.PageSize)
	if cacheable {
		var cached catalogPage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Courses, cached.Total, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, catalogPage{Courses: courses, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return courses, total, nil
}

// List returns courses without the published-only constraint.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, total, nil
}

// Get loads a course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create stores a course owned by the invoking teacher.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest, teacherID string) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := models.Course{
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   teacherID,
		PriceCents:  req.PriceCents,
		Published:   req.Published,
	}
	if err := s.repo.Create(ctx, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidateCatalog(ctx)
	return &course, nil
}

// Update applies a partial update; only the owning teacher or an admin may
// call it, enforced by the caller.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.PriceCents != nil {
		course.PriceCents = *req.PriceCents
	}
	if req.Published != nil {
		course.Published = *req.Published
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidateCatalog(ctx)
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidateCatalog(ctx)
	return nil
}

// ListModules returns the ordered modules of a course.
func (s *CourseService) ListModules(ctx context.Context, courseID string) ([]models.CourseModule, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	modules, err := s.repo.ListModules(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, nil
}

// CreateModule adds a module to a course.
func (s *CourseService) CreateModule(ctx context.Context, courseID string, req dto.CreateModuleRequest) (*models.CourseModule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}

	module := models.CourseModule{CourseID: courseID, Title: req.Title, Position: req.Position}
	if err := s.repo.CreateModule(ctx, &module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	return &module, nil
}

// ListLessons returns the ordered lessons of a module.
func (s *CourseService) ListLessons(ctx context.Context, moduleID string) ([]models.Lesson, error) {
	if _, err := s.repo.FindModuleByID(ctx, moduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	lessons, err := s.repo.ListLessons(ctx, moduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, nil
}

// CreateLesson adds a lesson to a module.
func (s *CourseService) CreateLesson(ctx context.Context, moduleID string, req dto.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if _, err := s.repo.FindModuleByID(ctx, moduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}

	lesson := models.Lesson{ModuleID: moduleID, Title: req.Title, Content: req.Content, Position: req.Position}
	if err := s.repo.CreateLesson(ctx, &lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	return &lesson, nil
}

// UpdateLesson applies a partial update to a lesson.
func (s *CourseService) UpdateLesson(ctx context.Context, id string, req dto.UpdateLessonRequest) (*models.Lesson, error) {
	lesson, err := s.repo.FindLessonByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.Position != nil {
		lesson.Position = *req.Position
	}

	if err := s.repo.UpdateLesson(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}
	return lesson, nil
}

// invalidateCatalog drops the first few cached catalog pages. Deeper pages
// simply expire with their TTL.
func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, 5)
	for page := 1; page <= 5; page++ {
		keys = append(keys, catalogKey(page, 0), catalogKey(page, 20))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
