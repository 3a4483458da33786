package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
)

type templateRepository interface {
	FindByDay(ctx context.Context, day string) (*models.ScheduleTemplate, error)
	List(ctx context.Context) ([]models.ScheduleTemplate, error)
	Upsert(ctx context.Context, tpl *models.ScheduleTemplate) error
	Delete(ctx context.Context, day string) error
}

// SaveTemplateRequest replaces one weekday's layout wholesale.
type SaveTemplateRequest struct {
	Entries []models.TemplateEntry `json:"entries" validate:"dive"`
}

// TemplateService manages weekday slot layouts.
type TemplateService struct {
	repo      templateRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTemplateService constructs TemplateService.
func NewTemplateService(repo templateRepository, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{repo: repo, validator: validate, logger: logger}
}

// Get returns one weekday's template.
func (s *TemplateService) Get(ctx context.Context, day string) (*models.ScheduleTemplate, error) {
	day = models.NormalizeWeekday(day)
	if !models.ValidWeekday(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid weekday %q", day))
	}
	tpl, err := s.repo.FindByDay(ctx, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrTemplateNotFound, fmt.Sprintf("no schedule template for %s", day))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load template")
	}
	return tpl, nil
}

// List returns all stored templates.
func (s *TemplateService) List(ctx context.Context) ([]models.ScheduleTemplate, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list templates")
	}
	return templates, nil
}

// Save replaces a weekday's template. An empty entry list is legal and means
// the day materializes zero slots; duplicate start times are also legal.
func (s *TemplateService) Save(ctx context.Context, day string, req SaveTemplateRequest) (*models.ScheduleTemplate, error) {
	day = models.NormalizeWeekday(day)
	if !models.ValidWeekday(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid weekday %q", day))
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}

	tpl := &models.ScheduleTemplate{
		DayOfWeek: day,
		Entries:   models.TemplateEntries(req.Entries),
	}
	if err := s.repo.Upsert(ctx, tpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to save template")
	}

	s.logger.Info("template saved", zap.String("day", day), zap.Int("entries", len(tpl.Entries)))
	return tpl, nil
}

// Delete removes a weekday's template.
func (s *TemplateService) Delete(ctx context.Context, day string) error {
	day = models.NormalizeWeekday(day)
	if !models.ValidWeekday(day) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid weekday %q", day))
	}
	if err := s.repo.Delete(ctx, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrTemplateNotFound, fmt.Sprintf("no schedule template for %s", day))
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to delete template")
	}
	return nil
}

// SeedDefaults creates the standard Monday to Friday hourly layout for any
// weekday that does not already have a template. Existing templates are never
// overwritten. Returns how many were created.
func (s *TemplateService) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list templates")
	}
	have := make(map[string]struct{}, len(existing))
	for _, tpl := range existing {
		have[tpl.DayOfWeek] = struct{}{}
	}

	created := 0
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		if _, ok := have[day]; ok {
			continue
		}
		tpl := &models.ScheduleTemplate{DayOfWeek: day, Entries: defaultEntries()}
		if err := s.repo.Upsert(ctx, tpl); err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to seed template")
		}
		created++
	}

	s.logger.Info("default templates seeded", zap.Int("created", created))
	return created, nil
}

// defaultEntries is the 9:00-17:00 hourly layout; 12:00 is a lunch break and
// stays non-bookable.
func defaultEntries() models.TemplateEntries {
	entries := models.TemplateEntries{}
	for hour := 9; hour < 17; hour++ {
		entries = append(entries, models.TemplateEntry{
			StartTime:       fmt.Sprintf("%02d:00", hour),
			DurationMinutes: 60,
			IsBookable:      hour != 12,
		})
	}
	return entries
}
