package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	"github.com/campus-dcm/slot-booking-api/internal/repository"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
)

type scheduleSlotRepository interface {
	CreateDay(ctx context.Context, from, to time.Time, slots []models.Slot) (int, error)
	DeleteByRange(ctx context.Context, from, to time.Time) (int64, error)
}

type templateReader interface {
	FindByDay(ctx context.Context, day string) (*models.ScheduleTemplate, error)
}

// ScheduleService expands weekday templates into concrete slots and withdraws
// whole date ranges.
type ScheduleService struct {
	slots     scheduleSlotRepository
	templates templateReader
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	loc       *time.Location
}

// NewScheduleService constructs ScheduleService. Dates are interpreted in loc,
// the deployment's reference timezone.
func NewScheduleService(slots scheduleSlotRepository, templates templateReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger, loc *time.Location) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleService{slots: slots, templates: templates, cache: cache, metrics: metrics, logger: logger, loc: loc}
}

// Materialize expands the weekday template for date into slot rows. It is a
// one-shot operation per date: any existing slot inside the day fails the
// whole call, and the batch either fully persists or not at all.
func (s *ScheduleService) Materialize(ctx context.Context, date time.Time) (int, error) {
	day := models.WeekdayName(date.In(s.loc))

	tpl, err := s.templates.FindByDay(ctx, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrTemplateNotFound, fmt.Sprintf("no schedule template for %s", day))
		}
		return 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load template")
	}

	from := startOfDay(date, s.loc)
	to := nextDay(from, s.loc)

	slots := make([]models.Slot, 0, len(tpl.Entries))
	for _, entry := range tpl.Entries {
		at, err := entryInstant(from, entry.StartTime, s.loc)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("invalid start time %q in %s template", entry.StartTime, day))
		}
		slots = append(slots, models.Slot{
			SlotAt:          at,
			DurationMinutes: entry.DurationMinutes,
			CourseName:      optional(entry.CourseName),
			FacultyName:     optional(entry.FacultyName),
			RoomNumber:      optional(entry.Room),
			IsBookable:      entry.IsBookable,
			IsBooked:        false,
			BookedBy:        nil,
		})
	}

	created, err := s.slots.CreateDay(ctx, from, to, slots)
	if err != nil {
		if errors.Is(err, repository.ErrSlotsExist) {
			return 0, appErrors.Clone(appErrors.ErrAlreadyMaterialized,
				fmt.Sprintf("schedule already exists for %s", from.Format("2006-01-02")))
		}
		return 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to materialize schedule")
	}

	s.metrics.RecordMaterialized(created)
	if s.cache != nil {
		s.cache.Invalidate(ctx, dayCacheKey(from, s.loc))
	}
	s.logger.Info("schedule materialized",
		zap.String("date", from.Format("2006-01-02")),
		zap.String("day", day),
		zap.Int("created", created))

	return created, nil
}

// EraseRange deletes every slot whose instant falls inside the inclusive day
// range. Zero matches is success, not an error.
func (s *ScheduleService) EraseRange(ctx context.Context, startDate, endDate time.Time) (int64, error) {
	from := startOfDay(startDate, s.loc)
	last := startOfDay(endDate, s.loc)
	if last.Before(from) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}
	to := nextDay(last, s.loc)

	deleted, err := s.slots.DeleteByRange(ctx, from, to)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to erase schedule range")
	}

	s.metrics.RecordErased(deleted)
	if s.cache != nil {
		s.cache.Invalidate(ctx, "slots:day:*")
	}
	s.logger.Info("schedule range erased",
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", last.Format("2006-01-02")),
		zap.Int64("deleted", deleted))

	return deleted, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func nextDay(dayStart time.Time, loc *time.Location) time.Time {
	return time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day()+1, 0, 0, 0, 0, loc)
}

func entryInstant(dayStart time.Time, startTime string, loc *time.Location) (time.Time, error) {
	parts := strings.SplitN(startTime, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("start time %q is not HH:MM", startTime)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return time.Time{}, fmt.Errorf("start time %q has invalid hour", startTime)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return time.Time{}, fmt.Errorf("start time %q has invalid minute", startTime)
	}
	return time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), hours, minutes, 0, 0, loc), nil
}

func dayCacheKey(t time.Time, loc *time.Location) string {
	return "slots:day:" + t.In(loc).Format("2006-01-02")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
