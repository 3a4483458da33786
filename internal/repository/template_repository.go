package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-dcm/slot-booking-api/internal/models"
)

// TemplateRepository manages weekday schedule templates.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository builds repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// FindByDay returns the template for one weekday key.
func (r *TemplateRepository) FindByDay(ctx context.Context, day string) (*models.ScheduleTemplate, error) {
	const query = `SELECT day_of_week, entries, updated_at FROM schedule_templates WHERE day_of_week = $1`
	var tpl models.ScheduleTemplate
	if err := r.db.GetContext(ctx, &tpl, query, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return &tpl, nil
}

// List returns every stored weekday template.
func (r *TemplateRepository) List(ctx context.Context) ([]models.ScheduleTemplate, error) {
	const query = `SELECT day_of_week, entries, updated_at FROM schedule_templates ORDER BY day_of_week ASC`
	templates := []models.ScheduleTemplate{}
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// Upsert replaces a weekday's template wholesale.
func (r *TemplateRepository) Upsert(ctx context.Context, tpl *models.ScheduleTemplate) error {
	if tpl.UpdatedAt.IsZero() {
		tpl.UpdatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO schedule_templates (day_of_week, entries, updated_at)
VALUES (:day_of_week, :entries, :updated_at)
ON CONFLICT (day_of_week) DO UPDATE
SET entries = EXCLUDED.entries,
    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}

// Delete removes a weekday's template.
func (r *TemplateRepository) Delete(ctx context.Context, day string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_templates WHERE day_of_week = $1`, day)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
