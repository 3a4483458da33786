package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-dcm/slot-booking-api/internal/models"
)

// ErrVersionConflict signals that a conditional write lost to a concurrent
// writer; the caller should re-read the row and decide whether to retry.
var ErrVersionConflict = errors.New("slot modified concurrently")

// ErrSlotsExist signals that a day already holds materialized slots.
var ErrSlotsExist = errors.New("slots already exist in range")

const slotColumns = `id, slot_at, duration_minutes, course_name, faculty_name, room_number, is_bookable, is_booked, booked_by, version, created_at`

// SlotRepository manages the slots table.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository builds repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// FindByID returns one slot including its concurrency version.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.Slot, error) {
	query := fmt.Sprintf(`SELECT %s FROM slots WHERE id = $1`, slotColumns)
	var slot models.Slot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return &slot, nil
}

// ListByRange returns slots whose instant falls in the half-open interval [from, to).
func (r *SlotRepository) ListByRange(ctx context.Context, from, to time.Time) ([]models.Slot, error) {
	query := fmt.Sprintf(`SELECT %s FROM slots WHERE slot_at >= $1 AND slot_at < $2 ORDER BY slot_at ASC`, slotColumns)
	slots := []models.Slot{}
	if err := r.db.SelectContext(ctx, &slots, query, from, to); err != nil {
		return nil, fmt.Errorf("list slots by range: %w", err)
	}
	return slots, nil
}

// ListByUser returns the slots a user holds whose instant is at or after from.
func (r *SlotRepository) ListByUser(ctx context.Context, userID string, from time.Time) ([]models.Slot, error) {
	query := fmt.Sprintf(`SELECT %s FROM slots WHERE booked_by = $1 AND slot_at >= $2 ORDER BY slot_at ASC`, slotColumns)
	slots := []models.Slot{}
	if err := r.db.SelectContext(ctx, &slots, query, userID, from); err != nil {
		return nil, fmt.Errorf("list slots by user: %w", err)
	}
	return slots, nil
}

// CreateDay inserts a full day's slots in one transaction, refusing to write
// when any slot already exists inside [from, to). Either every slot persists
// or none do.
func (r *SlotRepository) CreateDay(ctx context.Context, from, to time.Time, slots []models.Slot) (created int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin materialize tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing int
	if err = tx.GetContext(ctx, &existing,
		`SELECT COUNT(*) FROM slots WHERE slot_at >= $1 AND slot_at < $2`, from, to); err != nil {
		return 0, fmt.Errorf("count existing slots: %w", err)
	}
	if existing > 0 {
		err = ErrSlotsExist
		return 0, err
	}

	const insert = `
INSERT INTO slots (id, slot_at, duration_minutes, course_name, faculty_name, room_number, is_bookable, is_booked, booked_by, version, created_at)
VALUES (:id, :slot_at, :duration_minutes, :course_name, :faculty_name, :room_number, :is_bookable, :is_booked, :booked_by, :version, :created_at)`

	now := time.Now().UTC()
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.Version == 0 {
			slot.Version = 1
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err = tx.NamedExecContext(ctx, insert, slot); err != nil {
			return 0, fmt.Errorf("insert slot: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit materialize tx: %w", err)
	}
	return len(slots), nil
}

// DeleteByRange removes every slot inside [from, to) and reports how many went.
func (r *SlotRepository) DeleteByRange(ctx context.Context, from, to time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE slot_at >= $1 AND slot_at < $2`, from, to)
	if err != nil {
		return 0, fmt.Errorf("delete slots by range: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete slots by range: %w", err)
	}
	return deleted, nil
}

// UpdateBooking is the compare-and-swap primitive behind book/cancel. The
// write lands only when the stored version still matches the one read; a
// zero-row result means another writer interleaved.
func (r *SlotRepository) UpdateBooking(ctx context.Context, id string, version int64, state models.BookingState) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE slots SET is_booked = $1, booked_by = $2, faculty_name = $3, version = version + 1
WHERE id = $4 AND version = $5`,
		state.IsBooked, state.BookedBy, state.FacultyName, id, version)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// UpdateFields applies an admin edit. Last-writer-wins: no version guard, but
// the version still advances so in-flight bookings observe the change.
func (r *SlotRepository) UpdateFields(ctx context.Context, id string, upd models.SlotUpdate) error {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.CourseName != nil {
		add("course_name", nullIfEmpty(*upd.CourseName))
	}
	if upd.FacultyName != nil {
		add("faculty_name", nullIfEmpty(*upd.FacultyName))
	}
	if upd.RoomNumber != nil {
		add("room_number", nullIfEmpty(*upd.RoomNumber))
	}
	if upd.DurationMinutes != nil {
		add("duration_minutes", *upd.DurationMinutes)
	}
	if upd.IsBookable != nil {
		add("is_bookable", *upd.IsBookable)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "version = version + 1")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE slots SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update slot fields: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update slot fields: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a single slot.
func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
