package models

import "time"

// Slot is a concrete, bookable appointment slot materialized for a calendar date.
type Slot struct {
	ID              string    `db:"id" json:"id"`
	SlotAt          time.Time `db:"slot_at" json:"slot_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CourseName      *string   `db:"course_name" json:"course_name,omitempty"`
	FacultyName     *string   `db:"faculty_name" json:"faculty_name,omitempty"`
	RoomNumber      *string   `db:"room_number" json:"room_number,omitempty"`
	IsBookable      bool      `db:"is_bookable" json:"is_bookable"`
	IsBooked        bool      `db:"is_booked" json:"is_booked"`
	BookedBy        *string   `db:"booked_by" json:"booked_by,omitempty"`
	Version         int64     `db:"version" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// SlotUpdate carries admin field edits. Nil pointers leave the column untouched;
// these edits are last-writer-wins and carry no version guard.
type SlotUpdate struct {
	CourseName      *string `json:"course_name"`
	FacultyName     *string `json:"faculty_name"`
	RoomNumber      *string `json:"room_number"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gt=0"`
	IsBookable      *bool   `json:"is_bookable"`
}

// Empty reports whether the update would touch no columns.
func (u SlotUpdate) Empty() bool {
	return u.CourseName == nil && u.FacultyName == nil && u.RoomNumber == nil &&
		u.DurationMinutes == nil && u.IsBookable == nil
}

// BookingState is the atomically written portion of a slot.
type BookingState struct {
	IsBooked    bool
	BookedBy    *string
	FacultyName *string
}
