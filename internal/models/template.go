package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday names used as template keys, Sunday first to match time.Weekday.
var weekdayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// WeekdayName returns the lowercase template key for a date's weekday.
func WeekdayName(t time.Time) string {
	return weekdayNames[int(t.Weekday())]
}

// ValidWeekday reports whether day is one of the seven template keys.
func ValidWeekday(day string) bool {
	for _, name := range weekdayNames {
		if name == day {
			return true
		}
	}
	return false
}

// NormalizeWeekday lowercases and trims a weekday key.
func NormalizeWeekday(day string) string {
	return strings.ToLower(strings.TrimSpace(day))
}

// TemplateEntry is one slot blueprint inside a weekday template.
type TemplateEntry struct {
	StartTime       string `json:"start_time" validate:"required,len=5"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	CourseName      string `json:"course_name,omitempty"`
	FacultyName     string `json:"faculty_name,omitempty"`
	Room            string `json:"room,omitempty"`
	IsBookable      bool   `json:"is_bookable"`
}

// TemplateEntries is the ordered entry list, stored as a JSONB column.
type TemplateEntries []TemplateEntry

// Value implements driver.Valuer.
func (e TemplateEntries) Value() (driver.Value, error) {
	if e == nil {
		e = TemplateEntries{}
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *TemplateEntries) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*e = TemplateEntries{}
		return nil
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("unsupported template entries type %T", src)
	}
}

// ScheduleTemplate holds the slot layout for one weekday.
// An empty entry list is valid and materializes zero slots.
type ScheduleTemplate struct {
	DayOfWeek string          `db:"day_of_week" json:"day_of_week"`
	Entries   TemplateEntries `db:"entries" json:"entries"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
