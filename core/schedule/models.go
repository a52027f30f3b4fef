package schedule

import (
	"fmt"
	"time"

	"github.com/youbihi/attest/core"
)

type DayType string

const (
	DayTypeWorkday DayType = "WORKDAY"
	DayTypeWeekend DayType = "WEEKEND"
	DayTypeHoliday DayType = "HOLIDAY"
)

type SessionType string

const (
	SessionRegular   SessionType = "REGULAR"
	SessionCancelled SessionType = "CANCELLED"
	SessionMakeup    SessionType = "MAKEUP"
)

// TimeOfDay is a wall-clock time without a date, minute resolution.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseTimeOfDay parses "15:04".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, core.InvalidInputErr(fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) Before(u TimeOfDay) bool { return t.Minutes() < u.Minutes() }

// On returns the instant at this time of day on the given date, UTC.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TimeTable is one recurring weekly schedule row of a course assignment.
// Weekday is nil until the administration sets it.
type TimeTable struct {
	ID           string        `json:"id"`
	AssignmentID string        `json:"assignment_id"`
	Weekday      *time.Weekday `json:"weekday"`
	StartTime    TimeOfDay     `json:"start_time"`
	EndTime      TimeOfDay     `json:"end_time"`
	CreatedAt    time.Time     `json:"created_at"` // UTC
	UpdatedAt    time.Time     `json:"updated_at"` // UTC
}

// Validate enforces start < end.
func (tt TimeTable) Validate() error {
	if !tt.StartTime.Before(tt.EndTime) {
		return core.NewValidationError(
			core.InvalidInputErr("start time must be before end time"),
			core.FieldError{Field: "start_time", Error: "must be before end_time"},
		)
	}
	return nil
}

// CalendarDay is the record of one concrete date's classification.
// At most one entry exists per date.
type CalendarDay struct {
	ID          string       `json:"id"`
	Date        time.Time    `json:"date"` // UTC midnight
	Weekday     time.Weekday `json:"weekday"`
	DayType     DayType      `json:"day_type"`
	HolidayName string       `json:"holiday_name,omitempty"`
	CreatedAt   time.Time    `json:"created_at"` // UTC
}

// Session is one concrete, dated class meeting derived from a
// TimeTable x CalendarDay pairing. The time span is copied at generation
// time so later timetable edits do not retroactively move past sessions.
// At most one session exists per (TimeTable, CalendarDay) pair.
type Session struct {
	ID            string      `json:"id"`
	TimeTableID   string      `json:"timetable_id"`
	CalendarDayID string      `json:"calendar_day_id"`
	Date          time.Time   `json:"date"` // UTC midnight, copy of the calendar date
	StartTime     TimeOfDay   `json:"start_time"`
	EndTime       TimeOfDay   `json:"end_time"`
	Type          SessionType `json:"type"`
	Code          string      `json:"-"`
	CodeIssuedAt  time.Time   `json:"code_issued_at"` // zero when no code issued
	SectionIDs    []string    `json:"section_ids"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
}

func (s Session) HasCode() bool { return s.Code != "" }

func (s Session) StartsAt() time.Time { return s.StartTime.On(s.Date) }

func (s Session) EndsAt() time.Time { return s.EndTime.On(s.Date) }

// ExpectsSection reports whether the given section is part of the
// session's roster.
func (s Session) ExpectsSection(sectionID string) bool {
	for _, id := range s.SectionIDs {
		if id == sectionID {
			return true
		}
	}
	return false
}
