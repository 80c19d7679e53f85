package models

import (
	"fmt"
	"strings"
	"time"
)

// DayOfWeek is the day a routine recurs on.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

// DaysOfWeek lists the days in display order. Monday is first and Sunday last.
var DaysOfWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the position of the day in DaysOfWeek, or -1 for an unknown day.
func (d DayOfWeek) Index() int {
	for i, day := range DaysOfWeek {
		if day == d {
			return i
		}
	}
	return -1
}

func (d DayOfWeek) Valid() bool {
	return d.Index() >= 0
}

// Short returns the three-letter abbreviation, e.g. "Mon".
func (d DayOfWeek) Short() string {
	if !d.Valid() {
		return string(d)
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:3])
}

// ParseDayOfWeek accepts full day names and three-letter abbreviations, case-insensitive.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, day := range DaysOfWeek {
		if s == string(day) || (len(s) == 3 && strings.HasPrefix(string(day), s)) {
			return day, nil
		}
	}
	return "", fmt.Errorf("invalid day of week: %q", s)
}

// Routine is a weekly-recurring template occupying one day and one time range.
type Routine struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	DayOfWeek      DayOfWeek `json:"day_of_week"`
	StartTime      string    `json:"start_time"` // HH:MM format
	EndTime        string    `json:"end_time"`   // HH:MM format
	Category       string    `json:"category"`
	Color          string    `json:"color"`
	IsActive       bool      `json:"is_active"`
	RecurringWeeks *int      `json:"recurring_weeks,omitempty"` // nil means unbounded
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateRoutineData holds the user-supplied fields of a new routine.
type CreateRoutineData struct {
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	DayOfWeek      DayOfWeek `json:"day_of_week"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	Category       string    `json:"category"`
	Color          string    `json:"color"`
	RecurringWeeks *int      `json:"recurring_weeks,omitempty"`
}

// UpdateRoutineData is a partial update. Nil fields are left unchanged.
type UpdateRoutineData struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	DayOfWeek      *DayOfWeek `json:"day_of_week,omitempty"`
	StartTime      *string    `json:"start_time,omitempty"`
	EndTime        *string    `json:"end_time,omitempty"`
	Category       *string    `json:"category,omitempty"`
	Color          *string    `json:"color,omitempty"`
	RecurringWeeks *int       `json:"recurring_weeks,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u UpdateRoutineData) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.DayOfWeek == nil &&
		u.StartTime == nil && u.EndTime == nil && u.Category == nil &&
		u.Color == nil && u.RecurringWeeks == nil && u.IsActive == nil
}

// Apply returns a copy of r with the non-nil fields of u applied.
func (u UpdateRoutineData) Apply(r Routine) Routine {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = u.Description
	}
	if u.DayOfWeek != nil {
		r.DayOfWeek = *u.DayOfWeek
	}
	if u.StartTime != nil {
		r.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		r.EndTime = *u.EndTime
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	if u.Color != nil {
		r.Color = *u.Color
	}
	if u.RecurringWeeks != nil {
		r.RecurringWeeks = u.RecurringWeeks
	}
	if u.IsActive != nil {
		r.IsActive = *u.IsActive
	}
	return r
}

// RoutineUpdate pairs a routine id with its partial update for bulk edits.
type RoutineUpdate struct {
	ID   string            `json:"id"`
	Data UpdateRoutineData `json:"data"`
}

// RoutineFilters narrows a routine listing. Zero values mean "no filter".
type RoutineFilters struct {
	DayOfWeek *DayOfWeek `json:"day_of_week,omitempty"`
	Category  string     `json:"category,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	Search    string     `json:"search,omitempty"`
}

// ActiveOnly returns filters restricted to active routines.
func ActiveOnly() RoutineFilters {
	active := true
	return RoutineFilters{IsActive: &active}
}

// CreatedDate returns the local calendar date of CreatedAt as UTC midnight,
// or the zero time when CreatedAt is unset. Postgres hands timestamps back in
// the session time zone, so the date is always taken in local time.
func (r Routine) CreatedDate() time.Time {
	if r.CreatedAt.IsZero() {
		return time.Time{}
	}
	local := r.CreatedAt.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// RecurrenceEnd returns the first date (UTC midnight) on which the routine no
// longer recurs, or the zero time when the routine is unbounded.
func (r Routine) RecurrenceEnd() time.Time {
	if r.RecurringWeeks == nil || r.CreatedAt.IsZero() {
		return time.Time{}
	}
	return r.CreatedDate().AddDate(0, 0, *r.RecurringWeeks*7)
}
