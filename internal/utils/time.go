package utils

import (
	"strings"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

// Clock supplies the current instant. Views and materialization read "now"
// through a Clock so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// weekdays maps time.Weekday (0=Sunday) onto the routine day enumeration.
var weekdays = [7]models.DayOfWeek{
	models.Sunday,
	models.Monday,
	models.Tuesday,
	models.Wednesday,
	models.Thursday,
	models.Friday,
	models.Saturday,
}

// IsoDate formats t as YYYY-MM-DD.
func IsoDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, apperrors.Validationf("date", "%q is not in YYYY-MM-DD format", s)
	}
	return t, nil
}

// ParseTime parses a zero-padded 24-hour HH:MM string.
func ParseTime(s string) (time.Time, error) {
	if !ValidateTimeFormat(s) {
		return time.Time{}, apperrors.Validationf("time", "%q is not in HH:MM format", s)
	}
	return time.Parse(constants.TimeFormat, s)
}

// ValidateTimeFormat requires exactly HH:MM so that string order matches time order.
func ValidateTimeFormat(s string) bool {
	if len(s) != len(constants.TimeFormat) {
		return false
	}
	_, err := time.Parse(constants.TimeFormat, s)
	return err == nil
}

// ValidateDateFormat checks for a well-formed YYYY-MM-DD date.
func ValidateDateFormat(s string) bool {
	_, err := ParseDate(s)
	return err == nil && len(s) == len(constants.DateFormat)
}

// WeekdayOf maps a calendar date onto the routine day enumeration.
func WeekdayOf(t time.Time) models.DayOfWeek {
	return weekdays[t.Weekday()]
}

// WeekdayFromIndex maps a calendar weekday index (0=Sunday .. 6=Saturday).
func WeekdayFromIndex(i int) (models.DayOfWeek, error) {
	if i < 0 || i > 6 {
		return "", apperrors.Validationf("weekday", "index %d out of range 0-6", i)
	}
	return weekdays[i], nil
}

// WeekdayOfDate maps a YYYY-MM-DD string onto the routine day enumeration.
func WeekdayOfDate(s string) (models.DayOfWeek, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return WeekdayOf(t), nil
}

// CompareTime orders two HH:MM strings. Both must be well formed.
func CompareTime(a, b string) (int, error) {
	if !ValidateTimeFormat(a) {
		return 0, apperrors.Validationf("time", "%q is not in HH:MM format", a)
	}
	if !ValidateTimeFormat(b) {
		return 0, apperrors.Validationf("time", "%q is not in HH:MM format", b)
	}
	return strings.Compare(a, b), nil
}

// TimeOfDay returns the HH:MM wall-clock time of t.
func TimeOfDay(t time.Time) string {
	return t.Format(constants.TimeFormat)
}

// DateOnly truncates t to midnight UTC of its local calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// StartOfWeek returns the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	d := DateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7
	return AddDays(d, -offset)
}

// WeekDates returns the seven consecutive dates beginning at start.
func WeekDates(start time.Time) []time.Time {
	start = DateOnly(start)
	dates := make([]time.Time, constants.DaysPerWeek)
	for i := range dates {
		dates[i] = AddDays(start, i)
	}
	return dates
}

// Today returns the clock's calendar date as YYYY-MM-DD.
func Today(c Clock) string {
	return IsoDate(c.Now())
}
