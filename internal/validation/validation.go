package validation

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

// ValidateRoutine checks the fields of a routine about to be stored and
// returns the first problem as a *errors.ValidationError.
func ValidateRoutine(r models.Routine) error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Validation("title", "must not be empty")
	}
	if !r.DayOfWeek.Valid() {
		return apperrors.Validationf("day_of_week", "%q is not a day of the week", r.DayOfWeek)
	}
	if err := ValidateTimeRange(r.StartTime, r.EndTime); err != nil {
		return err
	}
	if r.RecurringWeeks != nil && *r.RecurringWeeks < 1 {
		return apperrors.Validationf("recurring_weeks", "must be at least 1, got %d", *r.RecurringWeeks)
	}
	if !models.IsValidColor(r.Color) {
		return apperrors.Validationf("color", "%q is not a palette color or #RRGGBB", r.Color)
	}
	return nil
}

// ValidateCreate checks user input for a new routine. An empty color is
// allowed and replaced with the default by the caller.
func ValidateCreate(data models.CreateRoutineData) error {
	r := models.Routine{
		Title:          data.Title,
		DayOfWeek:      data.DayOfWeek,
		StartTime:      data.StartTime,
		EndTime:        data.EndTime,
		Color:          data.Color,
		RecurringWeeks: data.RecurringWeeks,
	}
	if r.Color == "" {
		r.Color = models.DefaultColor
	}
	return ValidateRoutine(r)
}

// ValidateTimeRange requires two HH:MM times with start strictly before end.
func ValidateTimeRange(start, end string) error {
	if !utils.ValidateTimeFormat(start) {
		return apperrors.Validationf("start_time", "%q is not in HH:MM format", start)
	}
	if !utils.ValidateTimeFormat(end) {
		return apperrors.Validationf("end_time", "%q is not in HH:MM format", end)
	}
	if start >= end {
		return apperrors.Validationf("end_time", "must be after start time (%s-%s)", start, end)
	}
	return nil
}

// ValidateInstanceUpdate checks a status change before it is applied.
func ValidateInstanceUpdate(u models.InstanceUpdate) error {
	if !u.Status.Valid() {
		return apperrors.Validationf("status", "%q is not a valid status", u.Status)
	}
	if u.ActualStartTime != nil && !utils.ValidateTimeFormat(*u.ActualStartTime) {
		return apperrors.Validationf("actual_start_time", "%q is not in HH:MM format", *u.ActualStartTime)
	}
	if u.ActualEndTime != nil && !utils.ValidateTimeFormat(*u.ActualEndTime) {
		return apperrors.Validationf("actual_end_time", "%q is not in HH:MM format", *u.ActualEndTime)
	}
	return nil
}

// ConflictType names a class of problem found across a set of routines.
type ConflictType string

const (
	ConflictOverlappingRoutines ConflictType = "overlapping_routines"
	ConflictDuplicateTitle      ConflictType = "duplicate_title"
	ConflictInvalidTime         ConflictType = "invalid_time"
)

// Conflict is one problem in the routine set.
type Conflict struct {
	Type        ConflictType
	Description string
	Day         models.DayOfWeek
	Items       []string // routine titles involved
	RoutineIDs  []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Validator checks a set of routines for problems that single-routine
// validation cannot see.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateRoutines reports malformed times on any routine, and duplicate
// titles and overlapping time ranges among active routines on the same day.
func (v *Validator) ValidateRoutines(routines []models.Routine) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byDay := make(map[models.DayOfWeek][]models.Routine)
	for _, r := range routines {
		if err := ValidateTimeRange(r.StartTime, r.EndTime); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTime,
				Description: fmt.Sprintf("%s: \"%s\" %s", r.DayOfWeek.Short(), r.Title, err),
				Day:         r.DayOfWeek,
				Items:       []string{r.Title},
				RoutineIDs:  []string{r.ID},
			})
			continue
		}
		if r.IsActive {
			byDay[r.DayOfWeek] = append(byDay[r.DayOfWeek], r)
		}
	}

	for _, day := range models.DaysOfWeek {
		dayRoutines := byDay[day]
		result.Conflicts = append(result.Conflicts, duplicateTitles(day, dayRoutines)...)
		result.Conflicts = append(result.Conflicts, overlaps(day, dayRoutines)...)
	}
	return result
}

func duplicateTitles(day models.DayOfWeek, routines []models.Routine) []Conflict {
	ids := make(map[string][]string)
	var order []string
	for _, r := range routines {
		key := strings.ToLower(strings.TrimSpace(r.Title))
		if key == "" {
			continue
		}
		if _, seen := ids[key]; !seen {
			order = append(order, r.Title)
		}
		ids[key] = append(ids[key], r.ID)
	}

	var conflicts []Conflict
	for _, title := range order {
		dup := ids[strings.ToLower(strings.TrimSpace(title))]
		if len(dup) < 2 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:        ConflictDuplicateTitle,
			Description: fmt.Sprintf("%s: duplicate routine title \"%s\" (%d routines)", day.Short(), title, len(dup)),
			Day:         day,
			Items:       []string{title},
			RoutineIDs:  dup,
		})
	}
	return conflicts
}

// overlaps compares every pair; a day rarely holds more than a handful of routines.
func overlaps(day models.DayOfWeek, routines []models.Routine) []Conflict {
	sorted := make([]models.Routine, len(routines))
	copy(sorted, routines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	var conflicts []Conflict
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if b.StartTime >= a.EndTime {
				break
			}
			conflicts = append(conflicts, Conflict{
				Type: ConflictOverlappingRoutines,
				Description: fmt.Sprintf("%s: \"%s\" (%s-%s) overlaps \"%s\" (%s-%s)",
					day.Short(), a.Title, a.StartTime, a.EndTime, b.Title, b.StartTime, b.EndTime),
				Day:        day,
				Items:      []string{a.Title, b.Title},
				RoutineIDs: []string{a.ID, b.ID},
			})
		}
	}
	return conflicts
}
