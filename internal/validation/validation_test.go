package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

func intPtr(n int) *int { return &n }

func validRoutine() models.Routine {
	return models.Routine{
		ID:        "r1",
		Title:     "Gym",
		DayOfWeek: models.Monday,
		StartTime: "07:00",
		EndTime:   "08:00",
		Color:     models.DefaultColor,
		IsActive:  true,
	}
}

func TestValidateRoutine(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *models.Routine)
		wantField string
	}{
		{"valid", func(r *models.Routine) {}, ""},
		{"palette color", func(r *models.Routine) { r.Color = "green" }, ""},
		{"bounded", func(r *models.Routine) { r.RecurringWeeks = intPtr(1) }, ""},
		{"blank title", func(r *models.Routine) { r.Title = "   " }, "title"},
		{"bad day", func(r *models.Routine) { r.DayOfWeek = "funday" }, "day_of_week"},
		{"unpadded start", func(r *models.Routine) { r.StartTime = "7:00" }, "start_time"},
		{"bad end", func(r *models.Routine) { r.EndTime = "25:00" }, "end_time"},
		{"equal times", func(r *models.Routine) { r.EndTime = "07:00" }, "end_time"},
		{"end before start", func(r *models.Routine) { r.StartTime = "09:00" }, "end_time"},
		{"zero weeks", func(r *models.Routine) { r.RecurringWeeks = intPtr(0) }, "recurring_weeks"},
		{"bad color", func(r *models.Routine) { r.Color = "#12345" }, "color"},
		{"empty color", func(r *models.Routine) { r.Color = "" }, "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRoutine()
			tt.mutate(&r)
			err := ValidateRoutine(r)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not mention %s", err, tt.wantField)
			}
		})
	}
}

func TestValidateCreateDefaultsColor(t *testing.T) {
	data := models.CreateRoutineData{Title: "Read", DayOfWeek: models.Sunday, StartTime: "20:00", EndTime: "21:00"}
	if err := ValidateCreate(data); err != nil {
		t.Errorf("empty color should be accepted: %v", err)
	}
	data.Color = "chartreuse"
	if err := ValidateCreate(data); !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for unknown color, got %v", err)
	}
}

func TestValidateInstanceUpdate(t *testing.T) {
	good := "07:15"
	bad := "7:15"
	tests := []struct {
		name    string
		update  models.InstanceUpdate
		wantErr bool
	}{
		{"completed", models.InstanceUpdate{Status: models.StatusCompleted}, false},
		{"with actuals", models.InstanceUpdate{Status: models.StatusCompleted, ActualStartTime: &good, ActualEndTime: &good}, false},
		{"unknown status", models.InstanceUpdate{Status: "done"}, true},
		{"bad actual start", models.InstanceUpdate{Status: models.StatusCompleted, ActualStartTime: &bad}, true},
		{"bad actual end", models.InstanceUpdate{Status: models.StatusSkipped, ActualEndTime: &bad}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInstanceUpdate(tt.update)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInstanceUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func routineAt(id, title string, day models.DayOfWeek, start, end string) models.Routine {
	return models.Routine{ID: id, Title: title, DayOfWeek: day, StartTime: start, EndTime: end, IsActive: true}
}

func conflictTypes(result ValidationResult) []ConflictType {
	var out []ConflictType
	for _, c := range result.Conflicts {
		out = append(out, c.Type)
	}
	return out
}

func TestValidateRoutines_DisjointDays(t *testing.T) {
	result := New().ValidateRoutines([]models.Routine{
		routineAt("a", "Standup", models.Monday, "09:00", "10:00"),
		routineAt("b", "Standup", models.Tuesday, "09:00", "10:00"),
	})
	if result.HasConflicts() {
		t.Errorf("expected no conflicts across different days, got: %s", result.FormatReport())
	}
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected empty report: %q", result.FormatReport())
	}
}

func TestValidateRoutines_Overlap(t *testing.T) {
	result := New().ValidateRoutines([]models.Routine{
		routineAt("b", "Review", models.Wednesday, "09:30", "10:30"),
		routineAt("a", "Standup", models.Wednesday, "09:00", "10:00"),
		routineAt("c", "Lunch", models.Wednesday, "10:30", "11:00"),
	})

	if diff := cmp.Diff([]ConflictType{ConflictOverlappingRoutines}, conflictTypes(result)); diff != "" {
		t.Fatalf("conflicts mismatch (-want +got):\n%s", diff)
	}
	c := result.Conflicts[0]
	if diff := cmp.Diff([]string{"a", "b"}, c.RoutineIDs); diff != "" {
		t.Errorf("routine ids mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(result.FormatReport(), `Wed: "Standup" (09:00-10:00) overlaps "Review" (09:30-10:30)`) {
		t.Errorf("unexpected report:\n%s", result.FormatReport())
	}
}

func TestValidateRoutines_DuplicateTitleAndInactive(t *testing.T) {
	inactive := routineAt("c", "gym", models.Friday, "12:00", "13:00")
	inactive.IsActive = false

	result := New().ValidateRoutines([]models.Routine{
		routineAt("a", "Gym", models.Friday, "07:00", "08:00"),
		routineAt("b", "gym ", models.Friday, "18:00", "19:00"),
		inactive,
	})

	if diff := cmp.Diff([]ConflictType{ConflictDuplicateTitle}, conflictTypes(result)); diff != "" {
		t.Fatalf("conflicts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, result.Conflicts[0].RoutineIDs); diff != "" {
		t.Errorf("duplicate ids mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRoutines_InvalidTime(t *testing.T) {
	result := New().ValidateRoutines([]models.Routine{
		routineAt("a", "Broken", models.Saturday, "10:00", "09:00"),
		routineAt("b", "Fine", models.Saturday, "09:30", "09:45"),
	})
	if diff := cmp.Diff([]ConflictType{ConflictInvalidTime}, conflictTypes(result)); diff != "" {
		t.Errorf("conflicts mismatch (-want +got):\n%s", diff)
	}
}
