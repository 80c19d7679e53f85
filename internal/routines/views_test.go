package routines

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

func TestUpcoming(t *testing.T) {
	var routines []models.Routine
	for _, start := range []string{"08:00", "11:00", "13:00", "15:00", "18:00"} {
		routines = append(routines, models.Routine{Title: start, StartTime: start})
	}

	tests := []struct {
		name  string
		now   string
		limit int
		want  []string
	}{
		{"noon", "12:00", 3, []string{"13:00", "15:00", "18:00"}},
		{"early morning truncated", "07:00", 3, []string{"08:00", "11:00", "13:00"}},
		{"strictly after", "13:00", 3, []string{"15:00", "18:00"}},
		{"late evening", "19:00", 3, []string{}},
		{"custom limit", "00:00", 1, []string{"08:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Upcoming(routines, tt.now, tt.limit)
			if diff := cmp.Diff(tt.want, titles(got)); diff != "" {
				t.Errorf("upcoming mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildWeeklyView(t *testing.T) {
	ctx := context.Background()
	f := setup(t, Options{})
	f.create(t, "Mon 9", models.Monday, "09:00", "10:00")
	f.create(t, "Mon 8:30", models.Monday, "08:30", "09:00")
	f.create(t, "Thu", models.Thursday, "18:00", "19:00")
	paused := f.create(t, "Paused", models.Monday, "06:00", "07:00")
	if _, err := f.svc.ToggleActive(ctx, testUser, paused.ID); err != nil {
		t.Fatal(err)
	}

	view, err := f.svc.BuildWeeklyView(ctx, testUser)
	if err != nil {
		t.Fatalf("BuildWeeklyView failed: %v", err)
	}
	if len(view) != 7 {
		t.Errorf("expected 7 days, got %d", len(view))
	}
	for _, day := range models.DaysOfWeek {
		if view[day] == nil {
			t.Errorf("day %s should be an empty list, not nil", day)
		}
	}
	if diff := cmp.Diff([]string{"Mon 8:30", "Mon 9"}, titles(view[models.Monday])); diff != "" {
		t.Errorf("monday mismatch (-want +got):\n%s", diff)
	}
	if view.Count() != 3 {
		t.Errorf("Count() = %d, want 3", view.Count())
	}
}

func TestBuildDayViewDoesNotMaterialize(t *testing.T) {
	ctx := context.Background()
	f := setup(t, Options{UpcomingLimit: 2})

	// Insert through the store so no materialization runs.
	for _, start := range []string{"08:00", "11:00", "13:00", "15:00"} {
		if _, err := f.store.InsertRoutine(ctx, models.Routine{
			ID: uuid.NewString(), UserID: testUser, Title: "Wed " + start, DayOfWeek: models.Wednesday,
			StartTime: start, EndTime: "23:00", Color: models.DefaultColor, IsActive: true,
		}); err != nil {
			t.Fatal(err)
		}
	}

	view, err := f.svc.BuildDayView(ctx, testUser, "2024-01-03")
	if err != nil {
		t.Fatalf("BuildDayView failed: %v", err)
	}
	if view.DayOfWeek != models.Wednesday || view.Date != "2024-01-03" {
		t.Errorf("unexpected view header: %s %s", view.Date, view.DayOfWeek)
	}
	if len(view.Routines) != 4 {
		t.Errorf("expected 4 routines, got %d", len(view.Routines))
	}
	if len(view.Instances) != 0 {
		t.Errorf("BuildDayView must not materialize, got %d instances", len(view.Instances))
	}
	if diff := cmp.Diff([]string{"Wed 13:00", "Wed 15:00"}, titles(view.Upcoming)); diff != "" {
		t.Errorf("upcoming mismatch (-want +got):\n%s", diff)
	}

	today, err := f.svc.TodayView(ctx, testUser)
	if err != nil {
		t.Fatalf("TodayView failed: %v", err)
	}
	if len(today.Instances) != 4 {
		t.Errorf("TodayView should materialize today's instances, got %d", len(today.Instances))
	}
	if _, ok := today.InstanceFor(today.Routines[0].ID); !ok {
		t.Error("expected an instance for the first routine")
	}

	if _, err := f.svc.BuildDayView(ctx, testUser, "2024-02-30"); !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for a bad date, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		strict  bool
		steps   []models.InstanceStatus
		wantErr bool
	}{
		{"complete", false, []models.InstanceStatus{models.StatusCompleted}, false},
		{"permissive terminal to terminal", false, []models.InstanceStatus{models.StatusCompleted, models.StatusSkipped}, false},
		{"permissive back to scheduled", false, []models.InstanceStatus{models.StatusCancelled, models.StatusScheduled}, true},
		{"permissive scheduled to scheduled", false, []models.InstanceStatus{models.StatusScheduled}, false},
		{"strict complete", true, []models.InstanceStatus{models.StatusCompleted}, false},
		{"strict same status", true, []models.InstanceStatus{models.StatusCompleted, models.StatusCompleted}, false},
		{"strict terminal to terminal", true, []models.InstanceStatus{models.StatusCompleted, models.StatusSkipped}, true},
		{"strict back to scheduled", true, []models.InstanceStatus{models.StatusSkipped, models.StatusScheduled}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, Options{StrictTransitions: tt.strict})
			f.create(t, "Gym", models.Monday, "07:00", "08:00")
			insts, err := f.svc.InstancesByDate(ctx, testUser, "2024-01-08")
			if err != nil || len(insts) != 1 {
				t.Fatalf("expected one instance, got %d (%v)", len(insts), err)
			}
			id := insts[0].ID

			var last error
			for _, status := range tt.steps {
				_, last = f.svc.SetStatus(ctx, testUser, id, models.InstanceUpdate{Status: status})
				if last != nil {
					break
				}
			}
			if (last != nil) != tt.wantErr {
				t.Fatalf("SetStatus error = %v, wantErr %v", last, tt.wantErr)
			}
			if tt.wantErr && !apperrors.IsValidation(last) {
				t.Errorf("expected validation error, got %v", last)
			}
		})
	}
}

func TestSetStatusMergesOptionalFields(t *testing.T) {
	ctx := context.Background()
	f := setup(t, Options{})
	f.create(t, "Gym", models.Monday, "07:00", "08:00")
	insts, _ := f.svc.InstancesByDate(ctx, testUser, "2024-01-08")
	id := insts[0].ID

	inst, err := f.svc.SetStatus(ctx, testUser, id, models.InstanceUpdate{
		Status:          models.StatusCompleted,
		Notes:           ptr("good session"),
		ActualStartTime: ptr("07:10"),
	})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	inst, err = f.svc.SetStatus(ctx, testUser, id, models.InstanceUpdate{
		Status:        models.StatusCompleted,
		ActualEndTime: ptr("08:05"),
	})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if inst.Notes == nil || *inst.Notes != "good session" || inst.ActualStartTime == nil || *inst.ActualStartTime != "07:10" {
		t.Errorf("earlier fields should be kept: %+v", inst)
	}
	if inst.ActualEndTime == nil || *inst.ActualEndTime != "08:05" {
		t.Errorf("actual end not stored: %v", inst.ActualEndTime)
	}

	cleared, err := f.svc.ClearNotes(ctx, testUser, id)
	if err != nil {
		t.Fatal(err)
	}
	if cleared.Notes != nil || cleared.Status != models.StatusCompleted {
		t.Errorf("ClearNotes should drop notes and keep status: %+v", cleared)
	}

	if _, err := f.svc.SetStatus(ctx, testUser, id, models.InstanceUpdate{Status: "finished"}); !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, testUser, id, models.InstanceUpdate{Status: models.StatusCompleted, ActualStartTime: ptr("7:10")}); !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for malformed time, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, testUser, "missing", models.InstanceUpdate{Status: models.StatusSkipped}); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, "someone-else", id, models.InstanceUpdate{Status: models.StatusSkipped}); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found for another user, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := setup(t, Options{})
	gym := f.create(t, "Gym", models.Wednesday, "07:00", "08:00")
	f.create(t, "Review", models.Wednesday, "16:00", "17:00")
	f.create(t, "Swim", models.Friday, "07:00", "08:00")
	insts, _ := f.svc.InstancesByDate(ctx, testUser, "2024-01-03")
	for _, inst := range insts {
		if inst.RoutineID != gym.ID {
			continue
		}
		if _, err := f.svc.SetStatus(ctx, testUser, inst.ID, models.InstanceUpdate{Status: models.StatusCompleted}); err != nil {
			t.Fatal(err)
		}
	}

	dash, err := f.svc.Dashboard(ctx, testUser)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if dash.Week.Count() != 3 {
		t.Errorf("week count = %d, want 3", dash.Week.Count())
	}
	if dash.Today.Date != "2024-01-03" || len(dash.Today.Instances) != 2 {
		t.Errorf("unexpected today view: %+v", dash.Today)
	}
	if diff := cmp.Diff([]string{"Review"}, titles(dash.Today.Upcoming)); diff != "" {
		t.Errorf("upcoming mismatch (-want +got):\n%s", diff)
	}
	if dash.Stats.TotalInstances != 2 || dash.Stats.CompletedInstances != 1 || dash.Stats.CompletionRate != 50 {
		t.Errorf("unexpected stats: %+v", dash.Stats)
	}
}

func TestDashboardCancelledContext(t *testing.T) {
	f := setup(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.svc.Dashboard(ctx, testUser); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestStrictPolicy(t *testing.T) {
	p := StrictPolicy{}
	for _, from := range models.InstanceStatuses {
		for _, to := range models.InstanceStatuses {
			want := from == to || (from == models.StatusScheduled && to.IsTerminal())
			if got := p.Allow(from, to); got != want {
				t.Errorf("StrictPolicy.Allow(%s, %s) = %v, want %v", from, to, got, want)
			}
			permissive := !(from.IsTerminal() && to == models.StatusScheduled)
			if got := (PermissivePolicy{}).Allow(from, to); got != permissive {
				t.Errorf("PermissivePolicy.Allow(%s, %s) = %v, want %v", from, to, got, permissive)
			}
		}
	}
}
