package models

import (
	"testing"
	"time"
)

func TestDaysOfWeekOrder(t *testing.T) {
	if DaysOfWeek[0] != Monday {
		t.Errorf("expected monday first, got %s", DaysOfWeek[0])
	}
	if DaysOfWeek[len(DaysOfWeek)-1] != Sunday {
		t.Errorf("expected sunday last, got %s", DaysOfWeek[len(DaysOfWeek)-1])
	}
	for i, day := range DaysOfWeek {
		if day.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", day, day.Index(), i)
		}
	}
	if DayOfWeek("funday").Index() != -1 {
		t.Error("unknown day should have index -1")
	}
}

func TestParseDayOfWeek(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DayOfWeek
		wantErr bool
	}{
		{name: "full name", input: "monday", want: Monday},
		{name: "mixed case", input: "Wednesday", want: Wednesday},
		{name: "abbreviation", input: "sun", want: Sunday},
		{name: "abbreviation upper", input: "THU", want: Thursday},
		{name: "padded", input: "  friday ", want: Friday},
		{name: "two letters", input: "mo", wantErr: true},
		{name: "unknown", input: "someday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDayOfWeek(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDayOfWeek(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDayOfWeek(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDayOfWeekShort(t *testing.T) {
	if got := Saturday.Short(); got != "Sat" {
		t.Errorf("Saturday.Short() = %q, want %q", got, "Sat")
	}
}

func TestUpdateRoutineDataApply(t *testing.T) {
	base := Routine{
		ID:        "r1",
		Title:     "Gym",
		DayOfWeek: Monday,
		StartTime: "07:00",
		EndTime:   "08:00",
		Category:  "health",
		IsActive:  true,
	}

	title := "Morning gym"
	inactive := false
	updated := UpdateRoutineData{Title: &title, IsActive: &inactive}.Apply(base)

	if updated.Title != "Morning gym" {
		t.Errorf("expected title to change, got %q", updated.Title)
	}
	if updated.IsActive {
		t.Error("expected routine to be inactive")
	}
	if updated.StartTime != "07:00" || updated.Category != "health" {
		t.Error("untouched fields should be preserved")
	}
	if base.Title != "Gym" {
		t.Error("Apply must not mutate the original routine")
	}
	if !(UpdateRoutineData{}).IsEmpty() {
		t.Error("zero update should be empty")
	}
}

func TestRoutineRecurrenceEnd(t *testing.T) {
	weeks := 2
	r := Routine{
		CreatedAt:      time.Date(2024, 1, 1, 18, 30, 0, 0, time.Local),
		RecurringWeeks: &weeks,
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if got := r.RecurrenceEnd(); !got.Equal(want) {
		t.Errorf("RecurrenceEnd() = %v, want %v", got, want)
	}

	r.RecurringWeeks = nil
	if !r.RecurrenceEnd().IsZero() {
		t.Error("unbounded routine should have zero recurrence end")
	}
}

func TestRoutineCreatedDateUsesLocalZone(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("UTC-5", -5*60*60)
	t.Cleanup(func() { time.Local = orig })

	// 02:00 UTC on Monday is still Sunday evening locally, the way a
	// Postgres session in UTC would return a routine created Sunday night.
	weeks := 1
	r := Routine{
		CreatedAt:      time.Date(2024, 1, 8, 2, 0, 0, 0, time.UTC),
		RecurringWeeks: &weeks,
	}
	if got, want := r.CreatedDate(), time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("CreatedDate() = %v, want %v", got, want)
	}
	if got, want := r.RecurrenceEnd(), time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("RecurrenceEnd() = %v, want %v", got, want)
	}

	if !(Routine{}).CreatedDate().IsZero() {
		t.Error("unset CreatedAt should give a zero date")
	}
}

func TestInstanceUpdateApply(t *testing.T) {
	note := "felt good"
	start := "07:05"
	inst := RoutineInstance{ID: "i1", Status: StatusScheduled, ActualStartTime: &start}

	updated := InstanceUpdate{Status: StatusCompleted, Notes: &note}.Apply(inst)
	if updated.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}
	if updated.Notes == nil || *updated.Notes != note {
		t.Error("expected notes to be set")
	}
	if updated.ActualStartTime == nil || *updated.ActualStartTime != "07:05" {
		t.Error("omitted fields should be left unchanged")
	}
}

func TestInstanceStatus(t *testing.T) {
	if StatusScheduled.IsTerminal() {
		t.Error("scheduled should not be terminal")
	}
	for _, s := range []InstanceStatus{StatusCompleted, StatusSkipped, StatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if _, err := ParseInstanceStatus("done"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := CompletionRate(tt.completed, tt.total); got != tt.want {
			t.Errorf("CompletionRate(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestColors(t *testing.T) {
	if !IsValidColor("Blue") || !IsValidColor("#a1b2c3") {
		t.Error("expected palette name and hex color to be valid")
	}
	if IsValidColor("#abc") || IsValidColor("chartreuse") {
		t.Error("expected short hex and unknown names to be invalid")
	}
	if got := ResolveColor("green"); got != Palette["green"] {
		t.Errorf("ResolveColor(green) = %q", got)
	}
}

func TestNewWeeklyRoutineView(t *testing.T) {
	view := NewWeeklyRoutineView()
	if len(view) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(view))
	}
	for _, day := range DaysOfWeek {
		if view[day] == nil {
			t.Errorf("bucket for %s should be non-nil", day)
		}
	}
	if view.Count() != 0 {
		t.Errorf("expected empty view, got %d", view.Count())
	}
}
