package models

// WeeklyRoutineView buckets active routines by day. All seven days are present.
type WeeklyRoutineView map[DayOfWeek][]Routine

// NewWeeklyRoutineView returns a view with an empty bucket for every day.
func NewWeeklyRoutineView() WeeklyRoutineView {
	view := make(WeeklyRoutineView, len(DaysOfWeek))
	for _, day := range DaysOfWeek {
		view[day] = []Routine{}
	}
	return view
}

// Count returns the number of routines across all days.
func (v WeeklyRoutineView) Count() int {
	n := 0
	for _, routines := range v {
		n += len(routines)
	}
	return n
}

// DayRoutineView is the read model for a single date.
type DayRoutineView struct {
	Date      string            `json:"date"`
	DayOfWeek DayOfWeek         `json:"day_of_week"`
	Routines  []Routine         `json:"routines"`
	Instances []RoutineInstance `json:"instances"`
	Upcoming  []Routine         `json:"upcoming"`
}

// InstanceFor returns the instance of the given routine, if one was materialized.
func (v DayRoutineView) InstanceFor(routineID string) (RoutineInstance, bool) {
	for _, inst := range v.Instances {
		if inst.RoutineID == routineID {
			return inst, true
		}
	}
	return RoutineInstance{}, false
}

// Dashboard bundles the read models loaded together for an overview screen.
type Dashboard struct {
	Week  WeeklyRoutineView `json:"week"`
	Today DayRoutineView    `json:"today"`
	Stats RoutineStats      `json:"stats"`
}
