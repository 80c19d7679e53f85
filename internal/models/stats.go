package models

import "math"

// RoutineStats summarizes routine completion over a date range.
type RoutineStats struct {
	TotalRoutines      int               `json:"total_routines"`
	TotalInstances     int               `json:"total_instances"`
	CompletedInstances int               `json:"completed_instances"`
	CompletionRate     int               `json:"completion_rate"` // percent, 0-100
	ByCategory         map[string]int    `json:"by_category"`
	ByDay              map[DayOfWeek]int `json:"by_day"`
}

// EmptyStats returns zeroed stats with non-nil maps.
func EmptyStats() RoutineStats {
	return RoutineStats{
		ByCategory: map[string]int{},
		ByDay:      map[DayOfWeek]int{},
	}
}

// CompletionRate returns completed/total as a rounded percentage, or 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
