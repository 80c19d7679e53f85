package models

import (
	"fmt"
	"time"
)

// InstanceStatus is the lifecycle state of a routine instance.
type InstanceStatus string

const (
	StatusScheduled InstanceStatus = "scheduled"
	StatusCompleted InstanceStatus = "completed"
	StatusSkipped   InstanceStatus = "skipped"
	StatusCancelled InstanceStatus = "cancelled"
)

// InstanceStatuses lists every status value.
var InstanceStatuses = []InstanceStatus{StatusScheduled, StatusCompleted, StatusSkipped, StatusCancelled}

func (s InstanceStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the instance lifecycle.
func (s InstanceStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped || s == StatusCancelled
}

// ParseInstanceStatus parses a status name.
func ParseInstanceStatus(s string) (InstanceStatus, error) {
	status := InstanceStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("invalid instance status: %q", s)
	}
	return status, nil
}

// RoutineInstance is one dated occurrence of a routine.
type RoutineInstance struct {
	ID              string         `json:"id"`
	RoutineID       string         `json:"routine_id"`
	UserID          string         `json:"user_id"`
	InstanceDate    string         `json:"instance_date"` // YYYY-MM-DD format
	Status          InstanceStatus `json:"status"`
	ActualStartTime *string        `json:"actual_start_time,omitempty"` // HH:MM format
	ActualEndTime   *string        `json:"actual_end_time,omitempty"`   // HH:MM format
	Notes           *string        `json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// Routine is resolved by a join at read time and is never persisted.
	Routine *Routine `json:"routine,omitempty"`
}

// InstanceUpdate sets an instance status. Nil optional fields are left unchanged.
type InstanceUpdate struct {
	Status          InstanceStatus `json:"status"`
	Notes           *string        `json:"notes,omitempty"`
	ActualStartTime *string        `json:"actual_start_time,omitempty"`
	ActualEndTime   *string        `json:"actual_end_time,omitempty"`
}

// Apply returns a copy of inst with the update merged in.
func (u InstanceUpdate) Apply(inst RoutineInstance) RoutineInstance {
	inst.Status = u.Status
	if u.Notes != nil {
		inst.Notes = u.Notes
	}
	if u.ActualStartTime != nil {
		inst.ActualStartTime = u.ActualStartTime
	}
	if u.ActualEndTime != nil {
		inst.ActualEndTime = u.ActualEndTime
	}
	return inst
}
