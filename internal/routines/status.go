package routines

import (
	"context"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
	"github.com/julianstephens/routinely/internal/validation"
)

// TransitionPolicy decides whether an instance may move between statuses.
type TransitionPolicy interface {
	Allow(from, to models.InstanceStatus) bool
}

// PermissivePolicy lets a status be overwritten with any other, except that
// an instance never returns to scheduled once it has left it. Moving between
// terminal statuses is allowed.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(from, to models.InstanceStatus) bool {
	return !(from.IsTerminal() && to == models.StatusScheduled)
}

// StrictPolicy only lets a scheduled instance move to a terminal status.
// Re-applying the current status is always allowed so notes and actual
// times can still be edited.
type StrictPolicy struct{}

func (StrictPolicy) Allow(from, to models.InstanceStatus) bool {
	if from == to {
		return true
	}
	return from == models.StatusScheduled && to.IsTerminal()
}

// SetStatus overwrites the status of an instance and merges the optional
// notes and actual times.
func (s *Service) SetStatus(ctx context.Context, userID, instanceID string, update models.InstanceUpdate) (models.RoutineInstance, error) {
	if err := validation.ValidateInstanceUpdate(update); err != nil {
		return models.RoutineInstance{}, err
	}

	current, err := s.store.GetInstance(ctx, userID, instanceID)
	if err != nil {
		return models.RoutineInstance{}, err
	}
	if !s.policy.Allow(current.Status, update.Status) {
		return models.RoutineInstance{}, apperrors.Validationf("status",
			"cannot change %s instance to %s", current.Status, update.Status)
	}

	updated, err := s.store.UpdateInstance(ctx, update.Apply(current))
	if err != nil {
		return models.RoutineInstance{}, err
	}
	s.log.Debug("instance status set", "instance_id", instanceID, "from", current.Status, "to", updated.Status)
	return updated, nil
}

// ClearNotes empties the notes of an instance and keeps its status.
func (s *Service) ClearNotes(ctx context.Context, userID, instanceID string) (models.RoutineInstance, error) {
	current, err := s.store.GetInstance(ctx, userID, instanceID)
	if err != nil {
		return models.RoutineInstance{}, err
	}
	current.Notes = nil
	return s.store.UpdateInstance(ctx, current)
}

func (s *Service) GetInstance(ctx context.Context, userID, instanceID string) (models.RoutineInstance, error) {
	return s.store.GetInstance(ctx, userID, instanceID)
}

// InstancesByDate returns the date's instances with their routines, in start time order.
func (s *Service) InstancesByDate(ctx context.Context, userID, date string) ([]models.RoutineInstance, error) {
	if !utils.ValidateDateFormat(date) {
		return nil, apperrors.Validationf("date", "%q is not in YYYY-MM-DD format", date)
	}
	return s.store.ListInstancesByDate(ctx, userID, date)
}
