package storage

import (
	"context"

	"github.com/julianstephens/routinely/internal/models"
)

// Provider is the persistence boundary for routines and their instances.
// Every query is scoped to a single user; rows owned by other users are
// reported as not found.
//
// Missing rows are returned as *errors.NotFoundError and driver failures as
// *errors.StoreError.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Routines
	// InsertRoutine stamps created_at and updated_at when they are unset.
	InsertRoutine(ctx context.Context, r models.Routine) (models.Routine, error)
	GetRoutine(ctx context.Context, userID, id string) (models.Routine, error)
	// UpdateRoutine persists every mutable field of r and stamps updated_at.
	UpdateRoutine(ctx context.Context, r models.Routine) (models.Routine, error)
	DeleteRoutine(ctx context.Context, userID, id string) error
	DeleteRoutines(ctx context.Context, userID string, ids []string) (int, error)
	// ListRoutines orders by weekday (Monday first), then start time, then creation time.
	ListRoutines(ctx context.Context, userID string, filters models.RoutineFilters) ([]models.Routine, error)
	// ListCategories returns the distinct non-empty categories of active routines.
	ListCategories(ctx context.Context, userID string) ([]string, error)

	// Instances
	InstanceExists(ctx context.Context, routineID, date string) (bool, error)
	// InsertInstance is a no-op returning false when an instance for the
	// same routine and date already exists.
	InsertInstance(ctx context.Context, inst models.RoutineInstance) (bool, error)
	GetInstance(ctx context.Context, userID, id string) (models.RoutineInstance, error)
	UpdateInstance(ctx context.Context, inst models.RoutineInstance) (models.RoutineInstance, error)
	// ListInstancesByDate returns the date's instances joined with their
	// routine, ordered by the routine start time.
	ListInstancesByDate(ctx context.Context, userID, date string) ([]models.RoutineInstance, error)
	ListInstancesInRange(ctx context.Context, userID, from, to string) ([]models.RoutineInstance, error)

	// Stats aggregates instances dated within [from, to]. CompletionRate is
	// left for the caller to derive.
	Stats(ctx context.Context, userID, from, to string) (models.RoutineStats, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers backed by a versioned schema.
type Migrator interface {
	Migrate(ctx context.Context) (int, error)
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}
