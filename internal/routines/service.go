// Package routines implements routine management, the instance status
// tracker, and the weekly and daily read models.
package routines

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/routinely/internal/constants"
	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/utils"
	"github.com/julianstephens/routinely/internal/validation"
)

// Materializer creates scheduled instances. MaterializeWeek covers the seven
// days starting at start; EnsureDate covers the Monday-start week containing date.
type Materializer interface {
	MaterializeWeek(ctx context.Context, userID, start string) (int, error)
	EnsureDate(ctx context.Context, userID, date string) (int, error)
}

// StatsComputer aggregates completion statistics.
type StatsComputer interface {
	ComputeStats(ctx context.Context, userID, from, to string) models.RoutineStats
}

type Options struct {
	// UpcomingLimit caps DayRoutineView.Upcoming. Zero means the default.
	UpcomingLimit int
	// StrictTransitions forbids leaving a terminal instance status.
	StrictTransitions bool
}

type Service struct {
	store        storage.Provider
	materializer Materializer
	stats        StatsComputer
	clock        utils.Clock
	policy       TransitionPolicy
	upcoming     int
	log          *log.Logger
}

func New(store storage.Provider, m Materializer, stats StatsComputer, clock utils.Clock, opts Options) *Service {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	upcoming := opts.UpcomingLimit
	if upcoming <= 0 {
		upcoming = constants.DefaultUpcomingLimit
	}
	var policy TransitionPolicy = PermissivePolicy{}
	if opts.StrictTransitions {
		policy = StrictPolicy{}
	}
	return &Service{
		store:        store,
		materializer: m,
		stats:        stats,
		clock:        clock,
		policy:       policy,
		upcoming:     upcoming,
		log:          logger.Component("routines"),
	}
}

// Create stores a new active routine and materializes the next seven days,
// starting today, so its next occurrence shows up immediately. A
// materialization failure is logged and does not undo the insert.
func (s *Service) Create(ctx context.Context, userID string, data models.CreateRoutineData) (models.Routine, error) {
	if err := validation.ValidateCreate(data); err != nil {
		return models.Routine{}, err
	}

	color := data.Color
	if color == "" {
		color = models.DefaultColor
	}
	r := models.Routine{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          strings.TrimSpace(data.Title),
		Description:    data.Description,
		DayOfWeek:      data.DayOfWeek,
		StartTime:      data.StartTime,
		EndTime:        data.EndTime,
		Category:       strings.TrimSpace(data.Category),
		Color:          color,
		IsActive:       true,
		RecurringWeeks: data.RecurringWeeks,
	}

	created, err := s.store.InsertRoutine(ctx, r)
	if err != nil {
		return models.Routine{}, err
	}
	s.log.Info("routine created", "routine_id", created.ID, "day", created.DayOfWeek, "start", created.StartTime)

	if s.materializer != nil {
		if _, err := s.materializer.MaterializeWeek(ctx, userID, utils.Today(s.clock)); err != nil {
			s.log.Warn("failed to materialize upcoming week", "routine_id", created.ID, "err", err)
		}
	}
	return created, nil
}

// Update applies a partial update. Existing instances are left as they are.
func (s *Service) Update(ctx context.Context, userID, id string, data models.UpdateRoutineData) (models.Routine, error) {
	current, err := s.store.GetRoutine(ctx, userID, id)
	if err != nil {
		return models.Routine{}, err
	}
	if data.IsEmpty() {
		return current, nil
	}

	merged := data.Apply(current)
	merged.Title = strings.TrimSpace(merged.Title)
	if err := validation.ValidateRoutine(merged); err != nil {
		return models.Routine{}, err
	}

	updated, err := s.store.UpdateRoutine(ctx, merged)
	if err != nil {
		return models.Routine{}, err
	}
	s.log.Debug("routine updated", "routine_id", id)
	return updated, nil
}

// Delete removes a routine together with all of its instances.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteRoutine(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info("routine deleted", "routine_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (models.Routine, error) {
	return s.store.GetRoutine(ctx, userID, id)
}

// List returns routines ordered by day (Monday first), start time and creation time.
func (s *Service) List(ctx context.Context, userID string, filters models.RoutineFilters) ([]models.Routine, error) {
	if filters.DayOfWeek != nil && !filters.DayOfWeek.Valid() {
		return nil, apperrors.Validationf("day_of_week", "%q is not a day of the week", *filters.DayOfWeek)
	}
	return s.store.ListRoutines(ctx, userID, filters)
}

// ListByCategory returns the active routines in category.
func (s *Service) ListByCategory(ctx context.Context, userID, category string) ([]models.Routine, error) {
	filters := models.ActiveOnly()
	filters.Category = category
	return s.store.ListRoutines(ctx, userID, filters)
}

// Search matches term against the title and description of active routines.
func (s *Service) Search(ctx context.Context, userID, term string) ([]models.Routine, error) {
	filters := models.ActiveOnly()
	filters.Search = term
	return s.store.ListRoutines(ctx, userID, filters)
}

func (s *Service) ToggleActive(ctx context.Context, userID, id string) (models.Routine, error) {
	current, err := s.store.GetRoutine(ctx, userID, id)
	if err != nil {
		return models.Routine{}, err
	}
	active := !current.IsActive
	return s.Update(ctx, userID, id, models.UpdateRoutineData{IsActive: &active})
}

// Categories returns the sorted distinct categories of active routines.
func (s *Service) Categories(ctx context.Context, userID string) ([]string, error) {
	return s.store.ListCategories(ctx, userID)
}

// BulkUpdate applies updates in order and stops at the first failure,
// returning the routines updated so far.
func (s *Service) BulkUpdate(ctx context.Context, userID string, updates []models.RoutineUpdate) ([]models.Routine, error) {
	out := make([]models.Routine, 0, len(updates))
	for _, u := range updates {
		r, err := s.Update(ctx, userID, u.ID, u.Data)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// BulkDelete removes the given routines and reports how many existed.
func (s *Service) BulkDelete(ctx context.Context, userID string, ids []string) (int, error) {
	n, err := s.store.DeleteRoutines(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	s.log.Info("routines deleted", "requested", len(ids), "deleted", n)
	return n, nil
}
