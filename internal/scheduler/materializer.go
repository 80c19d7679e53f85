package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

// Store is the subset of storage.Provider the materializer needs.
type Store interface {
	ListRoutines(ctx context.Context, userID string, filters models.RoutineFilters) ([]models.Routine, error)
	InstanceExists(ctx context.Context, routineID, date string) (bool, error)
	InsertInstance(ctx context.Context, inst models.RoutineInstance) (bool, error)
}

// Candidate is a routine occurrence that should exist as an instance.
type Candidate struct {
	Routine models.Routine
	Date    string
}

// Materializer turns weekly routine templates into dated instances.
type Materializer struct {
	store Store
	clock utils.Clock
	log   *log.Logger
}

func New(store Store, clock utils.Clock) *Materializer {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &Materializer{
		store: store,
		clock: clock,
		log:   logger.Component("scheduler"),
	}
}

// Candidates pairs each active routine with every date in dates that falls
// on its weekday, on or after the day it was created, and before its
// recurrence end.
func Candidates(routines []models.Routine, dates []time.Time) []Candidate {
	var out []Candidate
	for _, date := range dates {
		day := utils.WeekdayOf(date)
		for _, r := range routines {
			if !r.IsActive || r.DayOfWeek != day {
				continue
			}
			if created := r.CreatedDate(); !created.IsZero() && date.Before(created) {
				continue
			}
			if end := r.RecurrenceEnd(); !end.IsZero() && !date.Before(end) {
				continue
			}
			out = append(out, Candidate{Routine: r, Date: utils.IsoDate(date)})
		}
	}
	return out
}

// MaterializeWeek creates the missing scheduled instances for the seven days
// starting at weekStart and returns how many were created. Rerunning it for
// the same week creates nothing. Failures on individual rows are logged and
// skipped; only a failure to read routines is returned.
func (m *Materializer) MaterializeWeek(ctx context.Context, userID, weekStart string) (int, error) {
	start, err := utils.ParseDate(weekStart)
	if err != nil {
		return 0, err
	}

	routines, err := m.store.ListRoutines(ctx, userID, models.ActiveOnly())
	if err != nil {
		return 0, apperrors.Store("load active routines", err)
	}

	created := 0
	for _, c := range Candidates(routines, utils.WeekDates(start)) {
		if err := ctx.Err(); err != nil {
			return created, apperrors.Store("materialize week", err)
		}

		exists, err := m.store.InstanceExists(ctx, c.Routine.ID, c.Date)
		if err != nil {
			m.log.Warn("skipping instance, existence check failed", "routine_id", c.Routine.ID, "date", c.Date, "err", err)
			continue
		}
		if exists {
			continue
		}

		ok, err := m.store.InsertInstance(ctx, models.RoutineInstance{
			ID:           uuid.NewString(),
			RoutineID:    c.Routine.ID,
			UserID:       userID,
			InstanceDate: c.Date,
			Status:       models.StatusScheduled,
		})
		if err != nil {
			m.log.Warn("skipping instance, insert failed", "routine_id", c.Routine.ID, "date", c.Date, "err", err)
			continue
		}
		if ok {
			created++
		}
	}

	m.log.Debug("materialized week", "user_id", userID, "week_start", weekStart, "created", created)
	return created, nil
}

// EnsureDate materializes the Monday-start week containing date.
func (m *Materializer) EnsureDate(ctx context.Context, userID, date string) (int, error) {
	d, err := utils.ParseDate(date)
	if err != nil {
		return 0, err
	}
	return m.MaterializeWeek(ctx, userID, utils.IsoDate(utils.StartOfWeek(d)))
}

// MaterializeCurrentWeek materializes the week containing today.
func (m *Materializer) MaterializeCurrentWeek(ctx context.Context, userID string) (int, error) {
	return m.EnsureDate(ctx, userID, utils.Today(m.clock))
}
