// Package stats computes routine completion statistics over a date range.
package stats

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

// Store is the aggregation query the aggregator delegates to.
type Store interface {
	Stats(ctx context.Context, userID, from, to string) (models.RoutineStats, error)
}

type Aggregator struct {
	store      Store
	clock      utils.Clock
	windowDays int
	log        *log.Logger
}

// New returns an aggregator whose default range is the windowDays days
// ending today. A non-positive window falls back to the default.
func New(store Store, clock utils.Clock, windowDays int) *Aggregator {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if windowDays <= 0 {
		windowDays = constants.DefaultStatsWindowDays
	}
	return &Aggregator{
		store:      store,
		clock:      clock,
		windowDays: windowDays,
		log:        logger.Component("stats"),
	}
}

// DefaultRange returns the inclusive window ending today.
func (a *Aggregator) DefaultRange() (from, to string) {
	today := utils.DateOnly(a.clock.Now())
	return utils.IsoDate(utils.AddDays(today, -(a.windowDays - 1))), utils.IsoDate(today)
}

// ComputeStats never fails. An invalid range or a store error yields
// models.EmptyStats and is logged.
func (a *Aggregator) ComputeStats(ctx context.Context, userID, from, to string) models.RoutineStats {
	defFrom, defTo := a.DefaultRange()
	if from == "" {
		from = defFrom
	}
	if to == "" {
		to = defTo
	}

	if !utils.ValidateDateFormat(from) || !utils.ValidateDateFormat(to) || from > to {
		a.log.Warn("invalid stats range", "from", from, "to", to)
		return models.EmptyStats()
	}

	stats, err := a.store.Stats(ctx, userID, from, to)
	if err != nil {
		a.log.Error("failed to compute stats", "user_id", userID, "from", from, "to", to, "err", err)
		return models.EmptyStats()
	}
	if stats.ByCategory == nil {
		stats.ByCategory = map[string]int{}
	}
	if stats.ByDay == nil {
		stats.ByDay = map[models.DayOfWeek]int{}
	}
	stats.CompletionRate = models.CompletionRate(stats.CompletedInstances, stats.TotalInstances)
	return stats
}
