package routines

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

func sortByStart(routines []models.Routine) {
	sort.SliceStable(routines, func(i, j int) bool {
		return routines[i].StartTime < routines[j].StartTime
	})
}

// BuildWeeklyView buckets active routines by day. Every day is present,
// and each bucket is ordered by start time.
func (s *Service) BuildWeeklyView(ctx context.Context, userID string) (models.WeeklyRoutineView, error) {
	routines, err := s.store.ListRoutines(ctx, userID, models.ActiveOnly())
	if err != nil {
		return nil, err
	}

	view := models.NewWeeklyRoutineView()
	for _, r := range routines {
		if _, ok := view[r.DayOfWeek]; !ok {
			continue
		}
		view[r.DayOfWeek] = append(view[r.DayOfWeek], r)
	}
	for _, day := range models.DaysOfWeek {
		sortByStart(view[day])
	}
	return view, nil
}

// Upcoming returns the first limit routines starting strictly after now (HH:MM).
// routines must already be in start time order.
func Upcoming(routines []models.Routine, now string, limit int) []models.Routine {
	out := []models.Routine{}
	for _, r := range routines {
		if len(out) == limit {
			break
		}
		if r.StartTime > now {
			out = append(out, r)
		}
	}
	return out
}

// BuildDayView assembles the routines and instances for date. It only
// reads; instances appear once the date's week has been materialized.
func (s *Service) BuildDayView(ctx context.Context, userID, date string) (models.DayRoutineView, error) {
	day, err := utils.WeekdayOfDate(date)
	if err != nil {
		return models.DayRoutineView{}, err
	}

	filters := models.ActiveOnly()
	filters.DayOfWeek = &day
	routines, err := s.store.ListRoutines(ctx, userID, filters)
	if err != nil {
		return models.DayRoutineView{}, err
	}
	sortByStart(routines)

	instances, err := s.store.ListInstancesByDate(ctx, userID, date)
	if err != nil {
		return models.DayRoutineView{}, err
	}

	return models.DayRoutineView{
		Date:      date,
		DayOfWeek: day,
		Routines:  routines,
		Instances: instances,
		Upcoming:  Upcoming(routines, utils.TimeOfDay(s.clock.Now()), s.upcoming),
	}, nil
}

// TodayView materializes the current week if needed and returns today's view.
func (s *Service) TodayView(ctx context.Context, userID string) (models.DayRoutineView, error) {
	today := utils.Today(s.clock)
	s.ensure(ctx, userID, today)
	return s.BuildDayView(ctx, userID, today)
}

func (s *Service) ensure(ctx context.Context, userID, date string) {
	if s.materializer == nil {
		return
	}
	if _, err := s.materializer.EnsureDate(ctx, userID, date); err != nil {
		s.log.Warn("failed to materialize week", "date", date, "err", err)
	}
}

// Dashboard materializes the current week, then loads the weekly view,
// today's view and the default stats window concurrently.
func (s *Service) Dashboard(ctx context.Context, userID string) (models.Dashboard, error) {
	today := utils.Today(s.clock)
	s.ensure(ctx, userID, today)

	var dash models.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		week, err := s.BuildWeeklyView(gctx, userID)
		dash.Week = week
		return err
	})
	g.Go(func() error {
		day, err := s.BuildDayView(gctx, userID, today)
		dash.Today = day
		return err
	})
	g.Go(func() error {
		if s.stats == nil {
			dash.Stats = models.EmptyStats()
			return nil
		}
		dash.Stats = s.stats.ComputeStats(gctx, userID, "", "")
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Dashboard{}, err
	}
	return dash, nil
}
