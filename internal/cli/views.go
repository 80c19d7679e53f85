package cli

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/utils"
)

type WeekCmd struct{}

func (c *WeekCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	view, err := ctx.Service.BuildWeeklyView(ctx.Ctx, ctx.UserID())
	if err != nil {
		return err
	}
	ctx.printf("%s", renderWeek(view))
	return nil
}

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	view, err := ctx.Service.TodayView(ctx.Ctx, ctx.UserID())
	if err != nil {
		return err
	}
	ctx.printf("%s", renderDay(view))
	return nil
}

type DayCmd struct {
	Date        string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, yesterday, tomorrow)." default:"today"`
	Materialize bool   `short:"m" help:"Create missing instances for the date's week first."`
}

func (c *DayCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	date, err := resolveDate(c.Date, ctx.Clock)
	if err != nil {
		return err
	}
	if c.Materialize {
		if _, err := ctx.Materializer.EnsureDate(ctx.Ctx, ctx.UserID(), date); err != nil {
			return err
		}
	}
	view, err := ctx.Service.BuildDayView(ctx.Ctx, ctx.UserID(), date)
	if err != nil {
		return err
	}
	ctx.printf("%s", renderDay(view))
	return nil
}

type MaterializeCmd struct {
	Date  string `arg:"" optional:"" help:"Any date in the week to materialize." default:"today"`
	Weeks int    `short:"n" help:"Number of consecutive weeks." default:"1"`
}

func (c *MaterializeCmd) Validate() error {
	if c.Weeks < 1 {
		return fmt.Errorf("weeks must be at least 1")
	}
	return nil
}

func (c *MaterializeCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	date, err := resolveDate(c.Date, ctx.Clock)
	if err != nil {
		return err
	}
	t, err := utils.ParseDate(date)
	if err != nil {
		return err
	}

	start := utils.StartOfWeek(t)
	total := 0
	for i := 0; i < c.Weeks; i++ {
		week := utils.IsoDate(utils.AddDays(start, 7*i))
		n, err := ctx.Materializer.MaterializeWeek(ctx.Ctx, ctx.UserID(), week)
		if err != nil {
			return err
		}
		ctx.printf("Week of %s: %d instance(s) created\n", week, n)
		total += n
	}
	if c.Weeks > 1 {
		ctx.printf("Total: %d\n", total)
	}
	return nil
}

type StatsCmd struct {
	From string `help:"Start date (YYYY-MM-DD). Defaults to the configured window."`
	To   string `help:"End date (YYYY-MM-DD). Defaults to today."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	from, to := ctx.Stats.DefaultRange()
	if c.From != "" {
		from = c.From
	}
	if c.To != "" {
		to = c.To
	}
	if !utils.ValidateDateFormat(from) || !utils.ValidateDateFormat(to) {
		return fmt.Errorf("invalid date range %q..%q (expected YYYY-MM-DD)", from, to)
	}
	s := ctx.Stats.ComputeStats(ctx.Ctx, ctx.UserID(), from, to)
	ctx.printf("%s", renderStats(s, from, to))
	return nil
}

// DashboardCmd is the default command: the week, today and recent stats.
type DashboardCmd struct{}

func (c *DashboardCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	dash, err := ctx.Service.Dashboard(ctx.Ctx, ctx.UserID())
	if err != nil {
		return err
	}
	from, to := ctx.Stats.DefaultRange()
	ctx.printf("%s\n%s\n%s", renderDay(dash.Today), renderWeek(dash.Week), renderStats(dash.Stats, from, to))
	return nil
}
