package cli

import (
	"encoding/json"
	"fmt"
)

type DebugCmd struct {
	DBPath       DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpRoutine  DebugDumpRoutineCmd  `cmd:"" help:"Dump routine data as JSON."`
	DumpDay      DebugDumpDayCmd      `cmd:"" help:"Dump a day view as JSON."`
	DumpSchedule DebugDumpScheduleCmd `cmd:"" help:"Dump the weekly view as JSON."`
}

func (c *Context) printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	c.println(string(data))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	return ctx.printJSON(map[string]string{
		"path":   ctx.Store.GetConfigPath(),
		"config": ctx.ConfigPath,
	})
}

type DebugDumpRoutineCmd struct {
	ID string `arg:"" help:"ID of the routine to dump."`
}

func (cmd *DebugDumpRoutineCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	r, err := ctx.Service.Get(ctx.Ctx, ctx.UserID(), cmd.ID)
	if err != nil {
		return err
	}
	return ctx.printJSON(r)
}

type DebugDumpDayCmd struct {
	Date string `arg:"" optional:"" help:"Date to dump (YYYY-MM-DD or 'today')." default:"today"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	date, err := resolveDate(cmd.Date, ctx.Clock)
	if err != nil {
		return err
	}
	view, err := ctx.Service.BuildDayView(ctx.Ctx, ctx.UserID(), date)
	if err != nil {
		return err
	}
	return ctx.printJSON(view)
}

type DebugDumpScheduleCmd struct{}

func (cmd *DebugDumpScheduleCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	view, err := ctx.Service.BuildWeeklyView(ctx.Ctx, ctx.UserID())
	if err != nil {
		return err
	}
	return ctx.printJSON(view)
}
