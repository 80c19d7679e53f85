package cli

import "github.com/julianstephens/routinely/internal/models"

type InstanceCmd struct {
	List       InstanceListCmd       `cmd:"" help:"List instances for a date."`
	Done       InstanceDoneCmd       `cmd:"" help:"Mark an instance completed."`
	Skip       InstanceSkipCmd       `cmd:"" help:"Mark an instance skipped."`
	Cancel     InstanceCancelCmd     `cmd:"" help:"Mark an instance cancelled."`
	ResetNotes InstanceResetNotesCmd `cmd:"" help:"Clear the notes of an instance."`
}

type InstanceListCmd struct {
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, yesterday, tomorrow)." default:"today"`
}

func (c *InstanceListCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	date, err := resolveDate(c.Date, ctx.Clock)
	if err != nil {
		return err
	}
	instances, err := ctx.Service.InstancesByDate(ctx.Ctx, ctx.UserID(), date)
	if err != nil {
		return err
	}
	ctx.printf("%s", renderInstances(instances))
	return nil
}

// StatusFlags are shared by the commands that set a status.
type StatusFlags struct {
	ID    string `arg:"" help:"Instance ID."`
	Notes string `short:"n" help:"Notes to attach."`
	Start string `help:"Actual start time (HH:MM)."`
	End   string `help:"Actual end time (HH:MM)."`
}

func (f StatusFlags) apply(ctx *Context, status models.InstanceStatus) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	inst, err := ctx.Service.SetStatus(ctx.Ctx, ctx.UserID(), f.ID, models.InstanceUpdate{
		Status:          status,
		Notes:           optional(f.Notes),
		ActualStartTime: optional(f.Start),
		ActualEndTime:   optional(f.End),
	})
	if err != nil {
		return err
	}

	title := inst.RoutineID
	if r, err := ctx.Service.Get(ctx.Ctx, ctx.UserID(), inst.RoutineID); err == nil {
		title = r.Title
	}
	ctx.printf("%s %s on %s\n", statusBadge(inst.Status), title, inst.InstanceDate)
	return nil
}

type InstanceDoneCmd struct {
	StatusFlags `embed:""`
}

func (c *InstanceDoneCmd) Run(ctx *Context) error {
	return c.apply(ctx, models.StatusCompleted)
}

type InstanceSkipCmd struct {
	StatusFlags `embed:""`
}

func (c *InstanceSkipCmd) Run(ctx *Context) error {
	return c.apply(ctx, models.StatusSkipped)
}

type InstanceCancelCmd struct {
	StatusFlags `embed:""`
}

func (c *InstanceCancelCmd) Run(ctx *Context) error {
	return c.apply(ctx, models.StatusCancelled)
}

type InstanceResetNotesCmd struct {
	ID string `arg:"" help:"Instance ID."`
}

func (c *InstanceResetNotesCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	inst, err := ctx.Service.ClearNotes(ctx.Ctx, ctx.UserID(), c.ID)
	if err != nil {
		return err
	}
	ctx.printf("Cleared notes for instance %s (%s)\n", inst.ID, inst.Status)
	return nil
}

