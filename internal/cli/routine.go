package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/routinely/internal/models"
)

type RoutineCmd struct {
	Add        RoutineAddCmd        `cmd:"" help:"Add a routine."`
	Edit       RoutineEditCmd       `cmd:"" help:"Edit a routine."`
	Delete     RoutineDeleteCmd     `cmd:"" help:"Delete one or more routines and their instances."`
	List       RoutineListCmd       `cmd:"" help:"List routines."`
	Toggle     RoutineToggleCmd     `cmd:"" help:"Pause or resume a routine."`
	Categories RoutineCategoriesCmd `cmd:"" help:"List categories of active routines."`
	Search     RoutineSearchCmd     `cmd:"" help:"Search active routines by title or description."`
}

type RoutineAddCmd struct {
	Title       string `arg:"" help:"Routine title."`
	Day         string `short:"d" help:"Day of week (monday..sunday or mon..sun)." required:""`
	Start       string `short:"s" help:"Start time (HH:MM)." required:""`
	End         string `short:"e" help:"End time (HH:MM)." required:""`
	Category    string `short:"c" help:"Category."`
	Color       string `help:"Palette name or #RRGGBB."`
	Description string `help:"Description."`
	Weeks       int    `short:"w" help:"Recur for this many weeks only (0 = forever)."`
}

func (c *RoutineAddCmd) Validate() error {
	if c.Weeks < 0 {
		return fmt.Errorf("weeks must not be negative")
	}
	return nil
}

func (c *RoutineAddCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	day, err := parseDay(c.Day)
	if err != nil {
		return err
	}

	data := models.CreateRoutineData{
		Title:       c.Title,
		Description: optional(c.Description),
		DayOfWeek:   day,
		StartTime:   c.Start,
		EndTime:     c.End,
		Category:    c.Category,
		Color:       c.Color,
	}
	if c.Weeks > 0 {
		data.RecurringWeeks = &c.Weeks
	}

	r, err := ctx.Service.Create(ctx.Ctx, ctx.UserID(), data)
	if err != nil {
		return err
	}
	ctx.printf("Added routine: %s (ID: %s)\n", r.Title, r.ID)
	return nil
}

type RoutineEditCmd struct {
	ID          string `arg:"" help:"Routine ID."`
	Title       string `help:"New title."`
	Day         string `short:"d" help:"New day of week."`
	Start       string `short:"s" help:"New start time (HH:MM)."`
	End         string `short:"e" help:"New end time (HH:MM)."`
	Category    string `short:"c" help:"New category."`
	Color       string `help:"New color."`
	Description string `help:"New description."`
	Weeks       *int   `short:"w" help:"New recurrence length in weeks."`
}

func (c *RoutineEditCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	data := models.UpdateRoutineData{
		Title:          optional(c.Title),
		Description:    optional(c.Description),
		StartTime:      optional(c.Start),
		EndTime:        optional(c.End),
		Category:       optional(c.Category),
		Color:          optional(c.Color),
		RecurringWeeks: c.Weeks,
	}
	if c.Day != "" {
		day, err := parseDay(c.Day)
		if err != nil {
			return err
		}
		data.DayOfWeek = &day
	}
	if data.IsEmpty() {
		return fmt.Errorf("nothing to update; pass at least one field flag")
	}

	r, err := ctx.Service.Update(ctx.Ctx, ctx.UserID(), c.ID, data)
	if err != nil {
		return err
	}
	ctx.printf("Updated routine: %s\n", r.Title)
	return nil
}

type RoutineDeleteCmd struct {
	IDs []string `arg:"" name:"id" help:"Routine IDs."`
	Yes bool     `short:"y" help:"Skip the confirmation prompt."`
}

func (c *RoutineDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	if len(c.IDs) == 1 {
		r, err := ctx.Service.Get(ctx.Ctx, ctx.UserID(), c.IDs[0])
		if err != nil {
			return err
		}
		if !c.Yes {
			ok, err := ctx.Confirm(fmt.Sprintf("Delete %q and all of its instances?", r.Title))
			if err != nil || !ok {
				ctx.println("Delete cancelled.")
				return err
			}
		}
		if err := ctx.Service.Delete(ctx.Ctx, ctx.UserID(), r.ID); err != nil {
			return err
		}
		ctx.printf("Deleted routine: %s (ID: %s)\n", r.Title, r.ID)
		return nil
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %d routines and all of their instances?", len(c.IDs)))
		if err != nil || !ok {
			ctx.println("Delete cancelled.")
			return err
		}
	}
	ctx.PerformAutomaticBackup()
	n, err := ctx.Service.BulkDelete(ctx.Ctx, ctx.UserID(), c.IDs)
	if err != nil {
		return err
	}
	ctx.printf("Deleted %d of %d routines.\n", n, len(c.IDs))
	return nil
}

type RoutineListCmd struct {
	Day      string `short:"d" help:"Only routines on this day."`
	Category string `short:"c" help:"Only routines in this category."`
	Active   bool   `help:"Only active routines." xor:"active"`
	Paused   bool   `help:"Only paused routines." xor:"active"`
	Search   string `help:"Match title or description."`
	IDs      bool   `help:"Show routine IDs."`
}

func (c *RoutineListCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	filters := models.RoutineFilters{Category: c.Category, Search: c.Search}
	if c.Day != "" {
		day, err := parseDay(c.Day)
		if err != nil {
			return err
		}
		filters.DayOfWeek = &day
	}
	if c.Active || c.Paused {
		active := c.Active
		filters.IsActive = &active
	}

	routines, err := ctx.Service.List(ctx.Ctx, ctx.UserID(), filters)
	if err != nil {
		return err
	}
	ctx.printf("%s", renderRoutines(routines, c.IDs))
	return nil
}

type RoutineToggleCmd struct {
	ID string `arg:"" help:"Routine ID."`
}

func (c *RoutineToggleCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	r, err := ctx.Service.ToggleActive(ctx.Ctx, ctx.UserID(), c.ID)
	if err != nil {
		return err
	}
	state := "paused"
	if r.IsActive {
		state = "resumed"
	}
	ctx.printf("Routine %s: %s\n", state, r.Title)
	return nil
}

type RoutineCategoriesCmd struct{}

func (c *RoutineCategoriesCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	cats, err := ctx.Service.Categories(ctx.Ctx, ctx.UserID())
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		ctx.println("No categories.")
		return nil
	}
	ctx.println(strings.Join(cats, "\n"))
	return nil
}

type RoutineSearchCmd struct {
	Term     string `arg:"" help:"Text to search for."`
	Category string `short:"c" help:"Only routines in this category."`
}

func (c *RoutineSearchCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	var (
		routines []models.Routine
		err      error
	)
	if c.Category != "" {
		routines, err = ctx.Service.ListByCategory(ctx.Ctx, ctx.UserID(), c.Category)
		routines = filterTerm(routines, c.Term)
	} else {
		routines, err = ctx.Service.Search(ctx.Ctx, ctx.UserID(), c.Term)
	}
	if err != nil {
		return err
	}
	ctx.printf("%s", renderRoutines(routines, true))
	return nil
}

func filterTerm(routines []models.Routine, term string) []models.Routine {
	term = strings.ToLower(term)
	out := routines[:0]
	for _, r := range routines {
		desc := ""
		if r.Description != nil {
			desc = *r.Description
		}
		if strings.Contains(strings.ToLower(r.Title), term) || strings.Contains(strings.ToLower(desc), term) {
			out = append(out, r)
		}
	}
	return out
}
