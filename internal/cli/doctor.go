package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
	"github.com/julianstephens/routinely/internal/validation"
)

type DoctorCmd struct {
	Days int `help:"How many days of instances to check." default:"90"`
}

type check struct {
	name    string
	warn    bool
	needsDB bool
	run     func(*Context) error
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	reachable := false
	checks := []check{
		{name: "Database reachable", run: func(c *Context) error {
			if err := c.Load(); err != nil {
				return fmt.Errorf("failed to load database: %w", err)
			}
			reachable = true
			return nil
		}},
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Backups present", warn: true, run: checkBackupsPresent},
		{name: "Routine times", needsDB: true, run: checkRoutineTimes},
		{name: "Duplicate instances", needsDB: true, run: func(c *Context) error {
			return checkDuplicateInstances(c, cmd.Days)
		}},
		{name: "Clock/timezone", run: func(c *Context) error {
			return checkClock(c.Clock.Now())
		}},
	}

	hasError := false
	for _, ch := range checks {
		if ch.needsDB && !reachable {
			ctx.printf("⊘ %s: SKIPPED (database not reachable)\n", ch.name)
			continue
		}
		err := ch.run(ctx)
		switch {
		case err == nil:
			ctx.printf("✓ %s: OK\n", ch.name)
		case ch.warn:
			ctx.printf("⚠ %s: WARNING\n   %v\n", ch.name, err)
		default:
			ctx.printf("❌ %s: FAIL\n   Error: %v\n", ch.name, err)
			hasError = true
		}
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	current, latest, err := ctx.Store.SchemaVersion(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d; run 'routinely migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'routinely backup create'")
	}
	return nil
}

func checkRoutineTimes(ctx *Context) error {
	routines, err := ctx.Service.List(ctx.Ctx, ctx.UserID(), models.RoutineFilters{})
	if err != nil {
		return err
	}
	bad := 0
	for _, r := range routines {
		if err := validation.ValidateRoutine(r); err != nil {
			ctx.printf("   %s %q: %v\n", r.DayOfWeek.Short(), r.Title, err)
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d routine(s) failed validation", bad)
	}
	return nil
}

// checkDuplicateInstances looks for two instances of one routine on one
// date, which the unique constraint should make impossible.
func checkDuplicateInstances(ctx *Context, days int) error {
	today, _ := utils.ParseDate(utils.Today(ctx.Clock))
	from := utils.IsoDate(utils.AddDays(today, -days))
	to := utils.IsoDate(utils.AddDays(today, 7))

	instances, err := ctx.Store.ListInstancesInRange(ctx.Ctx, ctx.UserID(), from, to)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(instances))
	dupes := 0
	for _, inst := range instances {
		key := inst.RoutineID + "/" + inst.InstanceDate
		if seen[key] {
			dupes++
		}
		seen[key] = true
	}
	if dupes > 0 {
		return fmt.Errorf("%d duplicate instance(s) between %s and %s", dupes, from, to)
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
