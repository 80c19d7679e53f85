package cli

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/validation"
)

type ValidateCmd struct {
	Strict bool `help:"Exit with an error when conflicts are found."`
}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	routines, err := ctx.Service.List(ctx.Ctx, ctx.UserID(), models.RoutineFilters{})
	if err != nil {
		return fmt.Errorf("failed to load routines: %w", err)
	}

	ctx.println("Validating routines...")
	result := validation.New().ValidateRoutines(routines)
	ctx.println()
	ctx.println(result.FormatReport())

	if cmd.Strict && result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found", len(result.Conflicts))
	}
	return nil
}
