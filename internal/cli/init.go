package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/routinely/internal/config"
)

type InitCmd struct {
	WriteConfig bool `help:"Write a config file with the current settings if none exists." default:"true" negatable:""`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}
	ctx.printf("Initialized routinely storage at: %s\n", ctx.Store.GetConfigPath())

	if !c.WriteConfig || ctx.ConfigPath == "" {
		return nil
	}
	path := config.ExpandHome(ctx.ConfigPath)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}
	if err := config.Save(path, ctx.Config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	ctx.printf("Wrote config: %s\n", path)
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	applied, err := ctx.Store.Migrate(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	current, latest, err := ctx.Store.SchemaVersion(ctx.Ctx)
	if err != nil {
		return err
	}
	if applied == 0 {
		ctx.printf("Schema is up to date (version %d).\n", current)
		return nil
	}
	ctx.printf("Applied %d migration(s); schema version %d of %d.\n", applied, current, latest)
	return nil
}
