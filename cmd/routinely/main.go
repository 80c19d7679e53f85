package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/config"
	"github.com/julianstephens/routinely/internal/constants"
	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" default:"${config_path}"`
	Database string `help:"SQLite path, PostgreSQL URL, or 'keyring'. Overrides the config file."`
	Debug    bool   `help:"Log debug output to stderr."`

	Dashboard   cli.DashboardCmd   `cmd:"" help:"Show today, the week and recent stats." default:"1"`
	Init        cli.InitCmd        `cmd:"" help:"Initialize routinely storage."`
	Migrate     cli.MigrateCmd     `cmd:"" help:"Apply pending schema migrations."`
	Doctor      cli.DoctorCmd      `cmd:"" help:"Run health checks."`
	Validate    cli.ValidateCmd    `cmd:"" help:"Report overlapping and duplicate routines."`
	Routine     cli.RoutineCmd     `cmd:"" help:"Manage routines."`
	Instance    cli.InstanceCmd    `cmd:"" help:"Track routine instances."`
	Week        cli.WeekCmd        `cmd:"" help:"Show the weekly schedule."`
	Today       cli.TodayCmd       `cmd:"" help:"Show today's routines."`
	Day         cli.DayCmd         `cmd:"" help:"Show the routines for a date."`
	Materialize cli.MaterializeCmd `cmd:"" help:"Create instances for a week."`
	Stats       cli.StatsCmd       `cmd:"" help:"Show completion statistics."`
	Backup      cli.BackupCmd      `cmd:"" help:"Manage SQLite backups."`
	Keyring     cli.KeyringCmd     `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Inspect     cli.DebugCmd       `cmd:"" help:"Dump internal data as JSON." hidden:""`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly routine planner and tracker"),
		kong.UsageOnError(),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.DefaultPath(),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: config.Dir(CLI.Config)}); err != nil {
		apperrors.Fatalf("failed to initialize logger: %v", err)
	}
	logger.Debug("starting", "command", kctx.Command(), "postgres", cfg.IsPostgres())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	app, err := cli.NewContext(ctx, cfg, CLI.Config)
	if err != nil {
		stop()
		apperrors.Fatal(err)
	}

	err = kctx.Run(app)
	if closeErr := app.Store.Close(); closeErr != nil {
		logger.Warn("failed to close store", "err", closeErr)
	}
	stop()
	apperrors.Fatal(err)
}
