package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/config"
	"github.com/julianstephens/routinely/internal/keyring"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/routines"
	"github.com/julianstephens/routinely/internal/scheduler"
	"github.com/julianstephens/routinely/internal/stats"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/storage/postgres"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
	"github.com/julianstephens/routinely/internal/utils"
)

// KeyringSource as the configured database reads the PostgreSQL
// connection string from the OS keyring.
const KeyringSource = "keyring"

// Store is what the commands need from a backend: the provider operations
// plus migration control.
type Store interface {
	storage.Provider
	storage.Migrator
}

type Context struct {
	Ctx          context.Context
	Config       config.Config
	ConfigPath   string
	Store        Store
	Service      *routines.Service
	Materializer *scheduler.Materializer
	Stats        *stats.Aggregator
	Clock        utils.Clock
	Out          io.Writer
	// Confirm asks a yes/no question. Replaced in tests.
	Confirm func(title string) (bool, error)
}

// NewContext opens the configured store and wires the services around it.
// The store is not loaded; commands call Load themselves.
func NewContext(ctx context.Context, cfg config.Config, configPath string) (*Context, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	return newContext(ctx, cfg, configPath, store, utils.SystemClock{}), nil
}

func newContext(ctx context.Context, cfg config.Config, configPath string, store Store, clock utils.Clock) *Context {
	m := scheduler.New(store, clock)
	agg := stats.New(store, clock, cfg.StatsWindowDays)
	svc := routines.New(store, m, agg, clock, routines.Options{
		UpcomingLimit:     cfg.UpcomingLimit,
		StrictTransitions: cfg.StrictTransitions,
	})
	return &Context{
		Ctx:          ctx,
		Config:       cfg,
		ConfigPath:   configPath,
		Store:        store,
		Service:      svc,
		Materializer: m,
		Stats:        agg,
		Clock:        clock,
		Out:          os.Stdout,
		Confirm:      confirm,
	}
}

// OpenStore picks the backend from the configured database: the keyring,
// a PostgreSQL URL or DSN, or a SQLite file path.
func OpenStore(cfg config.Config) (Store, error) {
	db := strings.TrimSpace(cfg.Database)
	switch {
	case db == KeyringSource:
		connStr, err := keyring.New().Get()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("%w: run 'routinely keyring set' first", err)
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	case config.IsPostgresURL(db) || strings.Contains(db, "host="):
		if _, err := postgres.ValidateConnString(db); err != nil {
			return nil, err
		}
		return postgres.New(db), nil
	default:
		return sqlite.NewStore(config.ExpandHome(db)), nil
	}
}

// Load opens the store and checks its schema.
func (c *Context) Load() error {
	return c.Store.Load(c.Ctx)
}

func (c *Context) UserID() string {
	return c.Config.UserID
}

// BackupManager returns a backup manager for SQLite stores.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, errors.New("backups are only available for SQLite databases; use pg_dump for PostgreSQL")
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup snapshots a SQLite database before destructive
// operations. Failures are logged and never block the command.
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	if _, err := mgr.Create(c.Ctx); err != nil {
		logger.Warn("automatic backup failed", "err", err)
	}
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

func confirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}

func parseDay(s string) (models.DayOfWeek, error) {
	day, err := models.ParseDayOfWeek(s)
	if err != nil {
		return "", fmt.Errorf("%w (use monday..sunday or mon..sun)", err)
	}
	return day, nil
}

// resolveDate accepts YYYY-MM-DD, "today", "yesterday" or "tomorrow".
func resolveDate(s string, clock utils.Clock) (string, error) {
	today, _ := utils.ParseDate(utils.Today(clock))
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return utils.IsoDate(today), nil
	case "yesterday":
		return utils.IsoDate(utils.AddDays(today, -1)), nil
	case "tomorrow":
		return utils.IsoDate(utils.AddDays(today, 1)), nil
	}
	if !utils.ValidateDateFormat(s) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today, yesterday or tomorrow)", s)
	}
	return s, nil
}

// optional returns nil for an empty flag so partial updates leave the field alone.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
