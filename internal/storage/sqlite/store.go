package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlitedriver "modernc.org/sqlite"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/migration"
	"github.com/julianstephens/routinely/internal/utils"
	"github.com/julianstephens/routinely/migrations"
)

// timestampLayout keeps the local offset so the creation date of a routine
// reads back as the day the user created it.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// SQLite's lower() and LIKE only fold ASCII, so searches compare both sides
// through fold_case instead.
func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction("fold_case", 1, foldCase)
}

func foldCase(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type Store struct {
	path  string
	db    *sql.DB
	clock utils.Clock
}

func NewStore(path string) *Store {
	return &Store{
		path:  path,
		clock: utils.SystemClock{},
	}
}

// SetClock replaces the clock used to stamp created_at and updated_at.
func (s *Store) SetClock(c utils.Clock) {
	s.clock = c
}

func (s *Store) dsn() string {
	return "file:" + s.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'routinely init' first")
	}

	if err := s.open(); err != nil {
		return err
	}
	return s.runner().ValidateVersion(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The embedded directory is fixed at build time.
		panic(fmt.Sprintf("sqlite migrations missing: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite)
}

func (s *Store) runMigrations(ctx context.Context) error {
	_, err := s.runner().ApplyMigrations(ctx)
	return err
}

// Migrate applies pending migrations to an existing database.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if s.db == nil {
		if err := s.open(); err != nil {
			return 0, err
		}
	}
	return s.runner().ApplyMigrations(ctx)
}

// SchemaVersion reports the current and latest known schema versions.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	r := s.runner()
	if current, err = r.GetCurrentVersion(ctx); err != nil {
		return 0, 0, err
	}
	latest, err = r.GetLatestVersion()
	return current, latest, err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, or nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) now() string {
	return s.clock.Now().Format(timestampLayout)
}

func parseTimestamp(v string) time.Time {
	t, err := time.Parse(timestampLayout, v)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return time.Time{}
		}
	}
	return t
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func storeErr(op string, err error) error {
	return apperrors.Store(op, err)
}
