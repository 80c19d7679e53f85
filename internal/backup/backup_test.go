package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/utils"
)

// tickClock advances one second per call so every backup gets its own stamp.
type tickClock struct{ t time.Time }

func (c *tickClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "routinely.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE routines (id TEXT PRIMARY KEY, title TEXT NOT NULL)`,
		`INSERT INTO routines (id, title) VALUES ('r1', 'Gym'), ('r2', 'Read')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}
	return dbPath
}

func countRoutines(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM routines").Scan(&n); err != nil {
		t.Fatalf("failed to count routines: %v", err)
	}
	return n
}

func newManager(dbPath string) *Manager {
	m := NewManager(dbPath)
	m.SetClock(&tickClock{t: time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local)})
	return m
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newManager(dbPath)

	info, err := m.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if info.Name != "routinely-20240103-120001.db" {
		t.Errorf("unexpected backup name %q", info.Name)
	}
	if filepath.Dir(info.Path) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written outside the backup directory: %s", info.Path)
	}
	if info.Size == 0 {
		t.Error("backup size is 0")
	}
	if n := countRoutines(t, info.Path); n != 2 {
		t.Errorf("expected 2 rows in backup, got %d", n)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	m := newManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := m.Create(context.Background()); err == nil {
		t.Error("expected an error when the database does not exist")
	}
}

func TestUniqueNamesWithinOneSecond(t *testing.T) {
	dbPath := setupTestDB(t)
	m := NewManager(dbPath)
	m.SetClock(utils.FixedClock(time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local)))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		info, err := m.Create(context.Background())
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		if seen[info.Name] {
			t.Errorf("duplicate backup name %s", info.Name)
		}
		seen[info.Name] = true
	}

	backups, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	// Same stamp: the highest counter is the newest.
	if backups[0].Name != "routinely-20240103-120000-2.db" {
		t.Errorf("newest backup = %s", backups[0].Name)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newManager(dbPath)
	m.SetRetention(3)

	var last Info
	for i := 0; i < 6; i++ {
		info, err := m.Create(context.Background())
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		last = info
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	if backups[0].Name != last.Name {
		t.Errorf("newest backup = %s, want %s", backups[0].Name, last.Name)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	m := newManager(dbPath)

	backups, err := m.List()
	if err != nil || len(backups) != 0 {
		t.Fatalf("expected no backups before the directory exists, got %v, %v", backups, err)
	}

	if _, err := m.Create(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "routinely-latest.db", "routinely-2024-01-03.db"} {
		if err := os.WriteFile(filepath.Join(m.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("expected only the real backup to be listed, got %d", len(backups))
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	m := newManager(dbPath)

	saved, err := m.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO routines (id, title) VALUES ('r3', 'Walk')"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	safety, err := m.Restore(ctx, m.Resolve(saved.Name))
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n := countRoutines(t, dbPath); n != 2 {
		t.Errorf("expected 2 rows after restore, got %d", n)
	}
	if safety.Path == "" || countRoutines(t, safety.Path) != 3 {
		t.Error("expected a safety backup holding the pre-restore data")
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file was left behind")
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	m := newManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("definitely not sqlite, just some text padding the header out"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Restore(ctx, bogus); err == nil {
		t.Error("expected an error restoring a corrupt backup")
	}
	if _, err := m.Restore(ctx, filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected an error restoring a missing backup")
	}
	if n := countRoutines(t, dbPath); n != 2 {
		t.Errorf("database should be untouched, got %d rows", n)
	}
}
