// Package backup snapshots the SQLite database into a sibling backups
// directory and restores from those snapshots.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/utils"
)

const stampLayout = "20060102-150405"

// routinely-YYYYMMDD-HHMMSS[-N].db
var nameRe = regexp.MustCompile(`^` + regexp.QuoteMeta(constants.BackupFilePrefix) +
	`(\d{8}-\d{6})(?:-(\d+))?` + regexp.QuoteMeta(constants.BackupFileSuffix) + `$`)

// Info describes one backup file.
type Info struct {
	Path      string
	Name      string
	Timestamp time.Time
	Size      int64
}

type Manager struct {
	dbPath    string
	backupDir string
	keep      int
	clock     utils.Clock
	log       *log.Logger
}

// NewManager returns a manager that keeps backups in a "backups" directory
// next to dbPath.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:      constants.MaxBackups,
		clock:     utils.SystemClock{},
		log:       logger.Component("backup"),
	}
}

func (m *Manager) SetClock(c utils.Clock) { m.clock = c }

// SetRetention changes how many backups survive rotation. Values below one are ignored.
func (m *Manager) SetRetention(n int) {
	if n > 0 {
		m.keep = n
	}
}

func (m *Manager) Dir() string { return m.backupDir }

// Create snapshots the database and rotates old backups.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	info, err := m.create(ctx)
	if err != nil {
		return Info{}, err
	}
	if err := m.rotate(); err != nil {
		m.log.Warn("failed to rotate old backups", "err", err)
	}
	return info, nil
}

func (m *Manager) create(ctx context.Context) (Info, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, stamp, err := m.nextPath()
	if err != nil {
		return Info{}, err
	}
	if err := m.snapshot(ctx, path); err != nil {
		return Info{}, fmt.Errorf("failed to backup database: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	m.log.Info("backup created", "path", path, "size", st.Size())
	return Info{Path: path, Name: filepath.Base(path), Timestamp: stamp, Size: st.Size()}, nil
}

// nextPath picks an unused file name for the current second, appending a
// counter when several backups land in the same second.
func (m *Manager) nextPath() (string, time.Time, error) {
	now := m.clock.Now().Local()
	stamp := now.Format(stampLayout)
	base := constants.BackupFilePrefix + stamp
	path := filepath.Join(m.backupDir, base+constants.BackupFileSuffix)
	for n := 1; fileExists(path); n++ {
		if n > 100 {
			return "", time.Time{}, fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%d%s", base, n, constants.BackupFileSuffix))
	}
	ts, _ := time.ParseInLocation(stampLayout, stamp, time.Local)
	return path, ts, nil
}

// snapshot writes a consistent copy with VACUUM INTO, falling back to a
// plain file copy if the statement is rejected.
func (m *Manager) snapshot(ctx context.Context, dest string) error {
	src, err := sql.Open("sqlite", "file:"+m.dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	if err := verify(ctx, src); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := src.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		m.log.Debug("VACUUM INTO failed, copying file", "err", err)
		src.Close()
		return copyFile(m.dbPath, dest)
	}
	return nil
}

// List returns the backups newest first. Files that do not follow the
// naming scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type entry struct {
		info Info
		seq  int
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := nameRe.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		ts, err := time.ParseInLocation(stampLayout, match[1], time.Local)
		if err != nil {
			continue
		}
		seq, _ := strconv.Atoi(match[2])
		st, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, entry{
			info: Info{Path: filepath.Join(m.backupDir, e.Name()), Name: e.Name(), Timestamp: ts, Size: st.Size()},
			seq:  seq,
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].info.Timestamp.Equal(found[j].info.Timestamp) {
			return found[i].info.Timestamp.After(found[j].info.Timestamp)
		}
		return found[i].seq > found[j].seq
	})

	out := make([]Info, len(found))
	for i, f := range found {
		out[i] = f.info
	}
	return out, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Name, err)
		}
		m.log.Debug("backup rotated out", "path", backups[i].Path)
	}
	return nil
}

// Resolve accepts either a path or the name of a file in the backup directory.
func (m *Manager) Resolve(nameOrPath string) string {
	if filepath.IsAbs(nameOrPath) || fileExists(nameOrPath) {
		return nameOrPath
	}
	return filepath.Join(m.backupDir, nameOrPath)
}

// Restore replaces the database with the backup at path. The current
// database is backed up first without rotation, and the returned Info
// describes that safety copy (zero when there was no database).
// The store must be closed before calling Restore.
func (m *Manager) Restore(ctx context.Context, path string) (Info, error) {
	if !fileExists(path) {
		return Info{}, fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := verifyFile(ctx, path); err != nil {
		return Info{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety Info
	if fileExists(m.dbPath) {
		var err error
		if safety, err = m.create(ctx); err != nil {
			return Info{}, fmt.Errorf("failed to backup current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return Info{}, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			m.log.Warn("failed to remove temporary file", "path", tmp, "err", rmErr)
		}
		return Info{}, fmt.Errorf("failed to restore database: %w", err)
	}
	m.log.Info("database restored", "from", path)
	return safety, nil
}

func verify(ctx context.Context, db *sql.DB) error {
	var n int
	return db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

func verifyFile(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return verify(ctx, db)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
