package db

import (
	"database/sql"
	"embed"
	"fmt"
	stdfs "io/fs"
	"regexp"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DefaultPath is the database file used when no path is configured.
const DefaultPath = "app.db"

// connParams are appended to every DSN so that each pooled connection
// enforces foreign keys, not just the one the pragmas ran on.
const connParams = "_foreign_keys=on&_busy_timeout=5000"

// Open opens (or creates) the local SQLite database file and applies pending migrations.
// It uses versioned .sql files under internal/db/migrations following the pattern:
//
//	0001_name.up.sql / 0001_name.down.sql
//
// Only new migrations are applied. Use RollbackLast to revert the last applied migration.
//
// The pool is limited to a single connection: the store has one writer, and
// shared-cache in-memory databases used by tests report SQLITE_LOCKED rather
// than waiting when two connections contend.
func Open(path string) (*sql.DB, error) {
	d, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := applyMigrations(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// OpenNoMigrate opens the database without touching its schema.
// Used by tooling that manages migrations explicitly.
func OpenNoMigrate(path string) (*sql.DB, error) {
	return open(path)
}

func open(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	d, err := sql.Open("sqlite3", withConnParams(path))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	d.SetMaxOpenConns(1)
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := d.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		_ = d.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	return d, nil
}

func withConnParams(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + connParams
	}
	return path + "?" + connParams
}

// MigrationStatus describes one known migration and whether it is applied.
type MigrationStatus struct {
	Version int
	Name    string
	Applied bool
}

// Migrate applies all pending migrations to an already open database.
func Migrate(d *sql.DB) error {
	if d == nil {
		return errors.New("nil db")
	}
	return applyMigrations(d)
}

// Status lists every embedded migration in version order with its applied flag.
func Status(d *sql.DB) ([]MigrationStatus, error) {
	if d == nil {
		return nil, errors.New("nil db")
	}
	migs, err := loadMigrations()
	if err != nil {
		return nil, err
	}
	applied, err := appliedVersions(d)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, 0, len(migs))
	for _, v := range sortedVersions(migs) {
		out = append(out, MigrationStatus{Version: v, Name: migs[v].name, Applied: applied[v]})
	}
	return out, nil
}

// RollbackLast rolls back the most recently applied migration, if its down script exists.
// It returns the version that was rolled back, or 0 when nothing was applied.
func RollbackLast(d *sql.DB) (int, error) {
	if d == nil {
		return 0, errors.New("nil db")
	}
	if err := ensureMigrationsTable(d); err != nil {
		return 0, err
	}
	var version int
	err := d.QueryRow(`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	migs, err := loadMigrations()
	if err != nil {
		return 0, err
	}
	m, ok := migs[version]
	if !ok || m.downFile == "" {
		return 0, fmt.Errorf("no down migration found for version %d", version)
	}
	sqlText, err := migrationsFS.ReadFile(m.downFile)
	if err != nil {
		return 0, err
	}
	if err := runScript(d, string(sqlText), `DELETE FROM schema_migrations WHERE version = ?`, version); err != nil {
		return 0, errors.Wrapf(err, "rollback %04d", version)
	}
	return version, nil
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	name     string
	upFile   string // path inside embedded FS
	downFile string // path inside embedded FS
}

var migFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

func loadMigrations() (map[int]migration, error) {
	entries := map[int]migration{}
	list, err := stdfs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return entries, nil
	}
	for _, de := range list {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		m := migFileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		verStr, migName, kind := m[1], m[2], m[3]
		var ver int
		if _, err := fmt.Sscanf(verStr, "%04d", &ver); err != nil {
			continue
		}
		item := entries[ver]
		item.version = ver
		item.name = migName
		p := "migrations/" + name
		if kind == "up" {
			item.upFile = p
		} else {
			item.downFile = p
		}
		entries[ver] = item
	}
	return entries, nil
}

func sortedVersions(migs map[int]migration) []int {
	versions := make([]int, 0, len(migs))
	for v := range migs {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

func ensureMigrationsTable(d *sql.DB) error {
	_, err := d.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY,
        applied_at TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
    )`)
	return err
}

func appliedVersions(d *sql.DB) (map[int]bool, error) {
	if err := ensureMigrationsTable(d); err != nil {
		return nil, err
	}
	rows, err := d.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	got := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		got[v] = true
	}
	return got, rows.Err()
}

func applyMigrations(d *sql.DB) error {
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		return nil
	}
	applied, err := appliedVersions(d)
	if err != nil {
		return err
	}
	for _, v := range sortedVersions(migs) {
		if applied[v] {
			continue
		}
		m := migs[v]
		if strings.TrimSpace(m.upFile) == "" {
			return fmt.Errorf("missing up migration for version %04d", v)
		}
		sqlText, err := migrationsFS.ReadFile(m.upFile)
		if err != nil {
			return err
		}
		if err := runScript(d, string(sqlText), `INSERT INTO schema_migrations(version) VALUES(?)`, v); err != nil {
			return errors.Wrapf(err, "migration %04d failed", v)
		}
	}
	return nil
}

// runScript executes a migration script and its bookkeeping statement.
// Scripts starting with "-- NO_TX" run outside a transaction.
func runScript(d *sql.DB, text, bookkeeping string, version int) error {
	if strings.HasPrefix(strings.TrimSpace(text), "-- NO_TX") {
		if _, err := d.Exec(text); err != nil {
			return err
		}
		_, err := d.Exec(bookkeeping, version)
		return err
	}
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(text); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(bookkeeping, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
