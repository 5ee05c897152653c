package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// The trading schema ships embedded in the binary so `setup` and `serve` can
// provision a fresh data volume without external files. Each migration is an
// up/down pair named NNNN_description_up.sql / NNNN_description_down.sql;
// version 0000 creates the portfolio tables (settings, holdings, trades,
// thoughts, watchlist, memories, snapshots) and their sequence counters.
//
//go:embed sql/*.sql
var migrationFiles embed.FS

// migrationName matches the NNNN_description_{up,down}.sql convention.
var migrationName = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)_(up|down)\.sql$`)

// Migration is one versioned schema change with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// parseMigrationName extracts the version, description and direction from a
// migration filename, rejecting anything outside the naming convention.
func parseMigrationName(filename string) (version int, name, direction string, ok bool) {
	match := migrationName.FindStringSubmatch(filename)
	if match == nil {
		return 0, "", "", false
	}

	version, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, "", "", false
	}
	return version, match[2], match[3], true
}

// loadMigrations reads the embedded schema files and returns complete
// migrations sorted by version. A version missing either direction is an
// error: a half-specified migration cannot be rolled back once applied.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("%w: reading embedded schema: %v", ErrMigration, err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filename := entry.Name()
		version, name, direction, ok := parseMigrationName(filename)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected schema file %q", ErrMigration, filename)
		}

		content, err := migrationFiles.ReadFile(filepath.Join("sql", filename))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrMigration, filename, err)
		}

		migration := byVersion[version]
		if migration == nil {
			migration = &Migration{Version: version, Name: name}
			byVersion[version] = migration
		}

		if direction == "up" {
			migration.Up = string(content)
		} else {
			migration.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, migration := range byVersion {
		if migration.Up == "" || migration.Down == "" {
			return nil, fmt.Errorf("%w: version %d is missing its up or down file", ErrMigration, migration.Version)
		}
		migrations = append(migrations, *migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// RunMigrations applies every pending schema migration, recording each in the
// schema_migrations table. Safe to call on every startup.
func RunMigrations(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("%w: creating schema_migrations: %v", ErrMigration, err)
	}

	for _, migration := range migrations {
		var applied bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", migration.Version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("%w: checking version %d: %v", ErrMigration, migration.Version, err)
		}
		if applied {
			continue
		}

		if err := applyMigration(db, migration); err != nil {
			return fmt.Errorf("%w: applying %04d_%s: %v", ErrMigration, migration.Version, migration.Name, err)
		}
	}

	return nil
}

// RollbackMigration reverses the most recently applied migration. The reset
// endpoint uses this with [RunMigrations] to wipe the portfolio in place.
func RollbackMigration(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("%w: reading current version: %v", ErrMigration, err)
	}
	if current < 0 {
		return fmt.Errorf("%w: nothing to roll back", ErrMigration)
	}

	for _, migration := range migrations {
		if migration.Version == current {
			if err := rollbackMigration(db, migration); err != nil {
				return fmt.Errorf("%w: rolling back %04d_%s: %v", ErrMigration, migration.Version, migration.Name, err)
			}
			return nil
		}
	}

	return fmt.Errorf("%w: applied version %d has no embedded schema file", ErrMigration, current)
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// currentVersion returns the highest applied migration version, or -1 when
// none have been applied.
func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), -1) FROM schema_migrations").Scan(&version)
	if err != nil {
		return -1, err
	}
	return version, nil
}

// applyMigration runs a migration's up SQL and records its version, all in
// one transaction.
func applyMigration(db *sql.DB, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := execStatements(tx, migration.Up); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", migration.Version); err != nil {
		return err
	}
	return tx.Commit()
}

// rollbackMigration runs a migration's down SQL and removes its version
// record, all in one transaction.
func rollbackMigration(db *sql.DB, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := execStatements(tx, migration.Down); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", migration.Version); err != nil {
		return err
	}
	return tx.Commit()
}

// execStatements splits a script on semicolons and executes each statement.
// The sqlite driver only runs one statement per Exec.
func execStatements(tx *sql.Tx, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stripComments(stmt))
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement %q: %w", stmt, err)
		}
	}
	return nil
}

// stripComments drops -- line comments so a trailing comment does not leave
// an empty statement behind the final semicolon.
func stripComments(script string) string {
	lines := strings.Split(script, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
