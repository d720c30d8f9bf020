package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"streetnet/internal/logger"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS run_history (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp    TEXT NOT NULL,
				crs          TEXT NOT NULL,
				nodes        INTEGER NOT NULL,
				edges        INTEGER NOT NULL,
				block_groups INTEGER NOT NULL,
				duration_ms  INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_run_history_ts ON run_history(timestamp);

			CREATE TABLE IF NOT EXISTS bg_metrics (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id           INTEGER NOT NULL REFERENCES run_history(id),
				geoid_bg         TEXT NOT NULL,
				area_km2         REAL,
				nodes_in_bg      REAL,
				edges_km         REAL,
				node_density     REAL,
				edge_km_density  REAL,
				betweenness_mean REAL,
				betweenness_p90  REAL,
				aspl_mean        REAL
			);
			CREATE INDEX IF NOT EXISTS idx_bg_metrics_run ON bg_metrics(run_id);
			CREATE INDEX IF NOT EXISTS idx_bg_metrics_geoid ON bg_metrics(geoid_bg);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB for use by other packages.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
