package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

var sqliteSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS sites (
		site_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		lon REAL NOT NULL,
		lat REAL NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS missions (
		mission_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS tasks (
		task_id INTEGER PRIMARY KEY,
		mission_id INTEGER NOT NULL REFERENCES missions(mission_id) ON DELETE CASCADE,
		site_id INTEGER NOT NULL REFERENCES sites(site_id),
		is_first BOOLEAN NOT NULL DEFAULT 0
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS circuits (
		circuit_id INTEGER PRIMARY KEY AUTOINCREMENT,
		mission_id INTEGER NOT NULL REFERENCES missions(mission_id) ON DELETE CASCADE,
		departure_date DATETIME NOT NULL,
		departure_site_id INTEGER NOT NULL REFERENCES sites(site_id),
		arrival_site_id INTEGER NOT NULL REFERENCES sites(site_id)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS routes (
		route_id INTEGER PRIMARY KEY AUTOINCREMENT,
		circuit_id INTEGER NOT NULL REFERENCES circuits(circuit_id) ON DELETE CASCADE,
		departure_site_id INTEGER NOT NULL REFERENCES sites(site_id),
		arrival_site_id INTEGER NOT NULL REFERENCES sites(site_id),
		distance_km REAL NOT NULL,
		route_order INTEGER NOT NULL,
		UNIQUE (circuit_id, route_order)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS matrix_cache (
		cache_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_mission ON tasks(mission_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_tasks_first_per_mission ON tasks(mission_id) WHERE is_first;`,
	`CREATE INDEX IF NOT EXISTS idx_circuits_mission ON circuits(mission_id);`,
}

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS sites (
		site_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS missions (
		mission_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS tasks (
		task_id BIGINT PRIMARY KEY,
		mission_id BIGINT NOT NULL REFERENCES missions(mission_id) ON DELETE CASCADE,
		site_id BIGINT NOT NULL REFERENCES sites(site_id),
		is_first BOOLEAN NOT NULL DEFAULT FALSE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS circuits (
		circuit_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		mission_id BIGINT NOT NULL REFERENCES missions(mission_id) ON DELETE CASCADE,
		departure_date TIMESTAMPTZ NOT NULL,
		departure_site_id BIGINT NOT NULL REFERENCES sites(site_id),
		arrival_site_id BIGINT NOT NULL REFERENCES sites(site_id)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS routes (
		route_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		circuit_id BIGINT NOT NULL REFERENCES circuits(circuit_id) ON DELETE CASCADE,
		departure_site_id BIGINT NOT NULL REFERENCES sites(site_id),
		arrival_site_id BIGINT NOT NULL REFERENCES sites(site_id),
		distance_km DOUBLE PRECISION NOT NULL,
		route_order INTEGER NOT NULL,
		UNIQUE (circuit_id, route_order)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS matrix_cache (
		cache_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_mission ON tasks(mission_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_tasks_first_per_mission ON tasks(mission_id) WHERE is_first;`,
	`CREATE INDEX IF NOT EXISTS idx_circuits_mission ON circuits(mission_id);`,
}

// Initialize the database schema for the dialect.
func InitSchema(db *sql.DB, d Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range d.schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %s: exec statement #%d: %w", d.Name, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
