package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"mission-circuit-service/internal/domain"
	"os"
)

type SiteSeed struct {
	SiteID int64   `json:"site_id"`
	Name   string  `json:"name"`
	Lon    float64 `json:"lon"`
	Lat    float64 `json:"lat"`
}

type TaskSeed struct {
	TaskID  int64 `json:"task_id"`
	SiteID  int64 `json:"site_id"`
	IsFirst bool  `json:"is_first"`
}

type MissionSeed struct {
	MissionID int64      `json:"mission_id"`
	Name      string     `json:"name"`
	Tasks     []TaskSeed `json:"tasks"`
}

type Seed struct {
	Sites    []SiteSeed    `json:"sites"`
	Missions []MissionSeed `json:"missions"`
}

func (s Seed) validate() error {
	sites := make(map[int64]struct{}, len(s.Sites))
	for i, site := range s.Sites {
		if site.SiteID <= 0 {
			return fmt.Errorf("invalid site_id at index %d: %d", i, site.SiteID)
		}
		c := domain.Coordinates{Lon: site.Lon, Lat: site.Lat}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("site %d: %w", site.SiteID, err)
		}
		sites[site.SiteID] = struct{}{}
	}

	for i, m := range s.Missions {
		if m.MissionID <= 0 {
			return fmt.Errorf("invalid mission_id at index %d: %d", i, m.MissionID)
		}
		first := 0
		for j, t := range m.Tasks {
			if t.TaskID <= 0 {
				return fmt.Errorf("mission %d: invalid task_id at index %d: %d", m.MissionID, j, t.TaskID)
			}
			if _, ok := sites[t.SiteID]; !ok {
				return fmt.Errorf("mission %d task %d: unknown site_id %d", m.MissionID, t.TaskID, t.SiteID)
			}
			if t.IsFirst {
				first++
			}
		}
		if first > 1 {
			return fmt.Errorf("mission %d: %d tasks flagged is_first, at most one allowed", m.MissionID, first)
		}
	}

	return nil
}

// Populate the database with sites, missions and tasks from a JSON file.
// Existing rows with the same ids are updated.
func SeedFromJSON(db *sql.DB, d Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	if err := data.validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, s := range data.Sites {
		_, err := tx.Exec(d.rebind(`
		INSERT INTO sites (site_id, name, lon, lat)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (site_id) DO UPDATE
		SET name = excluded.name, lon = excluded.lon, lat = excluded.lat;
		`), s.SiteID, s.Name, s.Lon, s.Lat)
		if err != nil {
			return fmt.Errorf("seed: insert site_id=%d: %w", s.SiteID, err)
		}
	}

	for _, m := range data.Missions {
		_, err := tx.Exec(d.rebind(`
		INSERT INTO missions (mission_id, name)
		VALUES (?, ?)
		ON CONFLICT (mission_id) DO UPDATE
		SET name = excluded.name;
		`), m.MissionID, m.Name)
		if err != nil {
			return fmt.Errorf("seed: insert mission_id=%d: %w", m.MissionID, err)
		}

		// Clear flags first so the one-first-task index holds during the upserts.
		if _, err := tx.Exec(d.rebind(`UPDATE tasks SET is_first = ? WHERE mission_id = ?;`), false, m.MissionID); err != nil {
			return fmt.Errorf("seed: reset first task of mission_id=%d: %w", m.MissionID, err)
		}

		for _, t := range m.Tasks {
			_, err := tx.Exec(d.rebind(`
			INSERT INTO tasks (task_id, mission_id, site_id, is_first)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (task_id) DO UPDATE
			SET mission_id = excluded.mission_id, site_id = excluded.site_id, is_first = excluded.is_first;
			`), t.TaskID, m.MissionID, t.SiteID, t.IsFirst)
			if err != nil {
				return fmt.Errorf("seed: insert task_id=%d: %w", t.TaskID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
