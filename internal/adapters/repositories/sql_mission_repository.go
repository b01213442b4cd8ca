package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/platform/obs"
	"mission-circuit-service/internal/ports"
	"time"
)

// SQLMissionRepository implements ports.MissionStore on database/sql for
// both Postgres (pgx stdlib driver) and SQLite.
type SQLMissionRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewPostgresMissionRepository(db *sql.DB) *SQLMissionRepository {
	return &SQLMissionRepository{DB: db, Dialect: Postgres}
}

func NewSqliteMissionRepository(db *sql.DB) *SQLMissionRepository {
	return &SQLMissionRepository{DB: db, Dialect: Sqlite}
}

func (s *SQLMissionRepository) GetMission(ctx context.Context, missionID int64) (_ *domain.Mission, err error) {
	defer obs.Time(ctx, "missions.GetMission")(&err)

	if s.DB == nil {
		return nil, errors.New("mission repository: DB is nil")
	}

	query := s.Dialect.rebind(`
	SELECT
		mission_id,
		name
	FROM missions
	WHERE mission_id = ?;
	`)

	var m domain.Mission
	err = s.DB.QueryRowContext(ctx, query, missionID).Scan(&m.MissionID, &m.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get mission %d: %w", missionID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get mission %d: query missions table: %w", missionID, err)
	}

	return &m, nil
}

// Return the mission's tasks joined with their sites, ordered by task id.
func (s *SQLMissionRepository) ListMissionTasks(ctx context.Context, missionID int64) (_ []*domain.Task, err error) {
	defer obs.Time(ctx, "missions.ListMissionTasks")(&err)

	if s.DB == nil {
		return nil, errors.New("mission repository: DB is nil")
	}

	query := s.Dialect.rebind(`
	SELECT
		t.task_id,
		t.mission_id,
		t.site_id,
		t.is_first,
		st.name,
		st.lon,
		st.lat
	FROM tasks t
	JOIN sites st ON st.site_id = t.site_id
	WHERE t.mission_id = ?
	ORDER BY t.task_id;
	`)

	rows, err := s.DB.QueryContext(ctx, query, missionID)
	if err != nil {
		return nil, fmt.Errorf("list mission tasks: query tasks table: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0, 16)
	for rows.Next() {
		t := &domain.Task{Site: &domain.Site{}}
		err := rows.Scan(
			&t.TaskID, &t.MissionID, &t.SiteID, &t.IsFirst,
			&t.Site.Name, &t.Site.Coordinates.Lon, &t.Site.Coordinates.Lat,
		)
		if err != nil {
			return nil, fmt.Errorf("list mission tasks: scan row: %w", err)
		}
		t.Site.SiteID = t.SiteID
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mission tasks: row iteration: %w", err)
	}

	return tasks, nil
}

// Return the mission's circuits with ordered segments, newest first.
func (s *SQLMissionRepository) ListCircuits(ctx context.Context, missionID int64) (_ []*domain.Circuit, err error) {
	defer obs.Time(ctx, "circuits.ListCircuits")(&err)

	if s.DB == nil {
		return nil, errors.New("mission repository: DB is nil")
	}

	query := s.Dialect.rebind(`
	SELECT
		circuit_id,
		mission_id,
		departure_date,
		departure_site_id,
		arrival_site_id
	FROM circuits
	WHERE mission_id = ?
	ORDER BY departure_date DESC, circuit_id DESC;
	`)

	rows, err := s.DB.QueryContext(ctx, query, missionID)
	if err != nil {
		return nil, fmt.Errorf("list circuits: query circuits table: %w", err)
	}
	defer rows.Close()

	circuits := make([]*domain.Circuit, 0, 1)
	for rows.Next() {
		var c domain.Circuit
		var departure dbTime
		if err := rows.Scan(&c.CircuitID, &c.MissionID, &departure, &c.DepartureSiteID, &c.ArrivalSiteID); err != nil {
			return nil, fmt.Errorf("list circuits: scan row: %w", err)
		}
		c.DepartureDate = departure.Time
		circuits = append(circuits, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list circuits: row iteration: %w", err)
	}
	rows.Close()

	for _, c := range circuits {
		segments, err := s.listSegments(ctx, c.CircuitID)
		if err != nil {
			return nil, fmt.Errorf("list circuits: %w", err)
		}
		c.Segments = segments
	}

	return circuits, nil
}

func (s *SQLMissionRepository) listSegments(ctx context.Context, circuitID int64) ([]domain.RouteSegment, error) {
	query := s.Dialect.rebind(`
	SELECT
		route_id,
		circuit_id,
		departure_site_id,
		arrival_site_id,
		distance_km,
		route_order
	FROM routes
	WHERE circuit_id = ?
	ORDER BY route_order;
	`)

	rows, err := s.DB.QueryContext(ctx, query, circuitID)
	if err != nil {
		return nil, fmt.Errorf("list segments of circuit %d: %w", circuitID, err)
	}
	defer rows.Close()

	segments := make([]domain.RouteSegment, 0, 8)
	for rows.Next() {
		var r domain.RouteSegment
		if err := rows.Scan(&r.RouteID, &r.CircuitID, &r.DepartureSiteID, &r.ArrivalSiteID, &r.DistanceKm, &r.Order); err != nil {
			return nil, fmt.Errorf("list segments of circuit %d: scan row: %w", circuitID, err)
		}
		segments = append(segments, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list segments of circuit %d: row iteration: %w", circuitID, err)
	}

	return segments, nil
}

// ReplaceCircuits swaps the mission's circuits for the planned one in a
// single transaction: routes are deleted before circuits, the first-task flag
// is rewritten when requested, then the new circuit and its segments are
// inserted. Either all of it is visible or none of it.
func (s *SQLMissionRepository) ReplaceCircuits(ctx context.Context, plan *domain.CircuitPlan) (_ *domain.Circuit, err error) {
	defer obs.Time(ctx, "circuits.ReplaceCircuits")(&err)

	if s.DB == nil {
		return nil, errors.New("mission repository: DB is nil")
	}
	if plan == nil {
		return nil, errors.New("replace circuits: plan is nil")
	}

	missionID := plan.MissionID

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("replace circuits: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.lockAndClear(ctx, tx, missionID); err != nil {
		return nil, fmt.Errorf("replace circuits: %w", err)
	}

	if plan.MarkFirstTask {
		if err := s.markFirstTask(ctx, tx, missionID, plan.FirstTaskID); err != nil {
			return nil, fmt.Errorf("replace circuits: %w", err)
		}
	}

	c := plan.Circuit
	c.MissionID = missionID
	c.DepartureDate = c.DepartureDate.UTC()

	err = tx.QueryRowContext(ctx, s.Dialect.rebind(`
	INSERT INTO circuits (
		mission_id,
		departure_date,
		departure_site_id,
		arrival_site_id
	)
	VALUES (?, ?, ?, ?)
	RETURNING circuit_id;
	`), missionID, c.DepartureDate, c.DepartureSiteID, c.ArrivalSiteID).Scan(&c.CircuitID)
	if err != nil {
		return nil, fmt.Errorf("replace circuits: insert circuit: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.Dialect.rebind(`
	INSERT INTO routes (
		circuit_id,
		departure_site_id,
		arrival_site_id,
		distance_km,
		route_order
	)
	VALUES (?, ?, ?, ?, ?)
	RETURNING route_id;
	`))
	if err != nil {
		return nil, fmt.Errorf("replace circuits: prepare route insert: %w", err)
	}
	defer stmt.Close()

	segments := make([]domain.RouteSegment, 0, len(c.Segments))
	for _, r := range c.Segments {
		r.CircuitID = c.CircuitID
		err := stmt.QueryRowContext(ctx, r.CircuitID, r.DepartureSiteID, r.ArrivalSiteID, r.DistanceKm, r.Order).Scan(&r.RouteID)
		if err != nil {
			return nil, fmt.Errorf("replace circuits: insert route order=%d: %w", r.Order, err)
		}
		segments = append(segments, r)
	}
	c.Segments = segments

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("replace circuits: commit: %w", err)
	}

	return &c, nil
}

// DeleteCircuits removes every circuit of the mission and its routes.
func (s *SQLMissionRepository) DeleteCircuits(ctx context.Context, missionID int64) (err error) {
	defer obs.Time(ctx, "circuits.DeleteCircuits")(&err)

	if s.DB == nil {
		return errors.New("mission repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete circuits: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.lockAndClear(ctx, tx, missionID); err != nil {
		return fmt.Errorf("delete circuits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete circuits: commit: %w", err)
	}
	return nil
}

// lockAndClear takes the mission lock, checks the mission exists, then
// deletes its routes and circuits, routes first.
func (s *SQLMissionRepository) lockAndClear(ctx context.Context, tx *sql.Tx, missionID int64) error {
	if s.Dialect.lockMission != "" {
		if _, err := tx.ExecContext(ctx, s.Dialect.rebind(s.Dialect.lockMission), missionID); err != nil {
			return fmt.Errorf("lock mission %d: %w", missionID, err)
		}
	}

	var exists int
	err := tx.QueryRowContext(ctx, s.Dialect.rebind(`SELECT 1 FROM missions WHERE mission_id = ?;`), missionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("mission %d: %w", missionID, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check mission %d: %w", missionID, err)
	}

	if _, err := tx.ExecContext(ctx, s.Dialect.rebind(`
	DELETE FROM routes
	WHERE circuit_id IN (SELECT circuit_id FROM circuits WHERE mission_id = ?);
	`), missionID); err != nil {
		return fmt.Errorf("delete routes: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.Dialect.rebind(`DELETE FROM circuits WHERE mission_id = ?;`), missionID); err != nil {
		return fmt.Errorf("delete circuits: %w", err)
	}

	return nil
}

// markFirstTask leaves exactly one task of the mission flagged as first.
func (s *SQLMissionRepository) markFirstTask(ctx context.Context, tx *sql.Tx, missionID, taskID int64) error {
	if _, err := tx.ExecContext(ctx, s.Dialect.rebind(`
	UPDATE tasks SET is_first = ? WHERE mission_id = ? AND task_id <> ?;
	`), false, missionID, taskID); err != nil {
		return fmt.Errorf("clear first task flags: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.Dialect.rebind(`
	UPDATE tasks SET is_first = ? WHERE mission_id = ? AND task_id = ?;
	`), true, missionID, taskID)
	if err != nil {
		return fmt.Errorf("mark first task %d: %w", taskID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark first task %d: rows affected: %w", taskID, err)
	}
	if n != 1 {
		return fmt.Errorf("mark first task %d of mission %d: %w", taskID, missionID, ports.ErrNotFound)
	}

	return nil
}

// dbTime scans timestamps from Postgres (time.Time) and from SQLite, which
// may hand back text or unix seconds depending on how the value was written.
type dbTime struct {
	Time time.Time
}

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case int64:
		t.Time = time.Unix(v, 0).UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("scan time: unsupported type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range sqliteTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("scan time: cannot parse %q", s)
}
