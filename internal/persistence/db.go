// Package persistence provides SQLite-based colony snapshot storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/energy"
	"github.com/talgya/nanoverse/internal/nano"
	"github.com/talgya/nanoverse/internal/sim"
)

// DB wraps a SQLite connection for colony state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nanos (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		max_lifespan INTEGER NOT NULL,
		speed REAL NOT NULL,
		wage REAL NOT NULL,
		happiness REAL NOT NULL,
		health REAL NOT NULL,
		intellect REAL NOT NULL,
		force REAL NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		state INTEGER NOT NULL,
		work_building INTEGER NOT NULL,
		home_building INTEGER NOT NULL,
		current_building INTEGER NOT NULL,
		inside INTEGER NOT NULL,
		moving INTEGER NOT NULL,
		target_x REAL NOT NULL,
		target_y REAL NOT NULL,
		activity_timer REAL NOT NULL,
		activity_duration REAL NOT NULL,
		meals_today INTEGER NOT NULL,
		hours_without_food INTEGER NOT NULL,
		hours_homeless INTEGER NOT NULL,
		skills_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS buildings (
		id INTEGER PRIMARY KEY,
		type INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		level INTEGER NOT NULL,
		capacity INTEGER NOT NULL,
		occupants_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cells (
		number INTEGER PRIMARY KEY,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		level INTEGER NOT NULL,
		stored REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// saveNanos writes all nanos (full replace).
func saveNanos(tx *sqlx.Tx, nanos []nano.Nano) error {
	if _, err := tx.Exec("DELETE FROM nanos"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO nanos
		(id, name, age, max_lifespan, speed, wage, happiness, health,
		 intellect, force, x, y, state, work_building, home_building,
		 current_building, inside, moving, target_x, target_y,
		 activity_timer, activity_duration, meals_today,
		 hours_without_food, hours_homeless, skills_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range nanos {
		skillsJSON, _ := json.Marshal(n.Skills)
		inside, moving := 0, 0
		if n.Inside {
			inside = 1
		}
		if n.Moving {
			moving = 1
		}
		_, err := stmt.Exec(
			n.ID, n.Name, n.Age, n.MaxLifespan, n.Speed, n.Wage,
			n.Happiness, n.Health, n.Intellect, n.Force,
			n.X, n.Y, n.State, n.WorkBuilding, n.HomeBuilding,
			n.CurrentBuilding, inside, moving, n.TargetX, n.TargetY,
			n.ActivityTimer, n.ActivityDuration,
			n.MealsToday, n.HoursWithoutFood, n.HoursHomeless,
			string(skillsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert nano %d: %w", n.ID, err)
		}
	}
	return nil
}

// saveBuildings writes all buildings (full replace).
func saveBuildings(tx *sqlx.Tx, buildings []building.Building) error {
	if _, err := tx.Exec("DELETE FROM buildings"); err != nil {
		return err
	}

	for _, b := range buildings {
		occJSON, _ := json.Marshal(b.Occupants)
		_, err := tx.Exec(`INSERT INTO buildings
			(id, type, x, y, level, capacity, occupants_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.Type, b.X, b.Y, b.Level, b.Capacity, string(occJSON),
		)
		if err != nil {
			return fmt.Errorf("insert building %d: %w", b.ID, err)
		}
	}
	return nil
}

// saveCells writes all cells (full replace).
func saveCells(tx *sqlx.Tx, cells []energy.Cell) error {
	if _, err := tx.Exec("DELETE FROM cells"); err != nil {
		return err
	}

	for _, c := range cells {
		_, err := tx.Exec(
			"INSERT INTO cells (number, x, y, level, stored) VALUES (?, ?, ?, ?, ?)",
			c.Number, c.X, c.Y, c.Level, c.Stored,
		)
		if err != nil {
			return fmt.Errorf("insert cell %d: %w", c.Number, err)
		}
	}
	return nil
}

// SaveEvents appends events to the log table.
func (db *DB) SaveEvents(events []sim.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveState writes a full colony snapshot in one transaction, plus the
// scalar balances and calendar as metadata.
func (db *DB) SaveState(st sim.State) error {
	slog.Info("saving colony state",
		"tick", st.Tick, "nanos", len(st.Nanos),
		"cells", len(st.Cells), "buildings", len(st.Buildings))

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveNanos(tx, st.Nanos); err != nil {
		return fmt.Errorf("save nanos: %w", err)
	}
	if err := saveBuildings(tx, st.Buildings); err != nil {
		return fmt.Errorf("save buildings: %w", err)
	}
	if err := saveCells(tx, st.Cells); err != nil {
		return fmt.Errorf("save cells: %w", err)
	}

	clockJSON, _ := json.Marshal(st.Clock)
	resJSON, _ := json.Marshal(st.Resources)
	meta := map[string]string{
		"last_tick": strconv.FormatUint(st.Tick, 10),
		"clock":     string(clockJSON),
		"resources": string(resJSON),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", k, v,
		); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("colony state saved")
	return nil
}

// HasState reports whether a snapshot exists to load.
func (db *DB) HasState() bool {
	_, err := db.GetMeta("last_tick")
	return err == nil
}

// LoadState reads the most recent snapshot.
func (db *DB) LoadState() (sim.State, error) {
	var st sim.State

	tickStr, err := db.GetMeta("last_tick")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, fmt.Errorf("no saved state")
		}
		return st, fmt.Errorf("load meta: %w", err)
	}
	st.Tick, _ = strconv.ParseUint(tickStr, 10, 64)

	if raw, err := db.GetMeta("clock"); err == nil {
		if err := json.Unmarshal([]byte(raw), &st.Clock); err != nil {
			return st, fmt.Errorf("load clock: %w", err)
		}
	}
	if raw, err := db.GetMeta("resources"); err == nil {
		if err := json.Unmarshal([]byte(raw), &st.Resources); err != nil {
			return st, fmt.Errorf("load resources: %w", err)
		}
	}

	if st.Cells, err = db.loadCells(); err != nil {
		return st, fmt.Errorf("load cells: %w", err)
	}
	if st.Buildings, err = db.loadBuildings(); err != nil {
		return st, fmt.Errorf("load buildings: %w", err)
	}
	if st.Nanos, err = db.loadNanos(); err != nil {
		return st, fmt.Errorf("load nanos: %w", err)
	}
	return st, nil
}

func (db *DB) loadCells() ([]energy.Cell, error) {
	rows, err := db.conn.Queryx("SELECT number, x, y, level, stored FROM cells ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []energy.Cell
	for rows.Next() {
		var c energy.Cell
		if err := rows.Scan(&c.Number, &c.X, &c.Y, &c.Level, &c.Stored); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (db *DB) loadBuildings() ([]building.Building, error) {
	rows, err := db.conn.Queryx(
		"SELECT id, type, x, y, level, capacity, occupants_json FROM buildings ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []building.Building
	for rows.Next() {
		var b building.Building
		var occJSON string
		if err := rows.Scan(&b.ID, &b.Type, &b.X, &b.Y, &b.Level, &b.Capacity, &occJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(occJSON), &b.Occupants); err != nil {
			return nil, fmt.Errorf("building %d occupants: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (db *DB) loadNanos() ([]nano.Nano, error) {
	rows, err := db.conn.Queryx(`SELECT
		id, name, age, max_lifespan, speed, wage, happiness, health,
		intellect, force, x, y, state, work_building, home_building,
		current_building, inside, moving, target_x, target_y,
		activity_timer, activity_duration, meals_today,
		hours_without_food, hours_homeless, skills_json
		FROM nanos ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []nano.Nano
	for rows.Next() {
		var n nano.Nano
		var skillsJSON string
		var inside, moving int
		if err := rows.Scan(
			&n.ID, &n.Name, &n.Age, &n.MaxLifespan, &n.Speed, &n.Wage,
			&n.Happiness, &n.Health, &n.Intellect, &n.Force,
			&n.X, &n.Y, &n.State, &n.WorkBuilding, &n.HomeBuilding,
			&n.CurrentBuilding, &inside, &moving, &n.TargetX, &n.TargetY,
			&n.ActivityTimer, &n.ActivityDuration,
			&n.MealsToday, &n.HoursWithoutFood, &n.HoursHomeless,
			&skillsJSON,
		); err != nil {
			return nil, err
		}
		n.Inside = inside == 1
		n.Moving = moving == 1
		if err := json.Unmarshal([]byte(skillsJSON), &n.Skills); err != nil {
			return nil, fmt.Errorf("nano %d skills: %w", n.ID, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]sim.Event, error) {
	var events []sim.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
