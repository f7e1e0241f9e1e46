// Package persistence provides SQLite-backed storage for the campus
// world: the custom-entity contract (directive-created buildings and
// people survive restarts, the seeded baseline does not) and compressed
// full-state snapshots for fast resume.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/campus-city/internal/people"
	"github.com/talgya/campus-city/internal/world"
)

// DB wraps a SQLite connection.
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
	CREATE TABLE IF NOT EXISTS custom_buildings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		pos_z REAL NOT NULL,
		size_x REAL NOT NULL,
		size_y REAL NOT NULL,
		size_z REAL NOT NULL,
		activity REAL NOT NULL,
		zone TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS custom_people (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		gender TEXT NOT NULL,
		role TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_z REAL NOT NULL,
		target_building_id TEXT NOT NULL,
		speed REAL NOT NULL,
		workplace TEXT NOT NULL,
		department TEXT NOT NULL,
		traits_json TEXT NOT NULL,
		schedule_json TEXT NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		blob BLOB NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveCustom persists the custom entities: buildings and people created
// by directives (full replace). The seeded baseline is regenerated at
// init and never stored.
func (db *DB) SaveCustom(buildings []*world.Building, persons []*people.Person) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM custom_buildings"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM custom_people"); err != nil {
		return err
	}

	bstmt, err := tx.Preparex(`INSERT INTO custom_buildings
		(id, name, pos_x, pos_y, pos_z, size_x, size_y, size_z, activity, zone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer bstmt.Close()

	saved := 0
	for _, b := range buildings {
		if !b.IsCustom {
			continue
		}
		_, err := bstmt.Exec(b.ID, b.Name,
			b.Position.X, b.Position.Y, b.Position.Z,
			b.Size.X, b.Size.Y, b.Size.Z,
			b.Activity, string(b.Zone))
		if err != nil {
			return fmt.Errorf("insert building %s: %w", b.ID, err)
		}
		saved++
	}

	pstmt, err := tx.Preparex(`INSERT INTO custom_people
		(id, name, gender, role, pos_x, pos_z, target_building_id, speed,
		 workplace, department, traits_json, schedule_json, state_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer pstmt.Close()

	for _, p := range persons {
		if !p.IsCustom {
			continue
		}
		traitsJSON, _ := json.Marshal(p.Traits)
		scheduleJSON, _ := json.Marshal(p.Schedule)
		stateJSON, _ := json.Marshal(p.State)

		_, err := pstmt.Exec(p.ID, p.Name, p.Gender, string(p.Role),
			p.Position.X, p.Position.Z, p.TargetBuildingID, p.Speed,
			p.Workplace, p.Department,
			string(traitsJSON), string(scheduleJSON), string(stateJSON))
		if err != nil {
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("custom entities saved", "count", saved)
	return nil
}

// LoadCustom restores the persisted custom entities. Missing person state
// is defensively defaulted; the caller merges the result onto the seeded
// baseline.
func (db *DB) LoadCustom() ([]*world.Building, []*people.Person, error) {
	type buildingRow struct {
		ID       string  `db:"id"`
		Name     string  `db:"name"`
		PosX     float64 `db:"pos_x"`
		PosY     float64 `db:"pos_y"`
		PosZ     float64 `db:"pos_z"`
		SizeX    float64 `db:"size_x"`
		SizeY    float64 `db:"size_y"`
		SizeZ    float64 `db:"size_z"`
		Activity float64 `db:"activity"`
		Zone     string  `db:"zone"`
	}

	var brows []buildingRow
	if err := db.conn.Select(&brows, "SELECT * FROM custom_buildings"); err != nil {
		return nil, nil, fmt.Errorf("load buildings: %w", err)
	}

	buildings := make([]*world.Building, 0, len(brows))
	for _, r := range brows {
		buildings = append(buildings, &world.Building{
			ID:       r.ID,
			Name:     r.Name,
			Position: world.Vec3{X: r.PosX, Y: r.PosY, Z: r.PosZ},
			Size:     world.Vec3{X: r.SizeX, Y: r.SizeY, Z: r.SizeZ},
			Activity: r.Activity,
			Zone:     world.Zone(r.Zone),
			IsCustom: true,
		})
	}

	type personRow struct {
		ID           int     `db:"id"`
		Name         string  `db:"name"`
		Gender       string  `db:"gender"`
		Role         string  `db:"role"`
		PosX         float64 `db:"pos_x"`
		PosZ         float64 `db:"pos_z"`
		TargetID     string  `db:"target_building_id"`
		Speed        float64 `db:"speed"`
		Workplace    string  `db:"workplace"`
		Department   string  `db:"department"`
		TraitsJSON   string  `db:"traits_json"`
		ScheduleJSON string  `db:"schedule_json"`
		StateJSON    string  `db:"state_json"`
	}

	var prows []personRow
	if err := db.conn.Select(&prows, "SELECT * FROM custom_people"); err != nil {
		return nil, nil, fmt.Errorf("load people: %w", err)
	}

	persons := make([]*people.Person, 0, len(prows))
	for _, r := range prows {
		p := &people.Person{
			ID:               r.ID,
			Name:             r.Name,
			Gender:           r.Gender,
			Role:             people.Role(r.Role),
			Position:         world.Vec3{X: r.PosX, Z: r.PosZ},
			TargetBuildingID: r.TargetID,
			Speed:            r.Speed,
			Workplace:        r.Workplace,
			Department:       r.Department,
			IsCustom:         true,
		}
		json.Unmarshal([]byte(r.TraitsJSON), &p.Traits)
		json.Unmarshal([]byte(r.ScheduleJSON), &p.Schedule)
		json.Unmarshal([]byte(r.StateJSON), &p.State)
		p.EnsureDefaults()
		persons = append(persons, p)
	}

	return buildings, persons, nil
}

// SetMeta stores a metadata key/value pair.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO world_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasCustomState reports whether any custom entities have been saved.
func (db *DB) HasCustomState() bool {
	var count int
	if err := db.conn.Get(&count,
		"SELECT (SELECT COUNT(*) FROM custom_buildings) + (SELECT COUNT(*) FROM custom_people)"); err != nil {
		return false
	}
	return count > 0
}
