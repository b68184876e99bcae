// Package trail records pose and guidance samples of a navigation session to SQLite.
package trail

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/relabs-tech/inertial_nav/internal/navigation"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
)

// Sample is one fusion tick.
type Sample struct {
	Session  string
	Time     time.Time
	Pose     orientation.Pose
	Guidance navigation.Guidance
	TargetX  float64
	TargetY  float64
	Target   bool
}

type DB struct {
	*sql.DB
}

// Open opens (or creates) the trail database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("trail: open %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS samples (
			session_id TEXT,
			unix_nanos BIGINT,
			x DOUBLE,
			y DOUBLE,
			heading DOUBLE,
			state TEXT,
			instruction TEXT,
			event TEXT,
			distance DOUBLE,
			angle_diff DOUBLE,
			target_x DOUBLE,
			target_y DOUBLE,
			has_target BOOLEAN,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("trail: create schema: %w", err)
	}

	return &DB{db}, nil
}

// NewSession registers a fresh session and returns its ID.
func (db *DB) NewSession() (string, error) {
	id := uuid.NewString()
	if _, err := db.Exec("INSERT INTO sessions (session_id) VALUES (?)", id); err != nil {
		return "", fmt.Errorf("trail: new session: %w", err)
	}
	return id, nil
}

// Record stores one sample.
func (db *DB) Record(s Sample) error {
	_, err := db.Exec(`INSERT INTO samples
		(session_id, unix_nanos, x, y, heading, state, instruction, event, distance, angle_diff, target_x, target_y, has_target)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Session, s.Time.UnixNano(),
		s.Pose.X, s.Pose.Y, s.Pose.Heading,
		s.Guidance.State.String(), s.Guidance.Instruction, string(s.Guidance.Event),
		s.Guidance.Distance, s.Guidance.AngleDiff,
		s.TargetX, s.TargetY, s.Target,
	)
	if err != nil {
		return fmt.Errorf("trail: record: %w", err)
	}
	return nil
}

// Samples returns a session's samples in time order.
func (db *DB) Samples(session string) ([]Sample, error) {
	rows, err := db.Query(`SELECT unix_nanos, x, y, heading, state, instruction, event, distance, angle_diff, target_x, target_y, has_target
		FROM samples WHERE session_id = ? ORDER BY unix_nanos`, session)
	if err != nil {
		return nil, fmt.Errorf("trail: query: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			s     = Sample{Session: session}
			nanos int64
			state string
			event string
		)
		if err := rows.Scan(&nanos, &s.Pose.X, &s.Pose.Y, &s.Pose.Heading, &state,
			&s.Guidance.Instruction, &event, &s.Guidance.Distance, &s.Guidance.AngleDiff,
			&s.TargetX, &s.TargetY, &s.Target); err != nil {
			return nil, fmt.Errorf("trail: scan: %w", err)
		}
		if err := s.Guidance.State.UnmarshalText([]byte(state)); err != nil {
			return nil, fmt.Errorf("trail: %w", err)
		}
		s.Time = time.Unix(0, nanos).UTC()
		s.Guidance.Event = navigation.Event(event)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Sessions lists session IDs, newest first.
func (db *DB) Sessions() ([]string, error) {
	rows, err := db.Query("SELECT session_id FROM sessions ORDER BY started_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("trail: sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
