// Package store persists match state in SQLite so a match in progress
// survives a reload. Each top-level piece — metadata, rosters, benches,
// quarter, running flag, event log — is stored independently and
// rehydrated verbatim.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dwolgast/matchlog/internal/core/clock"
	"github.com/dwolgast/matchlog/internal/core/match"
	"github.com/dwolgast/matchlog/internal/telemetry"

	_ "modernc.org/sqlite"
)

// Snapshot is the full durable match state.
type Snapshot struct {
	Info       match.Info
	Quarter    clock.Quarter
	Running    bool
	AwayRoster match.Roster
	HomeRoster match.Roster
	Events     match.Log
}

// Store owns the SQLite handle. Writes rewrite whole sections inside one
// transaction — the log is tens of rows, so simplicity beats deltas.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS match_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS roster (
			team          TEXT NOT NULL,
			id            TEXT NOT NULL,
			number        TEXT NOT NULL,
			name          TEXT NOT NULL,
			is_goalkeeper INTEGER NOT NULL DEFAULT 0,
			is_starter    INTEGER NOT NULL DEFAULT 0,
			is_captain    INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (team, id)
		)`,
		`CREATE TABLE IF NOT EXISTS bench (
			team TEXT NOT NULL,
			id   TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			PRIMARY KEY (team, id)
		)`,
		`CREATE TABLE IF NOT EXISTS event_log (
			position INTEGER NOT NULL,
			id       TEXT NOT NULL PRIMARY KEY,
			payload  TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save rewrites the full snapshot in one transaction.
func (s *Store) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if err := saveMeta(tx, snap); err != nil {
		return err
	}
	if err := saveRosters(tx, snap); err != nil {
		return err
	}
	if err := saveEvents(tx, snap.Events); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	telemetry.Metrics.StoreWrites.Inc()
	telemetry.Metrics.StoreWriteLatency.Record(time.Since(started))
	return nil
}

func saveMeta(tx *sql.Tx, snap Snapshot) error {
	info, err := json.Marshal(snap.Info)
	if err != nil {
		return fmt.Errorf("encode match info: %w", err)
	}
	running := "false"
	if snap.Running {
		running = "true"
	}
	for key, value := range map[string]string{
		"info":    string(info),
		"quarter": snap.Quarter.String(),
		"running": running,
	} {
		if _, err := tx.Exec(
			`INSERT INTO match_meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}
	return nil
}

func saveRosters(tx *sql.Tx, snap Snapshot) error {
	if _, err := tx.Exec(`DELETE FROM roster`); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM bench`); err != nil {
		return fmt.Errorf("clear bench: %w", err)
	}
	for team, roster := range map[match.Team]match.Roster{
		match.TeamAway: snap.AwayRoster,
		match.TeamHome: snap.HomeRoster,
	} {
		for _, p := range roster.Players {
			if _, err := tx.Exec(
				`INSERT INTO roster (team, id, number, name, is_goalkeeper, is_starter, is_captain)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				string(team), p.ID, p.Number, p.Name,
				boolInt(p.IsGoalkeeper), boolInt(p.IsStarter), boolInt(p.IsCaptain),
			); err != nil {
				return fmt.Errorf("save player %s: %w", p.ID, err)
			}
		}
		for _, b := range roster.Bench {
			if _, err := tx.Exec(
				`INSERT INTO bench (team, id, name, role) VALUES (?, ?, ?, ?)`,
				string(team), b.ID, b.Name, b.Role,
			); err != nil {
				return fmt.Errorf("save bench %s: %w", b.ID, err)
			}
		}
	}
	return nil
}

func saveEvents(tx *sql.Tx, log match.Log) error {
	if _, err := tx.Exec(`DELETE FROM event_log`); err != nil {
		return fmt.Errorf("clear event log: %w", err)
	}
	for pos, e := range log {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", e.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO event_log (position, id, payload) VALUES (?, ?, ?)`,
			pos, e.ID, string(payload),
		); err != nil {
			return fmt.Errorf("save event %s: %w", e.ID, err)
		}
	}
	return nil
}

// Load rehydrates the snapshot. A fresh database yields a zero snapshot
// with quarter Q1 and an empty log.
func (s *Store) Load() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Quarter: clock.Q1}

	rows, err := s.db.Query(`SELECT key, value FROM match_meta`)
	if err != nil {
		return snap, fmt.Errorf("load meta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return snap, fmt.Errorf("scan meta: %w", err)
		}
		switch key {
		case "info":
			if err := json.Unmarshal([]byte(value), &snap.Info); err != nil {
				return snap, fmt.Errorf("decode match info: %w", err)
			}
		case "quarter":
			q, err := clock.ParseQuarter(value)
			if err != nil {
				return snap, fmt.Errorf("decode quarter: %w", err)
			}
			snap.Quarter = q
		case "running":
			snap.Running = value == "true"
		}
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("load meta: %w", err)
	}

	if err := s.loadRosters(&snap); err != nil {
		return snap, err
	}
	if err := s.loadEvents(&snap); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) loadRosters(snap *Snapshot) error {
	rows, err := s.db.Query(
		`SELECT team, id, number, name, is_goalkeeper, is_starter, is_captain
		 FROM roster ORDER BY team, CAST(number AS INTEGER)`)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var team string
		var p match.Player
		var gk, starter, captain int
		if err := rows.Scan(&team, &p.ID, &p.Number, &p.Name, &gk, &starter, &captain); err != nil {
			return fmt.Errorf("scan player: %w", err)
		}
		p.IsGoalkeeper, p.IsStarter, p.IsCaptain = gk != 0, starter != 0, captain != 0
		if match.Team(team) == match.TeamAway {
			snap.AwayRoster.Players = append(snap.AwayRoster.Players, p)
		} else {
			snap.HomeRoster.Players = append(snap.HomeRoster.Players, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	brows, err := s.db.Query(`SELECT team, id, name, role FROM bench ORDER BY team, name`)
	if err != nil {
		return fmt.Errorf("load bench: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		var team string
		var b match.BenchPerson
		if err := brows.Scan(&team, &b.ID, &b.Name, &b.Role); err != nil {
			return fmt.Errorf("scan bench: %w", err)
		}
		if match.Team(team) == match.TeamAway {
			snap.AwayRoster.Bench = append(snap.AwayRoster.Bench, b)
		} else {
			snap.HomeRoster.Bench = append(snap.HomeRoster.Bench, b)
		}
	}
	if err := brows.Err(); err != nil {
		return fmt.Errorf("load bench: %w", err)
	}
	return nil
}

func (s *Store) loadEvents(snap *Snapshot) error {
	rows, err := s.db.Query(`SELECT payload FROM event_log ORDER BY position`)
	if err != nil {
		return fmt.Errorf("load event log: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scan event: %w", err)
		}
		var e match.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		snap.Events = append(snap.Events, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load event log: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
