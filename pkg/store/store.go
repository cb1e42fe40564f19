// Package store persists dashboard view state in a small SQLite database so
// collapsed plans, grouping and the last selection survive restarts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Setting keys
const (
	keyGroupMode    = "group_mode"
	keyHideFinished = "hide_finished"
	keySelected     = "selected"
)

// ViewState is the persisted part of the dashboard
type ViewState struct {
	GroupMode    bool
	HideFinished bool
	HiddenGroups []string
	Selected     string // PR id
}

// Activation records one run of the activate hook
type Activation struct {
	ID       int64
	NodeID   string
	Command  string
	ExitCode int
	Output   string
	RanAt    time.Time
}

// Succeeded reports whether the command exited cleanly
func (a Activation) Succeeded() bool { return a.ExitCode == 0 }

// Store handles view-state persistence
type Store struct {
	db *sql.DB
}

// Open opens or creates the state database at the given path
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; the dashboard never needs more
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS hidden_plans (
		plan_id TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS activations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		node_id TEXT NOT NULL,
		command TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		output TEXT DEFAULT '',
		ran_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activations_node ON activations(node_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Load reads the saved view state. A fresh database yields the zero state.
func (s *Store) Load(ctx context.Context) (ViewState, error) {
	var st ViewState

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return st, fmt.Errorf("read settings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return st, err
		}
		switch k {
		case keyGroupMode:
			st.GroupMode, _ = strconv.ParseBool(v)
		case keyHideFinished:
			st.HideFinished, _ = strconv.ParseBool(v)
		case keySelected:
			st.Selected = v
		}
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	plans, err := s.db.QueryContext(ctx, `SELECT plan_id FROM hidden_plans ORDER BY plan_id`)
	if err != nil {
		return st, fmt.Errorf("read hidden plans: %w", err)
	}
	defer plans.Close()
	for plans.Next() {
		var id string
		if err := plans.Scan(&id); err != nil {
			return st, err
		}
		st.HiddenGroups = append(st.HiddenGroups, id)
	}
	return st, plans.Err()
}

// HasState reports whether any view state was ever saved
func (s *Store) HasState(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&n); err != nil {
		return false, fmt.Errorf("count settings: %w", err)
	}
	return n > 0, nil
}

// Save replaces the stored view state in one transaction
func (s *Store) Save(ctx context.Context, st ViewState) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	settings := map[string]string{
		keyGroupMode:    strconv.FormatBool(st.GroupMode),
		keyHideFinished: strconv.FormatBool(st.HideFinished),
		keySelected:     st.Selected,
	}
	for k, v := range settings {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return fmt.Errorf("write setting %s: %w", k, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM hidden_plans`); err != nil {
		return fmt.Errorf("clear hidden plans: %w", err)
	}
	for _, id := range st.HiddenGroups {
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO hidden_plans (plan_id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("write hidden plan %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// RecordActivation stores the result of an activate hook run
func (s *Store) RecordActivation(ctx context.Context, a *Activation) error {
	if a.RanAt.IsZero() {
		a.RanAt = time.Now()
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO activations (node_id, command, exit_code, output, ran_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.NodeID, a.Command, a.ExitCode, a.Output, a.RanAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// ErrNoActivation is returned when a PR was never activated
var ErrNoActivation = errors.New("no activation recorded")

// LastActivation returns the most recent activation of a PR
func (s *Store) LastActivation(ctx context.Context, nodeID string) (Activation, error) {
	var a Activation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, node_id, command, exit_code, output, ran_at
		FROM activations
		WHERE node_id = ?
		ORDER BY ran_at DESC, id DESC
		LIMIT 1
	`, nodeID).Scan(&a.ID, &a.NodeID, &a.Command, &a.ExitCode, &a.Output, &a.RanAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNoActivation
	}
	return a, err
}
