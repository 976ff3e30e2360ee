// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuipasat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_min INTEGER NOT NULL,
			start_isi_ms INTEGER NOT NULL,
			final_isi_ms INTEGER NOT NULL,
			min_isi_ms INTEGER NOT NULL,
			right_count INTEGER NOT NULL,
			wrong_count INTEGER NOT NULL,
			missed_count INTEGER NOT NULL,
			stopped_by TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_trials (
			session_id INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			stimulus INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			isi_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, ordinal)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its trials. A missing RunID is
// filled with a fresh UUID.
func (s *Store) InsertSession(ctx context.Context, result model.SessionResult) (int64, error) {
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (run_id, started_at, ended_at, duration_min, start_isi_ms, final_isi_ms, min_isi_ms, right_count, wrong_count, missed_count, stopped_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		formatTime(result.StartedAt),
		formatTime(result.EndedAt),
		result.DurationMin,
		result.StartISIMs,
		result.FinalISIMs,
		result.MinISIMs,
		result.Right,
		result.Wrong,
		result.Missed,
		result.StoppedBy,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(result.Trials) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO session_trials (session_id, ordinal, stimulus, outcome, isi_ms)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, tr := range result.Trials {
			if _, err = stmt.ExecContext(ctx, id, tr.Ordinal, tr.Stimulus, tr.Outcome, tr.ISIMs); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, run_id, started_at, ended_at, duration_min, start_isi_ms, final_isi_ms, min_isi_ms,
		right_count, wrong_count, missed_count, stopped_by
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var startedAt, endedAt string
		if err := rows.Scan(&agg.SessionID, &agg.RunID, &startedAt, &endedAt, &agg.DurationMin,
			&agg.StartISIMs, &agg.FinalISIMs, &agg.MinISIMs,
			&agg.Right, &agg.Wrong, &agg.Missed, &agg.StoppedBy); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if agg.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListTrials returns the trials of the given sessions in presentation order.
func (s *Store) ListTrials(ctx context.Context, sessionIDs []int64) (map[int64][]model.Trial, error) {
	if len(sessionIDs) == 0 {
		return map[int64][]model.Trial{}, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT session_id, ordinal, stimulus, outcome, isi_ms
		FROM session_trials
		WHERE session_id IN (%s)
		ORDER BY session_id, ordinal`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[int64][]model.Trial{}
	for rows.Next() {
		var sessionID int64
		var tr model.Trial
		if err := rows.Scan(&sessionID, &tr.Ordinal, &tr.Stimulus, &tr.Outcome, &tr.ISIMs); err != nil {
			return nil, err
		}
		result[sessionID] = append(result[sessionID], tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Timestamps are stored as fixed-width UTC text so that string comparison in
// SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
