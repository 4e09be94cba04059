// Package store handles SQLite persistence of practice runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Larshalvorhansen/termType/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width and always UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps SQLite access for run history.
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			total_lines INTEGER NOT NULL,
			aborted INTEGER NOT NULL,
			lines INTEGER NOT NULL,
			chars INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS line_results (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			chars INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record implements the TUI recorder by inserting the report.
func (s *Store) Record(ctx context.Context, report model.SessionReport) error {
	if len(report.Lines) == 0 {
		return nil
	}
	return s.InsertRun(ctx, report)
}

// InsertRun stores a report and its line results in one transaction.
func (s *Store) InsertRun(ctx context.Context, report model.SessionReport) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var chars, mistakes int
	var elapsed time.Duration
	for _, line := range report.Lines {
		chars += line.Chars
		mistakes += line.Mistakes
		elapsed += line.Elapsed
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, started_at, ended_at, total_lines, aborted, lines, chars, mistakes, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Source,
		report.StartedAt.UTC().Format(timeLayout),
		report.EndedAt.UTC().Format(timeLayout),
		report.TotalLines,
		report.Aborted,
		len(report.Lines),
		chars,
		mistakes,
		elapsed.Milliseconds(),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO line_results (run_id, position, text, chars, mistakes, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, line := range report.Lines {
		if _, err = stmt.ExecContext(ctx, report.ID, i+1, line.Text, line.Chars, line.Mistakes, line.Elapsed.Milliseconds()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRuns returns run aggregates filtered by the history config, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, cfg.Source)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, source, ended_at, lines, total_lines, aborted, chars, mistakes, duration_ms
		FROM runs
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

	var runs []model.RunAggregate
	for rows.Next() {
		var agg model.RunAggregate
		var endedAt string
		if err := rows.Scan(&agg.ID, &agg.Source, &endedAt, &agg.Lines, &agg.TotalLines, &agg.Aborted, &agg.Chars, &agg.Mistakes, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListLines returns the line results of one run in typing order.
func (s *Store) ListLines(ctx context.Context, runID string) ([]model.LineResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, chars, mistakes, duration_ms
		 FROM line_results
		 WHERE run_id = ?
		 ORDER BY position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var lines []model.LineResult
	for rows.Next() {
		var line model.LineResult
		var durationMs int64
		if err := rows.Scan(&line.Text, &line.Chars, &line.Mistakes, &durationMs); err != nil {
			return nil, err
		}
		line.Elapsed = time.Duration(durationMs) * time.Millisecond
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
