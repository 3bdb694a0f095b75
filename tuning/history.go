package tuning

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS trials (
    run_id TEXT NOT NULL,
    strategy TEXT NOT NULL,
    step INTEGER NOT NULL,
    params TEXT NOT NULL,
    accuracy REAL NOT NULL,
    best_accuracy REAL NOT NULL,
    degenerate INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trials_run ON trials(run_id, step);
`

// HistoryRow is a stored trial.
type HistoryRow struct {
	RunID        string
	Strategy     string
	Step         int
	Params       string
	Accuracy     float64
	BestAccuracy float64
	Degenerate   int
	CreatedAt    time.Time
}

// SQLiteHistory keeps every trial of every run in a SQLite database.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens the database at dsn, a file path or ":memory:".
func NewSQLiteHistory(dsn string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteHistory{db: db}, nil
}

func (h *SQLiteHistory) Record(ctx context.Context, run Run, trial Trial) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO trials (run_id, strategy, step, params, accuracy, best_accuracy, degenerate, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Strategy, trial.Step, trial.Params.String(),
		trial.Accuracy, trial.BestAccuracy, trial.Score.Degenerate, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record trial: %w", err)
	}
	return nil
}

// Trials returns the trials of a run in step order.
func (h *SQLiteHistory) Trials(ctx context.Context, runID string) ([]HistoryRow, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, strategy, step, params, accuracy, best_accuracy, degenerate, created_at
		 FROM trials WHERE run_id = ? ORDER BY step, created_at`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials: %w", err)
	}
	defer rows.Close()

	var result []HistoryRow
	for rows.Next() {
		var (
			row       HistoryRow
			createdAt int64
		)
		if err := rows.Scan(&row.RunID, &row.Strategy, &row.Step, &row.Params,
			&row.Accuracy, &row.BestAccuracy, &row.Degenerate, &createdAt); err != nil {
			return nil, err
		}
		row.CreatedAt = time.UnixMilli(createdAt)
		result = append(result, row)
	}
	return result, rows.Err()
}

func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
