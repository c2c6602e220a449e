package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run kinds.
const (
	KindRecognize = "recognize"
	KindSolve     = "solve"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded pipeline invocation.
type Run struct {
	RunID         string
	Kind          string
	CreatedAt     time.Time
	Success       bool
	Error         *string
	KociembaCode  *string
	RawSolution   *string
	StepCount     *int
	Faces         *int
	FallbackFaces *int
	ArtifactDir   *string
}

// Stats summarizes recorded solves.
type Stats struct {
	Solves       int
	Succeeded    int
	AverageSteps float64
}

// RunRepository provides access to the runs table.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run. An empty RunID is filled with a new uuid and a zero
// CreatedAt with the current time. The stored id is returned.
func (r *RunRepository) Create(ctx context.Context, run Run) (string, error) {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, kind, created_at, success, error, kociemba_code,
			raw_solution, step_count, faces, fallback_faces, artifact_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Kind, run.CreatedAt.UTC().Format(timeLayout), run.Success, run.Error,
		run.KociembaCode, run.RawSolution, run.StepCount, run.Faces, run.FallbackFaces, run.ArtifactDir)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return run.RunID, nil
}

const runColumns = `run_id, kind, created_at, success, error, kociemba_code,
	raw_solution, step_count, faces, fallback_faces, artifact_dir`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var createdAt string
	err := s.Scan(
		&run.RunID, &run.Kind, &createdAt, &run.Success, &run.Error, &run.KociembaCode,
		&run.RawSolution, &run.StepCount, &run.Faces, &run.FallbackFaces, &run.ArtifactDir,
	)
	if err != nil {
		return nil, err
	}
	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &run, nil
}

// Get retrieves a run by id. It returns nil, nil when no run matches.
func (r *RunRepository) Get(ctx context.Context, runID string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A kind of "" matches all.
func (r *RunRepository) List(ctx context.Context, kind string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE (? = '' OR kind = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`, kind, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// LastSolution returns the raw solution of the most recent successful solve
// of code, or "" when there is none.
func (r *RunRepository) LastSolution(ctx context.Context, code string) (string, error) {
	var raw sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT raw_solution FROM runs
		WHERE kind = 'solve' AND success = 1 AND kociemba_code = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, code).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up solution: %w", err)
	}
	return raw.String, nil
}

// SolveStats summarizes all recorded solves.
func (r *RunRepository) SolveStats(ctx context.Context) (Stats, error) {
	var s Stats
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(success), 0),
			AVG(CASE WHEN success = 1 THEN step_count END)
		FROM runs WHERE kind = 'solve'
	`).Scan(&s.Solves, &s.Succeeded, &avg)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	s.AverageSteps = avg.Float64
	return s, nil
}

// Prune deletes runs older than cutoff and returns how many were removed.
func (r *RunRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}
