package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// JobState is the terminal ledger state of a recorded job.
type JobState string

const (
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateDegraded  JobState = "degraded"
	JobStateFailed    JobState = "failed"
)

// JobRecord is one row of the job ledger.
type JobRecord struct {
	ID             string
	InputPath      string
	Profile        string
	State          JobState
	TotalTasks     int
	CompletedTasks int
	FailedTasks    int
	FailureDetail  string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// ErrJobNotFound indicates the requested job id has no ledger row.
var ErrJobNotFound = errors.New("job not found")

// RecordJobStarted inserts a running ledger row for a new job.
func (s *Store) RecordJobStarted(ctx context.Context, jobID, inputPath, profile string, totalTasks int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, input_path, profile, state, total_tasks, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, inputPath, profile, JobStateRunning, totalTasks, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record job started: %w", err)
	}
	return nil
}

// RecordJobFinished moves a ledger row to its terminal state with final counts.
func (s *Store) RecordJobFinished(ctx context.Context, jobID string, state JobState, completed, failed int, failureDetail string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET state = ?, completed_tasks = ?, failed_tasks = ?, failure_detail = ?, finished_at = ?
		WHERE id = ?`,
		state, completed, failed, failureDetail, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("record job finished: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record job finished: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("record job finished: %w: %s", ErrJobNotFound, jobID)
	}
	return nil
}

// GetJob returns the ledger row for a job id.
func (s *Store) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, input_path, profile, state, total_tasks, completed_tasks, failed_tasks, failure_detail, started_at, finished_at
		FROM jobs WHERE id = ?`, jobID)
	rec, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get job: %w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return rec, nil
}

// ListJobs returns ledger rows newest first, up to limit. A limit of zero
// or less returns all rows.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*JobRecord, error) {
	query := `
		SELECT id, input_path, profile, state, total_tasks, completed_tasks, failed_tasks, failure_detail, started_at, finished_at
		FROM jobs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []*JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*JobRecord, error) {
	var rec JobRecord
	var finished sql.NullTime
	err := row.Scan(&rec.ID, &rec.InputPath, &rec.Profile, &rec.State,
		&rec.TotalTasks, &rec.CompletedTasks, &rec.FailedTasks, &rec.FailureDetail,
		&rec.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		rec.FinishedAt = &t
	}
	return &rec, nil
}
