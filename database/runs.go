package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"applyai/models"
)

// RunRepository persists runs and their events in Postgres. It implements
// the run store used by the pipeline; writes are upserts so repeated status
// transitions stay cheap.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) SaveRun(run *models.Run) error {
	_, err := r.db.Exec(`
		INSERT INTO runs (id, profile, company, job_title, job_url, apply_url, status, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			apply_url = EXCLUDED.apply_url,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at`,
		run.ID, run.Profile, run.Company, run.JobTitle, run.JobURL,
		run.ApplyURL, run.Status, run.Error, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving run: %v", err)
	}
	return nil
}

func (r *RunRepository) SaveEvent(runID string, event models.RunEvent) error {
	var data []byte
	if event.Data != nil {
		var err error
		data, err = json.Marshal(event.Data)
		if err != nil {
			data = nil
		}
	}

	_, err := r.db.Exec(`
		INSERT INTO run_events (run_id, seq, stage, level, message, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		runID, event.Seq, event.Stage, event.Level, event.Message, data, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving run event: %v", err)
	}
	return nil
}

// GetRun loads a run with its events, or nil when not found.
func (r *RunRepository) GetRun(id string) (*models.Run, error) {
	run := &models.Run{}
	err := r.db.QueryRow(`
		SELECT id, profile, company, job_title, job_url, apply_url, status, error, created_at, updated_at
		FROM runs WHERE id = $1`, id).Scan(
		&run.ID, &run.Profile, &run.Company, &run.JobTitle, &run.JobURL,
		&run.ApplyURL, &run.Status, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading run: %v", err)
	}

	rows, err := r.db.Query(`
		SELECT seq, stage, level, message, data, created_at
		FROM run_events WHERE run_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("error loading run events: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var event models.RunEvent
		var data []byte
		if err := rows.Scan(&event.Seq, &event.Stage, &event.Level, &event.Message, &data, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning run event: %v", err)
		}
		if len(data) > 0 {
			var decoded interface{}
			if json.Unmarshal(data, &decoded) == nil {
				event.Data = decoded
			}
		}
		run.Events = append(run.Events, event)
	}
	return run, rows.Err()
}
