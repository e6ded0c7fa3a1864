package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

func Connect(host, port, user, password, dbname string) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	return db, nil
}

// Migrate creates the run tables when they do not exist.
func Migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	profile TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	job_title TEXT NOT NULL DEFAULT '',
	job_url TEXT NOT NULL DEFAULT '',
	apply_url TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS run_events (
	id SERIAL PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	seq INT NOT NULL,
	stage TEXT NOT NULL,
	level TEXT NOT NULL,
	message TEXT NOT NULL,
	data JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_events_run_id ON run_events(run_id);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("error migrating schema: %v", err)
	}
	return nil
}
