package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS feedback (
  id TEXT PRIMARY KEY,
  assessment_id TEXT NOT NULL,
  title TEXT NOT NULL,
  rating TEXT NOT NULL,
  comment TEXT,
  user_id TEXT NOT NULL,
  item_data JSONB,
  timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
  deleted_at TIMESTAMPTZ,
  deleted_by TEXT,
  UNIQUE (assessment_id, title, user_id)
);`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, err
	}
	return db, nil
}
