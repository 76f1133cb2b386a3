// Package db provides job posting storage on PostgreSQL or SQLite.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the job posting store used by the API, the CLI, and the MCP tool.
type Repository interface {
	// ListJobPostings returns one page of postings, newest first, and the total match count.
	ListJobPostings(ctx context.Context, opts ListJobPostingsOptions) ([]JobPosting, int, error)
	// ListMatchCorpus returns every posting, newest first.
	ListMatchCorpus(ctx context.Context) ([]JobPosting, error)
	// GetJobPostingByID returns nil, nil when the posting does not exist.
	GetJobPostingByID(ctx context.Context, id uuid.UUID) (*JobPosting, error)
	CreateJobPosting(ctx context.Context, input *JobPostingCreateInput) (*JobPosting, error)
	// CreateJobPostings inserts every input in order in one transaction; on error nothing is stored.
	CreateJobPostings(ctx context.Context, inputs []*JobPostingCreateInput) ([]JobPosting, error)
	// UpdateJobPosting applies a partial update to a posting owned by postedBy.
	// It returns nil, nil when no such owned posting exists.
	UpdateJobPosting(ctx context.Context, id, postedBy uuid.UUID, input *JobPostingUpdateInput) (*JobPosting, error)
	// DeleteJobPosting deletes the posting only when postedBy owns it and reports whether a row was removed.
	DeleteJobPosting(ctx context.Context, id, postedBy uuid.UUID) (bool, error)
	EnsureSchema(ctx context.Context) error
	Close()
}

var (
	_ Repository = (*DB)(nil)
	_ Repository = (*SQLiteDB)(nil)
)

// Open connects to the store named by databaseURL. sqlite:// and file: URLs
// open a SQLite database; anything else is treated as a PostgreSQL URL.
func Open(ctx context.Context, databaseURL string) (Repository, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	if path, ok := SQLitePath(databaseURL); ok {
		return OpenSQLite(ctx, path)
	}
	return Connect(ctx, databaseURL)
}

// SQLitePath extracts the file path from a sqlite:// or file: URL.
func SQLitePath(databaseURL string) (string, bool) {
	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(databaseURL, prefix) {
			path := strings.TrimPrefix(databaseURL, prefix)
			return path, path != ""
		}
	}
	return "", false
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS job_postings (
		id               UUID PRIMARY KEY,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL,
		availability     TEXT NOT NULL DEFAULT '',
		salary           BIGINT CHECK (salary IS NULL OR salary >= 0),
		location         TEXT NOT NULL DEFAULT '',
		job_type         TEXT NOT NULL DEFAULT '',
		experience_level TEXT NOT NULL DEFAULT '',
		posted_by        UUID,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// seq breaks ties between equal created_at values in insertion order
	`ALTER TABLE job_postings ADD COLUMN IF NOT EXISTS seq BIGSERIAL`,
	`DROP INDEX IF EXISTS idx_job_postings_created_at`,
	`CREATE INDEX IF NOT EXISTS idx_job_postings_created_seq ON job_postings (created_at DESC, seq DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_job_postings_posted_by ON job_postings (posted_by)`,
}

// EnsureSchema creates the job_postings table and its indexes if they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
