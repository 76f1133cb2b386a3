package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// sqliteTimeFormat is fixed width so that text ordering is chronological.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteSchemaVersion is stored in PRAGMA user_version after migration.
const sqliteSchemaVersion = 1

// SQLiteDB is a job posting store in a single SQLite file.
type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database file at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite wants a single writer
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLiteDB{db: pool, now: time.Now}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *SQLiteDB) Close() {
	if s != nil && s.db != nil {
		_ = s.db.Close()
	}
}

// EnsureSchema migrates the database to the current schema version.
func (s *SQLiteDB) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= sqliteSchemaVersion {
		return tx.Commit()
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS job_postings (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL,
			availability     TEXT NOT NULL DEFAULT '',
			salary           INTEGER CHECK (salary IS NULL OR salary >= 0),
			location         TEXT NOT NULL DEFAULT '',
			job_type         TEXT NOT NULL DEFAULT '',
			experience_level TEXT NOT NULL DEFAULT '',
			posted_by        TEXT,
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_job_postings_created_at ON job_postings (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_job_postings_posted_by ON job_postings (posted_by)`,
		fmt.Sprintf(`PRAGMA user_version = %d`, sqliteSchemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return tx.Commit()
}

const sqliteOrder = `ORDER BY created_at DESC, rowid DESC`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJobPosting(row rowScanner) (*JobPosting, error) {
	var (
		p                    JobPosting
		id                   string
		salary               sql.NullInt64
		postedBy             sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &p.Title, &p.Description, &p.Availability, &salary, &p.Location,
		&p.JobType, &p.ExperienceLevel, &postedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid job posting id %q: %w", id, err)
	}
	if salary.Valid {
		v := salary.Int64
		p.Salary = &v
	}
	if postedBy.Valid {
		owner, err := uuid.Parse(postedBy.String)
		if err != nil {
			return nil, fmt.Errorf("invalid posted_by %q: %w", postedBy.String, err)
		}
		p.PostedBy = &owner
	}
	if p.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if p.UpdatedAt, err = time.Parse(sqliteTimeFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	return &p, nil
}

// GetJobPostingByID retrieves a job posting by its ID
func (s *SQLiteDB) GetJobPostingByID(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	p, err := scanSQLiteJobPosting(s.db.QueryRowContext(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = ?`,
		id.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return p, nil
}

// sqlExecer is satisfied by both *sql.DB and *sql.Tx.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteDB) insertJobPosting(ctx context.Context, exec sqlExecer, input *JobPostingCreateInput) (*JobPosting, error) {
	now := s.now().UTC()
	createdAt := now
	if !input.CreatedAt.IsZero() {
		createdAt = input.CreatedAt.UTC()
	}
	p := &JobPosting{
		ID:              uuid.New(),
		Title:           input.Title,
		Description:     input.Description,
		Availability:    input.Availability,
		Location:        input.Location,
		JobType:         input.JobType,
		ExperienceLevel: input.ExperienceLevel,
	}

	var salary sql.NullInt64
	if input.Salary != nil {
		v := *input.Salary
		p.Salary = &v
		salary = sql.NullInt64{Int64: v, Valid: true}
	}
	var postedBy sql.NullString
	if input.PostedBy != nil {
		owner := *input.PostedBy
		p.PostedBy = &owner
		postedBy = sql.NullString{String: owner.String(), Valid: true}
	}

	created, updated := createdAt.Format(sqliteTimeFormat), now.Format(sqliteTimeFormat)
	_, err := exec.ExecContext(ctx,
		`INSERT INTO job_postings (id, title, description, availability, salary, location,
		                           job_type, experience_level, posted_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Title, p.Description, p.Availability, salary, p.Location,
		p.JobType, p.ExperienceLevel, postedBy, created, updated,
	)
	if err != nil {
		return nil, err
	}
	// Round-trip through the stored text form so callers see what a later read returns.
	p.CreatedAt, _ = time.Parse(sqliteTimeFormat, created)
	p.UpdatedAt, _ = time.Parse(sqliteTimeFormat, updated)
	return p, nil
}

// CreateJobPosting inserts a new posting and returns the stored row
func (s *SQLiteDB) CreateJobPosting(ctx context.Context, input *JobPostingCreateInput) (*JobPosting, error) {
	p, err := s.insertJobPosting(ctx, s.db, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}
	return p, nil
}

// CreateJobPostings inserts all inputs in one transaction
func (s *SQLiteDB) CreateJobPostings(ctx context.Context, inputs []*JobPostingCreateInput) ([]JobPosting, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	postings := make([]JobPosting, 0, len(inputs))
	for i, in := range inputs {
		p, err := s.insertJobPosting(ctx, tx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to create job posting %d (%q): %w", i+1, in.Title, err)
		}
		postings = append(postings, *p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job postings: %w", err)
	}
	return postings, nil
}

// UpdateJobPosting applies a partial update to a posting owned by postedBy
func (s *SQLiteDB) UpdateJobPosting(ctx context.Context, id, postedBy uuid.UUID, input *JobPostingUpdateInput) (*JobPosting, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanSQLiteJobPosting(tx.QueryRowContext(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = ? AND posted_by = ?`,
		id.String(), postedBy.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}

	p := input.Apply(*current)
	updated := s.now().UTC().Format(sqliteTimeFormat)
	var salary sql.NullInt64
	if p.Salary != nil {
		salary = sql.NullInt64{Int64: *p.Salary, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE job_postings
		 SET title = ?, description = ?, availability = ?, salary = ?, location = ?,
		     job_type = ?, experience_level = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Description, p.Availability, salary, p.Location,
		p.JobType, p.ExperienceLevel, updated, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}
	p.UpdatedAt, _ = time.Parse(sqliteTimeFormat, updated)
	return &p, nil
}

// DeleteJobPosting deletes a posting owned by postedBy
func (s *SQLiteDB) DeleteJobPosting(ctx context.Context, id, postedBy uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM job_postings WHERE id = ? AND posted_by = ?`,
		id.String(), postedBy.String(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete job posting: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete job posting: %w", err)
	}
	return n > 0, nil
}

// ListJobPostings lists job postings with an optional keyword filter and pagination
func (s *SQLiteDB) ListJobPostings(ctx context.Context, opts ListJobPostingsOptions) ([]JobPosting, int, error) {
	opts = opts.normalized()

	var conditions []string
	var args []any
	if opts.Keyword != "" {
		pattern := likePattern(opts.Keyword)
		conditions = append(conditions, `(lower(title) LIKE ? ESCAPE '\' OR lower(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if opts.PostedBy != nil {
		conditions = append(conditions, `posted_by = ?`)
		args = append(args, opts.PostedBy.String())
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM job_postings "+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count job postings: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	postings, err := s.queryJobPostings(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings `+whereClause+` `+sqliteOrder+` LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	return postings, total, nil
}

// ListMatchCorpus returns every posting, newest first
func (s *SQLiteDB) ListMatchCorpus(ctx context.Context) ([]JobPosting, error) {
	return s.queryJobPostings(ctx, `SELECT `+jobPostingColumns+` FROM job_postings `+sqliteOrder)
}

func (s *SQLiteDB) queryJobPostings(ctx context.Context, query string, args ...any) ([]JobPosting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	postings := []JobPosting{}
	for rows.Next() {
		p, err := scanSQLiteJobPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		postings = append(postings, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return postings, nil
}
