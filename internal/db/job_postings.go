package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobPostingColumns = `id, title, description, availability, salary, location, job_type,
	experience_level, posted_by, created_at, updated_at`

// postgresOrder is newest first; seq orders postings created in the same instant.
const postgresOrder = `ORDER BY created_at DESC, seq DESC`

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanJobPosting(row pgx.Row) (*JobPosting, error) {
	var p JobPosting
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Availability, &p.Salary, &p.Location,
		&p.JobType, &p.ExperienceLevel, &p.PostedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetJobPostingByID retrieves a job posting by its ID
func (db *DB) GetJobPostingByID(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	p, err := scanJobPosting(db.pool.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return p, nil
}

func insertJobPosting(ctx context.Context, q rowQuerier, input *JobPostingCreateInput) (*JobPosting, error) {
	var createdAt *time.Time
	if !input.CreatedAt.IsZero() {
		t := input.CreatedAt.UTC()
		createdAt = &t
	}
	return scanJobPosting(q.QueryRow(ctx,
		`INSERT INTO job_postings (id, title, description, availability, salary, location,
		                           job_type, experience_level, posted_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
		 RETURNING `+jobPostingColumns,
		uuid.New(), input.Title, input.Description, input.Availability, input.Salary,
		input.Location, input.JobType, input.ExperienceLevel, input.PostedBy, createdAt,
	))
}

// CreateJobPosting inserts a new posting and returns the stored row
func (db *DB) CreateJobPosting(ctx context.Context, input *JobPostingCreateInput) (*JobPosting, error) {
	p, err := insertJobPosting(ctx, db.pool, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}
	return p, nil
}

// CreateJobPostings inserts all inputs in one transaction
func (db *DB) CreateJobPostings(ctx context.Context, inputs []*JobPostingCreateInput) ([]JobPosting, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	postings := make([]JobPosting, 0, len(inputs))
	for i, in := range inputs {
		p, err := insertJobPosting(ctx, tx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to create job posting %d (%q): %w", i+1, in.Title, err)
		}
		postings = append(postings, *p)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit job postings: %w", err)
	}
	return postings, nil
}

// UpdateJobPosting applies a partial update to a posting owned by postedBy
func (db *DB) UpdateJobPosting(ctx context.Context, id, postedBy uuid.UUID, input *JobPostingUpdateInput) (*JobPosting, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanJobPosting(tx.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1 AND posted_by = $2 FOR UPDATE`,
		id, postedBy,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}

	next := input.Apply(*current)
	p, err := scanJobPosting(tx.QueryRow(ctx,
		`UPDATE job_postings
		 SET title = $2, description = $3, availability = $4, salary = $5, location = $6,
		     job_type = $7, experience_level = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobPostingColumns,
		id, next.Title, next.Description, next.Availability, next.Salary,
		next.Location, next.JobType, next.ExperienceLevel,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}
	return p, nil
}

// DeleteJobPosting deletes a posting owned by postedBy
func (db *DB) DeleteJobPosting(ctx context.Context, id, postedBy uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM job_postings WHERE id = $1 AND posted_by = $2`,
		id, postedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete job posting: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListJobPostings lists job postings with optional keyword and owner filters and pagination
func (db *DB) ListJobPostings(ctx context.Context, opts ListJobPostingsOptions) ([]JobPosting, int, error) {
	opts = opts.normalized()

	var conditions []string
	var args []any
	if opts.Keyword != "" {
		args = append(args, likePattern(opts.Keyword))
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if opts.PostedBy != nil {
		args = append(args, *opts.PostedBy)
		conditions = append(conditions, fmt.Sprintf("posted_by = $%d", len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	err := db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM job_postings "+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count job postings: %w", err)
	}

	argIndex := len(args) + 1
	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM job_postings %s
		 %s
		 LIMIT $%d OFFSET $%d`,
		jobPostingColumns, whereClause, postgresOrder, argIndex, argIndex+1,
	)

	postings, err := db.queryJobPostings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return postings, total, nil
}

// ListMatchCorpus returns every posting, newest first
func (db *DB) ListMatchCorpus(ctx context.Context) ([]JobPosting, error) {
	return db.queryJobPostings(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings `+postgresOrder)
}

func (db *DB) queryJobPostings(ctx context.Context, query string, args ...any) ([]JobPosting, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	postings := []JobPosting{}
	for rows.Next() {
		p, err := scanJobPosting(rows)
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
