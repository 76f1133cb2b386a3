//go:build integration

package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	return db
}

func cleanupPosting(t *testing.T, db *DB, id uuid.UUID) {
	t.Helper()
	_, _ = db.pool.Exec(context.Background(), "DELETE FROM job_postings WHERE id = $1", id)
}

func TestIntegration_JobPosting_CRUD(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	owner := uuid.New()
	marker := "integration-" + uuid.New().String()

	input := validInput()
	input.Description = "Frontend work " + marker
	input.PostedBy = &owner

	posting, err := db.CreateJobPosting(ctx, input)
	if err != nil {
		t.Fatalf("CreateJobPosting failed: %v", err)
	}
	defer cleanupPosting(t, db, posting.ID)

	t.Run("get by id", func(t *testing.T) {
		got, err := db.GetJobPostingByID(ctx, posting.ID)
		if err != nil {
			t.Fatalf("GetJobPostingByID failed: %v", err)
		}
		if got == nil {
			t.Fatal("Posting not found")
		}
		if got.Title != input.Title {
			t.Errorf("Title = %q, want %q", got.Title, input.Title)
		}
		if got.Salary == nil || *got.Salary != 50000 {
			t.Errorf("Salary = %v, want 50000", got.Salary)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		got, err := db.GetJobPostingByID(ctx, uuid.New())
		if err != nil {
			t.Fatalf("GetJobPostingByID failed: %v", err)
		}
		if got != nil {
			t.Error("Expected nil for missing posting")
		}
	})

	t.Run("keyword listing", func(t *testing.T) {
		postings, total, err := db.ListJobPostings(ctx, ListJobPostingsOptions{Keyword: marker})
		if err != nil {
			t.Fatalf("ListJobPostings failed: %v", err)
		}
		if total != 1 || len(postings) != 1 {
			t.Fatalf("Expected 1 posting, got total=%d len=%d", total, len(postings))
		}
	})

	t.Run("corpus contains posting", func(t *testing.T) {
		corpus, err := db.ListMatchCorpus(ctx)
		if err != nil {
			t.Fatalf("ListMatchCorpus failed: %v", err)
		}
		found := false
		for _, p := range corpus {
			if p.ID == posting.ID {
				found = true
			}
		}
		if !found {
			t.Error("Posting missing from match corpus")
		}
	})

	t.Run("delete is owner only", func(t *testing.T) {
		deleted, err := db.DeleteJobPosting(ctx, posting.ID, uuid.New())
		if err != nil {
			t.Fatalf("DeleteJobPosting failed: %v", err)
		}
		if deleted {
			t.Error("Non-owner should not delete posting")
		}

		deleted, err = db.DeleteJobPosting(ctx, posting.ID, owner)
		if err != nil {
			t.Fatalf("DeleteJobPosting failed: %v", err)
		}
		if !deleted {
			t.Error("Owner should delete posting")
		}
	})
}

func TestIntegration_EqualCreatedAt_NewestInsertFirst(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	owner := uuid.New()
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var inputs []*JobPostingCreateInput
	for _, title := range []string{"first", "second", "third"} {
		in := validInput()
		in.Title = title
		in.PostedBy = &owner
		in.CreatedAt = stamp
		inputs = append(inputs, in)
	}
	created, err := db.CreateJobPostings(ctx, inputs)
	if err != nil {
		t.Fatalf("CreateJobPostings failed: %v", err)
	}
	for _, p := range created {
		defer cleanupPosting(t, db, p.ID)
		if !p.CreatedAt.Equal(stamp) {
			t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, stamp)
		}
	}

	for run := 0; run < 3; run++ {
		postings, _, err := db.ListJobPostings(ctx, ListJobPostingsOptions{PostedBy: &owner})
		if err != nil {
			t.Fatalf("ListJobPostings failed: %v", err)
		}
		var titles []string
		for _, p := range postings {
			titles = append(titles, p.Title)
		}
		if strings.Join(titles, ",") != "third,second,first" {
			t.Fatalf("run %d: order = %v, want [third second first]", run, titles)
		}
	}
}

func TestIntegration_CreateJobPostings_RollsBack(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	owner := uuid.New()

	good := validInput()
	good.PostedBy = &owner
	bad := validInput()
	bad.PostedBy = &owner
	negative := int64(-1)
	bad.Salary = &negative // violates the salary CHECK constraint

	if _, err := db.CreateJobPostings(ctx, []*JobPostingCreateInput{good, bad}); err == nil {
		t.Fatal("Expected an error from the second insert")
	}

	_, total, err := db.ListJobPostings(ctx, ListJobPostingsOptions{PostedBy: &owner})
	if err != nil {
		t.Fatalf("ListJobPostings failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected no postings after rollback, got %d", total)
	}
}

func TestIntegration_UpdateJobPosting(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	owner := uuid.New()

	in := validInput()
	in.PostedBy = &owner
	posting, err := db.CreateJobPosting(ctx, in)
	if err != nil {
		t.Fatalf("CreateJobPosting failed: %v", err)
	}
	defer cleanupPosting(t, db, posting.ID)

	salary := int64(90000)
	update := &JobPostingUpdateInput{Title: "Staff React Developer", Salary: &salary}

	got, err := db.UpdateJobPosting(ctx, posting.ID, uuid.New(), update)
	if err != nil {
		t.Fatalf("UpdateJobPosting failed: %v", err)
	}
	if got != nil {
		t.Error("Non-owner should not update posting")
	}

	got, err = db.UpdateJobPosting(ctx, posting.ID, owner, update)
	if err != nil {
		t.Fatalf("UpdateJobPosting failed: %v", err)
	}
	if got == nil {
		t.Fatal("Owner update returned no posting")
	}
	if got.Title != "Staff React Developer" || got.Description != in.Description {
		t.Errorf("Unexpected posting after update: %+v", got)
	}
	if got.Salary == nil || *got.Salary != 90000 {
		t.Errorf("Salary = %v, want 90000", got.Salary)
	}
}
