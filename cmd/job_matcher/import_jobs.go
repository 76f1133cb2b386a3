package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/db"
)

var (
	importJobsFile        string
	importJobsDatabaseURL string
	importJobsPostedBy    string
)

var importJobsCmd = &cobra.Command{
	Use:   "import-jobs",
	Short: "Import job postings from a JobCorpus file",
	Long: `Validates a JobCorpus JSON file and inserts every posting into the database in one
transaction: either all postings are stored or none are.

The file is read newest first, like the corpus the API ranks. A posting's created_at is kept
when present; postings without one are stamped so that the database lists them in file order.`,
	RunE:  runImportJobs,
}

func init() {
	importJobsCmd.Flags().StringVarP(&importJobsFile, "jobs", "j", "", "Path to a JobCorpus JSON file (required)")
	importJobsCmd.Flags().StringVar(&importJobsDatabaseURL, "database-url", "", "PostgreSQL URL or sqlite://<path>")
	importJobsCmd.Flags().StringVar(&importJobsPostedBy, "posted-by", "", "Owner user ID for postings without posted_by")

	if err := importJobsCmd.MarkFlagRequired("jobs"); err != nil {
		panic(fmt.Sprintf("failed to mark jobs flag as required: %v", err))
	}

	rootCmd.AddCommand(importJobsCmd)
}

func runImportJobs(cmd *cobra.Command, _ []string) error {
	url, err := databaseURL(importJobsDatabaseURL)
	if err != nil {
		return err
	}
	n, err := importJobs(cmd.Context(), importJobsFile, url, importJobsPostedBy, logger)
	if err != nil {
		return err
	}
	return printImported(cmd.OutOrStdout(), n, importJobsFile)
}

func printImported(w io.Writer, n int, path string) error {
	_, err := fmt.Fprintf(w, "Imported %d job postings from %s\n", n, path)
	return err
}

// importJobs inserts the corpus at path and returns the number of postings stored.
func importJobs(ctx context.Context, path, url, postedBy string, log *zap.Logger) (int, error) {
	var owner *uuid.UUID
	if postedBy != "" {
		id, err := uuid.Parse(postedBy)
		if err != nil {
			return 0, fmt.Errorf("invalid --posted-by %q: %w", postedBy, err)
		}
		owner = &id
	}

	corpus, err := readCorpusFile(path)
	if err != nil {
		return 0, err
	}

	inputs := make([]*db.JobPostingCreateInput, len(corpus))
	for i := range corpus {
		in := db.InputFromSnapshot(&corpus[i])
		if in.PostedBy == nil {
			in.PostedBy = owner
		}
		if err := in.Validate(); err != nil {
			return 0, fmt.Errorf("job %d (%q): %w", i+1, corpus[i].Title, err)
		}
		inputs[i] = in
	}

	// Insert oldest first: stamped rows then come back newest first in file order.
	slices.Reverse(inputs)

	repo, err := db.Open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	postings, err := repo.CreateJobPostings(ctx, inputs)
	if err != nil {
		return 0, fmt.Errorf("failed to import %s: %w", path, err)
	}
	for _, p := range postings {
		log.Debug("job posting imported", zap.Stringer("id", p.ID), zap.String("title", p.Title))
	}
	return len(postings), nil
}
