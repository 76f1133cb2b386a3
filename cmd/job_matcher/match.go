package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/db"
	"github.com/jonathan/job-matcher/internal/matching"
	"github.com/jonathan/job-matcher/internal/observability"
	"github.com/jonathan/job-matcher/internal/schemas"
	"github.com/jonathan/job-matcher/internal/types"
	schemafiles "github.com/jonathan/job-matcher/schemas"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank job postings against requirements",
	Long: `Rank a corpus of job postings against free-text requirements and optional filters.
The corpus comes from --jobs or, when omitted, from the database. The result is
the same JSON envelope the API returns.`,
	RunE: runMatch,
}

// matchOptions holds the match command inputs.
type matchOptions struct {
	QueryFile   string
	Query       types.MatchQuery // inline flags; non-empty values override the query file
	JobsFile    string
	DatabaseURL string
	Out         string
	Threshold   int
	Debug       bool
	Verbose     bool
}

var matchOpts = matchOptions{Threshold: matching.DefaultThreshold}

func init() {
	f := matchCmd.Flags()
	f.StringVarP(&matchOpts.QueryFile, "query", "q", "", "Path to a MatchQuery JSON file")
	f.StringVar(&matchOpts.Query.TextDescription, "text", "", "Free-text requirements")
	f.StringVar(&matchOpts.Query.Skills, "skills", "", "Desired skills")
	f.StringVar(&matchOpts.Query.ExperienceLevel, "experience", "", "Experience level")
	f.StringVar(&matchOpts.Query.Location, "location", "", "Preferred location (or any)")
	f.StringVar(&matchOpts.Query.JobType, "job-type", "", "Job type (or any)")
	f.StringVar(&matchOpts.Query.SalaryRange, "salary", "", "Salary constraint, e.g. \"under 50000\"")
	f.StringVarP(&matchOpts.JobsFile, "jobs", "j", "", "Path to a JobCorpus JSON file (default: read from the database)")
	f.StringVar(&matchOpts.DatabaseURL, "database-url", "", "PostgreSQL URL or sqlite://<path>")
	f.StringVarP(&matchOpts.Out, "out", "o", "", "Path to the output JSON file (default: stdout)")
	f.IntVar(&matchOpts.Threshold, "threshold", matching.DefaultThreshold, "Minimum match percentage to keep a posting")
	f.BoolVar(&matchOpts.Debug, "debug", false, "Include per-posting score breakdowns")
	f.BoolVarP(&matchOpts.Verbose, "verbose", "v", false, "Print a summary to stderr")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	return executeMatch(cmd.Context(), matchOpts, settings, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func executeMatch(ctx context.Context, opts matchOptions, cfg config.Config, log *zap.Logger, stdout, stderr io.Writer) error {
	query, err := loadQuery(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.MatchTimeout())
	defer cancel()

	corpus, err := loadCorpus(ctx, opts, cfg)
	if err != nil {
		return err
	}
	log.Debug("corpus loaded", zap.Int("postings", len(corpus)))

	ranker := matching.NewRanker(
		matching.WithThreshold(opts.Threshold),
		matching.WithWorkers(cfg.Workers),
		matching.WithLogger(log.Named("ranker")),
	)
	ranking, err := ranker.Rank(ctx, query, corpus)
	if err != nil {
		return fmt.Errorf("failed to rank jobs: %w", err)
	}

	jsonOutput, err := json.MarshalIndent(ranking.Response(opts.Debug), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match response to JSON: %w", err)
	}

	// Output validation is a safety check; a failure is reported but not fatal
	if err := schemas.ValidateDocument(schemafiles.MatchResponse, jsonOutput); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: Output validation failed: %v\n", err)
	}

	if opts.Verbose {
		observability.NewPrinter(stderr).PrintMatchResults(ranking)
	}

	if opts.Out == "" {
		_, err := fmt.Fprintln(stdout, string(jsonOutput))
		return err
	}
	if err := writeFile(opts.Out, jsonOutput); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stderr, "Matched %d of %d jobs to %s\n", len(ranking.Results), len(corpus), opts.Out)
	return nil
}

// loadQuery reads the query file, applies inline overrides, and validates the result.
func loadQuery(opts matchOptions) (*types.MatchQuery, error) {
	var query types.MatchQuery
	if opts.QueryFile != "" {
		content, err := os.ReadFile(opts.QueryFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read query file %s: %w", opts.QueryFile, err)
		}
		if err := schemas.ValidateDocument(schemafiles.MatchQuery, content); err != nil {
			return nil, fmt.Errorf("invalid query file %s: %w", opts.QueryFile, err)
		}
		if err := json.Unmarshal(content, &query); err != nil {
			return nil, fmt.Errorf("failed to unmarshal query JSON: %w", err)
		}
	}

	overrides := []struct {
		dst *string
		src string
	}{
		{&query.TextDescription, opts.Query.TextDescription},
		{&query.Skills, opts.Query.Skills},
		{&query.ExperienceLevel, opts.Query.ExperienceLevel},
		{&query.Location, opts.Query.Location},
		{&query.JobType, opts.Query.JobType},
		{&query.SalaryRange, opts.Query.SalaryRange},
	}
	for _, o := range overrides {
		if o.src != "" {
			*o.dst = o.src
		}
	}

	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query (--text or text_description is required): %w", err)
	}
	return &query, nil
}

// loadCorpus reads the corpus file, or the database when no file is given.
func loadCorpus(ctx context.Context, opts matchOptions, cfg config.Config) ([]types.JobPosting, error) {
	if opts.JobsFile != "" {
		return readCorpusFile(opts.JobsFile)
	}

	url := opts.DatabaseURL
	if url == "" {
		url = cfg.DatabaseURL
	}
	if url == "" {
		return nil, fmt.Errorf("either --jobs or a database URL is required")
	}

	repo, err := db.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	rows, err := repo.ListMatchCorpus(ctx)
	if err != nil {
		return nil, err
	}
	return db.Snapshots(rows), nil
}

// readCorpusFile validates and decodes a JobCorpus file.
func readCorpusFile(path string) ([]types.JobPosting, error) {
	if err := schemas.ValidateFile(schemafiles.JobCorpus, path); err != nil {
		return nil, fmt.Errorf("invalid jobs file %s: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file %s: %w", path, err)
	}

	var corpus types.JobCorpus
	if err := json.Unmarshal(content, &corpus); err != nil {
		return nil, fmt.Errorf("failed to unmarshal jobs JSON: %w", err)
	}
	return corpus.Jobs, nil
}

// writeFile writes data to path, creating the parent directory.
func writeFile(path string, data []byte) error {
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
