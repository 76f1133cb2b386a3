package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-matcher/internal/db"
)

var migrateDatabaseURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the job postings schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, err := databaseURL(migrateDatabaseURL)
		if err != nil {
			return err
		}
		return migrate(cmd.Context(), url, cmd.OutOrStdout())
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "database-url", "", "PostgreSQL URL or sqlite://<path>")
	rootCmd.AddCommand(migrateCmd)
}

func migrate(ctx context.Context, url string, out io.Writer) error {
	repo, err := db.Open(ctx, url)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, "Schema is up to date")
	return err
}
