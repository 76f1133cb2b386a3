package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/server"
)

var issueTokenUserID string

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print a signed bearer token for the job posting write endpoints",
	Long:  "Signs a JWT with JWT_SECRET for the given user ID. Without --user-id a new random ID is used and printed to stderr.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return issueToken(issueTokenUserID, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	issueTokenCmd.Flags().StringVar(&issueTokenUserID, "user-id", "", "User ID (UUID) the token is issued to")
	rootCmd.AddCommand(issueTokenCmd)
}

func issueToken(rawUserID string, stdout, stderr io.Writer) error {
	userID := uuid.New()
	if rawUserID != "" {
		id, err := uuid.Parse(rawUserID)
		if err != nil {
			return fmt.Errorf("invalid --user-id %q: %w", rawUserID, err)
		}
		userID = id
	} else {
		_, _ = fmt.Fprintf(stderr, "Issuing token for new user ID %s\n", userID)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(userID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}
