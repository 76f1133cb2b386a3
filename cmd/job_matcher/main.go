// Package main provides the job_matcher CLI: the HTTP API server plus offline ranking,
// import, migration, and token tooling.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/logging"
)

var (
	configPath string
	logLevel   string
	logJSON    bool

	// Resolved by loadSettings before any subcommand runs.
	settings = config.Defaults()
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:               "job_matcher",
	Short:             "Job matching relevance engine",
	Long:              "job_matcher ranks job postings against free-text requirements and optional filters, over a REST API, an MCP tool, or the command line.",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit JSON log lines")
}

// loadSettings resolves configuration with precedence flag > config file > env > default
// and builds the logger.
func loadSettings(cmd *cobra.Command, _ []string) error {
	var file *config.Config
	if configPath != "" {
		f, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		file = f
	}

	cfg, err := config.Resolve(file)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = logJSON
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}
	settings, logger = cfg, l
	return nil
}

// databaseURL prefers the command's --database-url flag over the resolved settings.
func databaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if settings.DatabaseURL != "" {
		return settings.DatabaseURL, nil
	}
	return "", fmt.Errorf("database URL is required: set --database-url, database_url in the config file, or DATABASE_URL")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
