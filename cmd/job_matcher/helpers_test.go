package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-matcher/internal/types"
)

const reactRequirements = "Looking for React frontend developer"

// testCorpus holds one posting that matches reactRequirements (43%) and one category reject.
func testCorpus() types.JobCorpus {
	return types.JobCorpus{Jobs: []types.JobPosting{
		{
			ID:              "react-1",
			Title:           "Senior React Developer",
			Description:     "Build modern frontend applications with React",
			Availability:    "Immediate",
			Location:        "Remote",
			JobType:         "Full-time",
			ExperienceLevel: "Senior",
		},
		{
			ID:              "dba-1",
			Title:           "Database Administrator",
			Description:     "Maintain postgres clusters and tune queries",
			Availability:    "Immediate",
			Location:        "Pune",
			JobType:         "Full-time",
			ExperienceLevel: "Mid",
		},
	}}
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func sqliteURL(t *testing.T) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "jobs.db")
}

// clearConfigEnv unsets every variable the config layer reads.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "PORT", "LOG_LEVEL", "LOG_JSON", "MATCH_WORKERS", "MATCH_TIMEOUT"} {
		t.Setenv(key, "")
	}
}
