// Package types provides type definitions for structured data used throughout the job-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// JobPosting is the read-only snapshot of a posting handed to the matching engine.
// Empty strings and a nil Salary mean "no signal", never a mismatch.
type JobPosting struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Availability    string    `json:"availability,omitempty"`
	Salary          *int64    `json:"salary,omitempty"`
	Location        string    `json:"location,omitempty"`
	JobType         string    `json:"job_type,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	PostedBy        string    `json:"posted_by,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
}

// JobCorpus is the on-disk representation of a list of postings (CLI input).
type JobCorpus struct {
	Jobs []JobPosting `json:"jobs"`
}

// CombinedText returns the lower-cased title and description joined by a space.
func (p *JobPosting) CombinedText() string {
	return strings.ToLower(p.Title) + " " + strings.ToLower(p.Description)
}
