package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-matcher/internal/types"
)

// Listing pagination bounds
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// JobPosting represents a stored job posting
type JobPosting struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Availability    string     `json:"availability"`
	Salary          *int64     `json:"salary,omitempty"`
	Location        string     `json:"location"`
	JobType         string     `json:"job_type"`
	ExperienceLevel string     `json:"experience_level"`
	PostedBy        *uuid.UUID `json:"posted_by,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot converts the row into the read-only view used by the matching engine.
func (p *JobPosting) Snapshot() types.JobPosting {
	s := types.JobPosting{
		ID:              p.ID.String(),
		Title:           p.Title,
		Description:     p.Description,
		Availability:    p.Availability,
		Location:        p.Location,
		JobType:         p.JobType,
		ExperienceLevel: p.ExperienceLevel,
		CreatedAt:       p.CreatedAt,
	}
	if p.Salary != nil {
		salary := *p.Salary
		s.Salary = &salary
	}
	if p.PostedBy != nil {
		s.PostedBy = p.PostedBy.String()
	}
	return s
}

// Snapshots converts rows in order.
func Snapshots(rows []JobPosting) []types.JobPosting {
	out := make([]types.JobPosting, len(rows))
	for i := range rows {
		out[i] = rows[i].Snapshot()
	}
	return out
}

// IsOwnedBy reports whether the posting was created by the given user.
func (p *JobPosting) IsOwnedBy(userID uuid.UUID) bool {
	return p.PostedBy != nil && *p.PostedBy == userID
}

// JobPostingCreateInput is used when creating a new job posting
type JobPostingCreateInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Availability    string     `json:"availability"`
	Salary          *int64     `json:"salary,omitempty"`
	Location        string     `json:"location"`
	JobType         string     `json:"job_type"`
	ExperienceLevel string     `json:"experience_level"`
	PostedBy        *uuid.UUID `json:"-"`

	// CreatedAt keeps an imported posting's original creation time.
	// Zero means the store stamps the insert time.
	CreatedAt time.Time `json:"-"`
}

// InputFieldError reports a missing or invalid field on a create request.
type InputFieldError struct {
	Field   string
	Message string
}

func (e *InputFieldError) Error() string {
	return e.Message
}

// Validate checks the fields a posting needs before it can be listed.
// Fields are checked in form order and the first problem is returned.
func (in *JobPostingCreateInput) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"title", in.Title},
		{"description", in.Description},
		{"availability", in.Availability},
		{"location", in.Location},
		{"job_type", in.JobType},
		{"experience_level", in.ExperienceLevel},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &InputFieldError{
				Field:   r.field,
				Message: fmt.Sprintf("The '%s' field is required.", r.field),
			}
		}
	}
	if in.Salary != nil && *in.Salary < 0 {
		return &InputFieldError{Field: "salary", Message: "The 'salary' field must not be negative."}
	}
	return nil
}

// InputFromSnapshot builds a create input from a corpus entry (CLI import).
func InputFromSnapshot(p *types.JobPosting) *JobPostingCreateInput {
	in := &JobPostingCreateInput{
		Title:           p.Title,
		Description:     p.Description,
		Availability:    p.Availability,
		Location:        p.Location,
		JobType:         p.JobType,
		ExperienceLevel: p.ExperienceLevel,
		CreatedAt:       p.CreatedAt,
	}
	if p.Salary != nil {
		salary := *p.Salary
		in.Salary = &salary
	}
	if id, err := uuid.Parse(p.PostedBy); err == nil {
		in.PostedBy = &id
	}
	return in
}

// JobPostingUpdateInput is a partial update. Empty strings and a nil Salary
// leave the stored value unchanged.
type JobPostingUpdateInput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Availability    string `json:"availability"`
	Salary          *int64 `json:"salary,omitempty"`
	Location        string `json:"location"`
	JobType         string `json:"job_type"`
	ExperienceLevel string `json:"experience_level"`
}

// Validate rejects a negative salary; every other field is optional.
func (in *JobPostingUpdateInput) Validate() error {
	if in.Salary != nil && *in.Salary < 0 {
		return &InputFieldError{Field: "salary", Message: "The 'salary' field must not be negative."}
	}
	return nil
}

// Apply returns p with the non-empty fields of the update written over it.
func (in *JobPostingUpdateInput) Apply(p JobPosting) JobPosting {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&p.Title, in.Title)
	set(&p.Description, in.Description)
	set(&p.Availability, in.Availability)
	set(&p.Location, in.Location)
	set(&p.JobType, in.JobType)
	set(&p.ExperienceLevel, in.ExperienceLevel)
	if in.Salary != nil {
		salary := *in.Salary
		p.Salary = &salary
	}
	return p
}

// ListJobPostingsOptions contains filters for listing job postings
type ListJobPostingsOptions struct {
	Keyword  string     // Case-insensitive substring of title or description
	PostedBy *uuid.UUID // Only postings owned by this user
	Limit    int        // Pagination limit
	Offset   int        // Pagination offset
}

// normalized clamps pagination to the supported range.
func (o ListJobPostingsOptions) normalized() ListJobPostingsOptions {
	o.Keyword = strings.TrimSpace(o.Keyword)
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// likePattern builds a LIKE pattern matching keyword anywhere, with wildcards
// in the keyword escaped by a backslash.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(keyword)) + "%"
}
