package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-matcher/internal/types"
)

func int64Ptr(v int64) *int64 { return &v }

func validInput() *JobPostingCreateInput {
	return &JobPostingCreateInput{
		Title:           "React Developer",
		Description:     "Build frontend features",
		Availability:    "Full-time",
		Salary:          int64Ptr(50000),
		Location:        "Remote",
		JobType:         "Full-time",
		ExperienceLevel: "Senior",
	}
}

func TestJobPostingCreateInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *JobPostingCreateInput)
		field   string
		message string
	}{
		{"valid", func(*JobPostingCreateInput) {}, "", ""},
		{"salary optional", func(in *JobPostingCreateInput) { in.Salary = nil }, "", ""},
		{"missing title", func(in *JobPostingCreateInput) { in.Title = "" }, "title", "The 'title' field is required."},
		{"blank description", func(in *JobPostingCreateInput) { in.Description = "   " }, "description", "The 'description' field is required."},
		{"missing availability", func(in *JobPostingCreateInput) { in.Availability = "" }, "availability", "The 'availability' field is required."},
		{"missing location", func(in *JobPostingCreateInput) { in.Location = "" }, "location", "The 'location' field is required."},
		{"missing job type", func(in *JobPostingCreateInput) { in.JobType = "" }, "job_type", "The 'job_type' field is required."},
		{"missing experience", func(in *JobPostingCreateInput) { in.ExperienceLevel = "" }, "experience_level", "The 'experience_level' field is required."},
		{"first missing wins", func(in *JobPostingCreateInput) { in.Title = ""; in.Location = "" }, "title", "The 'title' field is required."},
		{"negative salary", func(in *JobPostingCreateInput) { in.Salary = int64Ptr(-1) }, "salary", "The 'salary' field must not be negative."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			err := in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var fieldErr *InputFieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestJobPosting_Snapshot(t *testing.T) {
	owner := uuid.New()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	row := JobPosting{
		ID:              uuid.New(),
		Title:           "Data Engineer",
		Description:     "Spark pipelines",
		Availability:    "Part-time",
		Salary:          int64Ptr(70000),
		Location:        "Pune",
		JobType:         "Contract",
		ExperienceLevel: "Mid",
		PostedBy:        &owner,
		CreatedAt:       created,
	}

	snap := row.Snapshot()
	assert.Equal(t, row.ID.String(), snap.ID)
	assert.Equal(t, "Data Engineer", snap.Title)
	assert.Equal(t, owner.String(), snap.PostedBy)
	assert.Equal(t, created, snap.CreatedAt)
	require.NotNil(t, snap.Salary)
	assert.Equal(t, int64(70000), *snap.Salary)

	// The snapshot must not alias the row.
	*snap.Salary = 1
	assert.Equal(t, int64(70000), *row.Salary)

	t.Run("nil salary and owner", func(t *testing.T) {
		snap := (&JobPosting{ID: uuid.New()}).Snapshot()
		assert.Nil(t, snap.Salary)
		assert.Empty(t, snap.PostedBy)
	})
}

func TestSnapshots_KeepsOrder(t *testing.T) {
	rows := []JobPosting{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	snaps := Snapshots(rows)
	require.Len(t, snaps, 3)
	assert.Equal(t, "a", snaps[0].Title)
	assert.Equal(t, "c", snaps[2].Title)
	assert.Empty(t, Snapshots(nil))
}

func TestJobPosting_IsOwnedBy(t *testing.T) {
	owner := uuid.New()
	p := &JobPosting{PostedBy: &owner}
	assert.True(t, p.IsOwnedBy(owner))
	assert.False(t, p.IsOwnedBy(uuid.New()))
	assert.False(t, (&JobPosting{}).IsOwnedBy(owner))
}

func TestInputFromSnapshot(t *testing.T) {
	owner := uuid.New()
	in := InputFromSnapshot(&types.JobPosting{
		Title:    "QA Engineer",
		Salary:   int64Ptr(40000),
		PostedBy: owner.String(),
	})
	assert.Equal(t, "QA Engineer", in.Title)
	require.NotNil(t, in.PostedBy)
	assert.Equal(t, owner, *in.PostedBy)
	assert.Equal(t, int64(40000), *in.Salary)

	assert.True(t, in.CreatedAt.IsZero())

	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	in = InputFromSnapshot(&types.JobPosting{Title: "x", PostedBy: "not-a-uuid", CreatedAt: created})
	assert.Nil(t, in.PostedBy)
	assert.Equal(t, created, in.CreatedAt)
}

func TestJobPostingUpdateInput_Apply(t *testing.T) {
	base := JobPosting{
		Title:       "React Developer",
		Description: "Build frontend features",
		Location:    "Remote",
		Salary:      int64Ptr(50000),
	}

	got := (&JobPostingUpdateInput{Description: "Own the design system", Location: " "}).Apply(base)
	assert.Equal(t, "React Developer", got.Title)
	assert.Equal(t, "Own the design system", got.Description)
	assert.Equal(t, "Remote", got.Location)
	assert.Equal(t, int64(50000), *got.Salary)

	got = (&JobPostingUpdateInput{Salary: int64Ptr(0)}).Apply(base)
	assert.Equal(t, int64(0), *got.Salary)
	assert.Equal(t, int64(50000), *base.Salary, "Apply must not alias the original salary")
}

func TestJobPostingUpdateInput_Validate(t *testing.T) {
	assert.NoError(t, (&JobPostingUpdateInput{}).Validate())
	assert.NoError(t, (&JobPostingUpdateInput{Salary: int64Ptr(10)}).Validate())

	err := (&JobPostingUpdateInput{Salary: int64Ptr(-5)}).Validate()
	var fieldErr *InputFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "salary", fieldErr.Field)
}

func TestListJobPostingsOptions_Normalized(t *testing.T) {
	tests := []struct {
		name     string
		in       ListJobPostingsOptions
		expected ListJobPostingsOptions
	}{
		{"defaults", ListJobPostingsOptions{}, ListJobPostingsOptions{Limit: DefaultListLimit}},
		{"clamped", ListJobPostingsOptions{Limit: 500, Offset: -3}, ListJobPostingsOptions{Limit: MaxListLimit}},
		{"kept", ListJobPostingsOptions{Keyword: " react ", Limit: 10, Offset: 20}, ListJobPostingsOptions{Keyword: "react", Limit: 10, Offset: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.normalized())
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%react%", likePattern("React"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%snake\_case%`, likePattern("snake_case"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestSQLitePath(t *testing.T) {
	tests := []struct {
		url  string
		path string
		ok   bool
	}{
		{"sqlite:///tmp/jobs.db", "/tmp/jobs.db", true},
		{"sqlite://jobs.db", "jobs.db", true},
		{"sqlite:jobs.db", "jobs.db", true},
		{"file:jobs.db", "jobs.db", true},
		{"sqlite://", "", false},
		{"postgres://user@localhost/jobs", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			path, ok := SQLitePath(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.path, path)
		})
	}
}
