package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// AnyFilter is the sentinel value meaning "no preference" for a structured filter.
const AnyFilter = "any"

// MatchQuery is the searcher's free-text requirement plus optional structured filters.
type MatchQuery struct {
	TextDescription string `json:"text_description" validate:"notblank,max=5000"`
	Skills          string `json:"skills,omitempty" validate:"max=1000"`
	ExperienceLevel string `json:"experience_level,omitempty" validate:"max=100"`
	Location        string `json:"location,omitempty" validate:"max=200"`
	JobType         string `json:"job_type,omitempty" validate:"max=100"`
	SalaryRange     string `json:"salary_range,omitempty" validate:"max=200"`
}

// SalaryText returns the text the salary constraint is parsed from.
// The explicit salary range wins; otherwise the free-text description is used.
func (q *MatchQuery) SalaryText() string {
	if q.SalaryRange != "" {
		return q.SalaryRange
	}
	return q.TextDescription
}

// HasFilter reports whether a structured filter value carries a preference.
// Empty values and the "any" sentinel are treated as absent.
func HasFilter(value string) bool {
	return value != "" && !strings.EqualFold(value, AnyFilter)
}

var (
	queryValidator     *validator.Validate
	queryValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	queryValidatorOnce.Do(func() {
		v := validator.New()
		// "required" accepts whitespace-only strings; the description must carry text.
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		queryValidator = v
	})
	return queryValidator
}

// Validate validates the MatchQuery using the validator.
func (q *MatchQuery) Validate() error {
	return getValidator().Struct(q)
}

// MatchResult is a kept posting with its rounded percentage and explanation.
type MatchResult struct {
	Job             JobPosting `json:"job"`
	MatchPercentage int        `json:"match_percentage"`
	MatchReason     string     `json:"match_reason"`
	WhyGoodFit      string     `json:"why_good_fit"`
}

// MatchDetail is the diagnostic view of a kept posting, linked to the input corpus by position.
type MatchDetail struct {
	JobIndex        int     `json:"job_index"` // 1-based position in the corpus
	MatchPercentage int     `json:"match_percentage"`
	Reason          string  `json:"reason"`
	WhyGoodFit      string  `json:"why_good_fit"`
	Score           float64 `json:"score"`
}

// MatchResponse is the envelope returned by the API, the CLI, and the MCP tool.
type MatchResponse struct {
	Message      string          `json:"message"`
	MatchedJobs  []MatchResult   `json:"matched_jobs"`
	MatchDetails []MatchDetail   `json:"match_details"`
	Breakdowns   []BreakdownView `json:"breakdowns,omitempty"`
}

// BreakdownView is the per-posting score breakdown, in corpus order.
type BreakdownView struct {
	JobIndex           int      `json:"job_index"`
	Score              float64  `json:"score"`
	Reasons            []string `json:"reasons"`
	SalaryFiltered     bool     `json:"salary_filtered,omitempty"`
	CategoryMismatched bool     `json:"category_mismatched,omitempty"`
}

// NewMatchResponse builds the response envelope with the standard message.
func NewMatchResponse(corpusSize int, results []MatchResult, details []MatchDetail) *MatchResponse {
	if results == nil {
		results = []MatchResult{}
	}
	if details == nil {
		details = []MatchDetail{}
	}
	msg := fmt.Sprintf("Found %d matching jobs", len(results))
	if corpusSize == 0 {
		msg = "No jobs available"
	}
	return &MatchResponse{
		Message:      msg,
		MatchedJobs:  results,
		MatchDetails: details,
	}
}
