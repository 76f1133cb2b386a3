package matching

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/jonathan/job-matcher/internal/types"
)

// Signal weights
const (
	salaryPoints = 5.0

	textFactor      = 0.3
	textCap         = 30.0
	textReasonAbove = 30.0

	categoryMatchPoints   = 20.0
	categoryPartialPoints = 3.0
	jobCategoryPoints     = 12.0

	// partialMatchTextScore is the text relevance that rescues a category mismatch.
	partialMatchTextScore = 40.0

	skillsPoints = 15.0

	experienceMatchPoints = 12.0
	experienceLoosePoints = 6.0

	jobTypeMatchPoints  = 10.0
	jobTypeAbsentPoints = 3.0

	locationExactPoints  = 8.0
	locationRemotePoints = 5.0
	locationWordPoints   = 3.0
	locationAbsentPoints = 2.0

	maxScore = 100.0
)

// RejectCause identifies the hard filter that rejected a posting.
type RejectCause int

const (
	RejectSalary RejectCause = iota + 1
	RejectCategory
)

// ScoreBreakdown is the diagnostic view of one posting's evaluation.
type ScoreBreakdown struct {
	Score              float64  `json:"score"`
	Reasons            []string `json:"reasons"`
	SalaryFiltered     bool     `json:"salary_filtered,omitempty"`
	CategoryMismatched bool     `json:"category_mismatched,omitempty"`
}

// Outcome is the result of scoring one posting: either Rejected or Scored.
type Outcome interface {
	Breakdown() ScoreBreakdown
	outcome()
}

// Rejected is a hard reject. The posting scores 0 and carries a single reason.
type Rejected struct {
	Cause  RejectCause
	Reason string
}

func (Rejected) outcome() {}

// Breakdown implements Outcome.
func (r Rejected) Breakdown() ScoreBreakdown {
	return ScoreBreakdown{
		Score:              0,
		Reasons:            []string{r.Reason},
		SalaryFiltered:     r.Cause == RejectSalary,
		CategoryMismatched: r.Cause == RejectCategory,
	}
}

// Scored is a posting that passed every hard filter.
// Score is clamped to [0,100]; Reasons follow signal evaluation order.
type Scored struct {
	Score   float64
	Reasons []string
}

func (Scored) outcome() {}

// Breakdown implements Outcome.
func (s Scored) Breakdown() ScoreBreakdown {
	reasons := s.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return ScoreBreakdown{Score: s.Score, Reasons: reasons}
}

// Scorer combines every matching signal into a single outcome per posting.
type Scorer struct {
	dict *Dictionary
}

// NewScorer creates a Scorer over the given dictionary (DefaultDictionary when nil).
func NewScorer(dict *Dictionary) *Scorer {
	if dict == nil {
		dict = DefaultDictionary()
	}
	return &Scorer{dict: dict}
}

// Score evaluates a posting against the query. userCategory is the query's category
// ("" when the query did not classify) and filter the query's salary constraint;
// both are computed once per query by the caller.
func (s *Scorer) Score(query *types.MatchQuery, filter SalaryFilter, userCategory string, posting *types.JobPosting) Outcome {
	var score float64
	var reasons []string

	// Salary: hard filter
	if filter.IsSet() {
		if !filter.Allows(posting.Salary) {
			return Rejected{Cause: RejectSalary, Reason: "Salary does not match filter"}
		}
		score += salaryPoints
		reasons = append(reasons, "Salary: "+FormatRupees(*posting.Salary))
	}

	combined := posting.CombinedText()

	// Text relevance
	text := TextRelevance(query.TextDescription, posting.Title, posting.Description)
	score += math.Min(text*textFactor, textCap)
	if text > textReasonAbove {
		reasons = append(reasons, fmt.Sprintf("Text match: %d%%", roundHalfUp(text)))
	}

	// Category: hard filter on a clear mismatch
	jobCategory, jobHasCategory := s.dict.Classify(combined)
	switch {
	case userCategory != "" && jobHasCategory:
		if userCategory == jobCategory {
			score += categoryMatchPoints
			reasons = append(reasons, "Category: "+userCategory)
		} else {
			if text < partialMatchTextScore {
				return Rejected{
					Cause:  RejectCategory,
					Reason: fmt.Sprintf("Wrong category: looking for %s, found %s", userCategory, jobCategory),
				}
			}
			score += categoryPartialPoints
			reasons = append(reasons, "Partial match: "+jobCategory)
		}
	case userCategory != "":
		return Rejected{Cause: RejectCategory, Reason: "No relevant category match found"}
	case jobHasCategory:
		score += jobCategoryPoints
		reasons = append(reasons, "Job: "+jobCategory)
	}

	if pts, ok := skillsScore(query.Skills, combined); ok {
		score += pts
		reasons = append(reasons, "Skills: "+query.Skills)
	}

	if pts := experienceScore(query.ExperienceLevel, posting.ExperienceLevel); pts > 0 {
		score += pts
		reasons = append(reasons, "Experience: "+posting.ExperienceLevel)
	}

	pts, matched := jobTypeScore(query.JobType, posting.JobType)
	score += pts
	if matched {
		reasons = append(reasons, "Type: "+posting.JobType)
	}

	pts, matched = locationScore(query.Location, posting.Location)
	score += pts
	if matched {
		reasons = append(reasons, "Location: "+posting.Location)
	}

	if pts := s.availabilityScore(query.TextDescription, posting.Availability); pts > 0 {
		score += pts
		reasons = append(reasons, "Availability: "+posting.Availability)
	}

	return Scored{Score: math.Min(score, maxScore), Reasons: reasons}
}

// skillsScore awards a share of skillsPoints proportional to the skill tokens found
// in the posting text. ok is false when the filter is absent or nothing matched.
func skillsScore(skills, combined string) (float64, bool) {
	if !types.HasFilter(skills) {
		return 0, false
	}
	tokens := skillTokens(skills)
	matched := 0
	for _, t := range tokens {
		if strings.Contains(combined, t) {
			matched++
		}
	}
	if matched == 0 {
		return 0, false
	}
	return float64(matched) / float64(len(tokens)) * skillsPoints, true
}

// skillTokens splits on commas and whitespace, keeping tokens longer than two characters.
func skillTokens(skills string) []string {
	fields := strings.FieldsFunc(strings.ToLower(skills), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if tokenLength(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func experienceScore(want, have string) float64 {
	if !types.HasFilter(want) || have == "" {
		return 0
	}
	jobExp := strings.ToLower(have)
	userExp := strings.ToLower(want)

	if jobExp == userExp || strings.Contains(jobExp, userExp) || strings.Contains(userExp, jobExp) {
		return experienceMatchPoints
	}
	switch {
	case userExp == "senior" && (strings.Contains(jobExp, "senior") || strings.Contains(jobExp, "lead")):
		return experienceLoosePoints
	case userExp == "junior" && strings.Contains(jobExp, "junior"):
		return experienceLoosePoints
	case strings.Contains(userExp, "mid") && (strings.Contains(jobExp, "mid") || strings.Contains(jobExp, "intermediate")):
		return experienceLoosePoints
	}
	return 0
}

// jobTypeScore returns the points and whether a reason should be recorded.
func jobTypeScore(want, have string) (float64, bool) {
	if have == "" {
		return 0, false
	}
	if !types.HasFilter(want) {
		return jobTypeAbsentPoints, false
	}
	jobType := strings.ToLower(have)
	userType := strings.ToLower(want)
	if jobType == userType || strings.Contains(jobType, userType) || strings.Contains(userType, jobType) {
		return jobTypeMatchPoints, true
	}
	return 0, false
}

// locationScore returns the points and whether a reason should be recorded.
func locationScore(want, have string) (float64, bool) {
	if have == "" {
		return 0, false
	}
	if !types.HasFilter(want) {
		return locationAbsentPoints, false
	}
	jobLoc := strings.ToLower(have)
	userLoc := strings.ToLower(want)
	switch {
	case jobLoc == userLoc:
		return locationExactPoints, true
	case strings.Contains(jobLoc, "remote") || strings.Contains(userLoc, "remote"):
		return locationRemotePoints, true
	case strings.Contains(jobLoc, firstWord(userLoc)) || strings.Contains(userLoc, firstWord(jobLoc)):
		return locationWordPoints, true
	}
	return 0, false
}

// firstWord returns the text before the first space (the whole text when there is none).
func firstWord(s string) string {
	word, _, _ := strings.Cut(s, " ")
	return word
}

// availabilityScore checks the raw query text against each availability mode in order.
func (s *Scorer) availabilityScore(queryText, availability string) float64 {
	if availability == "" {
		return 0
	}
	avail := strings.ToLower(availability)
	userText := strings.ToLower(queryText)
	for _, mode := range s.dict.Availability {
		if containsAny(userText, mode.QueryKeywords) && containsAny(avail, mode.PostingKeywords) {
			return mode.Points
		}
	}
	return 0
}

// roundHalfUp rounds like a percentage display: halves go up, including for negatives.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
