package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-matcher/internal/types"
)

const (
	// DefaultThreshold is the minimum rounded score a posting needs to be returned.
	DefaultThreshold = 40

	reasonSeparator      = " • "
	defaultPrimaryReason = "Matches your search"
	defaultFullReason    = "Job matches your requirements"
)

// ValidationError is returned when the query cannot be scored at all.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Ranking is the output of one Rank call.
type Ranking struct {
	// Results and Details describe the kept postings in rank order.
	Results []types.MatchResult
	Details []types.MatchDetail
	// Breakdowns has one entry per corpus posting, in corpus order.
	Breakdowns []ScoreBreakdown
	// UserCategory and SalaryFilter are the query-level signals used for every posting.
	UserCategory string
	SalaryFilter SalaryFilter
}

// Response converts the ranking into the API envelope. withBreakdowns adds the
// per-posting diagnostics.
func (r *Ranking) Response(withBreakdowns bool) *types.MatchResponse {
	resp := types.NewMatchResponse(len(r.Breakdowns), r.Results, r.Details)
	if withBreakdowns {
		resp.Breakdowns = make([]types.BreakdownView, len(r.Breakdowns))
		for i, b := range r.Breakdowns {
			resp.Breakdowns[i] = types.BreakdownView{
				JobIndex:           i + 1,
				Score:              b.Score,
				Reasons:            b.Reasons,
				SalaryFiltered:     b.SalaryFiltered,
				CategoryMismatched: b.CategoryMismatched,
			}
		}
	}
	return resp
}

// Ranker scores a corpus against a query, keeps postings above the threshold,
// and orders them by score.
type Ranker struct {
	dict      *Dictionary
	scorer    *Scorer
	threshold int
	workers   int
	logger    *zap.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithDictionary replaces the embedded keyword dictionary.
func WithDictionary(d *Dictionary) Option {
	return func(r *Ranker) {
		if d != nil {
			r.dict = d
		}
	}
}

// WithThreshold sets the minimum rounded score (0-100) to keep a posting.
func WithThreshold(threshold int) Option {
	return func(r *Ranker) {
		r.threshold = max(0, min(threshold, int(maxScore)))
	}
}

// WithWorkers bounds the number of postings scored concurrently.
func WithWorkers(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger used for per-posting diagnostics (debug level).
func WithLogger(l *zap.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRanker creates a Ranker with the embedded dictionary and default threshold.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		dict:      DefaultDictionary(),
		threshold: DefaultThreshold,
		workers:   runtime.GOMAXPROCS(0),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.scorer = NewScorer(r.dict)
	return r
}

// Rank scores every posting in corpus order and returns the kept postings sorted by
// rounded score, descending. Equal scores keep their corpus order, so a corpus sorted
// newest-first yields newest-first ties.
func (r *Ranker) Rank(ctx context.Context, query *types.MatchQuery, corpus []types.JobPosting) (*Ranking, error) {
	if query == nil || strings.TrimSpace(query.TextDescription) == "" {
		return nil, &ValidationError{Field: "text_description", Message: "free-text description is required"}
	}

	userCategory, _ := r.dict.Classify(query.TextDescription)
	filter := r.dict.ExtractSalaryFilter(query.SalaryText())
	r.logger.Debug("query signals",
		zap.String("category", userCategory),
		zap.Stringer("salary_filter", filter),
		zap.Int("corpus_size", len(corpus)))

	ranking := &Ranking{
		Results:      []types.MatchResult{},
		Details:      []types.MatchDetail{},
		Breakdowns:   make([]ScoreBreakdown, len(corpus)),
		UserCategory: userCategory,
		SalaryFilter: filter,
	}
	if len(corpus) == 0 {
		return ranking, nil
	}

	// Goroutine i writes only Breakdowns[i]; the sort below reads them in corpus order.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range corpus {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranking.Breakdowns[i] = r.scorer.Score(query, filter, userCategory, &corpus[i]).Breakdown()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking interrupted: %w", err)
	}

	type kept struct {
		index   int
		percent int
	}
	var keep []kept
	for i, b := range ranking.Breakdowns {
		percent := roundHalfUp(b.Score)
		r.logger.Debug("posting scored",
			zap.Int("job_index", i+1),
			zap.String("title", corpus[i].Title),
			zap.Float64("score", b.Score),
			zap.Strings("reasons", b.Reasons))
		rejected := b.SalaryFiltered || b.CategoryMismatched
		if !rejected && percent >= r.threshold {
			keep = append(keep, kept{index: i, percent: percent})
		}
	}

	sort.SliceStable(keep, func(a, b int) bool {
		return keep[a].percent > keep[b].percent
	})

	for _, k := range keep {
		b := ranking.Breakdowns[k.index]
		primary, full := explain(b.Reasons)
		ranking.Results = append(ranking.Results, types.MatchResult{
			Job:             corpus[k.index],
			MatchPercentage: k.percent,
			MatchReason:     primary,
			WhyGoodFit:      full,
		})
		ranking.Details = append(ranking.Details, types.MatchDetail{
			JobIndex:        k.index + 1,
			MatchPercentage: k.percent,
			Reason:          primary,
			WhyGoodFit:      full,
			Score:           b.Score,
		})
	}
	return ranking, nil
}

// explain returns the primary reason and the full joined explanation.
func explain(reasons []string) (primary, full string) {
	if len(reasons) == 0 {
		return defaultPrimaryReason, defaultFullReason
	}
	return reasons[0], strings.Join(reasons, reasonSeparator)
}
