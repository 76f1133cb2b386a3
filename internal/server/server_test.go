package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/db"
	"github.com/jonathan/job-matcher/internal/server/ratelimit"
)

// fakeRepository is an in-memory db.Repository.
type fakeRepository struct {
	mu       sync.Mutex
	postings []db.JobPosting // insertion order
	clock    time.Time
	listErr  error
	lastOpts db.ListJobPostingsOptions
	closed   bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// add stores a posting and returns it; each posting is one second newer than the last.
func (f *fakeRepository) add(p db.JobPosting) db.JobPosting {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.clock = f.clock.Add(time.Second)
	p.CreatedAt, p.UpdatedAt = f.clock, f.clock
	f.postings = append(f.postings, p)
	return p
}

func (f *fakeRepository) newestFirst() []db.JobPosting {
	out := make([]db.JobPosting, len(f.postings))
	copy(out, f.postings)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeRepository) ListJobPostings(_ context.Context, opts db.ListJobPostingsOptions) ([]db.JobPosting, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	out := []db.JobPosting{}
	for _, p := range f.newestFirst() {
		if opts.PostedBy != nil && !p.IsOwnedBy(*opts.PostedBy) {
			continue
		}
		text := strings.ToLower(p.Title + " " + p.Description)
		if opts.Keyword == "" || strings.Contains(text, strings.ToLower(opts.Keyword)) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) ListMatchCorpus(context.Context) ([]db.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.newestFirst(), nil
}

func (f *fakeRepository) GetJobPostingByID(_ context.Context, id uuid.UUID) (*db.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.postings {
		if f.postings[i].ID == id {
			p := f.postings[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) CreateJobPosting(_ context.Context, in *db.JobPostingCreateInput) (*db.JobPosting, error) {
	p := f.add(db.JobPosting{
		Title:           in.Title,
		Description:     in.Description,
		Availability:    in.Availability,
		Salary:          in.Salary,
		Location:        in.Location,
		JobType:         in.JobType,
		ExperienceLevel: in.ExperienceLevel,
		PostedBy:        in.PostedBy,
	})
	return &p, nil
}

func (f *fakeRepository) CreateJobPostings(ctx context.Context, inputs []*db.JobPostingCreateInput) ([]db.JobPosting, error) {
	out := make([]db.JobPosting, 0, len(inputs))
	for _, in := range inputs {
		p, err := f.CreateJobPosting(ctx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRepository) UpdateJobPosting(_ context.Context, id, postedBy uuid.UUID, in *db.JobPostingUpdateInput) (*db.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.postings {
		if f.postings[i].ID == id && f.postings[i].IsOwnedBy(postedBy) {
			f.postings[i] = in.Apply(f.postings[i])
			p := f.postings[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) DeleteJobPosting(_ context.Context, id, postedBy uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.postings {
		if p.ID == id && p.IsOwnedBy(postedBy) {
			f.postings = append(f.postings[:i], f.postings[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) EnsureSchema(context.Context) error { return nil }

func (f *fakeRepository) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func newTestServerWithLimits(t *testing.T, repo *fakeRepository, rl *ratelimit.Config) *Server {
	t.Helper()
	s, err := New(Config{
		Port:       0,
		Repository: repo,
		JWT: &config.JWTConfig{
			Secret:          testJWTSecret,
			ExpirationHours: 1,
			Issuer:          config.DefaultJWTIssuer,
		},
		RateLimit: rl,
		Logger:    zap.NewNop(),
		Workers:   2,
	})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func newTestServer(t *testing.T, repo *fakeRepository) *Server {
	t.Helper()
	return newTestServerWithLimits(t, repo, &ratelimit.Config{Enabled: false})
}

func do(t *testing.T, s *Server, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"]
}

func tokenFor(t *testing.T, s *Server, userID uuid.UUID) string {
	t.Helper()
	token, err := s.JWTService().GenerateToken(userID)
	require.NoError(t, err)
	return token
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{JWT: &config.JWTConfig{Secret: "x", ExpirationHours: 1}})
	assert.Error(t, err)

	_, err = New(Config{Repository: newFakeRepository()})
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, newFakeRepository())

	w := do(t, s, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, newFakeRepository())

	w := do(t, s, http.MethodOptions, "/jobs/ai-match", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestServer_Close(t *testing.T) {
	repo := newFakeRepository()
	s := newTestServer(t, repo)

	s.close()
	assert.True(t, repo.closed)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(10*time.Millisecond))
	assert.Equal(t, 6, retryAfterSeconds(6*time.Second))
	assert.Equal(t, 7, retryAfterSeconds(6*time.Second+time.Millisecond))
}

func TestRateLimit_MatchEndpoint(t *testing.T) {
	s := newTestServerWithLimits(t, newFakeRepository(), &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/jobs/ai-match", Method: "POST", Limit: 1, Window: time.Minute, Burst: 1},
		},
	})
	body := map[string]string{"text_description": "React developer"}

	first := do(t, s, http.MethodPost, "/jobs/ai-match", body, "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := do(t, s, http.MethodPost, "/jobs/ai-match", body, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.Contains(t, resp, "retry_after")

	// other endpoints keep their own budget
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", nil, "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/job-postings", nil, "").Code)
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	rec.WriteHeader(http.StatusTeapot)
	rec.Flush()

	assert.Equal(t, http.StatusTeapot, rec.status)
	assert.True(t, w.Flushed)
}

func TestHTTPStatus_Unwraps(t *testing.T) {
	err := errors.Join(errors.New("context"), &ErrForbidden{Action: "delete"})
	assert.Equal(t, http.StatusForbidden, HTTPStatus(err))
}
