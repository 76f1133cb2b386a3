package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/db"
	"github.com/jonathan/job-matcher/internal/types"
)

const msgMissingRequirements = "Please provide job requirements"

// match loads the corpus snapshot and ranks it under the match deadline.
func (s *Server) match(ctx context.Context, query *types.MatchQuery, withBreakdowns bool) (*types.MatchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.matchTimeout)
	defer cancel()

	rows, err := s.repo.ListMatchCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load job postings: %w", err)
	}

	ranking, err := s.ranker.Rank(ctx, query, db.Snapshots(rows))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("match completed",
		zap.Int("corpus_size", len(rows)),
		zap.Int("matched", len(ranking.Results)),
		zap.String("category", ranking.UserCategory))
	return ranking.Response(withBreakdowns), nil
}

// handleAIMatch ranks the stored postings against the submitted requirements
func (s *Server) handleAIMatch(w http.ResponseWriter, r *http.Request) {
	var query types.MatchQuery
	if err := decodeJSON(w, r, &query); err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgMissingRequirements)
		return
	}
	if err := query.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgMissingRequirements)
		return
	}

	debug, _ := strconv.ParseBool(r.URL.Query().Get("debug"))

	resp, err := s.match(r.Context(), &query, debug)
	if err != nil {
		status := HTTPStatus(err)
		switch status {
		case http.StatusBadRequest:
			s.errorResponse(w, status, msgMissingRequirements)
		case http.StatusServiceUnavailable:
			s.errorResponse(w, status, "Matching timed out")
		default:
			s.logger.Error("match failed", zap.Error(err))
			s.errorResponse(w, status, "Error matching jobs")
		}
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}
