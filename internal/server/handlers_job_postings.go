package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/db"
	"github.com/jonathan/job-matcher/internal/server/middleware"
)

// ListJobPostingsResponse represents the response for listing job postings
type ListJobPostingsResponse struct {
	Postings []db.JobPosting `json:"postings"`
	Count    int             `json:"count"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// handleListJobPostings lists job postings, newest first, with an optional keyword filter
func (s *Server) handleListJobPostings(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", db.DefaultListLimit, db.MaxListLimit)
	if limit == 0 {
		limit = db.DefaultListLimit
	}
	offset := parseQueryInt(r, "offset", 0, 0)

	postings, total, err := s.repo.ListJobPostings(r.Context(), db.ListJobPostingsOptions{
		Keyword: r.URL.Query().Get("keyword"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ListJobPostingsResponse{
		Postings: postings,
		Count:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// handleListMyJobPostings lists the authenticated user's own postings, newest first
func (s *Server) handleListMyJobPostings(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := parseQueryInt(r, "limit", db.DefaultListLimit, db.MaxListLimit)
	if limit == 0 {
		limit = db.DefaultListLimit
	}
	offset := parseQueryInt(r, "offset", 0, 0)

	postings, total, err := s.repo.ListJobPostings(r.Context(), db.ListJobPostingsOptions{
		PostedBy: &userID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ListJobPostingsResponse{
		Postings: postings,
		Count:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// handleGetJobPosting retrieves a job posting by its ID
func (s *Server) handleGetJobPosting(w http.ResponseWriter, r *http.Request) {
	postingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job posting ID")
		return
	}

	posting, err := s.repo.GetJobPostingByID(r.Context(), postingID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if posting == nil {
		s.errorResponse(w, http.StatusNotFound, "Job posting not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, posting)
}

// handleCreateJobPosting stores a posting owned by the authenticated user
func (s *Server) handleCreateJobPosting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input db.JobPostingCreateInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	input.PostedBy = &userID

	if err := input.Validate(); err != nil {
		var fieldErr *db.InputFieldError
		if errors.As(err, &fieldErr) {
			s.errorResponse(w, http.StatusBadRequest, fieldErr.Message)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	posting, err := s.repo.CreateJobPosting(r.Context(), &input)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.logger.Info("job posting created",
		zap.Stringer("id", posting.ID),
		zap.Stringer("posted_by", userID))
	s.jsonResponse(w, http.StatusCreated, posting)
}

// updateOwnedPosting applies input to the posting when userID owns it.
func (s *Server) updateOwnedPosting(ctx context.Context, id, userID uuid.UUID, input *db.JobPostingUpdateInput) (*db.JobPosting, error) {
	posting, err := s.repo.GetJobPostingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if posting == nil {
		return nil, &ErrJobPostingNotFound{ID: id}
	}
	if !posting.IsOwnedBy(userID) {
		return nil, &ErrForbidden{Action: "update"}
	}

	updated, err := s.repo.UpdateJobPosting(ctx, id, userID, input)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &ErrJobPostingNotFound{ID: id}
	}
	return updated, nil
}

// handleUpdateJobPosting changes the non-empty fields of a posting; only its owner may do so
func (s *Server) handleUpdateJobPosting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	postingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job posting ID")
		return
	}

	var input db.JobPostingUpdateInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := input.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	posting, err := s.updateOwnedPosting(r.Context(), postingID, userID, &input)
	if err != nil {
		status := HTTPStatus(err)
		switch status {
		case http.StatusNotFound:
			s.errorResponse(w, status, "Job posting not found")
		case http.StatusForbidden:
			s.errorResponse(w, status, "You can only update your own job postings")
		default:
			s.errorResponse(w, status, "Database error: "+err.Error())
		}
		return
	}

	s.logger.Info("job posting updated",
		zap.Stringer("id", posting.ID),
		zap.Stringer("posted_by", userID))
	s.jsonResponse(w, http.StatusOK, posting)
}

// deleteOwnedPosting removes the posting when userID owns it.
func (s *Server) deleteOwnedPosting(ctx context.Context, id, userID uuid.UUID) error {
	posting, err := s.repo.GetJobPostingByID(ctx, id)
	if err != nil {
		return err
	}
	if posting == nil {
		return &ErrJobPostingNotFound{ID: id}
	}
	if !posting.IsOwnedBy(userID) {
		return &ErrForbidden{Action: "delete"}
	}

	deleted, err := s.repo.DeleteJobPosting(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		// removed between the lookup and the delete
		return &ErrJobPostingNotFound{ID: id}
	}
	return nil
}

// handleDeleteJobPosting deletes a posting; only its owner may do so
func (s *Server) handleDeleteJobPosting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	postingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job posting ID")
		return
	}

	if err := s.deleteOwnedPosting(r.Context(), postingID, userID); err != nil {
		status := HTTPStatus(err)
		switch status {
		case http.StatusNotFound:
			s.errorResponse(w, status, "Job posting not found")
		case http.StatusForbidden:
			s.errorResponse(w, status, "You can only delete your own job postings")
		default:
			s.errorResponse(w, status, "Database error: "+err.Error())
		}
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Job posting deleted"})
}
