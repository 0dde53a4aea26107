package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/talent-matcher/internal/explain"
	"github.com/jonathan/talent-matcher/internal/filter"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

const maxRequestBytes = 10 << 20

// RankOverrides adjust the configured ranking options for one request
type RankOverrides struct {
	TopK          *int  `json:"top_k,omitempty" validate:"omitempty,gte=0"`
	UseHardFilter *bool `json:"use_hard_filter,omitempty"`
	Explain       *bool `json:"explain,omitempty"`
}

// RankCandidatesRequest is the body of POST /v1/rank/candidates
type RankCandidatesRequest struct {
	Job        *types.JobPosting `json:"job" validate:"required"`
	Candidates []types.Candidate `json:"candidates" validate:"dive"`
	RankOverrides
}

// RankJobsRequest is the body of POST /v1/rank/jobs
type RankJobsRequest struct {
	Candidate *types.Candidate   `json:"candidate" validate:"required"`
	Jobs      []types.JobPosting `json:"jobs" validate:"dive"`
	RankOverrides
}

// ExplainRequest is the body of POST /v1/explain
type ExplainRequest struct {
	Candidate *types.Candidate  `json:"candidate" validate:"required"`
	Job       *types.JobPosting `json:"job" validate:"required"`
}

// ExplainResponse pairs the explanation with the hard filter decision
type ExplainResponse struct {
	Explanation *explain.Explanation `json:"explanation"`
	Filter      filter.Decision      `json:"filter"`
}

func (s *Server) handleRankCandidates(w http.ResponseWriter, r *http.Request) {
	var req RankCandidatesRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.recommender.RankCandidates(r.Context(), req.Job, req.Candidates, s.options(req.RankOverrides))
	if err != nil {
		s.failure(w, "rank candidates", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleRankJobs(w http.ResponseWriter, r *http.Request) {
	var req RankJobsRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.recommender.RankJobs(r.Context(), req.Candidate, req.Jobs, s.options(req.RankOverrides))
	if err != nil {
		s.failure(w, "rank jobs", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if !s.decode(w, r, &req) {
		return
	}

	decision, err := s.recommender.Filter(r.Context(), req.Candidate, req.Job)
	if err != nil {
		s.failure(w, "explain", err)
		return
	}
	exp, err := s.recommender.Explain(r.Context(), req.Candidate, req.Job)
	if err != nil {
		s.failure(w, "explain", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ExplainResponse{Explanation: exp, Filter: decision})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) options(o RankOverrides) ranking.Options {
	opts := s.recommender.DefaultOptions()
	if o.TopK != nil {
		opts.TopK = *o.TopK
	}
	if o.UseHardFilter != nil {
		opts.UseHardFilter = *o.UseHardFilter
	}
	if o.Explain != nil {
		opts.Explain = *o.Explain
	}
	return opts
}

// decode reads and validates a JSON body, writing a 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Message: fmt.Sprintf("invalid JSON body: %v", err)}).Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, toValidationError(err).Error())
		return false
	}
	return true
}

func (s *Server) failure(w http.ResponseWriter, op string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}

func toValidationError(err error) *ErrValidation {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Namespace(), Message: fmt.Sprintf("failed %q check", fe.Tag())}
	}
	return &ErrValidation{Message: err.Error()}
}
