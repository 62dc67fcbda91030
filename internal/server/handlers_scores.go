package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/job-funnel/internal/types"
)

// handleScoreJob evaluates the configured rulesets against one stored
// job and appends the result to its score history.
func (s *Server) handleScoreJob(w http.ResponseWriter, r *http.Request) {
	var req types.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.JobURL == "" && req.JobID == "" {
		s.errorResponse(w, http.StatusBadRequest, "job_url or job_id is required")
		return
	}

	job, err := s.resolveJob(r, req.JobURL, req.JobID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result, err := s.scorer.ScoreAndRecord(r.Context(), &job.CanonicalJob, job.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.ScoresComputed.Inc()

	if err := s.store.Audit(r.Context(), "job_scored", "job_scores", job.ID, "", map[string]any{
		"job_url": job.URL,
		"passed":  result.Passed,
	}); err != nil {
		log.Printf("failed to audit scoring for %s: %v", job.URL, err)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_url": job.URL,
		"result":  result,
	})
}

// handleListScores returns the score history for a job URL, newest
// first.
func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	jobURL := r.URL.Query().Get("job_url")
	if jobURL == "" {
		s.errorResponse(w, http.StatusBadRequest, "job_url query parameter is required")
		return
	}

	limit, _ := listParams(r)
	scores, err := s.store.ListScores(r.Context(), jobURL, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"scores": scores, "count": len(scores)})
}

// resolveJob looks a stored job up by id or URL.
func (s *Server) resolveJob(r *http.Request, jobURL, jobID string) (*types.StoredJob, error) {
	if jobID != "" {
		job, err := s.store.GetRawJobByID(r.Context(), jobID)
		if err != nil {
			return nil, err
		}
		if job != nil {
			return job, nil
		}
	}
	if jobURL != "" {
		job, err := s.store.GetRawJobByURL(r.Context(), jobURL)
		if err != nil {
			return nil, err
		}
		if job != nil {
			return job, nil
		}
	}
	return nil, &ErrNotFound{Kind: "job", Key: jobURL + jobID}
}
