package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonathan/job-funnel/internal/proposal"
	"github.com/jonathan/job-funnel/internal/types"
)

// validProposalStatuses are the review lifecycle states.
var validProposalStatuses = map[string]bool{
	"generated": true,
	"approved":  true,
	"rejected":  true,
	"submitted": true,
}

// handleGenerateProposal produces a proposal draft for an admitted job.
func (s *Server) handleGenerateProposal(w http.ResponseWriter, r *http.Request) {
	if s.proposals == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "proposal generation not configured (GEMINI_API_KEY unset)")
		return
	}

	var req types.ProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.JobURL == "" {
		s.errorResponse(w, http.StatusBadRequest, "job_url is required")
		return
	}

	result, err := s.proposals.Generate(r.Context(), req.JobURL, req.TemplateID)
	if err != nil {
		switch {
		case errors.Is(err, proposal.ErrJobNotFound):
			s.errorResponse(w, http.StatusNotFound, err.Error())
		case errors.Is(err, proposal.ErrAISettingsMissing), errors.Is(err, proposal.ErrNoTemplate):
			s.errorResponse(w, http.StatusPreconditionFailed, err.Error())
		default:
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.metrics.ProposalsGenerated.Inc()

	s.jsonResponse(w, http.StatusOK, result)
}

// handleListProposals returns stored proposals, newest first.
func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	proposals, err := s.store.ListProposals(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"proposals": proposals, "count": len(proposals)})
}

// handleGetProposal returns one proposal by id.
func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, err := s.store.GetProposal(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "proposal not found: "+id)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleUpdateProposalStatus moves a proposal through its review
// lifecycle.
func (s *Server) handleUpdateProposalStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !validProposalStatuses[req.Status] {
		s.errorResponse(w, http.StatusBadRequest, "invalid status: "+req.Status)
		return
	}

	if err := s.store.UpdateProposalStatus(r.Context(), id, req.Status); err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}
