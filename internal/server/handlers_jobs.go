package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/job-funnel/internal/export"
)

// listParams reads limit/offset query parameters with sane bounds.
func listParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// handleListJobs returns stored raw jobs, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	if url := r.URL.Query().Get("url"); url != "" {
		job, err := s.store.GetRawJobByURL(r.Context(), url)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		if job == nil {
			s.errorResponse(w, http.StatusNotFound, "job not found: "+url)
			return
		}
		s.jsonResponse(w, http.StatusOK, job)
		return
	}

	jobs, err := s.store.ListRawJobs(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

// handleListFilteredJobs returns the admitted working set.
func (s *Server) handleListFilteredJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	jobs, err := s.store.ListFilteredJobs(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

// handleFeedStatus reports per-source ingestion health.
func (s *Server) handleFeedStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.store.ListFeedStatus(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"feeds": statuses})
}

// handleExportJobs streams the filtered jobs as CSV.
func (s *Server) handleExportJobs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="jobs_filtered.csv"`)
	if err := export.WriteFilteredJobsCSV(r.Context(), s.store, w); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

// handleExportProposals streams stored proposals as CSV.
func (s *Server) handleExportProposals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="proposals.csv"`)
	if err := export.WriteProposalsCSV(r.Context(), s.store, w); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}
