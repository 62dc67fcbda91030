package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonathan/job-funnel/internal/convert"
)

// RSSConvertRequest is the body of POST /convert/rss.
type RSSConvertRequest struct {
	RSSXML string `json:"rss_xml"`
	Source string `json:"source,omitempty"`
}

// PlatformConvertRequest is the body of POST /convert/platform-json.
type PlatformConvertRequest struct {
	PlatformJSON map[string]any `json:"platform_json"`
	Source       string         `json:"source,omitempty"`
}

// ConvertResponse carries items ready for POST /ingest/jobs.
type ConvertResponse struct {
	Items []map[string]any `json:"items"`
}

// handleConvertRSS converts a pasted RSS/Atom feed into ingestion items.
func (s *Server) handleConvertRSS(w http.ResponseWriter, r *http.Request) {
	var req RSSConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.RSSXML == "" {
		s.errorResponse(w, http.StatusBadRequest, "rss_xml is required")
		return
	}
	if req.Source == "" {
		req.Source = "rss"
	}

	items, err := convert.FromRSS(req.RSSXML, req.Source, time.Now().UTC())
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, ConvertResponse{Items: items})
}

// handleConvertPlatformJSON converts search-results JSON copied from the
// platform's web interface into ingestion items.
func (s *Server) handleConvertPlatformJSON(w http.ResponseWriter, r *http.Request) {
	var req PlatformConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.PlatformJSON == nil {
		s.errorResponse(w, http.StatusBadRequest, "platform_json is required")
		return
	}
	if req.Source == "" {
		req.Source = "platform"
	}

	items, err := convert.FromPlatformJSON(req.PlatformJSON, req.Source, time.Now().UTC())
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, ConvertResponse{Items: items})
}
