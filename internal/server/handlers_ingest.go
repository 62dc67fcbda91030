package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/job-funnel/internal/filter"
	"github.com/jonathan/job-funnel/internal/normalize"
	"github.com/jonathan/job-funnel/internal/types"
)

// handleWebhookJobs receives push deliveries from feed aggregators. The
// body is an arbitrary JSON document; the normalizer locates the job
// array inside it.
func (s *Server) handleWebhookJobs(w http.ResponseWriter, r *http.Request) {
	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "webhook"
	}

	resp, err := s.processPayload(r.Context(), payload, source)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleIngestJobs receives pre-normalized items, typically produced by
// the conversion endpoints.
func (s *Server) handleIngestJobs(w http.ResponseWriter, r *http.Request) {
	var req types.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	// Route typed items through the same normalization path as raw
	// payloads so every invariant is enforced in one place.
	encoded, err := json.Marshal(map[string]any{"jobs": req.Items})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to encode items")
		return
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to decode items")
		return
	}

	source := req.Items[0].Source
	if source == "" {
		source = "api"
	}

	resp, err := s.processPayload(r.Context(), payload, source)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleIngestFeed receives an arbitrary aggregator payload, like the
// webhook endpoint but authenticated by shared secret only.
func (s *Server) handleIngestFeed(w http.ResponseWriter, r *http.Request) {
	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "feed"
	}

	resp, err := s.processPayload(r.Context(), payload, source)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// processPayload runs one batch through the pipeline: normalize, store
// with dedup-by-URL, filter, notify. Per-item failures are reported in
// the response, never as a batch failure; only a structurally unusable
// payload errors out.
func (s *Server) processPayload(ctx context.Context, payload any, source string) (*types.IngestResponse, error) {
	start := time.Now()

	jobs, report, err := normalize.Jobs(payload, source, time.Now().UTC())
	if err != nil {
		if ferr := s.store.RecordFeedError(ctx, source, err.Error()); ferr != nil {
			log.Printf("failed to record feed error for %s: %v", source, ferr)
		}
		return nil, &ErrBadPayload{Message: err.Error()}
	}

	resp := &types.IngestResponse{
		Received:    report.Received,
		Accepted:    report.Accepted,
		TestSkipped: report.TestSkipped,
		Errors:      report.Rejections,
	}
	s.metrics.JobsReceived.Add(float64(report.Received))
	s.metrics.JobsAccepted.Add(float64(report.Accepted))
	s.metrics.JobsRejected.Add(float64(len(report.Rejections)))
	s.metrics.TestSkipped.Add(float64(report.TestSkipped))

	kw, geo := s.filterConfigs(ctx)

	newJobs := 0
	for i := range jobs {
		job := &jobs[i]

		// Advisory cache hit: the URL was ingested within the TTL
		// window, so the upsert is skipped entirely. Misses fall
		// through to the database, which is the source of truth.
		if s.seen.Seen(ctx, job.URL) {
			resp.Deduped++
			s.metrics.JobsDeduped.Inc()
			continue
		}

		res, err := s.store.UpsertRawJob(ctx, job)
		if err != nil {
			log.Printf("failed to store job %s: %v", job.URL, err)
			resp.Errors = append(resp.Errors, "store failed: "+job.URL)
			continue
		}
		s.seen.Mark(ctx, job.URL)

		if !res.Inserted {
			resp.Deduped++
			s.metrics.JobsDeduped.Inc()
			continue
		}
		newJobs++

		decision := filter.Admit(job, kw, geo)
		if !decision.OK {
			s.metrics.JobsFilteredOut.Inc()
			continue
		}

		if _, err := s.store.UpsertFilteredJob(ctx, job, res.ID, decision.Reasons); err != nil {
			log.Printf("failed to store filtered job %s: %v", job.URL, err)
			resp.Errors = append(resp.Errors, "store filtered failed: "+job.URL)
			continue
		}
		resp.Filtered++

		if err := s.notifier.NotifyJob(ctx, job); err != nil {
			s.metrics.NotifyFailures.Inc()
			log.Printf("notification dispatch failed for %s: %v", job.URL, err)
		}
	}

	if err := s.store.RecordFeedSuccess(ctx, source, newJobs); err != nil {
		log.Printf("failed to record feed status for %s: %v", source, err)
	}
	if err := s.store.Audit(ctx, "ingest_batch", "feed", source, "", map[string]any{
		"received":     resp.Received,
		"accepted":     resp.Accepted,
		"filtered":     resp.Filtered,
		"deduped":      resp.Deduped,
		"test_skipped": resp.TestSkipped,
		"errors":       len(resp.Errors),
	}); err != nil {
		log.Printf("failed to audit ingest batch for %s: %v", source, err)
	}

	s.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	return resp, nil
}

// filterConfigs loads the admission configs. Lookup failures are logged
// and treated as absent so ingestion stays fail-open.
func (s *Server) filterConfigs(ctx context.Context) (*types.KeywordConfig, *types.GeoConfig) {
	kw, err := s.cfgStore.KeywordConfig(ctx)
	if err != nil {
		log.Printf("failed to load keyword config: %v", err)
	}
	geo, err := s.cfgStore.GeoConfig(ctx)
	if err != nil {
		log.Printf("failed to load geo config: %v", err)
	}
	return kw, geo
}
