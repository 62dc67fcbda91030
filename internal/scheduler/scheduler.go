// Package scheduler wires up the cron job that periodically sweeps the
// stored job set: purging raw jobs past retention and logging sources
// that have gone quiet.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/job-funnel/internal/db"
)

// staleFeedAfter is how long a source may go without a successful batch
// before the sweep flags it.
const staleFeedAfter = 24 * time.Hour

// Scheduler wraps robfig/cron and manages the background sweep.
type Scheduler struct {
	cron          *cron.Cron
	store         *db.DB
	spec          string // cron spec, e.g. "@every 1h"
	retentionDays int
}

// New creates a Scheduler firing on the given cron spec. retentionDays
// of zero disables purging.
func New(store *db.DB, spec string, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:         store,
		spec:          spec,
		retentionDays: retentionDays,
	}
}

// Start registers the sweep and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runSweep purges stale jobs and reports quiet sources.
func (s *Scheduler) runSweep(ctx context.Context) {
	log.Println("[scheduler] Sweep started")

	if s.retentionDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
		purged, err := s.store.PurgeStaleRawJobs(ctx, cutoff)
		if err != nil {
			log.Printf("[scheduler] Purge error: %v", err)
		} else if purged > 0 {
			log.Printf("[scheduler] Purged %d jobs not seen since %s", purged, cutoff.Format(time.RFC3339))
		}
	}

	statuses, err := s.store.ListFeedStatus(ctx)
	if err != nil {
		log.Printf("[scheduler] ListFeedStatus error: %v", err)
		return
	}
	for _, fs := range statuses {
		if fs.LastSuccessfulFetchAt == nil {
			continue
		}
		if time.Since(*fs.LastSuccessfulFetchAt) > staleFeedAfter {
			log.Printf("[scheduler] Source %q has had no successful batch since %s (errors: %d)",
				fs.Source, fs.LastSuccessfulFetchAt.Format(time.RFC3339), fs.ErrorCount)
		}
	}

	log.Println("[scheduler] Sweep complete")
}
