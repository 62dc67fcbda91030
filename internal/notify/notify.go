// Package notify fans admitted jobs out to the configured notification
// channels. Delivery is best-effort: a failing channel is logged and
// skipped, it never blocks or fails ingestion.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-funnel/internal/configstore"
	"github.com/jonathan/job-funnel/internal/types"
)

// Channel delivers one job notification.
type Channel interface {
	Name() string
	Send(ctx context.Context, job *types.CanonicalJob) error
}

// Notifier resolves the stored notification config into channels and
// dispatches to them concurrently.
type Notifier struct {
	cfg        configstore.Provider
	httpClient *http.Client

	// newTelegram is swappable in tests.
	newTelegram func(cfg map[string]any) (Channel, error)
}

// New creates a notifier.
func New(cfg configstore.Provider) *Notifier {
	return &Notifier{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		newTelegram: newTelegramChannel,
	}
}

// NotifyJob sends the job to every enabled channel. Errors from
// individual channels are logged and swallowed; the returned error is
// only for config lookup failures.
func (n *Notifier) NotifyJob(ctx context.Context, job *types.CanonicalJob) error {
	nc, err := n.cfg.NotificationConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notification config: %w", err)
	}
	if nc == nil || !nc.Enabled {
		return nil
	}

	channels := n.buildChannels(nc)
	if len(channels) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, ch := range channels {
		g.Go(func() error {
			if err := ch.Send(gctx, job); err != nil {
				log.Printf("notification via %s failed for %s: %v", ch.Name(), job.URL, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (n *Notifier) buildChannels(nc *configstore.NotificationConfig) []Channel {
	var out []Channel
	for _, c := range nc.Channels {
		if !c.Enabled {
			continue
		}
		switch c.Type {
		case "webhook":
			url, _ := c.Config["url"].(string)
			if url == "" {
				log.Printf("webhook channel skipped: no url configured")
				continue
			}
			out = append(out, &webhookChannel{url: url, client: n.httpClient})
		case "telegram":
			ch, err := n.newTelegram(c.Config)
			if err != nil {
				log.Printf("telegram channel skipped: %v", err)
				continue
			}
			out = append(out, ch)
		default:
			log.Printf("unknown notification channel type %q skipped", c.Type)
		}
	}
	return out
}

// webhookChannel POSTs the job as JSON to a configured URL.
type webhookChannel struct {
	url    string
	client *http.Client
}

func (w *webhookChannel) Name() string { return "webhook" }

func (w *webhookChannel) Send(ctx context.Context, job *types.CanonicalJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
