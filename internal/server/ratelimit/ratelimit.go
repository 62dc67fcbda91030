// Package ratelimit provides per-client rate limiting for the ingestion
// endpoints using a token bucket per client.
package ratelimit

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// bucket is one client's token bucket. Tokens refill at a steady rate up
// to the burst capacity.
type bucket struct {
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func (b *bucket) allow(now time.Time) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled        bool
	RequestsPerMin int
	Burst          int
}

// LoadConfig reads rate limit settings from the environment. Rate
// limiting is on by default; RATE_LIMIT_ENABLED=false turns it off.
func LoadConfig() Config {
	cfg := Config{
		Enabled:        os.Getenv("RATE_LIMIT_ENABLED") != "false",
		RequestsPerMin: envInt("RATE_LIMIT_PER_MINUTE", 120),
		Burst:          envInt("RATE_LIMIT_BURST", 30),
	}
	if cfg.RequestsPerMin < 1 {
		cfg.RequestsPerMin = 120
	}
	if cfg.Burst < 1 {
		cfg.Burst = 30
	}
	return cfg
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Limiter manages one token bucket per client.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	cfg        Config
	lastAccess map[string]time.Time
	stop       chan struct{}
}

// NewLimiter creates a limiter and starts its idle-bucket cleanup loop.
func NewLimiter(cfg Config) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		cfg:        cfg,
		lastAccess: make(map[string]time.Time),
		stop:       make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the client may make a request now.
func (l *Limiter) Allow(clientID string) bool {
	if !l.cfg.Enabled {
		return true
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{
			capacity:   float64(l.cfg.Burst),
			refillRate: float64(l.cfg.RequestsPerMin) / 60.0,
			tokens:     float64(l.cfg.Burst),
			lastRefill: now,
		}
		l.buckets[clientID] = b
	}
	l.lastAccess[clientID] = now
	return b.allow(now)
}

// Stop terminates the cleanup loop.
func (l *Limiter) Stop() {
	close(l.stop)
}

// cleanupLoop drops buckets idle for more than ten minutes.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for id, last := range l.lastAccess {
				if now.Sub(last) > 10*time.Minute {
					delete(l.buckets, id)
					delete(l.lastAccess, id)
				}
			}
			l.mu.Unlock()
		}
	}
}
