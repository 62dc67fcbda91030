package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/job-funnel/internal/config"
	"github.com/jonathan/job-funnel/internal/configstore"
	"github.com/jonathan/job-funnel/internal/db"
	"github.com/jonathan/job-funnel/internal/llm"
	"github.com/jonathan/job-funnel/internal/metrics"
	"github.com/jonathan/job-funnel/internal/notify"
	"github.com/jonathan/job-funnel/internal/proposal"
	"github.com/jonathan/job-funnel/internal/scoring"
	"github.com/jonathan/job-funnel/internal/server/middleware"
	"github.com/jonathan/job-funnel/internal/server/ratelimit"
	"github.com/jonathan/job-funnel/internal/types"
)

// Store is the persistence surface the handlers depend on. *db.DB
// implements it; tests substitute in-memory fakes.
type Store interface {
	UpsertRawJob(ctx context.Context, job *types.CanonicalJob) (db.UpsertResult, error)
	UpsertFilteredJob(ctx context.Context, job *types.CanonicalJob, rawID string, reasons []string) (db.UpsertResult, error)
	GetRawJobByURL(ctx context.Context, url string) (*types.StoredJob, error)
	GetRawJobByID(ctx context.Context, id string) (*types.StoredJob, error)
	ListRawJobs(ctx context.Context, limit, offset int) ([]types.StoredJob, error)
	ListFilteredJobs(ctx context.Context, limit, offset int) ([]types.FilteredJob, error)
	ListScores(ctx context.Context, jobURL string, limit int) ([]db.ScoreRecord, error)
	ListProposals(ctx context.Context, limit, offset int) ([]db.Proposal, error)
	GetProposal(ctx context.Context, id string) (*db.Proposal, error)
	UpdateProposalStatus(ctx context.Context, id, status string) error
	ListFeedStatus(ctx context.Context) ([]db.FeedStatus, error)
	RecordFeedSuccess(ctx context.Context, source string, newJobs int) error
	RecordFeedError(ctx context.Context, source, errMsg string) error
	Audit(ctx context.Context, action, entity, entityID, actor string, data map[string]any) error
	ListAudit(ctx context.Context, limit, offset int) ([]db.AuditEntry, error)
}

// SeenCache is the advisory recently-seen URL cache consulted before
// the database upsert.
type SeenCache interface {
	Seen(ctx context.Context, url string) bool
	Mark(ctx context.Context, url string)
}

var (
	_ Store     = (*db.DB)(nil)
	_ SeenCache = (*db.SeenCache)(nil)
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	db          *db.DB
	store       Store
	cfgStore    configstore.Provider
	cfgAdmin    *configstore.PG
	scorer      *scoring.Service
	proposals   *proposal.Service
	notifier    *notify.Notifier
	seen        SeenCache
	metrics     *metrics.Metrics
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	passwordCfg *config.PasswordConfig
	llmClient   llm.Client
}

// New creates a new server instance
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		db:      database,
		store:   database,
		seen:    db.NewSeenCache(nil, 0),
		metrics: metrics.New(prometheus.DefaultRegisterer),
	}

	cfgStore := configstore.NewPG(database.Pool())
	s.cfgStore = cfgStore
	s.cfgAdmin = cfgStore

	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.seen = db.NewSeenCache(rdb, time.Duration(cfg.SeenTTLHours)*time.Hour)
	}

	s.scorer = scoring.New(s.cfgStore, database)
	s.notifier = notify.New(s.cfgStore)
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		s.llmClient = client
		s.proposals = proposal.New(s.cfgStore, database, client)
	}

	// Operator auth is optional; without JWT_SECRET and a password hash
	// the config API stays read-only-locked.
	if cfg.OperatorPasswordHash != "" {
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		s.jwtService = NewJWTService(jwtConfig)

		passwordConfig, err := config.NewPasswordConfig()
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}
		s.passwordCfg = passwordConfig
	}

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Ingestion endpoints
	mux.Handle("POST /webhook/jobs", s.withWebhookAuth(http.HandlerFunc(s.handleWebhookJobs)))
	mux.Handle("POST /ingest/jobs", s.withIngestSecret(http.HandlerFunc(s.handleIngestJobs)))
	mux.Handle("POST /ingest/feed", s.withIngestSecret(http.HandlerFunc(s.handleIngestFeed)))

	// Feed conversion endpoints
	mux.HandleFunc("POST /convert/rss", s.handleConvertRSS)
	mux.HandleFunc("POST /convert/platform-json", s.handleConvertPlatformJSON)

	// Job read endpoints
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/filtered", s.handleListFilteredJobs)
	mux.HandleFunc("GET /feeds/status", s.handleFeedStatus)

	// Scoring endpoints
	mux.HandleFunc("POST /scores", s.handleScoreJob)
	mux.HandleFunc("GET /scores", s.handleListScores)

	// Proposal endpoints
	mux.HandleFunc("POST /proposals/generate", s.handleGenerateProposal)
	mux.HandleFunc("GET /proposals", s.handleListProposals)
	mux.HandleFunc("GET /proposals/{id}", s.handleGetProposal)
	mux.HandleFunc("PUT /proposals/{id}/status", s.handleUpdateProposalStatus)

	// Export endpoints
	mux.HandleFunc("GET /export/jobs.csv", s.handleExportJobs)
	mux.HandleFunc("GET /export/proposals.csv", s.handleExportProposals)

	// Config management requires operator auth.
	if s.jwtService != nil {
		mux.HandleFunc("POST /auth/login", s.handleLogin)

		authed := middleware.Auth(s.jwtService)
		mux.Handle("GET /config/prompt-templates", authed(http.HandlerFunc(s.handleListPromptTemplates)))
		mux.Handle("POST /config/prompt-templates", authed(http.HandlerFunc(s.handleSavePromptTemplate)))
		mux.Handle("GET /config/{key}", authed(http.HandlerFunc(s.handleGetConfigDoc)))
		mux.Handle("PUT /config/{key}", authed(http.HandlerFunc(s.handlePutConfigDoc)))
		mux.Handle("GET /audit", authed(http.HandlerFunc(s.handleListAudit)))
	} else {
		log.Println("Operator auth not configured; config API disabled")
	}

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		_ = s.llmClient.Close()
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// DB exposes the store for components wired up alongside the server.
func (s *Server) DB() *db.DB {
	return s.db
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Ingest-Secret")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(s.extractClientID(r)) {
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging and per-request metrics.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// r.Pattern is set by the mux after routing; unmatched requests
		// fall back to the raw path.
		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}
		s.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		log.Printf("[%s] %s completed in %v (%d)", r.Method, r.URL.Path, time.Since(start), rec.status)
	})
}

// withIngestSecret gates an endpoint behind the shared ingestion secret.
// Authentication runs before any payload inspection, so a bad secret is
// rejected even for otherwise valid bodies.
func (s *Server) withIngestSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.IngestSharedSecret != "" {
			got := r.Header.Get("X-Ingest-Secret")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.IngestSharedSecret)) != 1 {
				s.errorResponse(w, http.StatusUnauthorized, "invalid or missing ingestion secret")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withWebhookAuth accepts either the webhook bearer token or the shared
// ingestion secret header.
func (s *Server) withWebhookAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.WebhookToken()
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		if auth, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			if subtle.ConstantTimeCompare([]byte(auth), []byte(token)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}
		got := r.Header.Get("X-Ingest-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1 {
			next.ServeHTTP(w, r)
			return
		}

		s.errorResponse(w, http.StatusUnauthorized, "invalid or missing webhook credentials")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID identifies the client for rate limiting, by IP.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
