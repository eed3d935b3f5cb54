package http

import (
	"context"
	"net/http"
	"time"

	"daybook/internal/cache"
	"daybook/internal/log"
	"daybook/internal/middleware/ratelimit"
	"daybook/internal/middleware/security"
	"daybook/internal/middleware/trace"
	"daybook/internal/services"
)

const (
	reportCacheSize = 64
	reportCacheTTL  = 10 * time.Minute
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	Currency           string
	RateLimitPerMinute int
	// Ready reports whether downstream dependencies are reachable.
	Ready func(ctx context.Context) error
	// TrustedProxies are CIDRs whose X-Forwarded-For header is believed.
	TrustedProxies []string
	Logger         *log.Logger
}

// Metrics is a point-in-time view of the server counters.
type Metrics struct {
	trace.Metrics
	ActiveClients      int         `json:"activeClients"`
	SuspiciousRequests int64       `json:"suspiciousRequests"`
	ReportCache        cache.Stats `json:"reportCache"`
}

type Server struct {
	http.Server
	svc      *services.Service
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	reports  cache.Cache[renderedReport]
	caches   *cache.Manager
	ready    func(ctx context.Context) error
	currency string
	logger   *log.Logger
}

// NewServer wires the routes and middleware for the daybook API.
func NewServer(addr string, svc *services.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default(log.ComponentHTTP)
	}
	if opts.Currency == "" {
		opts.Currency = "PKR"
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:      svc,
		detector: security.NewDetector(opts.Logger.WithComponent(log.ComponentSecurity)),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Logger:            opts.Logger.WithComponent(log.ComponentRateLimit),
		}),
		reports:  cache.NewLRUCache[renderedReport](reportCacheSize, reportCacheTTL),
		caches:   cache.NewManager(logger),
		ready:    opts.Ready,
		currency: opts.Currency,
		logger:   logger,
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)
	s.caches.Register(s.reports)
	s.caches.StartCleanup(time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("PUT /api/entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)
	mux.HandleFunc("GET /api/ledger", s.handleLedger)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/categories/{type}/{name}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts/summary", s.handleAccountSummary)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	mux.HandleFunc("POST /api/accounts/{id}/payments", s.handleRecordPayment)

	mux.HandleFunc("GET /api/reports/profit-loss", s.handleProfitLoss)
	mux.HandleFunc("POST /api/reports/profit-loss/sheets", s.handleExportSheets)

	mux.HandleFunc("GET /api/backup", s.handleExportBackup)
	mux.HandleFunc("POST /api/backup", s.handleImportBackup)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	rateLimited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, _ *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           headers.Middleware(s.detector.Middleware(rateLimited(s.tracer.Middleware(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the background janitors and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.caches.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Metrics:            s.tracer.GetMetrics(),
		ActiveClients:      s.limiter.ActiveClients(),
		SuspiciousRequests: s.detector.SuspiciousCount(),
		ReportCache:        s.reports.Stats(),
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(s.Metrics()).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}

// fail writes the error response for err and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Request failed", err, log.ComponentHTTP, op,
			log.NewFields().WithErrorType(log.ErrorTypeInternal))
	} else {
		log.FromContext(ctx).DebugContext(ctx, "Request rejected",
			log.NewFields().WithOperation(op).WithError(err).WithErrorType(errorType(status)).ToSlice()...)
	}
	if status == http.StatusInternalServerError {
		// Details are logged, not returned.
		NewResponse().Status(status).JSON(errorBody{Error: "internal error", RequestID: trace.GetRequestID(ctx)}).Write(w)
		return
	}
	FromError(err).Write(w)
}

func errorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return log.ErrorTypeNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return log.ErrorTypeFormat
	default:
		return log.ErrorTypeValidation
	}
}
