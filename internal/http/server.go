// Package http serves the read-only JSON API next to the chat bot.
package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/log"
	"ledgerbot/internal/middleware/ratelimit"
	"ledgerbot/internal/middleware/security"
	"ledgerbot/internal/middleware/trace"
)

// Summarizer answers summary queries over the ledger.
type Summarizer interface {
	Summarize(ctx context.Context, q core.SummaryQuery) (core.Summary, error)
}

// Deps are the collaborators the server reads from. Ready may be nil.
type Deps struct {
	Ledger   Summarizer
	Catalog  *core.Catalog
	Ready    func(ctx context.Context) error
	Logger   *log.Logger
	Location *time.Location
	Now      func() time.Time

	// Per-client request budget for /api routes.
	RateLimit  int
	RateWindow time.Duration

	// APIToken, when set, is required as a bearer token on /api routes.
	APIToken string
}

type Server struct {
	http.Server
	deps    Deps
	limiter *ratelimit.Limiter
	logger  *log.Logger
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{
		deps:   deps,
		logger: deps.Logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			Limit:  deps.RateLimit,
			Window: deps.RateWindow,
		}),
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/prices", s.handlePrices)
	api.HandleFunc("GET /api/summary", s.handleSummary)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	var apiHandler http.Handler = security.RequireToken(deps.APIToken, s.onUnauthorized)(api)
	apiHandler = s.limiter.Middleware(security.ClientIP, s.onRateLimited)(apiHandler)
	mux.Handle("/api/", apiHandler)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = headers.Middleware(h)
	h = log.Middleware(s.logger, security.ClientIP)(h)
	h = trace.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	m := s.limiter.GetMetrics()
	s.logger.InfoContext(ctx, "HTTP API stopping",
		log.FieldOperation, log.OpShutdown,
		"requests", trace.TotalRequests(),
		"rate_limited", m.TotalHits,
		"tracked_clients", s.limiter.ActiveClients())
	return s.Server.Shutdown(ctx)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	ip := security.ClientIP(r)
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, ip,
		log.FieldRequestID, trace.GetRequestID(r.Context()),
		log.FieldPath, r.URL.Path)
	secs := int(s.limiter.RetryAfter(ip).Seconds()) + 1
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func (s *Server) onUnauthorized(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Unauthorized API request",
		log.FieldClientIP, security.ClientIP(r),
		log.FieldRequestID, trace.GetRequestID(r.Context()),
		log.FieldPath, r.URL.Path)
	w.Header().Set("WWW-Authenticate", `Bearer realm="ledgerbot"`)
	writeError(w, http.StatusUnauthorized, "unauthorized")
}
