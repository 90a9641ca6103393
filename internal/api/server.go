// Package api exposes the portal HTTP API. Browsers talk to this server with
// a session ID; the server talks to the housing backend with the bearer token
// stored in the session.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dormgate/internal/config"
	"dormgate/internal/domain"
	"dormgate/internal/export"
	"dormgate/internal/metrics"
	"dormgate/internal/models"
	"dormgate/internal/service"
	"dormgate/internal/upload"
	"dormgate/internal/upstream"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type HTTPServer struct {
	cfg       config.ServerConfig
	auth      *service.AuthService
	bookings  *service.BookingService
	payments  *service.PaymentService
	documents *service.DocumentService
	issues    *service.IssueService
	sessions  domain.SessionStore
	journal   domain.ActivityJournal
	exporter  *export.Exporter
	limiters  sync.Map // map[string]*clientLimiter
	lastSweep atomic.Int64
	server    *http.Server
	logger    zerolog.Logger
}

type Services struct {
	Auth      *service.AuthService
	Bookings  *service.BookingService
	Payments  *service.PaymentService
	Documents *service.DocumentService
	Issues    *service.IssueService
}

func NewHTTPServer(cfg config.ServerConfig, svcs Services, sessions domain.SessionStore, j domain.ActivityJournal, exporter *export.Exporter, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:       cfg,
		auth:      svcs.Auth,
		bookings:  svcs.Bookings,
		payments:  svcs.Payments,
		documents: svcs.Documents,
		issues:    svcs.Issues,
		sessions:  sessions,
		journal:   j,
		exporter:  exporter,
	}
	if logger != nil {
		srv.logger = logger.With().Str("component", "http").Logger()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", srv.handleLogin)
	mux.HandleFunc("/api/v1/auth/logout", srv.withSession(srv.handleLogout))
	mux.HandleFunc("/api/v1/auth/verify", srv.withSession(srv.handleVerify))
	mux.HandleFunc("/api/v1/bookings", srv.withSession(srv.handleBookings))
	mux.HandleFunc("/api/v1/bookings/", srv.withSession(srv.handleBookingByID))
	mux.HandleFunc("/api/v1/agreement-template", srv.withSession(srv.handleAgreementTemplate))
	mux.HandleFunc("/api/v1/invoices", srv.withSession(srv.handleInvoices))
	mux.HandleFunc("/api/v1/invoices/", srv.withSession(srv.handleInvoiceByID))
	mux.HandleFunc("/api/v1/payments", srv.withSession(srv.handlePayments))
	mux.HandleFunc("/api/v1/payments/pending", srv.withSession(srv.handlePendingPayments))
	mux.HandleFunc("/api/v1/payments/manual", srv.withSession(srv.handleManualPayment))
	mux.HandleFunc("/api/v1/payments/export", srv.withSession(srv.handlePaymentExport))
	mux.HandleFunc("/api/v1/payments/", srv.withSession(srv.handlePaymentByID))
	mux.HandleFunc("/api/v1/document-types", srv.withSession(srv.handleDocumentTypes))
	mux.HandleFunc("/api/v1/documents", srv.withSession(srv.handleDocuments))
	mux.HandleFunc("/api/v1/documents/", srv.withSession(srv.handleDocumentByID))
	mux.HandleFunc("/api/v1/issues", srv.withSession(srv.handleIssues))
	mux.HandleFunc("/api/v1/activity", srv.withSession(srv.handleActivity))

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	return srv
}

// Handler returns the full middleware chain, used by the tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(sessionKey{}).(*models.Session)
	return sess
}

// withSession resolves the bearer session ID. Unknown or missing sessions get
// a 401 with a login redirect so the browser can restart the flow.
func (s *HTTPServer) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeUnauthorized(w, "authorization required")
			return
		}

		sessionID := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		sess, err := s.sessions.Get(r.Context(), sessionID)
		if err != nil || sess == nil {
			writeUnauthorized(w, "session expired, please log in again")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	}
}

// writeServiceError maps service and upstream failures onto HTTP responses.
// A backend 401 means the stored token is dead: the session is revoked once
// and the client is told to log in again.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	sess := sessionFrom(r.Context())

	if errors.Is(err, upstream.ErrUnauthorized) {
		if sess != nil {
			if delErr := s.sessions.Delete(r.Context(), sess.ID); delErr != nil {
				s.logger.Warn().Err(delErr).Str("session_id", sess.ID).Msg("failed to delete session")
			}
			metrics.IncSessionRevoked()
		}
		writeUnauthorized(w, "session expired, please log in again")
		return
	}

	if apiErr, ok := upstream.AsAPIError(err); ok {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrPendingPaymentExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrIdentityRequired),
		errors.Is(err, service.ErrBankDetailsRequired),
		errors.Is(err, service.ErrProofRequired),
		errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, upload.ErrFileTooLarge),
		errors.Is(err, upload.ErrUnsupportedType),
		errors.Is(err, upload.ErrTooManyFiles):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "the service is temporarily unavailable, please try again later")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "the service is temporarily unavailable, please try again later")
	}
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit.RPS <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		lim := s.getLimiter(clientKey(r))
		if !lim.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey prefers the session so one misbehaving tab cannot starve the
// whole NAT.
func clientKey(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		return header
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

// limiterIdleTTL bounds the limiter map: keys not seen for this long are
// dropped on the next sweep.
const limiterIdleTTL = 15 * time.Minute

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

func (s *HTTPServer) getLimiter(key string) *rate.Limiter {
	now := time.Now()

	if v, ok := s.limiters.Load(key); ok {
		cl := v.(*clientLimiter)
		cl.lastSeen.Store(now.UnixNano())
		return cl.lim
	}

	burst := s.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	cl := &clientLimiter{lim: rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RPS), burst)}
	cl.lastSeen.Store(now.UnixNano())
	if actual, loaded := s.limiters.LoadOrStore(key, cl); loaded {
		cl = actual.(*clientLimiter)
		cl.lastSeen.Store(now.UnixNano())
	}

	s.sweepLimiters(now)
	return cl.lim
}

// sweepLimiters evicts idle limiters, at most once per limiterIdleTTL.
func (s *HTTPServer) sweepLimiters(now time.Time) {
	last := s.lastSweep.Load()
	if now.UnixNano()-last < int64(limiterIdleTTL) {
		return
	}
	if !s.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	s.limiters.Range(func(k, v any) bool {
		if v.(*clientLimiter).lastSeen.Load() < cutoff {
			s.limiters.Delete(k)
		}
		return true
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(routePattern(r.URL.Path))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// routePattern collapses numeric path segments so the metrics endpoint label
// stays low-cardinality: /api/v1/bookings/7 -> /api/v1/bookings/:id.
func routePattern(path string) string {
	parts := strings.Split(path, "/")
	changed := false
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
			changed = true
		}
	}
	if !changed {
		return path
	}
	return strings.Join(parts, "/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
