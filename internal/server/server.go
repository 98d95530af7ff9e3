package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/DuelBot_Go/internal/database"
	"github.com/osse101/DuelBot_Go/internal/duel"
	"github.com/osse101/DuelBot_Go/internal/handler"
	"github.com/osse101/DuelBot_Go/internal/logger"
	"github.com/osse101/DuelBot_Go/internal/metrics"
	"github.com/osse101/DuelBot_Go/internal/points"
	"github.com/osse101/DuelBot_Go/internal/reset"
	"github.com/osse101/DuelBot_Go/internal/sse"
)

// Config holds the listener and access settings
type Config struct {
	Port           int
	APIKey         string
	TrustedProxies []string
}

// Services bundles what the routes call into
type Services struct {
	Duel   duel.Service
	Points points.Service
	Reset  reset.Service
	SSEHub *sse.Hub
	DB     database.Pool
	// Readiness lists extra dependencies probed by /readyz
	Readiness []handler.NamedCheck
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(cfg Config, svc Services) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(cfg, svc),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the route tree. Exported for tests that drive it through httptest.
func NewRouter(cfg Config, svc Services) chi.Router {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(cfg.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(svc.DB, svc.Readiness...))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())

	duelHandler := handler.NewDuelHandler(svc.Duel)
	pointsHandler := handler.NewPointsHandler(svc.Points)
	adminHandler := handler.NewAdminHandler(svc.Reset, svc.Points, svc.SSEHub)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/duel", func(r chi.Router) {
			r.Post("/challenge", duelHandler.HandleChallenge)
			r.Post("/accept", duelHandler.HandleAccept)
			r.Post("/complete", duelHandler.HandleComplete)
			r.Post("/cancel", duelHandler.HandleCancel)
			r.Get("/history", duelHandler.HandleHistory)
		})

		r.Get("/points", pointsHandler.HandleBalance)
		r.Get("/standings", pointsHandler.HandleStandings)
		r.Post("/handles", pointsHandler.HandleLinkHandle)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reset", adminHandler.HandleReset)
			r.Put("/master-channel", adminHandler.HandleSetMasterChannel)
			r.Post("/sse/broadcast", adminHandler.HandleBroadcast)
		})

		if svc.SSEHub != nil {
			r.Get("/events", sse.Handler(svc.SSEHub))
		}
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps the SSE stream working through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func isQuietPath(path string) bool {
	for _, p := range QuietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID())
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	logger.Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
