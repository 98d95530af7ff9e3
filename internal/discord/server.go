package discord

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HTTPServer serves the bot's internal health endpoint
type HTTPServer struct {
	server *http.Server
	bot    *Bot
	events *SSEClient
}

// NewHTTPServer creates a new HTTP server. events may be nil.
func NewHTTPServer(port string, bot *Bot, events *SSEClient) *HTTPServer {
	mux := http.NewServeMux()

	srv := &HTTPServer{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		bot:    bot,
		events: events,
	}

	mux.HandleFunc("GET /health", srv.HandleHealth)
	return srv
}

// Start starts the HTTP server
func (s *HTTPServer) Start() {
	go func() {
		slog.Info("Starting Discord internal HTTP server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Discord internal HTTP server failed", "error", err)
		}
	}()
}

// Stop stops the HTTP server
func (s *HTTPServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Discord internal HTTP server shutdown failed", "error", err)
	}
}
