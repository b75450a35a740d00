// Package worker hosts the scheduled card-news worker: its configuration, the
// cron scheduler, and the health and metrics HTTP servers.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthServer serves liveness (/health) and readiness (/health/ready) probes.
// It starts not ready; call SetReady once the scheduler is running.
type HealthServer struct {
	addr   string
	logger *slog.Logger
	ready  atomic.Bool
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer creates a health server listening on addr.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthServer{addr: addr, logger: logger}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (h *HealthServer) Start(ctx context.Context) error {
	return serve(ctx, "health", h.addr, h.Handler(), h.logger)
}

// SetReady flips the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	if h.ready.Swap(ready) != ready {
		h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
	}
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeJSON(w, h.logger, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, healthResponse{Status: "ok"})
}

// serve runs an HTTP server until ctx is done. A clean shutdown returns nil.
func serve(ctx context.Context, name, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(name+" server starting", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(name+" server shutdown failed", slog.Any("error", err))
			return err
		}
		logger.Info(name + " server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error(name+" server failed", slog.Any("error", err))
		return err
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}
