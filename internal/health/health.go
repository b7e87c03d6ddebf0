// Package health exposes the device's liveness and session status.
//
// The HTTP server answers /healthz and /readyz for process supervisors,
// /status with the latest session snapshot, /cycles with recent audit
// records when a queryable audit store is configured, and serves the
// Swagger UI for these endpoints. The same readiness is published through
// the standard gRPC health service.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nadzzz/curiousframe/internal/audit"
	_ "github.com/nadzzz/curiousframe/internal/health/docs"
)

// HistoryFunc returns up to limit recent audit records, newest first.
type HistoryFunc func(ctx context.Context, limit int) ([]audit.Record, error)

// Server serves health and status over HTTP and gRPC.
type Server struct {
	port    int
	ready   atomic.Bool
	status  atomic.Pointer[Status]
	history HistoryFunc
	grpc    *grpchealth.Server
	server  *http.Server
}

// New creates a health server for the given HTTP port.
func New(port int) *Server {
	s := &Server{port: port, grpc: grpchealth.NewServer()}
	s.grpc.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.status.Store(&Status{Phase: "idle"})
	return s
}

// SetReady marks the session as running (or not).
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.grpc.SetServingStatus("", st)
}

// SetStatus publishes the latest session status.
func (s *Server) SetStatus(st Status) {
	s.status.Store(&st)
}

// SetHistory enables /cycles. It must be called before serving.
func (s *Server) SetHistory(fn HistoryFunc) {
	s.history = fn
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /cycles", s.handleCycles)
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return mux
}

// handleHealth reports whether the session loop is running.
//
// @Summary     Liveness and readiness
// @Description Returns 200 while the session loop is running, 503 before it starts and after it ends.
// @Tags        health
// @Produce     json
// @Success     200  {object}  map[string]string
// @Failure     503  {object}  map[string]string
// @Router      /healthz [get]
// @Router      /readyz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus returns the latest session snapshot.
//
// @Summary     Session status
// @Description Phase, active language, last object set and counters of the running session.
// @Tags        status
// @Produce     json
// @Success     200  {object}  health.Status
// @Router      /status [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Load())
}

// handleCycles returns recent audit records.
//
// @Summary     Recent cycles
// @Description Most recent audited cycles, newest first. Requires the SQLite audit mirror.
// @Tags        status
// @Produce     json
// @Param       limit  query     int  false  "Maximum number of records (default 20, max 500)"
// @Success     200    {array}   health.CycleRecord
// @Failure     400    {string}  string  "Invalid limit"
// @Failure     404    {string}  string  "No audit store configured"
// @Failure     500    {string}  string  "Audit store error"
// @Router      /cycles [get]
func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "no audit store configured", http.StatusNotFound)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := s.history(r.Context(), limit)
	if err != nil {
		slog.Error("reading audit history", "error", err)
		http.Error(w, "audit store error", http.StatusInternalServerError)
		return
	}
	out := make([]CycleRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, cycleRecord(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListenAndServe starts the HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

// ServeGRPC serves the gRPC health service on lis until ctx is cancelled.
func (s *Server) ServeGRPC(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.grpc)

	slog.Info("grpc health listening", "addr", lis.Addr().String())

	go func() {
		<-ctx.Done()
		s.grpc.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc health: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
