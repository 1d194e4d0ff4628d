// Package server exposes the latest report over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/internal/metrics"
	"github.com/rustyeddy/tradestats/internal/refresh"
	"github.com/rustyeddy/tradestats/pkg/logger"
)

// ReportSource is satisfied by *refresh.Refresher.
type ReportSource interface {
	Refresh(ctx context.Context) (refresh.Snapshot, error)
}

type handler struct {
	src ReportSource
	log *logger.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(src ReportSource, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &handler{src: src, log: log.With(logger.StringField("component", "server"))}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "tradestats"})
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/report", h.getReport)
		r.Get("/export", h.getExport)
	})

	return r
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.src.Refresh(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("X-Report-Computed-At", snap.ComputedAt.UTC().Format(time.RFC3339))
	writeJSON(w, http.StatusOK, snap.Report)
}

func (h *handler) getExport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.src.Refresh(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	name := fmt.Sprintf("tradestats-%s.json", snap.ComputedAt.UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := analytics.WriteExport(w, snap.Report, snap.Trades); err != nil {
		h.log.ErrorContext(r.Context(), "write export", logger.ErrorField(err))
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "refresh report", logger.ErrorField(err))

	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// requestLog logs each request through zap instead of chi's stdlib logger.
func (h *handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.log.Debug("http request",
			logger.StringField("method", r.Method),
			logger.StringField("path", r.URL.Path),
			logger.IntField("status", ww.Status()),
			logger.IntField("bytes", ww.BytesWritten()),
			logger.StringField("request_id", middleware.GetReqID(r.Context())),
			logger.StringField("duration", time.Since(start).String()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("tradestats listening", logger.StringField("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
