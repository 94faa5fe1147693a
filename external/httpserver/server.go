package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/foxseedlab/adhan/internal/repository"
	"github.com/go-chi/chi/v5"
)

const (
	defaultBroadcastLimit = 20
	maxBroadcastLimit     = 100
	shutdownTimeout       = 5 * time.Second
	readHeaderTimeout     = 5 * time.Second
)

type Server struct {
	addr    string
	cache   *prayer.DailyCache
	clock   prayer.Clock
	metrics *observability.Metrics
	repo    repository.Repository
}

func New(addr string, cache *prayer.DailyCache, clock prayer.Clock, metrics *observability.Metrics, repo repository.Repository) *Server {
	return &Server{addr: addr, cache: cache, clock: clock, metrics: metrics, repo: repo}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	r.Get("/schedule", s.handleSchedule)
	r.Get("/broadcasts", s.handleBroadcasts)
	return r
}

// Run serves until ctx is cancelled. An empty address disables the server.
func (s *Server) Run(ctx context.Context) error {
	if s.addr == "" {
		slog.Info("HTTP_BIND_ADDR is empty; http server disabled")
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.Router(), ReadHeaderTimeout: readHeaderTimeout}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("http server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, date, loaded := s.cache.Current()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"schedule_loaded": loaded,
		"schedule_date":   date,
	})
}

type prayerResponse struct {
	Name       string `json:"name"`
	ArabicName string `json:"arabic_name"`
	Time       string `json:"time"`
}

type scheduleResponse struct {
	Date          string           `json:"date"`
	CalendarLabel string           `json:"calendar_label"`
	Prayers       []prayerResponse `json:"prayers"`
	Next          *prayerResponse  `json:"next,omitempty"`
}

func toPrayerResponse(p prayer.Prayer) prayerResponse {
	return prayerResponse{Name: string(p.Name), ArabicName: p.Name.ArabicName(), Time: p.Time}
}

func (s *Server) handleSchedule(w http.ResponseWriter, _ *http.Request) {
	sched, date, loaded := s.cache.Current()
	if !loaded {
		respondError(w, http.StatusServiceUnavailable, "schedule_unavailable", "prayer schedule has not been loaded yet")
		return
	}
	resp := scheduleResponse{Date: date, CalendarLabel: sched.CalendarLabel}
	for _, p := range sched.Prayers() {
		resp.Prayers = append(resp.Prayers, toPrayerResponse(p))
	}
	next := toPrayerResponse(prayer.NextPrayer(sched, s.clock.Now()))
	resp.Next = &next
	respondJSON(w, http.StatusOK, resp)
}

type broadcastResponse struct {
	ID            string     `json:"id"`
	Trigger       string     `json:"trigger"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	TargetCount   int        `json:"target_count"`
	FinishedCount int        `json:"finished_count"`
	ErroredCount  int        `json:"errored_count"`
}

func (s *Server) handleBroadcasts(w http.ResponseWriter, r *http.Request) {
	limit := defaultBroadcastLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxBroadcastLimit {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	list, err := s.repo.ListRecentBroadcasts(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list broadcasts", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "failed to list broadcasts")
		return
	}
	out := make([]broadcastResponse, 0, len(list))
	for _, b := range list {
		out = append(out, broadcastResponse{
			ID:            b.ID,
			Trigger:       b.Trigger,
			Status:        string(b.Status),
			StartedAt:     b.StartedAt,
			EndedAt:       b.EndedAt,
			TargetCount:   b.TargetCount,
			FinishedCount: b.FinishedCount,
			ErroredCount:  b.ErroredCount,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"broadcasts": out})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
