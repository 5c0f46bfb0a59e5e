package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/sitemonitor/internal/httpapi/middleware"
	"github.com/hamed0406/sitemonitor/internal/repo"
)

// Server exposes the monitor's state read-only over HTTP.
type Server struct {
	Logger *zap.Logger
	Rounds repo.RoundStore
	// Sites is the configured host list in display order.
	Sites []string
}

func NewServer(l *zap.Logger, rounds repo.RoundStore, sites []string) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Rounds: rounds, Sites: sites}
}

// Router builds the handler. reqPerMin <= 0 disables rate limiting.
func (s *Server) Router(reqPerMin, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(reqPerMin, burst, nil))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/rounds/latest", s.handleLatestRound)
		r.Get("/sites", s.handleSites)
		r.Get("/status", s.handleStatus)
	})

	return r
}

func (s *Server) handleLatestRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.Rounds.Latest(r.Context())
	switch {
	case errors.Is(err, repo.ErrNoRound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	case err != nil:
		s.Logger.Warn("latest_round_error", zap.Error(err))
		http.Error(w, "latest error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	sites := s.Sites
	if sites == nil {
		sites = []string{}
	}
	writeJSON(w, http.StatusOK, sites)
}

type statusPayload struct {
	Rounds int `json:"rounds"`
	Sites  int `json:"sites"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusPayload{Rounds: s.Rounds.Rounds(), Sites: len(s.Sites)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully. It returns nil after a clean shutdown.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("status_api_listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("status_api_stopped")
	return nil
}
