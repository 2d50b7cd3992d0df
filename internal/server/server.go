package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	"github.com/finsight-io/finsight/internal/common"
	"github.com/finsight-io/finsight/internal/engine"
	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/service"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// AnalyzeSchedule is a cron expression for background analysis of all
	// accounts. Empty disables the scheduler.
	AnalyzeSchedule string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		AnalyzeSchedule: "0 3 * * *", // daily at 03:00
	}
}

// Server exposes the analysis engine over HTTP and runs the scheduled
// background analysis.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	cron    *cron.Cron
	engine  *engine.Engine
	storage service.Storage
	config  Config
}

// New wires the router and optional cron schedule.
func New(eng *engine.Engine, store service.Storage, config Config) (*Server, error) {
	s := &Server{
		engine:  eng,
		storage: store,
		config:  config,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Get("/accounts", s.handleListAccounts)
		r.Get("/accounts/{accountID}/analysis", s.handleAnalysis)
		r.Get("/accounts/{accountID}/suggestions", s.handleListSuggestions)
		r.Post("/classify", s.handleClassify)
		r.Post("/suggestions/{suggestionID}/{action}", s.handleSuggestionAction)
	})
	s.router = router

	s.server = &http.Server{
		Addr:              config.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if config.AnalyzeSchedule != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(config.AnalyzeSchedule, s.analyzeAllAccounts); err != nil {
			return nil, fmt.Errorf("invalid analyze schedule %q: %w", config.AnalyzeSchedule, err)
		}
	}

	return s, nil
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until an error or a termination signal, then shuts
// down gracefully.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	if s.cron != nil {
		s.cron.Start()
		slog.Info("analysis scheduler started", "schedule", s.config.AnalyzeSchedule)
	}

	go func() {
		slog.Info("starting server", "addr", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		slog.Info("shutdown initiated")

		if s.cron != nil {
			s.cron.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			return s.server.Close()
		}
	}

	return nil
}

// analyzeAllAccounts is the scheduled background job.
func (s *Server) analyzeAllAccounts() {
	ctx := context.Background()

	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		slog.Error("scheduled analysis: failed to list accounts", "error", err)
		return
	}

	results := s.engine.AnalyzeAll(ctx, accounts)
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			slog.Error("scheduled analysis failed for account",
				"account_id", res.AccountID,
				"error", res.Err)
		}
	}
	slog.Info("scheduled analysis complete",
		"accounts", len(results),
		"failed", failed)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.storage.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"accounts": accounts})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	result, err := s.engine.Analyze(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	suggestions, err := s.storage.ListSuggestions(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.Suggestion{"suggestions": suggestions})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var txn model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		writeError(w, common.ValidationError("body", "invalid transaction JSON"))
		return
	}

	classification, err := s.engine.Classify(r.Context(), txn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, classification)
}

func (s *Server) handleSuggestionAction(w http.ResponseWriter, r *http.Request) {
	suggestionID := chi.URLParam(r, "suggestionID")
	// Path segments are lowercase by convention, actions are stored upper.
	action := model.SuggestionAction(normalizeAction(chi.URLParam(r, "action")))

	if _, ok := action.Status(); !ok {
		writeError(w, common.ValidationError("action", "must be implement or dismiss"))
		return
	}

	if err := s.engine.RecordSuggestionAction(r.Context(), suggestionID, action); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"suggestion_id": suggestionID,
		"action":        string(action),
	})
}

func normalizeAction(raw string) string {
	switch raw {
	case "implement", "IMPLEMENT":
		return string(model.ActionImplement)
	case "dismiss", "DISMISS":
		return string(model.ActionDismiss)
	default:
		return raw
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": common.UserMessage(err)})
	}
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
