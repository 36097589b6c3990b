// Package server exposes the chat and analytics endpoints the terminal talks to.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/termfolio/internal/analytics"
	"github.com/verte-zerg/termfolio/internal/chat"
	"github.com/verte-zerg/termfolio/internal/model"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 64 << 10

const topCommands = 10

// Asker answers chat questions.
type Asker interface {
	Ask(ctx context.Context, question string, history []model.ChatMessage) (chat.Answer, error)
}

// Aggregates stores server-side analytics totals.
type Aggregates interface {
	RecordEvent(ctx context.Context, event, command string) error
	ListEventTotals(ctx context.Context) ([]model.EventTotal, error)
	ListTopCommands(ctx context.Context, limit int) ([]model.CommandUsage, error)
}

// Summary is the reply of GET /api/analytics.
type Summary struct {
	Totals   []model.EventTotal   `json:"totals"`
	Commands []model.CommandUsage `json:"commands"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Server routes HTTP requests to the chat service and the aggregate store.
type Server struct {
	chat   Asker
	store  Aggregates
	logger *zap.Logger
	mux    *http.ServeMux
}

// New builds the handler tree.
func New(asker Asker, store Aggregates, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{chat: asker, store: store, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST "+chat.ChatPath, s.handleChat)
	s.mux.HandleFunc("POST "+analytics.Path, s.handleEvent)
	s.mux.HandleFunc("GET "+analytics.Path, s.handleSummary)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", time.Since(started)))
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.WireRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	ans, err := s.chat.Ask(r.Context(), req.Message, req.History)
	if err != nil {
		// Only client disconnects reach here.
		s.logger.Debug("chat request aborted", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "request canceled")
		return
	}
	writeJSON(w, http.StatusOK, chat.WireResponse{
		Response:     ans.Message.Text,
		ResponseTime: ans.Message.ResponseTime.Milliseconds(),
		Blocked:      ans.Blocked,
		Fallback:     ans.Fallback,
	})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var p analytics.Payload
	if !decode(w, r, &p) {
		return
	}
	switch p.Event {
	case analytics.EventVisit, analytics.EventQuestion:
		p.Command = ""
	case analytics.EventCommand:
		p.Command = strings.ToLower(strings.TrimSpace(p.Command))
		if p.Command == "" {
			writeError(w, http.StatusBadRequest, "command is required")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown event %q", p.Event))
		return
	}
	if err := s.store.RecordEvent(r.Context(), p.Event, p.Command); err != nil {
		s.logger.Error("failed to record analytics event", zap.String("event", p.Event), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.store.ListEventTotals(r.Context())
	if err != nil {
		s.logger.Error("failed to list analytics totals", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load totals")
		return
	}
	commands, err := s.store.ListTopCommands(r.Context(), topCommands)
	if err != nil {
		s.logger.Error("failed to list analytics commands", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load commands")
		return
	}
	if totals == nil {
		totals = []model.EventTotal{}
	}
	if commands == nil {
		commands = []model.CommandUsage{}
	}
	writeJSON(w, http.StatusOK, Summary{Totals: totals, Commands: commands})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
