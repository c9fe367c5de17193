// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the address the widget expects the backend on.
	DefaultAddr = "127.0.0.1:5000"

	// MaxRequestBodySize is the maximum size for a request body (64KB).
	MaxRequestBodySize = 64 * 1024

	// MaxMessageLength is the maximum length of a message in runes.
	MaxMessageLength = 4000

	// ChatPath is the route of the chat endpoint.
	ChatPath = "/api/chat"
)

// Error strings returned in {"error": ...} bodies.
const (
	errNoMessage    = "No message provided"
	errInvalidBody  = "Invalid request format"
	errTooLong      = "Message too long"
	errBodyTooLarge = "Request body too large"
)

// Responder produces the reply text for a message.
// A returned error is reported to the client as HTTP 500 {"error": err}.
type Responder func(ctx context.Context, message string) (string, error)

// ============================================================================
// CONFIG
// ============================================================================

// Config configures the stub server.
type Config struct {
	Addr string
	// Responder answers messages; nil selects OracleResponder.
	Responder Responder
	// RatePerSecond and Burst configure the per-client limiter; 0 disables it.
	RatePerSecond float64
	Burst         int
	// Latency is added before every reply to make the loading state visible.
	Latency time.Duration
	Logger  *log.Logger
}

// ============================================================================
// SERVER
// ============================================================================

// Server serves the chat contract.
type Server struct {
	cfg      Config
	router   chi.Router
	server   *http.Server
	requests atomic.Int64
}

// New creates a Server and wires its routes and middleware.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Responder == nil {
		cfg.Responder = OracleResponder
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := &Server{cfg: cfg, router: chi.NewRouter()}

	s.router.Use(RecoveryMiddleware(cfg.Logger))
	s.router.Use(LoggingMiddleware(cfg.Logger))
	if cfg.RatePerSecond > 0 {
		s.router.Use(RateLimitMiddleware(NewClientLimiter(cfg.RatePerSecond, cfg.Burst), cfg.Logger))
	}

	s.router.Post(ChatPath, s.handleChat)
	s.router.Get("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Requests returns the number of chat requests handled.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Start listens on the configured address. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	s.cfg.Logger.Printf("SERVER_START | addr=%s path=%s", s.cfg.Addr, ChatPath)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server. Calling it before Start makes a
// later Start return http.ErrServerClosed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cfg.Logger.Printf("SERVER_SHUTDOWN | requests=%d", s.Requests())
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HANDLERS
// ============================================================================

type chatRequest struct {
	Message string `json:"message"`
}

type chatReply struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
}

type errorReply struct {
	Error string `json:"error"`
}

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorReply{Error: errBodyTooLarge})
			return
		}
		s.cfg.Logger.Printf("INVALID_BODY | error=%v", err)
		writeJSON(w, http.StatusBadRequest, errorReply{Error: errInvalidBody})
		return
	}

	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: errNoMessage})
		return
	}
	if len([]rune(req.Message)) > MaxMessageLength {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: errTooLong})
		return
	}

	if s.cfg.Latency > 0 {
		select {
		case <-time.After(s.cfg.Latency):
		case <-r.Context().Done():
			return
		}
	}

	answer, err := s.cfg.Responder(r.Context(), req.Message)
	if err != nil {
		s.cfg.Logger.Printf("RESPONDER_ERROR | error=%v", err)
		writeJSON(w, http.StatusInternalServerError, errorReply{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, chatReply{Success: true, Response: ProcessResponse(answer)})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"requests": s.Requests(),
	})
}

// ============================================================================
// RESPONDERS
// ============================================================================

// oracleAnswers are the one-word verdicts of the oracle persona.
var oracleAnswers = []string{
	"Yes", "No", "Doomed", "Inevitable", "Tuesday", "Absolutely",
	"Never", "Beware", "Tomorrow", "Soup", "Obviously", "Ghosts",
}

// OracleResponder answers every question with a single confident word.
// The same question always gets the same answer.
func OracleResponder(_ context.Context, message string) (string, error) {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(message))))
	return oracleAnswers[h.Sum32()%uint32(len(oracleAnswers))], nil
}

// EchoResponder returns the message unchanged.
func EchoResponder(_ context.Context, message string) (string, error) {
	return message, nil
}

// answerToken matches one word of a reply, allowing inner apostrophes and hyphens.
var answerToken = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9'\-]*`)

// ProcessResponse reduces a reply to its words: surrounding punctuation is
// stripped and the word tokens are joined by single spaces. A reply with no
// ASCII word tokens is returned with only the punctuation stripped.
func ProcessResponse(response string) string {
	s := strings.TrimFunc(strings.TrimSpace(response), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	tokens := answerToken.FindAllString(s, -1)
	if len(tokens) == 0 {
		return s
	}
	return strings.Join(tokens, " ")
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
