// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, ChatPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return out
}

// =============================================================================
// CHAT HANDLER TESTS
// =============================================================================

func TestHandleChat_Success(t *testing.T) {
	srv := New(Config{Responder: EchoResponder, Logger: quietLogger()})

	rec := postChat(t, srv.Handler(), `{"message":"  hello  "}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["response"] != "hello" {
		t.Errorf("response = %q, want %q", body["response"], "hello")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHandleChat_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty message", `{"message":""}`, errNoMessage},
		{"missing field", `{}`, errNoMessage},
		{"not json", `hello`, errInvalidBody},
		{"too long", `{"message":"` + strings.Repeat("a", MaxMessageLength+1) + `"}`, errTooLong},
	}

	srv := New(Config{Responder: EchoResponder, Logger: quietLogger()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, srv.Handler(), tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != tt.wantErr {
				t.Errorf("error = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestHandleChat_BodyTooLarge(t *testing.T) {
	srv := New(Config{Responder: EchoResponder, Logger: quietLogger()})
	big := `{"message":"` + strings.Repeat("x", MaxRequestBodySize) + `"}`

	rec := postChat(t, srv.Handler(), big)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandleChat_ResponderError(t *testing.T) {
	failing := func(context.Context, string) (string, error) {
		return "", errors.New("model offline")
	}
	srv := New(Config{Responder: failing, Logger: quietLogger()})

	rec := postChat(t, srv.Handler(), `{"message":"hi"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "model offline" {
		t.Errorf("error = %q, want %q", got, "model offline")
	}
}

func TestHandleChat_RecoversPanic(t *testing.T) {
	panicking := func(context.Context, string) (string, error) {
		panic("boom")
	}
	srv := New(Config{Responder: panicking, Logger: quietLogger()})

	rec := postChat(t, srv.Handler(), `{"message":"hi"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	srv := New(Config{Logger: quietLogger()})
	req := httptest.NewRequest(http.MethodGet, ChatPath, nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRequestsCounter(t *testing.T) {
	srv := New(Config{Responder: EchoResponder, Logger: quietLogger()})
	for i := 0; i < 3; i++ {
		postChat(t, srv.Handler(), `{"message":"hi"}`)
	}
	if got := srv.Requests(); got != 3 {
		t.Errorf("Requests() = %d, want 3", got)
	}
}

// =============================================================================
// HEALTH / RESPONDERS
// =============================================================================

func TestHandleHealth(t *testing.T) {
	srv := New(Config{Logger: quietLogger()})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["status"]; got != "ok" {
		t.Errorf("status field = %v, want ok", got)
	}
}

func TestOracleResponder_Deterministic(t *testing.T) {
	a, _ := OracleResponder(context.Background(), "Will it rain?")
	b, _ := OracleResponder(context.Background(), "  will it RAIN?  ")
	if a != b {
		t.Errorf("same question gave %q and %q", a, b)
	}
	if strings.Contains(a, " ") || a == "" {
		t.Errorf("answer %q should be a single word", a)
	}
}

func TestProcessResponse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"\n  Yes \t", "Yes"},
		{"**Doomed.**", "Doomed"},
		{"\"Never!\"", "Never"},
		{"It's   well-known...", "It's well-known"},
		{"Yes, obviously.", "Yes obviously"},
		{"...", ""},
		{"  ", ""},
		{"«日本»", "日本"},
	}
	for _, tt := range tests {
		if got := ProcessResponse(tt.in); got != tt.want {
			t.Errorf("ProcessResponse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHandleChat_RepliesAreProcessed(t *testing.T) {
	srv := New(Config{Responder: EchoResponder, Logger: quietLogger()})

	rec := postChat(t, srv.Handler(), `{"message":"Will it rain?!"}`)

	if got := decodeBody(t, rec)["response"]; got != "Will it rain" {
		t.Errorf("response = %q, want %q", got, "Will it rain")
	}
}

// =============================================================================
// RATE LIMIT TESTS
// =============================================================================

func TestClientLimiter_PerClient(t *testing.T) {
	cl := NewClientLimiter(0.001, 2)

	if !cl.Allow("10.0.0.1") || !cl.Allow("10.0.0.1") {
		t.Fatal("first two requests should be allowed")
	}
	if cl.Allow("10.0.0.1") {
		t.Error("third request should be limited")
	}
	if !cl.Allow("10.0.0.2") {
		t.Error("other client should have its own bucket")
	}
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	srv := New(Config{Responder: EchoResponder, RatePerSecond: 0.001, Burst: 1, Logger: quietLogger()})

	first := postChat(t, srv.Handler(), `{"message":"a"}`)
	second := postChat(t, srv.Handler(), `{"message":"b"}`)

	if first.Code != http.StatusOK {
		t.Errorf("first status = %d, want 200", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	srv := New(Config{Responder: EchoResponder, Logger: log.New(&buf, "", 0)})

	postChat(t, srv.Handler(), `{"message":""}`)

	if !strings.Contains(buf.String(), "status=400") {
		t.Errorf("log %q missing status=400", buf.String())
	}
}

func TestShutdown_NotStarted(t *testing.T) {
	srv := New(Config{Logger: quietLogger()})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}
