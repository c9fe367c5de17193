// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ============================================================================
// Rate Limiting
// ============================================================================

// ClientLimiter keeps one token bucket per client IP.
type ClientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientEntry
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter creates a limiter allowing rps requests per second with
// the given burst for each client. A burst below 1 is raised to 1.
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientLimiter{
		limiters: make(map[string]*clientEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// Allow reports whether a request from ip may proceed now.
func (cl *ClientLimiter) Allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()
	entry, ok := cl.limiters[ip]
	if !ok {
		cl.cleanupLocked(now)
		entry = &clientEntry{limiter: rate.NewLimiter(cl.rps, cl.burst)}
		cl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// cleanupLocked drops clients idle longer than idleTTL. Caller holds mu.
func (cl *ClientLimiter) cleanupLocked(now time.Time) {
	for ip, entry := range cl.limiters {
		if now.Sub(entry.lastSeen) > cl.idleTTL {
			delete(cl.limiters, ip)
		}
	}
}

// RateLimitMiddleware rejects requests over the per-client rate with 429.
func RateLimitMiddleware(limiter *ClientLimiter, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				logger.Printf("RATE_LIMITED | ip=%s path=%s", ip, r.URL.Path)
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, errorReply{Error: "Rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// Logging
// ============================================================================

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status and duration of every request.
func LoggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			logger.Printf("HTTP_REQUEST | method=%s path=%s status=%d duration=%.3fs id=%s",
				r.Method,
				r.URL.Path,
				wrapped.statusCode,
				time.Since(start).Seconds(),
				r.Header.Get("X-Request-Id"),
			)
		})
	}
}

// ============================================================================
// Recovery
// ============================================================================

// RecoveryMiddleware turns a handler panic into a 500 JSON error.
func RecoveryMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Printf("PANIC_RECOVERED | method=%s path=%s error=%v\n%s",
						r.Method, r.URL.Path, err, string(debug.Stack()))
					writeJSON(w, http.StatusInternalServerError, errorReply{Error: "Internal Server Error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. Forwarded headers are not
// trusted; the stub is meant for loopback use.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
