package handlers

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"golang.org/x/time/rate"

	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an ID, reusing the caller's when present,
// and stores it in the context for the logger
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// RateLimiter throttles requests per client address
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	clients  map[string]*clientLimiter
	lastSeen time.Duration
	metrics  *metrics.Collector
}

type clientLimiter struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter allows rps requests per second per client with the given burst
func NewRateLimiter(rps float64, burst int, metricsCollector *metrics.Collector) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		clients:  make(map[string]*clientLimiter),
		lastSeen: 10 * time.Minute,
		metrics:  metricsCollector,
	}
}

func (l *RateLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, c := range l.clients {
		if now.Sub(c.seen) > l.lastSeen {
			delete(l.clients, k)
		}
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	return c.limiter
}

// Middleware rejects requests over the limit with 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !l.get(host, time.Now()).Allow() {
			l.metrics.RecordAPIError("rate_limited", r.URL.Path)
			b := base{metrics: l.metrics}
			b.sendError(w, r, r.URL.Path, "Terlalu banyak permintaan, coba lagi nanti", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoveryLogger adapts the structured logger to gorilla's RecoveryHandlerLogger
type recoveryLogger struct {
	logger *logging.StructuredLogger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error(context.Background(), "[API_PANIC] Recovered from panic", logging.Fields{"panic": v}, nil)
}

// accessLog writes one structured entry per request
func accessLog(logger *logging.StructuredLogger) handlers.LogFormatter {
	return func(_ io.Writer, p handlers.LogFormatterParams) {
		logger.Info(p.Request.Context(), "[API_ACCESS] Request served", logging.Fields{
			"method":      p.Request.Method,
			"path":        p.URL.Path,
			"status":      p.StatusCode,
			"size":        p.Size,
			"remote_addr": p.Request.RemoteAddr,
			"duration_ms": time.Since(p.TimeStamp).Milliseconds(),
		})
	}
}

// Wrap applies the common middleware chain: request ID, panic recovery, CORS
// and access logging
func Wrap(h http.Handler, logger *logging.StructuredLogger) http.Handler {
	h = handlers.CustomLoggingHandler(io.Discard, h, accessLog(logger))
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader, "Content-Disposition"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}), handlers.PrintRecoveryStack(false))(h)
	return RequestID(h)
}
