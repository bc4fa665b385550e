package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/diagnosis/visitor-hosts/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	HealthPath      = "/healthz"
)

// RequestID reuses the caller's X-Request-ID or mints one, and stores it in
// the context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logger.RequestIDKey, id)))
	})
}

// Logging emits one line per request through chi's RequestLogger. Health
// probes are logged at debug so they do not drown the sync lines.
func Logging(next http.Handler) http.Handler {
	return middleware.RequestLogger(requestLogger{})(next)
}

type requestLogger struct{}

func (requestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestEntry{r: r}
}

type requestEntry struct {
	r *http.Request
}

func (e *requestEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	log := logger.InfoContext
	switch {
	case e.r.URL.Path == HealthPath:
		log = logger.DebugContext
	case status >= http.StatusInternalServerError:
		log = logger.ErrorContext
	}
	log(e.r.Context(), "http request",
		"method", e.r.Method,
		"path", e.r.URL.Path,
		"status", status,
		"bytes", bytes,
		"elapsed_ms", elapsed.Milliseconds(),
		"remote_addr", e.r.RemoteAddr,
	)
}

func (e *requestEntry) Panic(v interface{}, stack []byte) {
	logger.ErrorContext(e.r.Context(), "http request panic",
		"panic", v,
		"stack", string(stack),
		"method", e.r.Method,
		"path", e.r.URL.Path,
	)
}

// ServiceName tags the request context with the service name.
func ServiceName(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logger.ServiceKey, name)))
		})
	}
}

type healthBody struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Health answers GET /healthz. With a non-nil ready check the probe reports
// 503 while the check fails.
func Health(ready func(context.Context) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != HealthPath {
				next.ServeHTTP(w, r)
				return
			}
			body := healthBody{Status: "ok", Timestamp: time.Now().UTC().Format(time.RFC3339)}
			code := http.StatusOK
			if ready != nil {
				ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
				defer cancel()
				if err := ready(ctx); err != nil {
					body.Status, body.Error = "unavailable", err.Error()
					code = http.StatusServiceUnavailable
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_ = json.NewEncoder(w).Encode(body)
		})
	}
}
