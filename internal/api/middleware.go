package api

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tallerhub/taller-status/internal/core"
)

// Response headers set on every request.
const (
	HeaderRequestID = "X-Request-Id"
	HeaderVersion   = "X-Taller-Version"
)

// ServiceHeaders sets the version header and a request ID. An incoming
// X-Request-Id is echoed back; otherwise one is generated.
func ServiceHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = "req_" + uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)
		w.Header().Set(HeaderVersion, core.Version)
		next.ServeHTTP(w, r)
	})
}

// statusCapture wraps http.ResponseWriter to capture the status code.
type statusCapture struct {
	http.ResponseWriter
	code int
}

func (s *statusCapture) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers flush through the wrapper.
func (s *statusCapture) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLogger logs each HTTP request with method, path, status, and duration.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sc := &statusCapture{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sc, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sc.code,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", w.Header().Get(HeaderRequestID),
			)
		})
	}
}

// ValidateContentType rejects mutation requests whose body is not JSON.
// Requests without a Content-Type pass through.
func ValidateContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := r.Header.Get("Content-Type")
			if ct != "" {
				mt, _, err := mime.ParseMediaType(ct)
				if err != nil || !isJSONMediaType(mt) {
					WriteError(w, http.StatusBadRequest, core.NewInvalidRequestError(
						"Content-Type must be application/json.",
						map[string]any{"received": ct},
					))
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isJSONMediaType(mt string) bool {
	return mt == MediaType || strings.HasSuffix(mt, "+json")
}
