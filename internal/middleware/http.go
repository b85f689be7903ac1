package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	corsAllowHeaders = []string{
		"Content-Type",
		"Authorization",
		"Connect-Protocol-Version",
		"Connect-Timeout-Ms",
		requestIDHeader,
	}
	corsExposeHeaders = []string{
		"Connect-Protocol-Version",
		"Connect-Timeout-Ms",
		requestIDHeader,
	}
)

// CORS lets browsers on origin call the Connect endpoints. "*" allows any origin.
// Preflight requests are answered here and never reach next.
func CORS(origin string) func(http.Handler) http.Handler {
	allow := strings.Join(corsAllowHeaders, ", ")
	expose := strings.Join(corsExposeHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", allow)
			h.Set("Access-Control-Expose-Headers", expose)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working behind the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// AccessLog logs one debug line per HTTP request with its status and latency.
// RPC-level outcomes are logged by LoggingInterceptor.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
