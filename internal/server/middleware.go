package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// withLogging creates the request-scoped log entry and logs the outcome.
func withLogging(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			entry := log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			ctx := logging.WithEntry(r.Context(), entry)
			entry.Debug("request started")

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			// auth and the gate may have added user fields further down
			done := logging.FromContext(ctx).WithFields(logrus.Fields{
				"status":      rec.status,
				"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
			})
			switch {
			case rec.status >= 500:
				done.Error("request completed")
			case rec.status >= 400:
				done.Warn("request completed")
			default:
				done.Info("request completed")
			}
		})
	}
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(r.Context()).
					WithField("panic", rec).
					WithField("stack", string(debug.Stack())).
					Error("handler panicked")
				httpx.JSONError(w, http.StatusInternalServerError, httpx.CodeInternal, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// timingWriter adds the Server-Timing header right before headers go out.
type timingWriter struct {
	http.ResponseWriter
	start   time.Time
	stamped bool
}

func (tw *timingWriter) stamp() {
	if tw.stamped {
		return
	}
	tw.stamped = true
	ms := float64(time.Since(tw.start).Microseconds()) / 1000
	tw.Header().Add("Server-Timing", fmt.Sprintf("app;dur=%.2f", ms))
}

func (tw *timingWriter) WriteHeader(code int) {
	tw.stamp()
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timingWriter) Write(b []byte) (int, error) {
	tw.stamp()
	return tw.ResponseWriter.Write(b)
}

func withTiming(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &timingWriter{ResponseWriter: w, start: time.Now()}
		next.ServeHTTP(tw, r)
		tw.stamp()
	})
}
