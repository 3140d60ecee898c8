package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hammamikhairi/ottolift/internal/logger"
)

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Microsecond))
		})
	}
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps the event stream working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// recoveryLogger routes recovered panics to the application log.
type recoveryLogger struct{ log *logger.Logger }

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("panic: %s", strings.TrimSpace(fmt.Sprintln(v...)))
}

// originAllowed matches an Origin header against patterns such as
// "http://localhost:*", where a trailing ":*" accepts any port.
func originAllowed(patterns []string) func(string) bool {
	return func(origin string) bool {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		for _, p := range patterns {
			if p == "*" || p == origin {
				return true
			}
			if base, ok := strings.CutSuffix(p, ":*"); ok && u.Scheme+"://"+u.Hostname() == base {
				return true
			}
		}
		return false
	}
}
