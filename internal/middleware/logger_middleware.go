package middleware

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"time"
)

// statusRecorder captures the status code and body size written by the
// handler chain so the access log can report them.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(p)
	sr.bytes += n
	return n, err
}

// Hijack keeps the websocket upgrade working behind the logger.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// LoggerMiddleware writes one access-log line per request. The caller field
// is the admin id or device id when auth middleware has run, otherwise
// "anonymous".
func LoggerMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Printf("[HTTP] %s %s %d %dB %v %s caller=%s",
				r.Method,
				r.URL.Path,
				rec.status,
				rec.bytes,
				time.Since(start).Round(time.Millisecond),
				r.RemoteAddr,
				requestCaller(r),
			)
		})
	}
}

func requestCaller(r *http.Request) string {
	if id := GetAdminID(r); id != "" {
		return id
	}
	if franchise := GetFranchise(r); franchise != nil {
		return franchise.DeviceID
	}
	return "anonymous"
}
