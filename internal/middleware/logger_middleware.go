package middleware

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// userRecorder lets the logger see the identity that AuthMiddleware attaches
// further down the chain.
type userRecorder struct {
	userID string
}

type recorderKey struct{}

func LoggerMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			rec := &userRecorder{}
			r = r.WithContext(contextWithRecorder(r.Context(), rec))

			next.ServeHTTP(rw, r)

			userID := rec.userID
			if userID == "" {
				userID = "anonymous"
			}

			event := logger.Info()
			if rw.statusCode >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Int("status", rw.statusCode).
				Dur("duration", time.Since(start)).
				Str("user", userID).
				Msg("request")
		})
	}
}

func contextWithRecorder(ctx context.Context, rec *userRecorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, rec)
}

func recordUser(ctx context.Context, userID string) {
	if rec, ok := ctx.Value(recorderKey{}).(*userRecorder); ok {
		rec.userID = userID
	}
}
