package relay

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/contactrelay/pkg/logger"
)

// recoverer turns a panic into the internal error envelope. The process
// keeps serving. A response that was already started is left as is.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			s.logger.ErrorContext(r.Context(), "panic recovered",
				logger.Error(fmt.Errorf("%v", rec)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("stack", string(debug.Stack())),
				slog.Bool("response_started", ww.Status() != 0),
			)
			if ww.Status() != 0 {
				return
			}
			s.fail(ww, r, http.StatusInternalServerError, "errors.internal")
		}()
		next.ServeHTTP(ww, r)
	})
}

// instrument logs every request and feeds the request metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := s.now().Sub(start)
		route := routePattern(r)

		s.metrics.observeRequest(route, r.Method, status, elapsed.Seconds())

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		s.logger.LogAttrs(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", route),
			logger.Status(status),
			logger.Duration(elapsed),
			slog.Int("bytes", ww.BytesWritten()),
		)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// durationSince keeps handlers on the injected clock.
func (s *Server) durationSince(t time.Time) time.Duration {
	return s.now().Sub(t)
}
