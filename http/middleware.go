package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const (
	corsAllowedMethods = "OPTIONS, HEAD, GET, PUT"
	corsAllowedHeaders = "Content-Type"

	RequestIDHeader = "X-Request-Id"
)

// CORSMiddleware adds CORS headers to OPTIONS, HEAD, GET and PUT requests,
// including a PUT that is later rejected for a missing token.
//
// With no allowed origins, or only "*", the wildcard headers are always set.
// Otherwise the origin is checked by go-chi/cors.
func CORSMiddleware(cfg CORSConfig) func(http.Handler) http.Handler {
	if isWildcard(cfg.AllowedOrigins) {
		return staticCORS
	}

	restricted := cors.Handler(cors.Options{
		AllowedOrigins:     cfg.AllowedOrigins,
		AllowedMethods:     []string{http.MethodOptions, http.MethodHead, http.MethodGet, http.MethodPut},
		AllowedHeaders:     []string{corsAllowedHeaders},
		MaxAge:             cfg.MaxAge,
		OptionsPassthrough: true,
	})

	return func(next http.Handler) http.Handler {
		withCORS := restricted(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !corsApplies(r) {
				next.ServeHTTP(w, r)
				return
			}
			withCORS.ServeHTTP(w, r)
		})
	}
}

func staticCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if corsApplies(r) {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", "*")
			header.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		}
		next.ServeHTTP(w, r)
	})
}

func corsApplies(r *http.Request) bool {
	switch r.Method {
	case http.MethodOptions, http.MethodHead, http.MethodGet, http.MethodPut:
		return true
	default:
		return false
	}
}

func isWildcard(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o != "*" {
			return false
		}
	}
	return true
}

// RequestLogger tags each request with an id and logs it once the response
// is done. Server errors are logged at warn level, everything else at debug.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}

		slog.Log(r.Context(), level, "request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}
