package httpapi

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/service"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// TokenCookie is the name of the http-only cookie holding the access token.
const TokenCookie = "token"

// RequestID honours an incoming X-Request-ID or assigns a new one and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.Must(uuid.NewV4()).String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// Recover turns a panic into a logged 500 response.
func Recover(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic",
						zap.Any("reason", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("request_id", RequestIDFromCtx(r.Context())),
					)
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Status: http.StatusInternalServerError})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Logging writes one line per request. Bodies and credentials are never logged.
func Logging(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", m.Code),
				zap.Int64("bytes", m.Written),
				zap.Duration("dur", m.Duration),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", RequestIDFromCtx(r.Context())),
			)
		})
	}
}

// CORS allows the configured browser origins to call the API with credentials.
func CORS(origins []string) mux.MiddlewareFunc {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader, "Retry-After"}),
		handlers.AllowCredentials(),
	)
}

// Compress gzips responses for clients that accept it.
func Compress(next http.Handler) http.Handler {
	return handlers.CompressHandler(next)
}

// bearerToken extracts the token from "Authorization: Bearer <t>" or, failing that, the token cookie.
func bearerToken(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate verifies the caller's token before the handler runs and
// stores the identity in the request context.
func Authenticate(auth service.AuthService, log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				writeError(w, r, log, errs.ErrUnauthorized)
				return
			}
			id, err := auth.Authenticate(r.Context(), tok)
			if err != nil {
				writeError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
