package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"vaxledger/pkg/requestcontext"
)

const (
	HeaderAdminToken   = "X-Admin-Token"
	HeaderAdminActorID = "X-Admin-Actor-ID"
)

// RequireAdminToken gates the registry's administrative authority (center
// registration) behind a shared token. The optional X-Admin-Actor-ID header
// is carried into the context for audit attribution.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(HeaderAdminToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			if actorID := r.Header.Get(HeaderAdminActorID); actorID != "" {
				ctx = requestcontext.WithAdminActor(ctx, actorID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
