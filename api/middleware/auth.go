package middleware

import (
	"net/http"
	"strings"

	"github.com/threadkart/threadkart-backend/api/responses"
	pkgauth "github.com/threadkart/threadkart-backend/pkg/auth"
	"github.com/threadkart/threadkart-backend/pkg/config"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// actor's identity and role.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithActor(r.Context(), claims.SubjectID.String(), string(claims.Role))
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"actor_id":   claims.SubjectID.String(),
					"actor_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
