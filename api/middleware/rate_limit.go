package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/threadkart/threadkart-backend/api/responses"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/logger"
)

// FixedWindowStore counts requests per scope within a fixed window.
type FixedWindowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy describes a fixed-window limit applied per actor.
type RateLimitPolicy struct {
	Scope  string
	Window time.Duration
	Limit  int64
}

// RateLimit enforces the policy against the authenticated actor using the
// store's fixed window counter. A nil store disables the limit.
func RateLimit(policy RateLimitPolicy, store FixedWindowStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || policy.Limit <= 0 || policy.Window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			actor := ActorIDFromContext(r.Context())
			if actor == "" {
				actor = r.RemoteAddr
			}
			scope := fmt.Sprintf("%s:%s", policy.Scope, actor)

			allowed, _, err := store.FixedWindowAllow(r.Context(), scope, policy.Limit, policy.Window)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check"))
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, slow down"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
