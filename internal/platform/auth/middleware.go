package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/provider-profile/internal/platform/logging"
)

type userContextKey struct{}

// NewAuthMiddleware returns Huma middleware that authenticates operations
// declaring a Security requirement. Unsecured operations pass through.
func NewAuthMiddleware(api huma.API, verifier Verifier) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		msg := "invalid or expired token"
		token, err := ExtractBearerToken(ctx.Header("Authorization"))
		if err != nil {
			msg = "missing or invalid authorization header"
		} else {
			var user *User
			user, err = verifier.Verify(ctx.Context(), token)
			if err == nil && user != nil {
				next(huma.WithValue(ctx, userContextKey{}, user))
				return
			}
			if err == nil {
				err = ErrInvalidToken
			}
		}

		reason := categorizeAuthError(err)
		applog.LogWarn(ctx.Context(), "authentication failed",
			zap.String("reason", reason),
			zap.String("operation", ctx.Operation().OperationID),
		)

		if errors.Is(err, ErrCertificateFetch) {
			ctx.SetHeader("Retry-After", "30")
			_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable,
				"authentication service temporarily unavailable")
			return
		}
		ctx.SetHeader("WWW-Authenticate", "Bearer")
		_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, msg)
	}
}

// categorizeAuthError returns a safe category string for logging.
func categorizeAuthError(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "no_token"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, ErrUserDisabled):
		return "user_disabled"
	case errors.Is(err, ErrCertificateFetch):
		return "certificate_fetch_failed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "unknown"
	}
}

// UserFromContext returns the authenticated user or nil.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// RequireUser returns the authenticated user or a 401 problem. Handlers of
// secured operations use it instead of dereferencing UserFromContext.
func RequireUser(ctx context.Context) (*User, error) {
	if user := UserFromContext(ctx); user != nil {
		return user, nil
	}
	return nil, huma.Error401Unauthorized("authentication required")
}
