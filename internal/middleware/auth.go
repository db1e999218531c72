// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/carterperez-dev/biolink/internal/core"
)

const (
	UserIDKey    contextKey = "user_id"
	SessionIDKey contextKey = "session_id"
)

// SessionVerifier resolves the signed session cookie on a request back to the
// server-side session record. Implemented by session.Manager.
type SessionVerifier interface {
	VerifySession(
		ctx context.Context,
		r *http.Request,
	) (*SessionClaims, error)
}

type SessionClaims struct {
	SessionID string
	UserID    string
}

func Authenticator(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.VerifySession(r.Context(), r)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the session when a valid cookie is present but lets
// anonymous requests through untouched.
func OptionalAuth(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.VerifySession(r.Context(), r)
			if err == nil {
				ctx := r.Context()
				ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
				ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.SessionExpiredError())
	default:
		core.JSONError(w, core.SessionInvalidError())
	}
}

// RequireAdminToken gates the operational endpoints behind a shared
// secret in X-Admin-Token. With no token configured the surface is
// fully disabled and answers 404.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				core.JSONError(w, core.NotFoundError("resource"))
				return
			}

			presented := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare(
				[]byte(presented),
				[]byte(token),
			) != 1 {
				core.JSONError(w, core.ForbiddenError(""))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
