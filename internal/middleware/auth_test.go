// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/biolink/internal/core"
)

type fakeVerifier struct {
	claims *SessionClaims
	err    error
}

func (v *fakeVerifier) VerifySession(
	ctx context.Context,
	r *http.Request,
) (*SessionClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, GetUserID(r.Context()))
	})
}

func TestAuthenticatorInjectsClaims(t *testing.T) {
	verifier := &fakeVerifier{
		claims: &SessionClaims{SessionID: "sid", UserID: "user-1"},
	}

	rec := httptest.NewRecorder()
	Authenticator(verifier)(echoUserID()).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestAuthenticatorRejectsExpiredSession(t *testing.T) {
	verifier := &fakeVerifier{
		err: fmt.Errorf("verify session: %w", core.ErrTokenExpired),
	}

	rec := httptest.NewRecorder()
	Authenticator(verifier)(echoUserID()).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_EXPIRED")
}

func TestAuthenticatorRejectsInvalidSession(t *testing.T) {
	verifier := &fakeVerifier{
		err: fmt.Errorf("verify session: %w", core.ErrTokenInvalid),
	}

	rec := httptest.NewRecorder()
	Authenticator(verifier)(echoUserID()).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_INVALID")
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	verifier := &fakeVerifier{
		err: fmt.Errorf("verify session: %w", core.ErrUnauthorized),
	}

	rec := httptest.NewRecorder()
	OptionalAuth(verifier)(echoUserID()).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRequireAdminToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("unset token hides the surface", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		req.Header.Set("X-Admin-Token", "anything")

		RequireAdminToken("")(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("wrong token is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		req.Header.Set("X-Admin-Token", "nope")

		RequireAdminToken("secret")(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("matching token passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		req.Header.Set("X-Admin-Token", "secret")

		RequireAdminToken("secret")(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
