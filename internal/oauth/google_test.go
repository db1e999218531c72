// AngelaMos | 2026
// google_test.go

package oauth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/carterperez-dev/biolink/internal/config"
	"github.com/carterperez-dev/biolink/internal/user"
)

func newTestHandlerOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/v1/auth/google/callback",
		Endpoint:     endpoints.Google,
	}
}

func newTestHandler(t *testing.T) (*Handler, *user.Service) {
	t.Helper()

	users := user.NewService(user.NewMemoryRepository())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(
		config.GoogleOAuthConfig{},
		users,
		nil,
		"http://localhost:3000",
		false,
		logger,
	)
	return h, users
}

func profile() *googleProfile {
	return &googleProfile{
		ID:            "google-42",
		Email:         "fed@example.com",
		VerifiedEmail: true,
		GivenName:     "Fed",
		FamilyName:    "User",
		Picture:       "https://lh3.example.com/pic",
	}
}

func TestResolveUserCreatesFederatedAccount(t *testing.T) {
	h, users := newTestHandler(t)

	u, err := h.resolveUser(context.Background(), profile())
	require.NoError(t, err)

	assert.Equal(t, "fed@example.com", u.Email)
	assert.True(t, u.EmailVerified)
	require.NotNil(t, u.GoogleID)
	assert.Equal(t, "google-42", *u.GoogleID)
	require.NotNil(t, u.ProfileImageURL)

	// Resolvable by google id afterwards.
	found, err := users.GetByGoogleID(context.Background(), "google-42")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestResolveUserReturnsExistingFederatedAccount(t *testing.T) {
	h, _ := newTestHandler(t)

	first, err := h.resolveUser(context.Background(), profile())
	require.NoError(t, err)

	second, err := h.resolveUser(context.Background(), profile())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestResolveUserLinksExistingEmailAccount(t *testing.T) {
	h, users := newTestHandler(t)

	local, err := users.CreateLocal(
		context.Background(),
		"fed@example.com",
		"hash",
		"Fed",
		"User",
	)
	require.NoError(t, err)

	resolved, err := h.resolveUser(context.Background(), profile())
	require.NoError(t, err)

	assert.Equal(t, local.ID, resolved.ID, "existing account is linked")
	require.NotNil(t, resolved.GoogleID)
	assert.Equal(t, "google-42", *resolved.GoogleID)

	stored, err := users.GetByGoogleID(context.Background(), "google-42")
	require.NoError(t, err)
	assert.Equal(t, local.ID, stored.ID)
}

func TestBeginUnconfiguredAnswers503(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Begin(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/google", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCallbackStateMismatchRedirectsWithError(t *testing.T) {
	h, _ := newTestHandler(t)
	h.oauthCfg = newTestHandlerOAuthConfig()

	req := httptest.NewRequest(
		http.MethodGet,
		"/v1/auth/google/callback?state=forged&code=abc",
		nil,
	)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "genuine"})

	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=state_mismatch")
}
