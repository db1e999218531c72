// AngelaMos | 2026
// google.go

package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/carterperez-dev/biolink/internal/auth"
	"github.com/carterperez-dev/biolink/internal/config"
	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/user"
)

const (
	stateCookieName = "biolink_oauth_state"
	stateCookieTTL  = 600
	userinfoURL     = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type googleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Handler drives the Google sign-in flow. When credentials are absent
// the endpoints stay registered but answer 503, so the frontend can
// probe availability instead of hitting a 404.
type Handler struct {
	oauthCfg   *oauth2.Config
	users      *user.Service
	sessions   auth.SessionManager
	appBaseURL string
	secure     bool
	logger     *slog.Logger
}

func NewHandler(
	cfg config.GoogleOAuthConfig,
	users *user.Service,
	sessions auth.SessionManager,
	appBaseURL string,
	secure bool,
	logger *slog.Logger,
) *Handler {
	var oauthCfg *oauth2.Config
	if cfg.Configured() {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoints.Google,
		}
	}

	return &Handler{
		oauthCfg:   oauthCfg,
		users:      users,
		sessions:   sessions,
		appBaseURL: appBaseURL,
		secure:     secure,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth/google", func(r chi.Router) {
		r.Get("/", h.Begin)
		r.Get("/callback", h.Callback)
	})
}

// Begin sets the CSRF state cookie and redirects to Google's consent
// screen.
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	if h.oauthCfg == nil {
		core.JSONError(w, core.NewAppError(
			core.ErrUpstream,
			"google sign-in is not configured",
			http.StatusServiceUnavailable,
			"OAUTH_NOT_CONFIGURED",
		))
		return
	}

	state, err := core.GenerateSecureToken(16)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieTTL,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(
		w,
		r,
		h.oauthCfg.AuthCodeURL(state),
		http.StatusTemporaryRedirect,
	)
}

// Callback exchanges the authorization code, resolves the Google
// identity to a local account, and establishes a session. Browser-facing
// failures redirect back to the app with an error code rather than
// rendering JSON.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.oauthCfg == nil {
		core.JSONError(w, core.NewAppError(
			core.ErrUpstream,
			"google sign-in is not configured",
			http.StatusServiceUnavailable,
			"OAUTH_NOT_CONFIGURED",
		))
		return
	}

	defer http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" ||
		stateCookie.Value != r.URL.Query().Get("state") {
		h.redirectError(w, r, "state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, "access_denied")
		return
	}

	token, err := h.oauthCfg.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google code exchange", "error", err)
		h.redirectError(w, r, "exchange_failed")
		return
	}

	profile, err := h.fetchProfile(r.Context(), token)
	if err != nil {
		h.logger.Error("google userinfo", "error", err)
		h.redirectError(w, r, "profile_failed")
		return
	}

	u, err := h.resolveUser(r.Context(), profile)
	if err != nil {
		h.logger.Error("resolve google identity", "error", err)
		h.redirectError(w, r, "signin_failed")
		return
	}

	if err := h.sessions.Create(r.Context(), w, u.ID); err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.Redirect(w, r, h.appBaseURL, http.StatusFound)
}

func (h *Handler) fetchProfile(
	ctx context.Context,
	token *oauth2.Token,
) (*googleProfile, error) {
	client := h.oauthCfg.Client(ctx, token)

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("incomplete userinfo payload")
	}

	return &profile, nil
}

// resolveUser maps the Google identity onto a local account in three
// steps: existing federated account, existing email account that gets
// linked, or a fresh federated account.
func (h *Handler) resolveUser(
	ctx context.Context,
	profile *googleProfile,
) (*user.User, error) {
	u, err := h.users.GetByGoogleID(ctx, profile.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	u, err = h.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		if linkErr := h.users.LinkGoogleID(ctx, u.ID, profile.ID); linkErr != nil {
			return nil, linkErr
		}
		googleID := profile.ID
		u.GoogleID = &googleID
		return u, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	var avatar *string
	if profile.Picture != "" {
		avatar = &profile.Picture
	}

	return h.users.CreateFederated(
		ctx,
		profile.ID,
		profile.Email,
		profile.GivenName,
		profile.FamilyName,
		avatar,
	)
}

func (h *Handler) redirectError(
	w http.ResponseWriter,
	r *http.Request,
	code string,
) {
	http.Redirect(
		w,
		r,
		h.appBaseURL+"/?error="+url.QueryEscape(code),
		http.StatusFound,
	)
}
