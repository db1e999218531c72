// AngelaMos | 2026
// handler.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/middleware"
	"github.com/carterperez-dev/biolink/internal/user"
)

// SessionManager issues and revokes the browser session. Implemented by
// *session.Manager.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, userID string) error
	Destroy(
		ctx context.Context,
		w http.ResponseWriter,
		r *http.Request,
	) error
}

type Handler struct {
	service    *Service
	sessions   SessionManager
	validator  *validator.Validate
	appBaseURL string
}

func NewHandler(
	service *Service,
	sessions SessionManager,
	appBaseURL string,
) *Handler {
	return &Handler{
		service:    service,
		sessions:   sessions,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
		appBaseURL: appBaseURL,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/verify-email", h.VerifyEmail)
		r.Post("/resend-verification", h.ResendVerification)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.Me)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	// Accounts that skipped verification are usable right away.
	if !result.RequiresVerification {
		if err := h.sessions.Create(r.Context(), w, result.User.ID); err != nil {
			core.InternalServerError(w, err)
			return
		}
	}

	core.Created(w, RegisterResponse{
		User:                 user.ToUserResponse(result.User),
		RequiresVerification: result.RequiresVerification,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.Unauthorized(w, "invalid email or password")
		case errors.Is(err, ErrEmailNotVerified):
			core.Unauthorized(w, "email not verified")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	if err := h.sessions.Create(r.Context(), w, u.ID); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, LoginResponse{User: user.ToUserResponse(u)})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

// VerifyEmail is the link target from the verification email. Success
// establishes a session and bounces the browser back to the app.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	u, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrTokenInvalid) {
			core.JSONError(w, core.TokenRejectedError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if err := h.sessions.Create(r.Context(), w, u.ID); err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.Redirect(w, r, h.redirectURL("verified", "1"), http.StatusFound)
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{
		Message: "if the account exists, a verification email has been sent",
	})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{
		Message: "if the account exists, a reset email has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if _, err := h.service.ResetPassword(
		r.Context(),
		req.Token,
		req.NewPassword,
	); err != nil {
		if errors.Is(err, core.ErrTokenInvalid) {
			core.JSONError(w, core.TokenRejectedError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, err := h.service.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) redirectURL(key, value string) string {
	return h.appBaseURL + "/?" + key + "=" + url.QueryEscape(value)
}
