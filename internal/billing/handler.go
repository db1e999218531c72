// AngelaMos | 2026
// handler.go

package billing

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/middleware"
	"github.com/carterperez-dev/biolink/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/get-or-create-subscription", h.GetOrCreateSubscription)

		r.Route("/billing", func(r chi.Router) {
			r.Post("/demo-upgrade", h.DemoUpgrade)
			r.Get("/status", h.Status)
		})
	})
}

func (h *Handler) GetOrCreateSubscription(
	w http.ResponseWriter,
	r *http.Request,
) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.GetOrCreateSubscription(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoEmail):
			core.BadRequest(w, "account has no email address")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrUpstream):
			core.JSONError(w, err)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DemoUpgrade(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, err := h.service.EnableDemoMode(r.Context(), userID)
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

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.service.Status(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, status)
}
