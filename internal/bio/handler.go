// AngelaMos | 2026
// handler.go

package bio

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/bios", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.Save)
			r.Get("/me", h.GetMine)
		})

		r.Get("/{username}", h.GetPublic)
	})
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req SaveBioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	b, truncated, err := h.service.Save(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToBioResponse(b, truncated))
}

// GetMine returns the caller's page, or null data when no page has been
// saved yet. A missing page is a normal state, not an error.
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	b, err := h.service.GetMine(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.OK(w, nil)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToBioResponse(b, false))
}

func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	page, err := h.service.GetPublic(r.Context(), username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "page")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, page)
}
