// AngelaMos | 2026
// handler.go

package moderation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/post"
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
	authenticator, adminOnly, writeLimit func(http.Handler) http.Handler,
) {
	r.Route("/review", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)
		r.Get("/", h.Queue)
		r.With(writeLimit).Post("/{id}", h.Review)
	})
}

func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Queue(r.Context())
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "post"))
		return
	}
	core.OK(w, post.ToPostResponseList(views, false))
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		core.NotFound(w, "post")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Review(r.Context(), id, req.Action)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "post"))
		return
	}

	core.OK(w, ReviewResponse{
		ID:      p.ID,
		Status:  p.Status,
		Message: "Post " + p.Status.String(),
	})
}
