// AngelaMos | 2026
// handler.go

package engagement

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/post"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts like endpoints on a router already scoped to /posts.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, writeLimit func(http.Handler) http.Handler,
) {
	r.Get("/likecount", h.Count)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/{id}/liked", h.Liked)
		r.With(writeLimit).Post("/{id}/like", h.Toggle)
	})
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	res, err := h.service.Toggle(r.Context(), id)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "post"))
		return
	}
	core.OK(w, res)
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("postid")
	if err := uuid.Validate(postID); err != nil {
		core.BadRequest(w, "postid must be a valid id")
		return
	}

	n, err := h.service.Count(r.Context(), postID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, n)
}

func (h *Handler) Liked(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	liked, err := h.service.Liked(r.Context(), id)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "post"))
		return
	}
	core.OK(w, post.LikedResponse{Liked: liked})
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		core.NotFound(w, "post")
		return "", false
	}
	return id, true
}
