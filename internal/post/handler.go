// AngelaMos | 2026
// handler.go

package post

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts post endpoints on a router already scoped to /posts.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth, writeLimit func(http.Handler) http.Handler,
) {
	r.Get("/all", h.Latest)

	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.List)
		r.Get("/authored", h.Authored)
		r.Get("/liked", h.Liked)
		r.Get("/{id}", h.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(writeLimit)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/unpublish", h.Unpublish)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Page:     intQuery(r, "page", 1),
		PageSize: intQuery(r, "page_size", 12),
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
	}
	params.Normalize()

	views, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToPostResponseList(views, middleware.IsAuthenticated(r.Context())),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Latest(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, ToPostResponseList(views, false))
}

func (h *Handler) Authored(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		core.BadRequest(w, "username is required")
		return
	}

	views, err := h.service.Authored(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToPostResponseList(views, middleware.IsAuthenticated(r.Context())))
}

func (h *Handler) Liked(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		core.BadRequest(w, "username is required")
		return
	}

	views, err := h.service.Liked(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToPostResponseList(views, middleware.IsAuthenticated(r.Context())))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToPostResponse(v, true, middleware.IsAuthenticated(r.Context())))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	v, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	core.Created(w, ToPostResponse(v, true, true))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToPostResponse(v, true, true))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.service.Unpublish(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToPostResponse(v, true, true))
}

func writeError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		core.BadRequest(w, core.FormatValidationError(err))
	case errors.Is(err, ErrUnknownCategory):
		core.BadRequest(w, "category does not exist")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "only the author can do that")
	default:
		core.JSONError(w, core.ToAppError(err, "post"))
	}
}

// pathID treats a malformed id like a missing post.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		core.NotFound(w, "post")
		return "", false
	}
	return id, true
}

func intQuery(r *http.Request, key string, defaultVal int) int {
	parsed, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultVal
	}
	return parsed
}
