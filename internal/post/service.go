// AngelaMos | 2026
// service.go

package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nhpc-ltd/blog-api/internal/cache"
	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/events"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
	"github.com/nhpc-ltd/blog-api/internal/user"
)

const latestLimit = 10

// UserLookup resolves usernames. Satisfied by *user.Service.
type UserLookup interface {
	GetProfile(ctx context.Context, name string) (*user.User, error)
}

type Revalidator interface {
	Post(ctx context.Context, eventType, postID, authorID, status string)
}

type Service struct {
	repo        Repository
	users       UserLookup
	cache       *cache.Cache
	feedTTL     time.Duration
	revalidator Revalidator
	sanitizer   *Sanitizer
	validator   *validator.Validate
}

func NewService(
	repo Repository,
	users UserLookup,
	c *cache.Cache,
	feedTTL time.Duration,
	rv Revalidator,
) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		cache:       c,
		feedTTL:     feedTTL,
		revalidator: rv,
		sanitizer:   NewSanitizer(),
		validator:   NewValidator(),
	}
}

// prepare sanitizes, normalizes and validates in, in that order, so an
// input that is empty once markup is stripped fails validation and tags
// that only differed by markup collapse into one.
func (s *Service) prepare(in *PostInput) error {
	s.sanitizer.Apply(in)
	in.Normalize()
	if err := s.validator.Struct(in); err != nil {
		return fmt.Errorf("validate post: %w", err)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in PostInput) (_ *View, err error) {
	ctx, span := core.StartSpan(ctx, "post.create")
	defer span.End()
	defer func() { core.SetSpanError(ctx, err) }()

	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, fmt.Errorf("create post: %w", core.ErrUnauthorized)
	}

	author, err := s.lookupUser(ctx, claims.Username)
	if err != nil {
		return nil, err
	}

	if err := s.prepare(&in); err != nil {
		return nil, err
	}

	status, err := Submit.Apply(UnderReview)
	if err != nil {
		return nil, err
	}

	p := &Post{
		ID:         uuid.New().String(),
		Title:      in.Title,
		Summary:    in.Summary,
		Image:      in.Image,
		Content:    in.Content,
		Tags:       in.Tags,
		AuthorID:   author.ID,
		CategoryID: in.CategoryID,
		Status:     status,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.revalidator.Post(ctx, events.PostCreated, p.ID, p.AuthorID, p.Status.String())
	return s.repo.GetView(ctx, p.ID, author.ID)
}

// Update replaces the editable fields and sends the post back to review,
// whatever state it was in.
func (s *Service) Update(ctx context.Context, id string, in PostInput) (_ *View, err error) {
	ctx, span := core.StartSpan(ctx, "post.update", attribute.String("post.id", id))
	defer span.End()
	defer func() { core.SetSpanError(ctx, err) }()

	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, fmt.Errorf("update post: %w", core.ErrUnauthorized)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != claims.UserID {
		return nil, fmt.Errorf("update post: %w", core.ErrForbidden)
	}

	if err := s.prepare(&in); err != nil {
		return nil, err
	}

	status, err := Submit.Apply(p.Status)
	if err != nil {
		return nil, err
	}

	p.Title = in.Title
	p.Summary = in.Summary
	p.Image = in.Image
	p.Content = in.Content
	p.Tags = in.Tags
	p.CategoryID = in.CategoryID
	p.Status = status

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.revalidator.Post(ctx, events.PostUpdated, p.ID, p.AuthorID, p.Status.String())
	return s.repo.GetView(ctx, p.ID, claims.UserID)
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := core.StartSpan(ctx, "post.delete", attribute.String("post.id", id))
	defer span.End()
	defer func() { core.SetSpanError(ctx, err) }()

	p, err := s.authorOrAdmin(ctx, "delete post", id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.revalidator.Post(ctx, events.PostDeleted, p.ID, p.AuthorID, "")
	return nil
}

// Unpublish returns a published post to the review queue.
func (s *Service) Unpublish(ctx context.Context, id string) (_ *View, err error) {
	ctx, span := core.StartSpan(ctx, "post.unpublish", attribute.String("post.id", id))
	defer span.End()
	defer func() { core.SetSpanError(ctx, err) }()

	p, err := s.authorOrAdmin(ctx, "unpublish post", id)
	if err != nil {
		return nil, err
	}

	to, err := Unpublish.Apply(p.Status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CompareAndSetStatus(ctx, id, p.Status, to); err != nil {
		return nil, err
	}

	s.revalidator.Post(ctx, events.PostUnpublished, p.ID, p.AuthorID, to.String())
	return s.repo.GetView(ctx, id, middleware.GetUserID(ctx))
}

func (s *Service) lookupUser(ctx context.Context, name string) (*user.User, error) {
	u, err := s.users.GetProfile(ctx, name)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("user")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", name, err)
	}
	return u, nil
}

func (s *Service) authorOrAdmin(ctx context.Context, op, id string) (*Post, error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, fmt.Errorf("%s: %w", op, core.ErrUnauthorized)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != claims.UserID && !claims.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, core.ErrForbidden)
	}
	return p, nil
}

// Get returns a published post to anyone. Other states are visible only to
// the author and admins; everyone else gets not found.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	viewerID := middleware.GetUserID(ctx)

	v, err := s.repo.GetView(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if v.IsPublished() || (viewerID != "" && v.AuthorID == viewerID) || middleware.IsAdmin(ctx) {
		return v, nil
	}
	return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]View, int, error) {
	return s.repo.ListPublished(ctx, params, middleware.GetUserID(ctx))
}

// Latest is the cached home feed. It carries no per-viewer state.
func (s *Service) Latest(ctx context.Context) ([]View, error) {
	return cache.Remember(ctx, s.cache, cache.KeyLatestPosts, s.feedTTL,
		func(ctx context.Context) ([]View, error) {
			return s.repo.Latest(ctx, latestLimit)
		})
}

// Authored lists a user's posts. The user themself and admins see every
// status; others see published posts only.
func (s *Service) Authored(ctx context.Context, username string) ([]View, error) {
	u, err := s.lookupUser(ctx, username)
	if err != nil {
		return nil, err
	}

	viewerID := middleware.GetUserID(ctx)
	publishedOnly := viewerID != u.ID && !middleware.IsAdmin(ctx)
	return s.repo.ListByAuthor(ctx, u.ID, publishedOnly, viewerID)
}

func (s *Service) Liked(ctx context.Context, username string) ([]View, error) {
	u, err := s.lookupUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLikedBy(ctx, u.ID, middleware.GetUserID(ctx))
}
