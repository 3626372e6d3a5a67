// AngelaMos | 2026
// service.go

package engagement

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/events"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
	"github.com/nhpc-ltd/blog-api/internal/post"
)

// PostLookup is satisfied by post.Repository.
type PostLookup interface {
	GetByID(ctx context.Context, id string) (*post.Post, error)
}

type Revalidator interface {
	Post(ctx context.Context, eventType, postID, authorID, status string)
}

type Service struct {
	repo        Repository
	posts       PostLookup
	revalidator Revalidator
}

func NewService(repo Repository, posts PostLookup, rv Revalidator) *Service {
	return &Service{repo: repo, posts: posts, revalidator: rv}
}

// Toggle likes or unlikes a published post for the current user. The count
// returned is read back from storage after the change.
func (s *Service) Toggle(ctx context.Context, postID string) (_ ToggleResult, err error) {
	ctx, span := core.StartSpan(ctx, "engagement.toggle", attribute.String("post.id", postID))
	defer span.End()
	defer func() { core.SetSpanError(ctx, err) }()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return ToggleResult{}, fmt.Errorf("toggle like: %w", core.ErrUnauthorized)
	}

	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return ToggleResult{}, err
	}
	if !p.IsPublished() {
		return ToggleResult{}, fmt.Errorf("toggle like on %s post: %w", p.Status, core.ErrNotPublished)
	}

	res, err := s.repo.Toggle(ctx, postID, userID)
	if err != nil {
		return ToggleResult{}, err
	}

	evt := events.PostUnliked
	if res.Liked {
		evt = events.PostLiked
	}
	s.revalidator.Post(ctx, evt, p.ID, p.AuthorID, p.Status.String())

	span.SetAttributes(attribute.Bool("like.liked", res.Liked), attribute.Int("like.count", res.LikeCount))
	return res, nil
}

func (s *Service) Count(ctx context.Context, postID string) (int, error) {
	return s.repo.Count(ctx, postID)
}

// Liked reports whether the current user likes the post.
func (s *Service) Liked(ctx context.Context, postID string) (bool, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return false, fmt.Errorf("check like: %w", core.ErrUnauthorized)
	}
	return s.repo.Exists(ctx, postID, userID)
}

func (s *Service) CountAll(ctx context.Context) (int, error) {
	return s.repo.CountAll(ctx)
}
