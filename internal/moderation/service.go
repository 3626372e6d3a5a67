// AngelaMos | 2026
// service.go

package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/events"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
	"github.com/nhpc-ltd/blog-api/internal/post"
)

// Posts is the part of post.Repository moderation needs.
type Posts interface {
	GetByID(ctx context.Context, id string) (*post.Post, error)
	CompareAndSetStatus(ctx context.Context, id string, from, to post.Status) error
	ListByStatus(ctx context.Context, status post.Status) ([]post.View, error)
}

type Revalidator interface {
	Post(ctx context.Context, eventType, postID, authorID, status string)
}

type Service struct {
	posts       Posts
	revalidator Revalidator
	logger      *slog.Logger
}

func NewService(posts Posts, rv Revalidator, logger *slog.Logger) *Service {
	return &Service{posts: posts, revalidator: rv, logger: logger}
}

// ParseAction maps a review verb onto its state machine edge.
func ParseAction(action string) (post.Transition, error) {
	switch action {
	case ActionPublish:
		return post.Publish, nil
	case ActionReject:
		return post.Reject, nil
	}
	return 0, core.InvalidActionError(action)
}

// Queue lists posts awaiting review, oldest first.
func (s *Service) Queue(ctx context.Context) ([]post.View, error) {
	if err := requireAdmin(ctx, "review queue"); err != nil {
		return nil, err
	}
	return s.posts.ListByStatus(ctx, post.UnderReview)
}

// Review publishes or rejects a post that is under review. The admin role
// is checked here and not left to routing.
func (s *Service) Review(ctx context.Context, postID, action string) (_ *post.Post, err error) {
	ctx, span := core.StartSpan(ctx, "moderation.review",
		attribute.String("post.id", postID),
		attribute.String("review.action", action),
	)
	defer span.End()
	defer func() { core.SetSpanError(ctx, err) }()

	if err := requireAdmin(ctx, "review post"); err != nil {
		return nil, err
	}

	tr, err := ParseAction(action)
	if err != nil {
		return nil, err
	}

	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	to, err := tr.Apply(p.Status)
	if err != nil {
		return nil, err
	}
	if err := s.posts.CompareAndSetStatus(ctx, postID, p.Status, to); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "post reviewed",
		"post_id", postID,
		"action", action,
		"reviewer_id", middleware.GetUserID(ctx),
	)

	evt := events.PostPublished
	if to == post.Rejected {
		evt = events.PostRejected
	}
	p.Status = to
	s.revalidator.Post(ctx, evt, p.ID, p.AuthorID, to.String())
	return p, nil
}

func requireAdmin(ctx context.Context, op string) error {
	if !middleware.IsAuthenticated(ctx) {
		return fmt.Errorf("%s: %w", op, core.ErrUnauthorized)
	}
	if !middleware.IsAdmin(ctx) {
		return fmt.Errorf("%s: %w", op, core.ErrForbidden)
	}
	return nil
}
