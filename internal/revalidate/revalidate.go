// AngelaMos | 2026
// revalidate.go

package revalidate

import (
	"context"
	"log/slog"
	"time"

	"github.com/nhpc-ltd/blog-api/internal/cache"
	"github.com/nhpc-ltd/blog-api/internal/events"
)

// Revalidator drops read caches affected by a mutation and announces the
// mutation on the event bus. It never fails the caller.
type Revalidator struct {
	cache     *cache.Cache
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func New(c *cache.Cache, p events.Publisher, logger *slog.Logger) *Revalidator {
	if p == nil {
		p = events.Nop{}
	}
	return &Revalidator{cache: c, publisher: p, logger: logger, now: time.Now}
}

// Post is called after any change to a post: lifecycle, moderation or likes.
func (r *Revalidator) Post(ctx context.Context, eventType, postID, authorID, status string) {
	if err := r.cache.Delete(ctx, cache.KeyLatestPosts); err != nil {
		r.logger.WarnContext(ctx, "revalidate feed cache", "post_id", postID, "error", err)
	}

	r.publish(ctx, events.Event{
		Type:     eventType,
		PostID:   postID,
		AuthorID: authorID,
		Status:   status,
		At:       r.now().UTC(),
	})
}

// Categories is called after any taxonomy change. Post listings embed the
// category name, so the feed is dropped too.
func (r *Revalidator) Categories(ctx context.Context) {
	if err := r.cache.Delete(ctx, cache.KeyCategories, cache.KeyLatestPosts); err != nil {
		r.logger.WarnContext(ctx, "revalidate category cache", "error", err)
	}

	r.publish(ctx, events.Event{Type: events.CategoryChanged, At: r.now().UTC()})
}

func (r *Revalidator) publish(ctx context.Context, evt events.Event) {
	if err := r.publisher.Publish(ctx, evt); err != nil {
		r.logger.WarnContext(ctx, "publish event", "type", evt.Type, "error", err)
	}
}
