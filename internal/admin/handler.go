// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/post"
)

const pingTimeout = 2 * time.Second

// ContentCounter gathers the numbers behind /admin/stats/content.
type ContentCounter struct {
	Posts      func(ctx context.Context) (map[post.Status]int, error)
	Users      func(ctx context.Context) (int, error)
	Categories func(ctx context.Context) (int, error)
	Likes      func(ctx context.Context) (int, error)
}

// HandlerConfig leaves any check nil when the backing store is not wired;
// a nil ping reports healthy and a nil stats func omits the pool block.
type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
	Content    ContentCounter
}

type Handler struct {
	cfg     HandlerConfig
	started time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg, started: time.Now()}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/", h.SystemStats)
		r.Get("/db", h.DatabaseStats)
		r.Get("/redis", h.RedisStats)
		r.Get("/runtime", h.RuntimeStats)
		r.Get("/content", h.ContentStats)
	})
}

// SystemStats pings both stores in parallel; a failed ping marks the store
// unhealthy without failing the request.
func (h *Handler) SystemStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	var dbErr, redisErr error
	var g errgroup.Group
	g.Go(func() error {
		dbErr = ping(ctx, h.cfg.DBPing)
		return nil
	})
	g.Go(func() error {
		redisErr = ping(ctx, h.cfg.RedisPing)
		return nil
	})
	_ = g.Wait()

	core.OK(w, SystemStatsResponse{
		Database: StoreStatus[DBPoolStats]{
			Healthy: dbErr == nil,
			Stats:   dbPoolStats(h.cfg.DBStats),
		},
		Redis: StoreStatus[RedisPoolStats]{
			Healthy: redisErr == nil,
			Stats:   redisPoolStats(h.cfg.RedisStats),
		},
		Runtime: readRuntimeStats(h.started),
	})
}

func (h *Handler) DatabaseStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, dbPoolStats(h.cfg.DBStats))
}

func (h *Handler) RedisStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, redisPoolStats(h.cfg.RedisStats))
}

func (h *Handler) RuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntimeStats(h.started))
}

// ContentStats runs the counters concurrently; any failure fails the
// whole response.
func (h *Handler) ContentStats(w http.ResponseWriter, r *http.Request) {
	var (
		stats  ContentStats
		counts map[post.Status]int
	)

	g, ctx := errgroup.WithContext(r.Context())
	if h.cfg.Content.Posts != nil {
		g.Go(func() (err error) {
			counts, err = h.cfg.Content.Posts(ctx)
			return err
		})
	}
	count := func(fn func(context.Context) (int, error), dst *int) {
		if fn == nil {
			return
		}
		g.Go(func() (err error) {
			*dst, err = fn(ctx)
			return err
		})
	}
	count(h.cfg.Content.Users, &stats.Users)
	count(h.cfg.Content.Categories, &stats.Categories)
	count(h.cfg.Content.Likes, &stats.Likes)

	if err := g.Wait(); err != nil {
		core.InternalServerError(w, err)
		return
	}

	stats.Posts = postCounts(counts)
	core.OK(w, stats)
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
