// AngelaMos | 2026
// fakes_test.go

package post

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nhpc-ltd/blog-api/internal/cache"
	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
	"github.com/nhpc-ltd/blog-api/internal/user"
)

type memRepo struct {
	mu          sync.Mutex
	posts       map[string]*Post
	likes       map[string]map[string]bool
	latestCalls int
	clock       time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		posts: map[string]*Post{},
		likes: map[string]map[string]bool{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memRepo) Create(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID]; !ok {
		return fmt.Errorf("update: %w", core.ErrUpdateFailed)
	}
	p.UpdatedAt = m.tick()
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return fmt.Errorf("delete: %w", core.ErrDeletionFailed)
	}
	delete(m.posts, id)
	delete(m.likes, id)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("get: %w", core.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) view(p *Post, viewerID string) View {
	return View{
		Post:       *p,
		AuthorName: "author-" + p.AuthorID,
		LikeCount:  len(m.likes[p.ID]),
		LikedByMe:  m.likes[p.ID][viewerID],
	}
}

func (m *memRepo) GetView(_ context.Context, id, viewerID string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("get view: %w", core.ErrNotFound)
	}
	v := m.view(p, viewerID)
	return &v, nil
}

func (m *memRepo) CompareAndSetStatus(_ context.Context, id string, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return fmt.Errorf("cas: %w", core.ErrNotFound)
	}
	if p.Status != from {
		return fmt.Errorf("cas: %w", core.ErrInvalidTransition)
	}
	p.Status = to
	return nil
}

func (m *memRepo) filter(keep func(*Post) bool, viewerID string, newestFirst bool) []View {
	out := []View{}
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, m.view(p, viewerID))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *memRepo) ListPublished(_ context.Context, _ ListParams, viewerID string) ([]View, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(p *Post) bool { return p.Status == Published }, viewerID, true)
	return out, len(out), nil
}

func (m *memRepo) Latest(_ context.Context, limit int) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestCalls++
	out := m.filter(func(p *Post) bool { return p.Status == Published }, "", true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) ListByAuthor(
	_ context.Context,
	authorID string,
	publishedOnly bool,
	viewerID string,
) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(p *Post) bool {
		return p.AuthorID == authorID && (!publishedOnly || p.Status == Published)
	}, viewerID, true), nil
}

func (m *memRepo) ListLikedBy(_ context.Context, userID, viewerID string) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(p *Post) bool {
		return p.Status == Published && m.likes[p.ID][userID]
	}, viewerID, true), nil
}

func (m *memRepo) ListByStatus(_ context.Context, status Status) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(p *Post) bool { return p.Status == status }, "", false), nil
}

func (m *memRepo) CountByStatus(context.Context) (map[Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[Status]int{UnderReview: 0, Published: 0, Rejected: 0}
	for _, p := range m.posts {
		out[p.Status]++
	}
	return out, nil
}

func (m *memRepo) like(postID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.likes[postID] == nil {
		m.likes[postID] = map[string]bool{}
	}
	m.likes[postID][userID] = true
}

func (m *memRepo) setStatus(id string, s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[id].Status = s
}

type memUsers map[string]*user.User

func (m memUsers) GetProfile(_ context.Context, name string) (*user.User, error) {
	u, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return u, nil
}

type revalidation struct {
	eventType, postID, authorID, status string
}

type recordingRevalidator struct {
	mu    sync.Mutex
	calls []revalidation
	cache *cache.Cache
}

func (r *recordingRevalidator) Post(ctx context.Context, eventType, postID, authorID, status string) {
	r.mu.Lock()
	r.calls = append(r.calls, revalidation{eventType, postID, authorID, status})
	r.mu.Unlock()
	_ = r.cache.Delete(ctx, cache.KeyLatestPosts)
}

func (r *recordingRevalidator) last() revalidation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func ctxFor(userID, username, role string) context.Context {
	return middleware.WithClaims(context.Background(), &middleware.AccessTokenClaims{
		UserID: userID, Username: username, Role: role,
	})
}

func authorCtx() context.Context {
	return ctxFor("u-asha", "asha", middleware.RoleUser)
}

func otherCtx() context.Context {
	return ctxFor("u-ravi", "ravi", middleware.RoleUser)
}

func adminCtx() context.Context {
	return ctxFor("u-admin", "admin", middleware.RoleAdmin)
}

type fixture struct {
	svc  *Service
	repo *memRepo
	rv   *recordingRevalidator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := cache.New(rdb)
	repo := newMemRepo()
	rv := &recordingRevalidator{cache: c}
	users := memUsers{
		"asha":  {ID: "u-asha", Name: "asha", Role: user.RoleUser},
		"ravi":  {ID: "u-ravi", Name: "ravi", Role: user.RoleUser},
		"admin": {ID: "u-admin", Name: "admin", Role: user.RoleAdmin},
	}
	return fixture{
		svc:  NewService(repo, users, c, time.Minute, rv),
		repo: repo,
		rv:   rv,
	}
}
