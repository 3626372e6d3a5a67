// AngelaMos | 2026
// service_test.go

package engagement

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/events"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
	"github.com/nhpc-ltd/blog-api/internal/post"
)

type likeKey struct{ postID, userID string }

type memRepo struct {
	mu        sync.Mutex
	likes     map[likeKey]bool
	toggleErr error
}

func newMemRepo() *memRepo {
	return &memRepo{likes: map[likeKey]bool{}}
}

func (m *memRepo) countLocked(postID string) int {
	n := 0
	for k := range m.likes {
		if k.postID == postID {
			n++
		}
	}
	return n
}

func (m *memRepo) Toggle(_ context.Context, postID, userID string) (ToggleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.toggleErr != nil {
		return ToggleResult{}, m.toggleErr
	}
	k := likeKey{postID, userID}
	if m.likes[k] {
		delete(m.likes, k)
		return ToggleResult{Liked: false, LikeCount: m.countLocked(postID)}, nil
	}
	m.likes[k] = true
	return ToggleResult{Liked: true, LikeCount: m.countLocked(postID)}, nil
}

func (m *memRepo) Count(_ context.Context, postID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(postID), nil
}

func (m *memRepo) Exists(_ context.Context, postID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.likes[likeKey{postID, userID}], nil
}

func (m *memRepo) CountAll(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.likes), nil
}

type memPosts map[string]*post.Post

func (m memPosts) GetByID(_ context.Context, id string) (*post.Post, error) {
	p, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

type recordingRevalidator struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingRevalidator) Post(_ context.Context, eventType, _, _, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

const (
	livePost     = "11111111-1111-4111-8111-111111111111"
	draftPost    = "22222222-2222-4222-8222-222222222222"
	rejectedPost = "33333333-3333-4333-8333-333333333333"
)

func userCtx(id string) context.Context {
	return middleware.WithClaims(context.Background(), &middleware.AccessTokenClaims{
		UserID: id, Username: id, Role: middleware.RoleUser,
	})
}

func newTestService() (*Service, *memRepo, *recordingRevalidator) {
	repo := newMemRepo()
	rv := &recordingRevalidator{}
	posts := memPosts{
		livePost:     {ID: livePost, AuthorID: "author", Status: post.Published},
		draftPost:    {ID: draftPost, AuthorID: "author", Status: post.UnderReview},
		rejectedPost: {ID: rejectedPost, AuthorID: "author", Status: post.Rejected},
	}
	return NewService(repo, posts, rv), repo, rv
}

func TestToggleIsSelfInverse(t *testing.T) {
	svc, _, rv := newTestService()
	ctx := userCtx("u1")

	before, err := svc.Count(ctx, livePost)
	require.NoError(t, err)
	require.Zero(t, before)

	res, err := svc.Toggle(ctx, livePost)
	require.NoError(t, err)
	assert.Equal(t, ToggleResult{Liked: true, LikeCount: 1}, res)

	res, err = svc.Toggle(ctx, livePost)
	require.NoError(t, err)
	assert.Equal(t, ToggleResult{Liked: false, LikeCount: 0}, res)

	after, err := svc.Count(ctx, livePost)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{events.PostLiked, events.PostUnliked}, rv.events)
}

func TestTwoUsersCountTwoInAnyOrder(t *testing.T) {
	for _, order := range [][]string{{"u1", "u2"}, {"u2", "u1"}} {
		svc, _, _ := newTestService()
		var last ToggleResult
		for _, u := range order {
			var err error
			last, err = svc.Toggle(userCtx(u), livePost)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, last.LikeCount)
	}
}

func TestToggleRequiresSession(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Toggle(context.Background(), livePost)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Empty(t, repo.likes)
}

func TestToggleRejectsUnpublished(t *testing.T) {
	svc, repo, rv := newTestService()

	for _, id := range []string{draftPost, rejectedPost} {
		_, err := svc.Toggle(userCtx("u1"), id)
		assert.ErrorIs(t, err, core.ErrNotPublished)
	}
	assert.Empty(t, repo.likes)
	assert.Empty(t, rv.events)

	_, err := svc.Toggle(userCtx("u1"), "44444444-4444-4444-8444-444444444444")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestToggleUnpublishedDuringToggle(t *testing.T) {
	svc, repo, rv := newTestService()
	repo.toggleErr = fmt.Errorf("toggle like on under_review post: %w", core.ErrNotPublished)

	_, err := svc.Toggle(userCtx("u1"), livePost)
	assert.ErrorIs(t, err, core.ErrNotPublished)
	assert.Empty(t, repo.likes)
	assert.Empty(t, rv.events)
}

func TestLikedAndCountAll(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Liked(context.Background(), livePost)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Toggle(userCtx("u1"), livePost)
	require.NoError(t, err)

	liked, err := svc.Liked(userCtx("u1"), livePost)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.Liked(userCtx("u2"), livePost)
	require.NoError(t, err)
	assert.False(t, liked)

	total, err := svc.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
