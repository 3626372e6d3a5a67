// AngelaMos | 2026
// reset_test.go

package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

type memResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*PasswordResetToken
	users  *memUsers
}

func (m *memResetRepo) Replace(_ context.Context, t *PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, old := range m.tokens {
		if old.UserID == t.UserID {
			delete(m.tokens, id)
		}
	}
	cp := *t
	m.tokens[t.ID] = &cp
	return nil
}

func (m *memResetRepo) FindByHash(_ context.Context, hash string) (*PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find: %w", core.ErrNotFound)
}

func (m *memResetRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}

func (m *memResetRepo) ConsumeAndSetPassword(ctx context.Context, tokenID, userID, hash string) error {
	m.mu.Lock()
	if _, ok := m.tokens[tokenID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("consume: %w", core.ErrNotFound)
	}
	delete(m.tokens, tokenID)
	m.mu.Unlock()
	return m.users.UpdatePassword(ctx, userID, hash)
}

func (m *memResetRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.tokens {
		if t.ExpiresAt.Before(before) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

type captureMailer struct {
	mu   sync.Mutex
	sent map[string]string
}

func (c *captureMailer) SendPasswordReset(_ context.Context, to, link string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent[to] = link
	return nil
}

type resetFixture struct {
	svc      *ResetService
	repo     *memResetRepo
	users    *memUsers
	sessions *memRefreshRepo
	mailer   *captureMailer
}

func newResetFixture(t *testing.T) resetFixture {
	t.Helper()
	users := newMemUsers(&UserInfo{
		ID: "u1", Email: "asha@nhpc.in", Name: "asha",
		PasswordHash: mustHash(t, "old-password"), Role: "user",
	})
	repo := &memResetRepo{tokens: map[string]*PasswordResetToken{}, users: users}
	sessions := newMemRefreshRepo()
	mailer := &captureMailer{sent: map[string]string{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return resetFixture{
		svc:      NewResetService(repo, users, sessions, mailer, "https://blog.nhpc.in/", time.Hour, logger),
		repo:     repo,
		users:    users,
		sessions: sessions,
		mailer:   mailer,
	}
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestForgotPassword(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Forgot(ctx, "ghost@nhpc.in"))
	assert.Empty(t, f.mailer.sent)

	require.NoError(t, f.svc.Forgot(ctx, "asha@nhpc.in"))
	require.NoError(t, f.svc.Forgot(ctx, "asha@nhpc.in"))

	link := f.mailer.sent["asha@nhpc.in"]
	assert.True(t, strings.HasPrefix(link, "https://blog.nhpc.in/reset-password?token="))
	assert.Len(t, f.repo.tokens, 1, "older tokens are replaced")

	for _, stored := range f.repo.tokens {
		assert.Equal(t, core.HashToken(tokenFromLink(t, link)), stored.TokenHash)
		assert.WithinDuration(t, time.Now().Add(time.Hour), stored.ExpiresAt, 5*time.Second)
	}
}

func TestForgotPasswordGoogleOnlyAccount(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()
	g, err := f.users.FindOrCreateGoogleUser(ctx, GoogleProfile{Subject: "77", Email: "ravi@nhpc.in", Name: "ravi"})
	require.NoError(t, err)
	require.Nil(t, g.PasswordHash)

	require.NoError(t, f.svc.Forgot(ctx, "ravi@nhpc.in"))
	link := f.mailer.sent["ravi@nhpc.in"]
	require.NotEmpty(t, link)

	require.NoError(t, f.svc.Reset(ctx, tokenFromLink(t, link), "first-password"))
	u, err := f.users.GetByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, u.PasswordHash)
	ok, err := core.VerifyPassword("first-password", *u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetPassword(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sessions.Create(ctx, &RefreshToken{
		ID: "s1", UserID: "u1", FamilyID: "fam", TokenHash: "h",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, f.svc.Forgot(ctx, "asha@nhpc.in"))
	token := tokenFromLink(t, f.mailer.sent["asha@nhpc.in"])

	require.NoError(t, f.svc.Reset(ctx, token, "brand-new-pass"))

	ok, err := core.VerifyPassword("brand-new-pass", *f.users.users["u1"].PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.repo.tokens)
	assert.Equal(t, 1, f.users.users["u1"].TokenVersion)

	sessions, err := f.sessions.ActiveSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	assert.ErrorIs(t, f.svc.Reset(ctx, token, "another-pass"), ErrResetTokenInvalid)
}

func TestResetPasswordExpired(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Forgot(ctx, "asha@nhpc.in"))
	token := tokenFromLink(t, f.mailer.sent["asha@nhpc.in"])

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	assert.ErrorIs(t, f.svc.Reset(ctx, token, "brand-new-pass"), ErrResetTokenExpired)
	assert.Empty(t, f.repo.tokens, "expired token is deleted")
	assert.ErrorIs(t, f.svc.Reset(ctx, token, "brand-new-pass"), ErrResetTokenInvalid)
}
