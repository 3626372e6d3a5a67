// AngelaMos | 2026
// fakes_test.go

package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nhpc-ltd/blog-api/internal/config"
	"github.com/nhpc-ltd/blog-api/internal/core"
)

type memRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{tokens: map[string]*RefreshToken{}}
}

func (m *memRefreshRepo) Create(_ context.Context, t *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = time.Now()
	cp := *t
	m.tokens[t.ID] = &cp
	return nil
}

func (m *memRefreshRepo) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
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

func (m *memRefreshRepo) FindByID(_ context.Context, id string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, fmt.Errorf("find: %w", core.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *memRefreshRepo) MarkAsUsed(_ context.Context, id, replacedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.IsUsed {
		return fmt.Errorf("mark: %w", core.ErrNotFound)
	}
	now := time.Now()
	t.IsUsed = true
	t.UsedAt = &now
	t.ReplacedByID = &replacedBy
	return nil
}

func (m *memRefreshRepo) revoke(match func(*RefreshToken) bool) int {
	now := time.Now()
	n := 0
	for _, t := range m.tokens {
		if t.RevokedAt == nil && match(t) {
			t.RevokedAt = &now
			n++
		}
	}
	return n
}

func (m *memRefreshRepo) RevokeByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoke(func(t *RefreshToken) bool { return t.ID == id }) == 0 {
		return fmt.Errorf("revoke: %w", core.ErrNotFound)
	}
	return nil
}

func (m *memRefreshRepo) RevokeByFamilyID(_ context.Context, familyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoke(func(t *RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (m *memRefreshRepo) RevokeAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoke(func(t *RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (m *memRefreshRepo) ActiveSessions(_ context.Context, userID string) ([]RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RefreshToken
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsValid() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memRefreshRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
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

type memUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newMemUsers(users ...*UserInfo) *memUsers {
	m := &memUsers{users: map[string]*UserInfo{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) find(match func(*UserInfo) bool) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	return m.find(func(u *UserInfo) bool { return u.Email == email })
}

func (m *memUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	return m.find(func(u *UserInfo) bool { return u.ID == id })
}

func (m *memUsers) GetByEmployeeID(_ context.Context, id string) (*UserInfo, error) {
	return m.find(func(u *UserInfo) bool { return u.EmployeeID != nil && *u.EmployeeID == id })
}

func (m *memUsers) FindOrCreateGoogleUser(_ context.Context, p GoogleProfile) (*UserInfo, error) {
	if u, err := m.find(func(u *UserInfo) bool { return u.Email == p.Email }); err == nil {
		return u, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &UserInfo{ID: "g-" + p.Subject, Email: p.Email, Name: p.Name, Role: "user"}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) IncrementTokenVersion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].TokenVersion++
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].PasswordHash = &hash
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 24 * time.Hour,
		Issuer:             "blog-api-test",
		Audience:           "blog-test",
	}
}

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	key, err := jwk.Import(raw)
	require.NoError(t, err)
	m, err := NewJWTManagerFromKey(testJWTConfig(), key)
	require.NoError(t, err)
	return m
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func mustHash(t *testing.T, password string) *string {
	t.Helper()
	h, err := core.HashPassword(password)
	require.NoError(t, err)
	return &h
}
