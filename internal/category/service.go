// AngelaMos | 2026
// service.go

package category

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhpc-ltd/blog-api/internal/cache"
	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
)

// Revalidator is notified after every taxonomy change.
type Revalidator interface {
	Categories(ctx context.Context)
}

type Service struct {
	repo        Repository
	cache       *cache.Cache
	ttl         time.Duration
	revalidator Revalidator
}

func NewService(repo Repository, c *cache.Cache, ttl time.Duration, rv Revalidator) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl, revalidator: rv}
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return cache.Remember(ctx, s.cache, cache.KeyCategories, s.ttl, s.repo.List)
}

func (s *Service) Get(ctx context.Context, id string) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	if err := requireAdmin(ctx, "create category"); err != nil {
		return nil, err
	}

	c := &Category{ID: uuid.New().String(), Name: strings.TrimSpace(name)}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.revalidator.Categories(ctx)
	return c, nil
}

func (s *Service) Rename(ctx context.Context, id, name string) (*Category, error) {
	if err := requireAdmin(ctx, "rename category"); err != nil {
		return nil, err
	}

	c, err := s.repo.Rename(ctx, id, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	s.revalidator.Categories(ctx)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := requireAdmin(ctx, "delete category"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.revalidator.Categories(ctx)
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
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
