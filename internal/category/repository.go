// AngelaMos | 2026
// repository.go

package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

var (
	ErrNameTaken = fmt.Errorf("category name taken: %w", core.ErrDuplicateKey)
	ErrInUse     = fmt.Errorf("category still referenced by posts: %w", core.ErrConflict)
)

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Rename(ctx context.Context, id, name string) (*Category, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Category, error) {
	var cs []Category
	err := r.db.SelectContext(ctx, &cs,
		`SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := r.db.GetContext(ctx, &c,
		`SELECT id, name, created_at FROM categories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Category) error {
	err := r.db.GetContext(ctx, &c.CreatedAt, `
		INSERT INTO categories (id, name) VALUES ($1, $2)
		RETURNING created_at`, c.ID, c.Name)
	if core.IsUniqueViolation(err, "categories_name_key") {
		return fmt.Errorf("create category: %w", ErrNameTaken)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *repository) Rename(ctx context.Context, id, name string) (*Category, error) {
	var c Category
	err := r.db.GetContext(ctx, &c, `
		UPDATE categories SET name = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, name, created_at`, id, name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("rename category: %w", core.ErrNotFound)
	case core.IsUniqueViolation(err, "categories_name_key"):
		return nil, fmt.Errorf("rename category: %w", ErrNameTaken)
	case err != nil:
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return &c, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if core.IsForeignKeyViolation(err) {
		return fmt.Errorf("delete category: %w", ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete category: %w", core.ErrDeletionFailed)
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}
