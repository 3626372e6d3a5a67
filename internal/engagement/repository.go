// AngelaMos | 2026
// repository.go

package engagement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/post"
)

type Repository interface {
	// Toggle removes the user's like if there is one and adds it otherwise,
	// then recounts the post's likes from the table. The post row is share
	// locked for the transaction and must be published, so a concurrent
	// unpublish either waits for the toggle or makes it fail with
	// core.ErrNotPublished.
	Toggle(ctx context.Context, postID, userID string) (ToggleResult, error)
	Count(ctx context.Context, postID string) (int, error)
	Exists(ctx context.Context, postID, userID string) (bool, error)
	CountAll(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Toggle(ctx context.Context, postID, userID string) (ToggleResult, error) {
	var res ToggleResult

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var status post.Status
		err := tx.GetContext(ctx, &status,
			`SELECT published FROM posts WHERE id = $1 FOR SHARE`, postID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("toggle like: %w", core.ErrNotFound)
		case err != nil:
			return fmt.Errorf("lock post: %w", err)
		case status != post.Published:
			return fmt.Errorf("toggle like on %s post: %w", status, core.ErrNotPublished)
		}

		del, err := tx.ExecContext(ctx,
			`DELETE FROM likes WHERE post_id = $1 AND author_id = $2`, postID, userID)
		if err != nil {
			return fmt.Errorf("unlike: %w", err)
		}
		n, err := del.RowsAffected()
		if err != nil {
			return fmt.Errorf("unlike: %w", err)
		}

		if n == 0 {
			// A concurrent toggle by the same user may have inserted first;
			// the unique key turns the second insert into a no-op.
			_, err = tx.ExecContext(ctx, `
				INSERT INTO likes (id, post_id, author_id, liked)
				VALUES ($1, $2, $3, TRUE)
				ON CONFLICT ON CONSTRAINT likes_post_author_key DO NOTHING`,
				uuid.New().String(), postID, userID)
			if err != nil {
				return fmt.Errorf("like: %w", err)
			}
			res.Liked = true
		}

		if err := tx.GetContext(ctx, &res.LikeCount,
			`SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID); err != nil {
			return fmt.Errorf("count likes: %w", err)
		}
		return nil
	})

	return res, err
}

func (r *repository) Count(ctx context.Context, postID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

func (r *repository) Exists(ctx context.Context, postID, userID string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND author_id = $2)`,
		postID, userID)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return ok, nil
}

func (r *repository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM likes`); err != nil {
		return 0, fmt.Errorf("count all likes: %w", err)
	}
	return n, nil
}
