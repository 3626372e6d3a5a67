// AngelaMos | 2026
// reset_repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

type ResetRepository interface {
	// Replace drops every outstanding token of the user and stores the new one.
	Replace(ctx context.Context, token *PasswordResetToken) error
	FindByHash(ctx context.Context, tokenHash string) (*PasswordResetToken, error)
	Delete(ctx context.Context, id string) error
	// ConsumeAndSetPassword updates the password and deletes the token in one
	// transaction.
	ConsumeAndSetPassword(ctx context.Context, tokenID, userID, passwordHash string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type resetRepository struct {
	db *sqlx.DB
}

func NewResetRepository(db *sqlx.DB) ResetRepository {
	return &resetRepository{db: db}
}

func (r *resetRepository) Replace(ctx context.Context, token *PasswordResetToken) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM password_reset_tokens WHERE user_id = $1`, token.UserID); err != nil {
			return fmt.Errorf("delete old reset tokens: %w", err)
		}

		err := tx.GetContext(ctx, &token.CreatedAt, `
			INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at`,
			token.ID, token.UserID, token.TokenHash, token.ExpiresAt)
		if err != nil {
			return fmt.Errorf("create reset token: %w", err)
		}
		return nil
	})
}

func (r *resetRepository) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*PasswordResetToken, error) {
	var t PasswordResetToken
	err := r.db.GetContext(ctx, &t, `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &t, nil
}

func (r *resetRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

func (r *resetRepository) ConsumeAndSetPassword(
	ctx context.Context,
	tokenID, userID, passwordHash string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM password_reset_tokens WHERE id = $1`, tokenID)
		if err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("consume reset token: %w", core.ErrNotFound)
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE users SET password_hash = $2, updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL`, userID, passwordHash)
		if err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update password: %w", core.ErrUpdateFailed)
		}
		return nil
	})
}

func (r *resetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return n, nil
}
