// AngelaMos | 2026
// reset.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

const ForgotPasswordMessage = "If an account with that email exists, we sent you a link to reset your password."

var (
	ErrResetTokenInvalid = errors.New("invalid token")
	ErrResetTokenExpired = errors.New("token expired")
)

// Mailer delivers the reset link. Implementations live in the mail package.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

type ResetService struct {
	repo      ResetRepository
	users     UserProvider
	sessions  Repository
	mailer    Mailer
	publicURL string
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewResetService(
	repo ResetRepository,
	users UserProvider,
	sessions Repository,
	mailer Mailer,
	publicURL string,
	ttl time.Duration,
	logger *slog.Logger,
) *ResetService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResetService{
		repo:      repo,
		users:     users,
		sessions:  sessions,
		mailer:    mailer,
		publicURL: strings.TrimRight(publicURL, "/"),
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// Forgot issues a reset link when the address belongs to any account,
// including one that has only signed in with Google, which then gains a
// local password. Callers always answer with ForgotPasswordMessage; only
// infrastructure failures are returned.
func (s *ResetService) Forgot(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	raw, err := core.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	if err := s.repo.Replace(ctx, &PasswordResetToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: core.HashToken(raw),
		ExpiresAt: s.now().Add(s.ttl),
	}); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	link := s.publicURL + "/reset-password?token=" + url.QueryEscape(raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset issued", "user_id", user.ID)
	return nil
}

func (s *ResetService) Reset(ctx context.Context, token, password string) error {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(token))
	if errors.Is(err, core.ErrNotFound) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	if stored.IsExpired(s.now()) {
		if err := s.repo.Delete(ctx, stored.ID); err != nil {
			s.logger.WarnContext(ctx, "delete expired reset token", "error", err)
		}
		return ErrResetTokenExpired
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.ConsumeAndSetPassword(ctx, stored.ID, stored.UserID, hash); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("reset password: %w", err)
	}

	if err := s.sessions.RevokeAllForUser(ctx, stored.UserID); err != nil {
		s.logger.ErrorContext(ctx, "revoke sessions after reset",
			"user_id", stored.UserID, "error", err)
	}
	if err := s.users.IncrementTokenVersion(ctx, stored.UserID); err != nil {
		s.logger.ErrorContext(ctx, "bump token version after reset",
			"user_id", stored.UserID, "error", err)
	}
	return nil
}

func (s *ResetService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
