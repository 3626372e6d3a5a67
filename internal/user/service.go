// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nhpc-ltd/blog-api/internal/auth"
	"github.com/nhpc-ltd/blog-api/internal/core"
)

const maxUsernameLen = 20

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a credentials account. Only an authenticated admin may
// create another admin.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	callerIsAdmin bool,
) (*User, error) {
	role := req.Type
	if role == "" {
		role = RoleUser
	}
	if role == RoleAdmin && !callerIsAdmin {
		return nil, fmt.Errorf("register admin: %w", core.ErrForbidden)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Username)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("register: %w", ErrEmailTaken)
	}

	exists, err = s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("register: %w", ErrNameTaken)
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		Role:         role,
	}
	if id := strings.TrimSpace(req.EmployeeID); id != "" {
		user.EmployeeID = &id
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetProfile(ctx context.Context, name string) (*User, error) {
	return s.repo.GetByName(ctx, name)
}

// RoleOf returns nil when no such user exists.
func (s *Service) RoleOf(ctx context.Context, name string) (*string, error) {
	u, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u.Role, nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.Image = req.Image
	u.Designation = req.Designation
	u.Bio = req.Bio

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) UpdateUserRole(ctx context.Context, id, role string) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf("update role %q: %w", role, core.ErrInvalidInput)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	// Outstanding access tokens still carry the old role.
	if err := s.repo.IncrementTokenVersion(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, requesterID, targetID string) error {
	if requesterID != targetID {
		target, err := s.repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target.IsAdmin() {
			return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
		}
	}
	return s.repo.SoftDelete(ctx, targetID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByEmployeeID(
	ctx context.Context,
	employeeID string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmployeeID(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// FindOrCreateGoogleUser resolves a Google identity to a local account,
// linking by verified email before creating a password-less user.
func (s *Service) FindOrCreateGoogleUser(
	ctx context.Context,
	profile auth.GoogleProfile,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByGoogleID(ctx, profile.Subject)
	if err == nil {
		return toUserInfo(u), nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))

	u, err = s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !profile.EmailVerified {
			return nil, fmt.Errorf("link google account: unverified email: %w", core.ErrForbidden)
		}
		if err := s.repo.LinkGoogle(ctx, u.ID, profile.Subject); err != nil {
			return nil, err
		}
		return toUserInfo(u), nil
	case !errors.Is(err, core.ErrNotFound):
		return nil, err
	}

	name, err := s.availableName(ctx, usernameFrom(profile))
	if err != nil {
		return nil, err
	}

	subject := profile.Subject
	u = &User{
		ID:       uuid.New().String(),
		Email:    email,
		Name:     name,
		Role:     RoleUser,
		GoogleID: &subject,
		Image:    profile.Picture,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) availableName(ctx context.Context, base string) (string, error) {
	candidate := base
	for range 5 {
		exists, err := s.repo.ExistsByName(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}

		//nolint:gosec // suffix only disambiguates display names
		suffix := strconv.Itoa(1000 + rand.IntN(9000))
		candidate = truncate(base, maxUsernameLen-len(suffix)) + suffix
	}
	return "", fmt.Errorf("allocate username for %q: %w", base, core.ErrConflict)
}

var nonUsernameChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]+`)

func usernameFrom(p auth.GoogleProfile) string {
	base := p.Name
	if base == "" {
		base, _, _ = strings.Cut(p.Email, "@")
	}
	base = nonUsernameChars.ReplaceAllString(base, "")
	if base == "" {
		base = "user"
	}
	return truncate(base, maxUsernameLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
		EmployeeID:   u.EmployeeID,
	}
}

var _ auth.UserProvider = (*Service)(nil)
