// AngelaMos | 2026
// oauth.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/nhpc-ltd/blog-api/internal/config"
	"github.com/nhpc-ltd/blog-api/internal/core"
)

const (
	oauthStatePrefix = "oauth:state:"
	googleUserInfo   = "https://openidconnect.googleapis.com/v1/userinfo"
)

var ErrOAuthState = errors.New("oauth state invalid or expired")

// ProfileFetcher turns an exchanged token into the caller's Google identity.
type ProfileFetcher func(ctx context.Context, client *http.Client) (*GoogleProfile, error)

type GoogleOAuth struct {
	config   *oauth2.Config
	redis    *redis.Client
	stateTTL time.Duration
	fetch    ProfileFetcher
}

func NewGoogleOAuth(cfg config.GoogleOAuthConfig, rdb *redis.Client) *GoogleOAuth {
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		redis:    rdb,
		stateTTL: ttl,
		fetch:    fetchGoogleProfile,
	}
}

// WithEndpoint points the flow at another provider, used by tests.
func (g *GoogleOAuth) WithEndpoint(ep oauth2.Endpoint, fetch ProfileFetcher) *GoogleOAuth {
	g.config.Endpoint = ep
	if fetch != nil {
		g.fetch = fetch
	}
	return g
}

// AuthCodeURL stores a fresh state value and returns the consent URL.
func (g *GoogleOAuth) AuthCodeURL(ctx context.Context) (string, error) {
	state, err := core.GenerateSecureToken(24)
	if err != nil {
		return "", err
	}
	if err := g.redis.Set(ctx, oauthStatePrefix+state, "1", g.stateTTL).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange consumes the state (single use) and trades the code for the
// Google profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, state, code string) (*GoogleProfile, error) {
	if state == "" || code == "" {
		return nil, ErrOAuthState
	}

	err := g.redis.GetDel(ctx, oauthStatePrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return nil, ErrOAuthState
	}
	if err != nil {
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	return g.fetch(ctx, g.config.Client(ctx, token))
}

type googleUserInfoBody struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var body googleUserInfoBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	return &GoogleProfile{
		Subject:       body.Sub,
		Email:         body.Email,
		Name:          body.Name,
		Picture:       body.Picture,
		EmailVerified: body.EmailVerified,
	}, nil
}
