// AngelaMos | 2026
// validate.go

package config

import (
	"errors"
	"slices"
)

// Validate reports every problem at once rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	check(c.Database.URL != "", "DATABASE_URL is required")
	check(c.Redis.URL != "", "REDIS_URL is required")
	check(c.JWT.PrivateKeyPath != "", "JWT_PRIVATE_KEY_PATH is required")
	check(c.JWT.PublicKeyPath != "", "JWT_PUBLIC_KEY_PATH is required")

	check(c.Server.ReadTimeout > 0, "server.read_timeout must be positive")
	check(c.Server.WriteTimeout > 0, "server.write_timeout must be positive")
	check(c.Reset.TokenTTL > 0, "reset.token_ttl must be positive")
	check(c.Cache.FeedTTL >= 0, "cache.feed_ttl must not be negative")

	check(!c.CORS.AllowCredentials || !slices.Contains(c.CORS.AllowedOrigins, "*"),
		"CORS wildcard origin cannot be combined with credentials")
	check(!c.NATS.Enabled || c.NATS.URL != "",
		"NATS_URL is required when nats is enabled")
	check(!c.IsProduction() || !c.Otel.Enabled || !c.Otel.Insecure,
		"OTEL_INSECURE must be false in production")

	return errors.Join(errs...)
}
