// AngelaMos | 2026
// defaults.go

package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

var defaults = map[string]any{
	"app.name":        "NHPC Blog API",
	"app.version":     "1.0.0",
	"app.environment": "development",
	"app.public_url":  "http://localhost:3000",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     "30s",
	"server.write_timeout":    "30s",
	"server.idle_timeout":     "120s",
	"server.shutdown_timeout": "15s",

	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "1h",
	"database.conn_max_idle_time": "30m",
	"database.auto_migrate":       true,

	"redis.pool_size":      10,
	"redis.min_idle_conns": 5,

	"jwt.access_token_expire":  "15m",
	"jwt.refresh_token_expire": "168h",
	"jwt.issuer":               "nhpc-blog",
	"jwt.audience":             "nhpc-blog-api",
	"jwt.private_key_path":     "keys/private.pem",
	"jwt.public_key_path":      "keys/public.pem",

	"rate_limit.requests":      100,
	"rate_limit.window":        "1m",
	"rate_limit.burst":         20,
	"rate_limit.auth_requests": 10,
	"rate_limit.user_writes":   30,
	"rate_limit.admin_writes":  300,

	"cors.allowed_origins":   []string{"http://localhost:3000"},
	"cors.allowed_methods":   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	"cors.allow_credentials": true,
	"cors.max_age":           300,

	"log.level":  "info",
	"log.format": "json",

	"otel.enabled":      false,
	"otel.insecure":     true,
	"otel.sample_rate":  0.1,
	"otel.service_name": "nhpc-blog-api",

	"erp.url":           "https://apihub.nhpc.in:8443/erp-auth",
	"erp.timeout":       "10s",
	"erp.success_field": "success",

	"oauth.google.state_ttl": "10m",

	"smtp.port": 587,
	"smtp.from": "no-reply@nhpc.in",

	"reset.token_ttl": "1h",

	"nats.enabled":        false,
	"nats.subject_prefix": "blog",

	"cache.feed_ttl":       "60s",
	"cache.categories_ttl": "10m",
}

func setDefaults(k *koanf.Koanf) error {
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}
	return nil
}

// Only these variables are read from the environment; anything else is
// ignored so stray host variables cannot leak into the config tree.
var envKeys = map[string]string{
	"ENVIRONMENT":                 "app.environment",
	"PUBLIC_URL":                  "app.public_url",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"RATE_LIMIT_AUTH_REQUESTS":    "rate_limit.auth_requests",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"ERP_AUTH_URL":                "erp.url",
	"ERP_TIMEOUT":                 "erp.timeout",
	"GOOGLE_CLIENT_ID":            "oauth.google.client_id",
	"GOOGLE_CLIENT_SECRET":        "oauth.google.client_secret",
	"GOOGLE_REDIRECT_URL":         "oauth.google.redirect_url",
	"SMTP_HOST":                   "smtp.host",
	"SMTP_PORT":                   "smtp.port",
	"SMTP_USER":                   "smtp.username",
	"SMTP_PASSWORD":               "smtp.password",
	"FROM_EMAIL":                  "smtp.from",
	"RESET_TOKEN_TTL":             "reset.token_ttl",
	"NATS_ENABLED":                "nats.enabled",
	"NATS_URL":                    "nats.url",
	"FEED_CACHE_TTL":              "cache.feed_ttl",
}

func envKey(name string) string {
	return envKeys[name]
}
