package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/sly-barbershop/internal/admin"
	"github.com/wolfman30/sly-barbershop/internal/backend"
	appconfig "github.com/wolfman30/sly-barbershop/internal/config"
	"github.com/wolfman30/sly-barbershop/internal/observability/metrics"
	"github.com/wolfman30/sly-barbershop/internal/session"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, admin sessions stay in memory", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore keeps admin tokens in Redis when a client is available
// and in process memory otherwise.
func BuildSessionStore(redisClient *redis.Client, logger *logging.Logger) session.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient == nil {
		logger.Info("admin sessions stored in memory")
		return session.NewMemoryStore()
	}
	logger.Info("admin sessions stored in redis")
	return session.NewRedisStore(redisClient, nil)
}

// BuildIssuer signs admin tokens. Without a configured secret a random one
// is generated, so tokens do not survive a restart.
func BuildIssuer(cfg *appconfig.Config, logger *logging.Logger) *session.Issuer {
	if logger == nil {
		logger = logging.Default()
	}
	secret := strings.TrimSpace(cfg.AdminSessionSecret)
	if secret == "" {
		logger.Warn("ADMIN_SESSION_SECRET not set; using an ephemeral signing key")
		secret = uuid.NewString() + uuid.NewString()
	}
	return session.NewIssuer(secret, cfg.AdminSessionTTL)
}

// BuildAuthenticator returns the admin login check. An empty password
// leaves login disabled.
func BuildAuthenticator(cfg *appconfig.Config, issuer *session.Issuer, logger *logging.Logger) admin.Authenticator {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		logger.Warn("ADMIN_PASSWORD not set; admin login is disabled")
	}
	return admin.NewSharedSecretAuthenticator(cfg.AdminPassword, issuer)
}

// BuildBackendClient wires the booking API client with request metrics.
func BuildBackendClient(cfg *appconfig.Config, reg prometheus.Registerer, logger *logging.Logger) *backend.Client {
	return backend.NewClient(cfg.APIBaseURL, logger,
		backend.WithAdminBaseURL(cfg.AdminAPIBaseURL),
		backend.WithTimeout(cfg.APITimeout),
		backend.WithMetrics(metrics.NewBackendMetrics(reg)),
	)
}
