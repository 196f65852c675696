package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-catalog-api/config"
	"github.com/oksasatya/go-ddd-catalog-api/internal/application"
	repo "github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-catalog-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-ddd-catalog-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-catalog-api/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
)

// Container holds everything built once at startup. It is passed explicitly
// to the router and closed on shutdown.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool   *pgxpool.Pool            // nil with the memory driver
	Redis  *redis.Client            // optional
	Rabbit *helpers.RabbitPublisher // optional
	ES     *elasticsearch.Client    // optional
	GCS    *storage.Client          // optional

	JWT     *helpers.JWTManager
	Hasher  *helpers.PasswordHasher
	Cookies *helpers.Manager

	Users     repo.UserRepository
	Documents repo.DocumentRepository
	Audit     repo.AuditRepository
	Search    repo.SearchIndex // nil when ES is not configured

	AuthService     *application.AuthService
	DocumentService *application.DocumentService
}

// New connects the configured backends. The store is mandatory; Redis,
// RabbitMQ, Elasticsearch and GCS are skipped with a warning when they are
// not configured or unreachable.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		JWT:     helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		Hasher:  helpers.NewPasswordHasher(cfg.BcryptCost),
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}

	if err := c.openStore(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.openOptional(ctx)
	c.buildServices()
	return c, nil
}

// NewInMemory builds a container on the memory store with no optional
// backends. Used by tests and local runs.
func NewInMemory(cfg *config.Config, logger *logrus.Logger) *Container {
	c := &Container{
		Config:    cfg,
		Logger:    logger,
		JWT:       helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		Hasher:    helpers.NewPasswordHasher(cfg.BcryptCost),
		Cookies:   helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		Users:     memory.NewUserRepository(),
		Documents: memory.NewDocumentRepository(),
		Audit:     memory.NewAuditRepository(),
	}
	c.buildServices()
	return c
}

func (c *Container) openStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		c.Logger.Warn("using in-memory store; data is lost on restart")
		c.Users = memory.NewUserRepository()
		c.Documents = memory.NewDocumentRepository()
		c.Audit = memory.NewAuditRepository()
		return nil
	case config.StoreDriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.Pool = pool
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, c.Logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		c.Users = pginfra.NewUserRepository(pool)
		c.Documents = pginfra.NewDocumentRepository(pool)
		c.Audit = pginfra.NewAuditRepository(pool)
		return nil
	}
	return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func (c *Container) openOptional(ctx context.Context) {
	cfg := c.Config

	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			c.Logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
		} else {
			c.Redis = rdb
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			c.Logger.WithError(err).Warn("rabbitmq unavailable; welcome emails disabled")
		} else {
			c.Rabbit = pub
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(ctx, addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			c.Logger.WithError(err).Warn("elasticsearch unavailable; search disabled")
		} else {
			c.ES = es
			c.Search = search.NewESIndex(es, cfg.ESIndexPrefix)
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			c.Logger.WithError(err).Warn("gcs client init failed; image upload disabled")
		} else {
			c.GCS = gcs
		}
	}
}

func (c *Container) buildServices() {
	var events application.EventPublisher
	if c.Rabbit != nil {
		events = c.Rabbit
	}
	auth := application.NewAuthService(c.Users, c.Hasher, c.JWT, events, c.Logger)
	auth.AppName = c.Config.AppName
	auth.CaseInsensitiveUsernames = c.Config.UsernameCaseInsensitive
	c.AuthService = auth

	var images application.ImageUploader
	if c.GCS != nil {
		images = helpers.NewGCSUploader(c.GCS, c.Config.GCSBucket)
	}
	c.DocumentService = application.NewDocumentService(c.Documents, c.Search, images, c.Logger)
}

// Close releases every open client. Safe on a partially built container.
func (c *Container) Close() {
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Rabbit != nil {
		c.Rabbit.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
