package factory

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"storefront/internal/api"
	"storefront/internal/api/middleware"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/validation"
	"storefront/pkg/cache"
	sqldb "storefront/pkg/database"
	"storefront/pkg/logger"
	"storefront/pkg/tracing"
)

const (
	serviceName = "storefront"
	Version     = "1.0.0"
)

type Factory interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	GetPool() *sqldb.Pool
	GetProvider() *database.Provider
	GetRedisClient() *redis.Client
	GetMigrationService() *database.MigrationService

	GetProductRepository() domain.ProductRepository
	GetUserRepository() domain.UserRepository
	GetProfileRepository() domain.ProfileRepository
	GetPostRepository() domain.PostRepository

	GetProductService() domain.ProductService
	GetUserService() domain.UserService

	Router() http.Handler
	Close(ctx context.Context) error
}

type AppFactory struct {
	config      *config.Config
	logger      logger.Logger
	pool        *sqldb.Pool
	provider    *database.Provider
	redisClient *redis.Client
	cacheMgr    *cache.CacheManager
	shutdown    func(context.Context) error

	productRepository domain.ProductRepository
	userRepository    domain.UserRepository
	profileRepository domain.ProfileRepository
	postRepository    domain.PostRepository

	productService domain.ProductService
	userService    domain.UserService
}

// NewFactory opens every external dependency described by cfg. Redis is
// optional: an empty address, or an unreachable server, runs without a cache.
func NewFactory(ctx context.Context, cfg *config.Config) (Factory, error) {
	log := logger.New(logger.LogLevel(cfg.LogLevel), os.Stdout, cfg.IsDevelopment())

	shutdown, err := tracing.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	pool, err := sqldb.Open(ctx, sqldb.Options{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		shutdown(ctx)
		return nil, err
	}

	factory := &AppFactory{
		config:   cfg,
		logger:   log,
		pool:     pool,
		provider: database.NewProvider(pool.DB(), cfg.Database.Echo, log),
		shutdown: shutdown,
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis kullanılamıyor, cache devre dışı", map[string]interface{}{"error": err.Error()})
		} else {
			factory.redisClient = client
			redisCache := cache.NewRedisCache(client, log, serviceName)
			guarded := cache.NewBreakerCache(redisCache, cfg.Redis.BreakerThreshold, cfg.Redis.BreakerCooldown, log)
			factory.cacheMgr = cache.NewCacheManager(guarded, log)
		}
	}

	factory.initRepositories()
	factory.initServices()

	return factory, nil
}

func (f *AppFactory) initRepositories() {
	f.productRepository = repository.NewProductRepository(f.logger)
	f.userRepository = repository.NewUserRepository(f.logger)
	f.profileRepository = repository.NewProfileRepository(f.logger)
	f.postRepository = repository.NewPostRepository(f.logger)
}

func (f *AppFactory) initServices() {
	f.productService = service.NewProductService(f.productRepository, f.logger)
	if f.cacheMgr != nil {
		f.productService = service.NewCachedProductService(f.productService, f.cacheMgr, f.config.Redis.TTL, f.logger)
	}

	f.userService = service.NewUserService(f.userRepository, f.profileRepository, f.postRepository, f.logger)
}

func (f *AppFactory) Router() http.Handler {
	v := validation.New()

	var limiter *middleware.RateLimiter
	if f.config.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(f.config.RateLimit.RPS, f.config.RateLimit.Burst)
	}

	return api.NewRouter(
		api.RouterConfig{Prefix: f.config.Server.APIPrefix, RateLimit: limiter},
		api.Handlers{
			Products: api.NewProductHandler(f.productService, v, f.logger),
			Users:    api.NewUserHandler(f.userService, v, f.logger),
			Items:    api.NewItemHandler(),
			Health:   api.NewHealthHandler(f.pool, f.provider, f.redisClient, Version, f.logger),
		},
		f.provider,
		f.logger,
	)
}

// Close releases the pool, the redis client and flushes pending spans.
func (f *AppFactory) Close(ctx context.Context) error {
	var errs []error
	if f.redisClient != nil {
		errs = append(errs, f.redisClient.Close())
	}
	errs = append(errs, f.pool.Close(), f.shutdown(ctx))
	return errors.Join(errs...)
}

func (f *AppFactory) GetLogger() logger.Logger {
	return f.logger
}

func (f *AppFactory) GetConfig() *config.Config {
	return f.config
}

func (f *AppFactory) GetPool() *sqldb.Pool {
	return f.pool
}

func (f *AppFactory) GetProvider() *database.Provider {
	return f.provider
}

func (f *AppFactory) GetRedisClient() *redis.Client {
	return f.redisClient
}

func (f *AppFactory) GetMigrationService() *database.MigrationService {
	return database.NewMigrationService(f.pool.DB(), f.pool.Dialect(), f.logger)
}

func (f *AppFactory) GetProductRepository() domain.ProductRepository {
	return f.productRepository
}

func (f *AppFactory) GetUserRepository() domain.UserRepository {
	return f.userRepository
}

func (f *AppFactory) GetProfileRepository() domain.ProfileRepository {
	return f.profileRepository
}

func (f *AppFactory) GetPostRepository() domain.PostRepository {
	return f.postRepository
}

func (f *AppFactory) GetProductService() domain.ProductService {
	return f.productService
}

func (f *AppFactory) GetUserService() domain.UserService {
	return f.userService
}
