package service

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/pkg/cache"
	"storefront/pkg/logger"
)

// CachedProductService serves single-product reads from Redis and drops the
// cached entry after every write to that product.
type CachedProductService struct {
	productService domain.ProductService
	cacheManager   *cache.CacheManager
	ttl            time.Duration
	logger         logger.Logger
}

func NewCachedProductService(
	productService domain.ProductService,
	cacheManager *cache.CacheManager,
	ttl time.Duration,
	logger logger.Logger,
) domain.ProductService {
	if ttl <= 0 {
		ttl = cache.ShortExpiration
	}
	return &CachedProductService{
		productService: productService,
		cacheManager:   cacheManager,
		ttl:            ttl,
		logger:         logger,
	}
}

func (s *CachedProductService) ListProducts(ctx context.Context, session domain.Session) ([]*domain.Product, error) {
	return s.productService.ListProducts(ctx, session)
}

func (s *CachedProductService) GetProduct(ctx context.Context, session domain.Session, id int64) (*domain.Product, error) {
	var product domain.Product
	err := s.cacheManager.ReadThrough(ctx, cache.ProductCacheKey(id), &product, func() (interface{}, error) {
		return s.productService.GetProduct(ctx, session, id)
	}, s.ttl)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *CachedProductService) CreateProduct(ctx context.Context, session domain.Session, in domain.ProductInput) (*domain.Product, error) {
	return s.productService.CreateProduct(ctx, session, in)
}

func (s *CachedProductService) ReplaceProduct(ctx context.Context, session domain.Session, id int64, in domain.ProductInput) (*domain.Product, error) {
	defer s.invalidate(ctx, id)
	return s.productService.ReplaceProduct(ctx, session, id, in)
}

func (s *CachedProductService) UpdateProductPartial(ctx context.Context, session domain.Session, id int64, in domain.ProductInput) (*domain.Product, error) {
	defer s.invalidate(ctx, id)
	return s.productService.UpdateProductPartial(ctx, session, id, in)
}

func (s *CachedProductService) DeleteProduct(ctx context.Context, session domain.Session, id int64) error {
	defer s.invalidate(ctx, id)
	return s.productService.DeleteProduct(ctx, session, id)
}

// invalidate runs after the write even when the client has gone away, so a
// committed change is never left behind a cached copy.
func (s *CachedProductService) invalidate(ctx context.Context, id int64) {
	s.cacheManager.Invalidate(context.WithoutCancel(ctx), cache.ProductCacheKey(id))
}
