package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type ProductService struct {
	repo   domain.ProductRepository
	logger logger.Logger
}

func NewProductService(repo domain.ProductRepository, logger logger.Logger) domain.ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, session domain.Session) ([]*domain.Product, error) {
	return s.repo.ListAll(ctx, session)
}

func (s *ProductService) GetProduct(ctx context.Context, session domain.Session, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if product == nil {
		return nil, &domain.NotFoundError{Resource: domain.ProductsTable.Resource, ID: id}
	}

	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, session domain.Session, in domain.ProductInput) (*domain.Product, error) {
	return s.repo.Create(ctx, session, in)
}

func (s *ProductService) ReplaceProduct(ctx context.Context, session domain.Session, id int64, in domain.ProductInput) (*domain.Product, error) {
	existing, err := s.GetProduct(ctx, session, id)
	if err != nil {
		return nil, err
	}

	return s.repo.Replace(ctx, session, existing, in)
}

func (s *ProductService) UpdateProductPartial(ctx context.Context, session domain.Session, id int64, in domain.ProductInput) (*domain.Product, error) {
	existing, err := s.GetProduct(ctx, session, id)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Ürün kısmi güncelleniyor", map[string]interface{}{
		"id":     id,
		"fields": in.Supplied(),
	})
	return s.repo.MergePartial(ctx, session, existing, in)
}

func (s *ProductService) DeleteProduct(ctx context.Context, session domain.Session, id int64) error {
	existing, err := s.GetProduct(ctx, session, id)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, session, existing)
}
