package repository

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type ProductRepository struct {
	logger logger.Logger
}

func NewProductRepository(logger logger.Logger) domain.ProductRepository {
	return &ProductRepository{
		logger: logger,
	}
}

func (r *ProductRepository) ListAll(ctx context.Context, s domain.Session) ([]*domain.Product, error) {
	query := `SELECT id, name, description, price FROM products ORDER BY id`

	products := []*domain.Product{}
	if err := s.Select(ctx, &products, query); err != nil {
		r.logger.ErrorContext(ctx, "Ürünler listelenemedi", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("ürünler listelenemedi: %w", err)
	}

	return products, nil
}

// GetByID returns nil without an error when no product has the id.
func (r *ProductRepository) GetByID(ctx context.Context, s domain.Session, id int64) (*domain.Product, error) {
	var product domain.Product
	found, err := s.Get(ctx, &product, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Ürün ID'ye göre alınamadı", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("ürün alınamadı: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &product, nil
}

// Create persists a new product. The returned value carries the generated id and
// the submitted fields; it is not re-read from storage.
func (r *ProductRepository) Create(ctx context.Context, s domain.Session, in domain.ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:        in.Name.Value,
		Description: in.Description.Value,
		Price:       in.Price.Value,
	}

	if err := r.save(ctx, s, product); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Ürün oluşturuldu", map[string]interface{}{"id": product.ID})
	return product, nil
}

// Replace overwrites every mutable field of existing.
func (r *ProductRepository) Replace(ctx context.Context, s domain.Session, existing *domain.Product, in domain.ProductInput) (*domain.Product, error) {
	existing.Name = in.Name.Value
	existing.Description = in.Description.Value
	existing.Price = in.Price.Value

	if err := r.save(ctx, s, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// MergePartial writes only the fields the client supplied.
func (r *ProductRepository) MergePartial(ctx context.Context, s domain.Session, existing *domain.Product, in domain.ProductInput) (*domain.Product, error) {
	if in.Name.Set {
		existing.Name = in.Name.Value
	}
	if in.Description.Set {
		existing.Description = in.Description.Value
	}
	if in.Price.Set {
		existing.Price = in.Price.Value
	}

	if err := r.save(ctx, s, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (r *ProductRepository) Delete(ctx context.Context, s domain.Session, existing *domain.Product) error {
	if err := s.Delete(existing); err != nil {
		return err
	}

	if err := s.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Ürün silinemedi", map[string]interface{}{"id": existing.ID, "error": err.Error()})
		return fmt.Errorf("ürün silinemedi: %w", err)
	}

	r.logger.InfoContext(ctx, "Ürün silindi", map[string]interface{}{"id": existing.ID})
	return nil
}

func (r *ProductRepository) save(ctx context.Context, s domain.Session, product *domain.Product) error {
	if err := s.Add(product); err != nil {
		return err
	}

	if err := s.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Ürün kaydedilemedi", map[string]interface{}{"id": product.ID, "error": err.Error()})
		return fmt.Errorf("ürün kaydedilemedi: %w", err)
	}

	return nil
}
