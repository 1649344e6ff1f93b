package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/database/databasetest"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/pkg/logger"
)

func productInput(name, description string, price int) domain.ProductInput {
	return domain.ProductInput{
		Name:        domain.Some(name),
		Description: domain.Some(description),
		Price:       domain.Some(price),
	}
}

func TestProductRepository_CreateAndList(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	repo := repository.NewProductRepository(logger.Nop())
	ctx := context.Background()

	first, err := repo.Create(ctx, s, productInput("Pen", "Blue pen", 100))
	require.NoError(t, err)
	second, err := repo.Create(ctx, s, productInput("Ink", "Black ink", 20))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	products, err := repo.ListAll(ctx, s)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, first, products[0])
	assert.Equal(t, second, products[1])
}

func TestProductRepository_ListAllEmpty(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)

	products, err := repository.NewProductRepository(logger.Nop()).ListAll(context.Background(), s)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductRepository_GetByIDMissing(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)

	product, err := repository.NewProductRepository(logger.Nop()).GetByID(context.Background(), s, 999)
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestProductRepository_MergePartialKeepsOtherFields(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	repo := repository.NewProductRepository(logger.Nop())
	ctx := context.Background()

	created, err := repo.Create(ctx, s, productInput("Pen", "Blue pen", 100))
	require.NoError(t, err)

	existing, err := repo.GetByID(ctx, s, created.ID)
	require.NoError(t, err)

	updated, err := repo.MergePartial(ctx, s, existing, domain.ProductInput{Price: domain.Some(500)})
	require.NoError(t, err)
	assert.Equal(t, 500, updated.Price)

	reloaded, err := repo.GetByID(ctx, s, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.Product{ID: created.ID, Name: "Pen", Description: "Blue pen", Price: 500}, reloaded)
}

func TestProductRepository_ReplaceOverwritesEverything(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	repo := repository.NewProductRepository(logger.Nop())
	ctx := context.Background()

	created, err := repo.Create(ctx, s, productInput("Pen", "Blue pen", 100))
	require.NoError(t, err)

	_, err = repo.Replace(ctx, s, created, productInput("A", "B", 10))
	require.NoError(t, err)

	reloaded, err := repo.GetByID(ctx, s, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.Product{ID: created.ID, Name: "A", Description: "B", Price: 10}, reloaded)
}

func TestProductRepository_Delete(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	repo := repository.NewProductRepository(logger.Nop())
	ctx := context.Background()

	created, err := repo.Create(ctx, s, productInput("Pen", "Blue pen", 100))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, s, created))

	gone, err := repo.GetByID(ctx, s, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	err = repo.Delete(ctx, s, created)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepository_CheckConstraintSurfaces(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)

	_, err := repository.NewProductRepository(logger.Nop()).Create(context.Background(), s, productInput("Pen", "", 0))
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestProductRepository_ConcurrentUpdatesLastWriteWins(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	repo := repository.NewProductRepository(logger.Nop())
	ctx := context.Background()

	created, err := repo.Create(ctx, databasetest.Session(t, provider), productInput("Pen", "Blue pen", 100))
	require.NoError(t, err)

	prices := []int{150, 200}
	errs := make([]error, len(prices))
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i, price := range prices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			s, err := provider.Acquire(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			defer s.Close()

			existing, err := repo.GetByID(ctx, s, created.ID)
			if err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = repo.MergePartial(ctx, s, existing, domain.ProductInput{Price: domain.Some(price)})
		}()
	}

	close(start)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	final, err := repo.GetByID(ctx, databasetest.Session(t, provider), created.ID)
	require.NoError(t, err)
	assert.Contains(t, prices, final.Price)
	assert.Equal(t, "Blue pen", final.Description)
}
