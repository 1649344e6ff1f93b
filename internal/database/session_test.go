package database_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/database"
	"storefront/internal/database/databasetest"
	"storefront/internal/domain"
	"storefront/pkg/logger"
)

func countProducts(t *testing.T, p *database.Provider) int {
	t.Helper()

	var n int
	err := p.Run(context.Background(), func(ctx context.Context, s *database.Session) error {
		_, err := s.One(ctx, &n, "SELECT COUNT(*) FROM products")
		return err
	})
	require.NoError(t, err)
	return n
}

func TestSession_CommitAssignsKeysInOrder(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	ctx := context.Background()

	pen := &domain.Product{Name: "Pen", Description: "Blue pen", Price: 100}
	ink := &domain.Product{Name: "Ink", Description: "Black", Price: 20}
	require.NoError(t, s.Add(pen))
	require.NoError(t, s.Add(ink))

	assert.Zero(t, pen.ID)
	require.NoError(t, s.Commit(ctx))

	assert.Equal(t, int64(1), pen.ID)
	assert.Equal(t, int64(2), ink.ID)

	var loaded domain.Product
	found, err := s.Get(ctx, &loaded, 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, *ink, loaded)
}

func TestSession_ReadsDoNotFlushStagedWrites(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	ctx := context.Background()

	require.NoError(t, s.Add(&domain.Product{Name: "Pen", Price: 1}))

	var n int
	_, err := s.One(ctx, &n, "SELECT COUNT(*) FROM products")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Commit(ctx))

	_, err = s.One(ctx, &n, "SELECT COUNT(*) FROM products")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSession_GetMissingRow(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)

	var p domain.Product
	found, err := s.Get(context.Background(), &p, 999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSession_FailedCommitRollsBackEverything(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	ctx := context.Background()

	good := &domain.Product{Name: "Pen", Price: 100}
	bad := &domain.Product{Name: "Free", Price: 0}
	require.NoError(t, s.Add(good))
	require.NoError(t, s.Add(bad))

	err := s.Commit(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	assert.Zero(t, good.ID)
	assert.Zero(t, bad.ID)
	assert.Zero(t, countProducts(t, provider))

	// the session stays usable after a failed commit
	again := &domain.Product{Name: "Pen", Price: 100}
	require.NoError(t, s.Add(again))
	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, 1, countProducts(t, provider))
}

func TestSession_UpdateAndDelete(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	ctx := context.Background()

	p := &domain.Product{Name: "Pen", Description: "Blue", Price: 100}
	require.NoError(t, s.Add(p))
	require.NoError(t, s.Commit(ctx))

	p.Price = 150
	require.NoError(t, s.Add(p))
	require.NoError(t, s.Commit(ctx))

	var loaded domain.Product
	_, err := s.Get(ctx, &loaded, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, loaded.Price)
	assert.Equal(t, "Blue", loaded.Description)

	require.NoError(t, s.Delete(p))
	require.NoError(t, s.Commit(ctx))
	assert.Zero(t, countProducts(t, provider))
}

func TestSession_UpdateOfVanishedRowIsNotFound(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)

	ghost := &domain.Product{ID: 42, Name: "Ghost", Price: 1}
	require.NoError(t, s.Add(ghost))

	err := s.Commit(context.Background())
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Product 42 not found", nf.Error())
}

func TestSession_DeleteUnsavedModel(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)

	assert.Error(t, s.Delete(&domain.Product{Name: "x"}))
}

func TestSession_RollbackDiscardsStagedWork(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	s := databasetest.Session(t, provider)
	ctx := context.Background()

	require.NoError(t, s.Add(&domain.Product{Name: "Pen", Price: 100}))
	require.NoError(t, s.Rollback())
	require.NoError(t, s.Commit(ctx))

	assert.Zero(t, countProducts(t, provider))
}

func TestSession_CloseRollsBackAndIsIdempotent(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	ctx := context.Background()

	s, err := provider.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), provider.OpenSessions())

	var n int
	_, err = s.One(ctx, &n, "SELECT COUNT(*) FROM products")
	require.NoError(t, err)
	require.NoError(t, s.Add(&domain.Product{Name: "Pen", Price: 100}))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.Zero(t, provider.OpenSessions())
	assert.Zero(t, countProducts(t, provider))

	assert.ErrorIs(t, s.Add(&domain.Product{}), domain.ErrSessionClosed)
	assert.ErrorIs(t, s.Commit(ctx), domain.ErrSessionClosed)
	_, err = s.Get(ctx, &domain.Product{}, 1)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.ErrorIs(t, s.Select(ctx, &[]domain.Product{}, "SELECT * FROM products"), domain.ErrSessionClosed)
}

func TestProvider_SessionsAreIndependent(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	ctx := context.Background()

	a, err := provider.Acquire(ctx)
	require.NoError(t, err)
	b, err := provider.Acquire(ctx)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, int64(2), provider.OpenSessions())

	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
	assert.Zero(t, provider.OpenSessions())
}

func TestProvider_AcquireFailureIsConnectionError(t *testing.T) {
	provider, pool := databasetest.NewProvider(t)
	require.NoError(t, pool.Close())

	s, err := provider.Acquire(context.Background())
	assert.Nil(t, s)

	var connErr *domain.ConnectionError
	assert.ErrorAs(t, err, &connErr)
	assert.Zero(t, provider.OpenSessions())
}

func TestProvider_RunReleasesOnError(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	boom := errors.New("boom")

	err := provider.Run(context.Background(), func(ctx context.Context, s *database.Session) error {
		require.NoError(t, s.Add(&domain.Product{Name: "Pen", Price: 100}))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, provider.OpenSessions())
	assert.Zero(t, countProducts(t, provider))
}

func TestSession_EchoLogsStatements(t *testing.T) {
	pool := databasetest.NewPool(t)
	var buf bytes.Buffer
	provider := database.NewProvider(pool.DB(), true, logger.New(logger.InfoLevel, &buf, false))

	err := provider.Run(context.Background(), func(ctx context.Context, s *database.Session) error {
		if err := s.Add(&domain.Product{Name: "Pen", Price: 100}); err != nil {
			return err
		}
		return s.Commit(ctx)
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "INSERT INTO products")
	assert.Contains(t, buf.String(), "COMMIT")
}

func TestSession_CommitErrorResetsKeys(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	provider := database.NewProvider(sqlx.NewDb(mockDB, "sqlmock"), false, logger.Nop())
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Pen", "Blue pen", 100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	s, err := provider.Acquire(ctx)
	require.NoError(t, err)
	defer s.Close()

	p := &domain.Product{Name: "Pen", Description: "Blue pen", Price: 100}
	require.NoError(t, s.Add(p))

	err = s.Commit(ctx)
	assert.EqualError(t, err, "disk full")
	assert.Zero(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_BeginFailureIsConnectionError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	provider := database.NewProvider(sqlx.NewDb(mockDB, "sqlmock"), false, logger.Nop())
	ctx := context.Background()

	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	s, err := provider.Acquire(ctx)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, &domain.Product{}, 1)
	var connErr *domain.ConnectionError
	assert.ErrorAs(t, err, &connErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_ExecuteReadsInsideTransaction(t *testing.T) {
	provider, _ := databasetest.NewProvider(t)
	ctx := context.Background()

	s, err := provider.Acquire(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Add(&domain.Product{Name: "Pen", Description: "Blue pen", Price: 100}))
	require.NoError(t, s.Add(&domain.Product{Name: "Ink", Price: 20}))
	require.NoError(t, s.Commit(ctx))

	// staged but not committed: invisible to the cursor
	require.NoError(t, s.Add(&domain.Product{Name: "Cup", Price: 5}))

	rows, err := s.Execute(ctx, "SELECT id, name, description, price FROM products WHERE price >= ? ORDER BY id", 10)
	require.NoError(t, err)

	var got []domain.Product
	for rows.Next() {
		var p domain.Product
		require.NoError(t, rows.StructScan(&p))
		got = append(got, p)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())

	assert.Equal(t, []domain.Product{
		{ID: 1, Name: "Pen", Description: "Blue pen", Price: 100},
		{ID: 2, Name: "Ink", Price: 20},
	}, got)

	rows, err = s.Execute(ctx, "SELECT COUNT(*) FROM products")
	require.NoError(t, err)
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	require.NoError(t, rows.Close())
	assert.Equal(t, 2, n)

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())

	_, err = s.Execute(ctx, "SELECT 1")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.Equal(t, 2, countProducts(t, provider))
}
