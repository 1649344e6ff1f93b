//go:build integration

package storefront_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront/internal/api"
	"storefront/internal/database"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/validation"
	sqldb "storefront/pkg/database"
	"storefront/pkg/logger"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("app"),
		postgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

type stack struct {
	handler  http.Handler
	provider *database.Provider
	pool     *sqldb.Pool
}

func newStack(t *testing.T, url string) *stack {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	pool, err := sqldb.Open(ctx, sqldb.Options{URL: url, MaxOpenConns: 5}, log)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, database.NewMigrationService(pool.DB(), pool.Dialect(), log).RunMigrations(ctx))

	provider := database.NewProvider(pool.DB(), false, log)
	v := validation.New()
	handlers := api.Handlers{
		Products: api.NewProductHandler(
			service.NewProductService(repository.NewProductRepository(log), log), v, log),
		Users: api.NewUserHandler(
			service.NewUserService(
				repository.NewUserRepository(log),
				repository.NewProfileRepository(log),
				repository.NewPostRepository(log),
				log,
			), v, log),
		Items:  api.NewItemHandler(),
		Health: api.NewHealthHandler(pool, provider, nil, "integration", log),
	}

	return &stack{
		handler:  api.NewRouter(api.RouterConfig{Prefix: "/api/v1"}, handlers, provider, log),
		provider: provider,
		pool:     pool,
	}
}

func (s *stack) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Zero(t, s.provider.OpenSessions(), "session leaked by %s %s", method, path)
	return rec
}

func TestPostgres(t *testing.T) {
	url := startPostgres(t)

	drivers := map[string]string{
		"lib/pq": url,
		"pgx":    "pgx://" + strings.TrimPrefix(url, "postgres://"),
	}

	for name, dsn := range drivers {
		t.Run(name, func(t *testing.T) {
			s := newStack(t, dsn)
			suffix := strings.ReplaceAll(name, "/", "")

			t.Run("product lifecycle", func(t *testing.T) { productLifecycle(t, s) })
			t.Run("constraint violations", func(t *testing.T) { constraintViolations(t, s, suffix) })
			t.Run("session rollback", func(t *testing.T) { sessionRollback(t, s) })
			t.Run("readiness", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "").Code)
			})
		})
	}
}

func productLifecycle(t *testing.T, s *stack) {
	rec := s.do(t, http.MethodPost, "/api/v1/products", `{"name":"Lamp","description":"Desk lamp","price":250}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	path := fmt.Sprintf("/api/v1/products/%d", created.ID)

	rec = s.do(t, http.MethodPatch, path, `{"price":300}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"Lamp","description":"Desk lamp","price":300}`, created.ID), rec.Body.String())

	rec = s.do(t, http.MethodPut, path, `{"name":"Lamp XL","price":400}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"Lamp XL","description":"","price":400}`, created.ID), rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, "").Code)
	rec = s.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"detail":"Product %d not found"}`, created.ID), rec.Body.String())
}

func constraintViolations(t *testing.T, s *stack, suffix string) {
	username := "pg_" + suffix
	body := fmt.Sprintf(`{"username":%q}`, username)

	rec := s.do(t, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/v1/users", body).Code)

	profilePath := fmt.Sprintf("/api/v1/users/%d/profile", user.ID)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, profilePath, `{"first_name":"Ada"}`).Code)
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, profilePath, `{"first_name":"Ada"}`).Code)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", user.ID), "").Code)
}

func sessionRollback(t *testing.T, s *stack) {
	ctx := context.Background()

	err := s.provider.Run(ctx, func(ctx context.Context, session *database.Session) error {
		require.NoError(t, session.Add(&domain.Product{Name: "ok", Price: 1}))
		require.NoError(t, session.Add(&domain.Product{Name: "too expensive", Price: 2_000_000}))
		return session.Commit(ctx)
	})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	err = s.provider.Run(ctx, func(ctx context.Context, session *database.Session) error {
		var n int
		found, err := session.One(ctx, &n, "SELECT COUNT(*) FROM products WHERE name = ?", "ok")
		require.True(t, found)
		assert.Zero(t, n)
		return err
	})
	require.NoError(t, err)
}
