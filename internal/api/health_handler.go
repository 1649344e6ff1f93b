package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"storefront/internal/database"
	sqldb "storefront/pkg/database"
	"storefront/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	pool     *sqldb.Pool
	provider *database.Provider
	redis    *redis.Client
	version  string
	logger   logger.Logger
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
	Version   string                 `json:"version"`
}

// NewHealthHandler builds the health endpoints. redisClient may be nil when caching is disabled.
func NewHealthHandler(pool *sqldb.Pool, provider *database.Provider, redisClient *redis.Client, version string, logger logger.Logger) *HealthHandler {
	return &HealthHandler{
		pool:     pool,
		provider: provider,
		redis:    redisClient,
		version:  version,
		logger:   logger,
	}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/health/live", h.LivenessCheck)
	r.Get("/health/ready", h.ReadinessCheck)
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	services := map[string]interface{}{
		"database": h.checkDatabaseHealth(ctx),
		"sessions": h.provider.Stats(),
	}
	if h.redis != nil {
		services["redis"] = h.checkRedisHealth(ctx)
	}

	status := "healthy"
	for _, service := range services {
		if serviceMap, ok := service.(map[string]interface{}); ok {
			if serviceStatus, exists := serviceMap["status"]; exists && serviceStatus != "healthy" {
				status = "degraded"
				break
			}
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
		Version:   h.version,
	})
}

func (h *HealthHandler) checkDatabaseHealth(ctx context.Context) map[string]interface{} {
	if err := h.pool.Ping(ctx); err != nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	}

	stats := h.pool.Stats()
	stats["status"] = "healthy"
	return stats
}

func (h *HealthHandler) checkRedisHealth(ctx context.Context) map[string]interface{} {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	}

	poolStats := h.redis.PoolStats()
	return map[string]interface{}{
		"status":      "healthy",
		"hits":        poolStats.Hits,
		"misses":      poolStats.Misses,
		"timeouts":    poolStats.Timeouts,
		"total_conns": poolStats.TotalConns,
		"idle_conns":  poolStats.IdleConns,
	}
}

func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// ReadinessCheck only passes once a session can actually be acquired.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	issues := make([]string, 0)

	err := h.provider.Run(ctx, func(ctx context.Context, s *database.Session) error {
		var one int
		_, err := s.One(ctx, &one, "SELECT 1")
		return err
	})
	if err != nil {
		issues = append(issues, "database: "+err.Error())
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			issues = append(issues, "redis: "+err.Error())
		}
	}

	response := map[string]interface{}{
		"timestamp": time.Now(),
	}

	if len(issues) == 0 {
		response["status"] = "ready"
		writeJSON(w, http.StatusOK, response)
		return
	}

	h.logger.WarnContext(ctx, "Servis hazır değil", map[string]interface{}{"issues": issues})
	response["status"] = "not_ready"
	response["issues"] = issues
	writeJSON(w, http.StatusServiceUnavailable, response)
}
