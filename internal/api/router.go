package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/api/middleware"
	"storefront/internal/database"
	"storefront/pkg/logger"
)

type RouterConfig struct {
	// Prefix mounts the resource routes, e.g. "/api/v1". Health and metrics stay at the root.
	Prefix    string
	RateLimit *middleware.RateLimiter
}

type Handlers struct {
	Products *ProductHandler
	Users    *UserHandler
	Items    *ItemHandler
	Health   *HealthHandler
}

func NewRouter(cfg RouterConfig, h Handlers, provider *database.Provider, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging(log))

	if h.Health != nil {
		h.Health.RegisterRoutes(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit.Handler)
		}
		r.Use(middleware.SessionScope(provider, log))

		mount := func(r chi.Router) {
			h.Products.RegisterRoutes(r)
			h.Users.RegisterRoutes(r)
			h.Items.RegisterRoutes(r)
		}

		if cfg.Prefix == "" || cfg.Prefix == "/" {
			mount(r)
		} else {
			r.Route(cfg.Prefix, mount)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed"})
	})

	return r
}
