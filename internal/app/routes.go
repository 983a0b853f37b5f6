package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/simp-lee/genbot/internal/config"
	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/middleware"
	"github.com/simp-lee/genbot/internal/pkg"
)

const healthTimeout = time.Second

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	// Redis is nil when the history cache lives in process memory.
	Redis Pinger
	// Verifier is nil when auth is disabled; every group is then open.
	Verifier  middleware.TokenVerifier
	StartedAt time.Time
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	r.GET("/health", healthHandler(deps.DB, deps.Redis, deps.StartedAt))

	public := r.Group("/api/v1")
	protected := r.Group("/api/v1")
	admin := r.Group("/api/v1")
	if deps.Verifier != nil {
		protected.Use(middleware.Auth(deps.Verifier))
		admin.Use(middleware.Auth(deps.Verifier), middleware.RequireRole(domain.RoleAdmin))
	}

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(public, protected, admin)
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Redis  string `json:"redis"`
	Uptime int64  `json:"uptime"`
}

// healthHandler pings the database and the Redis cache in parallel. A down
// database answers 503; a down cache only degrades the status.
func healthHandler(db *gorm.DB, redis Pinger, startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", DB: "ok", Redis: "disabled"}
		if redis != nil {
			resp.Redis = "ok"
		}

		var g errgroup.Group
		g.Go(func() error {
			if db == nil || config.PingDatabase(ctx, db) != nil {
				resp.DB = "down"
			}
			return nil
		})
		if redis != nil {
			g.Go(func() error {
				if redis.Ping(ctx) != nil {
					resp.Redis = "down"
				}
				return nil
			})
		}
		_ = g.Wait()

		code := http.StatusOK
		if resp.DB != "ok" {
			code = http.StatusServiceUnavailable
		}
		if resp.DB != "ok" || resp.Redis == "down" {
			resp.Status = "degraded"
		}
		if !startedAt.IsZero() {
			resp.Uptime = int64(time.Since(startedAt) / time.Second)
		}
		c.JSON(code, resp)
	}
}

// noRouteHandler answers unknown routes with the standard JSON error body.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.ErrorResponse{Error: pkg.ErrorDetail{
			Code:      domain.ErrorCodeName(domain.ErrNotFound),
			Message:   fmt.Sprintf("%s %s not found", c.Request.Method, c.Request.URL.Path),
			RequestID: middleware.GetRequestID(c),
		}})
	}
}
