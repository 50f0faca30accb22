// Package router registers the HTTP routes of the booking API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/game-ticket-booking/internal/config"
	"github.com/iliyamo/game-ticket-booking/internal/handler"
	"github.com/iliyamo/game-ticket-booking/internal/middleware"
)

// Deps bundles what the routes need.  Redis may be nil, in which case
// caching and rate limiting are disabled.
type Deps struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
	DB        handler.Pinger

	Public   *handler.PublicHandler
	Customer *handler.CustomerHandler
	Auth     *handler.AuthHandler
}

// RegisterRoutes registers every route of the API on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	RegisterPublic(e, d)
	RegisterCustomer(e, d)
	if d.Config.Env == "dev" {
		e.POST("/v1/auth/dev-token", d.Auth.DevToken)
	}
}

// RegisterPublic registers the unauthenticated browse endpoints.  They are
// rate limited per client; only the game listing is cached because
// availability must always reflect the ledger.
func RegisterPublic(e *echo.Echo, d Deps) {
	g := e.Group("/v1", middleware.NewTokenBucket(d.RateLimit, d.Redis))
	g.GET("/games", d.Public.ListGames, middleware.NewRedisCache(d.Cache, d.Redis))
	g.GET("/games/:id", d.Public.GetGame)
	g.GET("/games/:id/availability", d.Public.GetAvailability)
}

// RegisterCustomer registers the endpoints that act on behalf of the
// signed-in user.  All require a valid JWT; purchase and cancel draw from
// the smaller booking bucket.
func RegisterCustomer(e *echo.Echo, d Deps) {
	g := e.Group("/v1",
		middleware.JWTAuth(d.Config.JWTSecret),
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
	)
	booking := middleware.NewBookingTokenBucket(d.RateLimit, d.Redis)

	g.POST("/games/:id/purchase", d.Customer.Purchase, booking)
	g.GET("/purchases", d.Customer.ListPurchases)
	g.GET("/purchases/:id", d.Customer.GetPurchase)
	g.POST("/purchases/:id/cancel", d.Customer.CancelPurchase, booking)
	g.GET("/me", d.Auth.Me)
}
