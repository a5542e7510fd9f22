package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/gate-boarding/internal/config"
	"github.com/iliyamo/gate-boarding/internal/handler"
	"github.com/iliyamo/gate-boarding/internal/middleware"
)

// RegisterBoarding registers every session-scoped boarding endpoint
// under /v1.  All routes require a valid device token; the rate limiter
// throttles per device so one misbehaving scanner cannot starve the
// gate.  The read-only stats endpoint additionally goes through the
// Redis response cache, which keeps the polling devices off the
// database between roster changes.
func RegisterBoarding(e *echo.Echo, s *handler.SessionHandler, sc *handler.ScanHandler, p *handler.PassengerHandler, w *handler.WatchlistHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.DeviceAuth(jwtSecret),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	// session lifecycle
	g.POST("/sessions", s.Create)
	g.GET("/sessions/:id", s.Get)
	g.POST("/sessions/:id/finish", s.Finish)
	g.GET("/sessions/:id/export", s.Export)

	// stats and roster are polled by every device; cache both briefly
	respCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	g.GET("/sessions/:id/stats", s.Stats, respCache)

	// scan intake
	g.POST("/sessions/:id/scans", sc.Submit)
	g.POST("/sessions/:id/scans/evaluate", sc.Evaluate)
	g.POST("/sessions/:id/passengers", sc.ManualEntry)

	// roster and lifecycle after acceptance
	g.GET("/sessions/:id/passengers", p.List, respCache)
	g.POST("/sessions/:id/passengers/:pid/offload", p.Offload)
	g.POST("/sessions/:id/passengers/:pid/searched", p.MarkSearched)

	// watchlist management
	g.POST("/sessions/:id/watchlist", w.Add)
	g.GET("/sessions/:id/watchlist", w.List)
	g.DELETE("/sessions/:id/watchlist/:wid", w.Remove)
}
