package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/MdAmzadAli/skillArena/internal/handler"
	"github.com/MdAmzadAli/skillArena/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Video       *handler.VideoHandler
	Vote        *handler.VoteHandler
	Leaderboard *handler.LeaderboardHandler
	Health      *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins, sessionSecret string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics (before API group, no auth needed)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	requireAuth := middleware.RequireAuth(sessionSecret)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	authLimit := middleware.NewAuthRateLimiter().Handler()
	auth.Post("/register", h.Auth.Register, authLimit)
	auth.Post("/login", h.Auth.Login, authLimit)
	auth.Post("/logout", h.Auth.Logout)
	auth.Get("/me", h.Auth.Me, requireAuth)

	// Video routes
	feedLimit := middleware.NewFeedRateLimiter().Handler()
	api.Get("/videos", h.Video.Feed, feedLimit)
	api.Post("/videos", h.Video.Upload, requireAuth, middleware.NewUploadRateLimiter().Handler())
	api.Get("/videos/:videoId/stream", h.Video.Stream, feedLimit)

	// Vote routes
	voteLimit := middleware.NewVoteRateLimiter().Handler()
	api.Post("/videos/:videoId/vote", h.Vote.Cast, requireAuth, voteLimit)
	api.Get("/videos/:videoId/vote", h.Vote.Current, requireAuth, voteLimit)

	// Leaderboard
	api.Get("/leaderboard", h.Leaderboard.Get, middleware.NewLeaderboardRateLimiter().Handler())
}
