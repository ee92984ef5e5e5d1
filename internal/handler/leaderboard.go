package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/MdAmzadAli/skillArena/internal/middleware"
	"github.com/MdAmzadAli/skillArena/internal/service"
)

type LeaderboardHandler struct {
	svc   *service.ScoreService
	cache *service.CacheService
}

func NewLeaderboardHandler(svc *service.ScoreService, cache *service.CacheService) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc, cache: cache}
}

// Get handles GET /api/leaderboard. The cache key carries the week start, so
// a board computed before Monday midnight can never be served after it.
func (h *LeaderboardHandler) Get(c fiber.Ctx) error {
	weekStart := h.svc.WeekStart()

	if cached, err := h.cache.GetLeaderboard(c.Context(), weekStart); err == nil && cached != nil {
		Metrics.CacheHits.Inc()
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(cached)
	}
	Metrics.CacheMisses.Inc()

	start := time.Now()
	board, err := h.svc.Leaderboard(c.Context())
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("leaderboard: query failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load leaderboard")
	}
	Metrics.LeaderboardDuration.Observe(time.Since(start).Seconds())

	if err := h.cache.SetLeaderboard(c.Context(), weekStart, board); err != nil {
		middleware.Logger.Warn().Err(err).Msg("leaderboard: cache write failed")
	}
	return c.JSON(board)
}
