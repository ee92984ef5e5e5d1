package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/MdAmzadAli/skillArena/internal/middleware"
	"github.com/MdAmzadAli/skillArena/internal/model"
	"github.com/MdAmzadAli/skillArena/internal/service"
	"github.com/MdAmzadAli/skillArena/internal/store"
)

type VideoHandler struct {
	svc   *service.VideoService
	cache *service.CacheService
}

func NewVideoHandler(svc *service.VideoService, cache *service.CacheService) *VideoHandler {
	return &VideoHandler{svc: svc, cache: cache}
}

// Feed handles GET /api/videos
func (h *VideoHandler) Feed(c fiber.Ctx) error {
	limit := fiber.Query[int](c, "limit")

	if cacheableFeed(limit) {
		if cached, err := h.cache.GetFeed(c.Context()); err == nil && cached != nil {
			Metrics.CacheHits.Inc()
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}
		Metrics.CacheMisses.Inc()
	}

	feed, err := h.svc.Feed(c.Context(), limit)
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("feed: query failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load feed")
	}
	if feed == nil {
		feed = []model.VideoResponse{}
	}

	if cacheableFeed(limit) {
		if err := h.cache.SetFeed(c.Context(), feed); err != nil {
			middleware.Logger.Warn().Err(err).Msg("feed: cache write failed")
		}
	}
	return c.JSON(feed)
}

// cacheableFeed reports whether a request can be served from or stored to
// the shared feed cache. Only the default page is cached; an explicit limit
// bypasses it so a small request never receives the full cached page.
func cacheableFeed(limit int) bool {
	return limit <= 0
}

// Upload handles POST /api/videos (authenticated, multipart)
func (h *VideoHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		Metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FILE", "video file is required")
	}

	category, errMsg := middleware.ValidateCategory(c.FormValue("skillCategory"))
	if errMsg != "" {
		Metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	durationMs, err := strconv.Atoi(c.FormValue("duration"))
	if err != nil {
		Metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "duration (ms) is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		Metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
	}
	defer file.Close()

	meta := model.UploadMetadata{
		OriginalName:  fileHeader.Filename,
		ContentType:   fileHeader.Header.Get("Content-Type"),
		Size:          fileHeader.Size,
		DurationMs:    durationMs,
		SkillCategory: category,
		Description:   middleware.ValidateDescription(c.FormValue("description")),
	}

	video, err := h.svc.Upload(c.Context(), middleware.UserID(c), meta, file)
	if err != nil {
		Metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_FAILED", verr.Message)
		}
		middleware.Logger.Error().Err(err).Msg("upload: failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload video")
	}

	Metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	return c.Status(fiber.StatusCreated).JSON(video)
}

// Stream handles GET /api/videos/:videoId/stream
func (h *VideoHandler) Stream(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	video, rc, err := h.svc.Open(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		}
		middleware.Logger.Error().Err(err).Msg("stream: open failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to stream video")
	}

	c.Set(fiber.HeaderContentType, contentTypeFor(video.Filename))
	return c.SendStream(rc, int(video.Size))
}

func contentTypeFor(key string) string {
	switch {
	case len(key) > 4 && key[len(key)-4:] == ".mov":
		return "video/quicktime"
	case len(key) > 4 && key[len(key)-4:] == ".avi":
		return "video/x-msvideo"
	default:
		return "video/mp4"
	}
}
