package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/MdAmzadAli/skillArena/internal/middleware"
	"github.com/MdAmzadAli/skillArena/internal/model"
	"github.com/MdAmzadAli/skillArena/internal/service"
	"github.com/MdAmzadAli/skillArena/internal/store"
)

type VoteHandler struct {
	svc *service.VoteService
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Cast handles POST /api/videos/:videoId/vote
func (h *VoteHandler) Cast(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if req.VoteType == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", "voteType is required")
	}

	resp, err := h.svc.Cast(c.Context(), middleware.UserID(c), videoID, req.VoteType)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_VOTE_TYPE", verr.Message)
		case errors.Is(err, store.ErrNotFound):
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		}
		middleware.Logger.Error().Err(err).Msg("vote: cast failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit vote")
	}

	if resp.Vote != nil {
		Metrics.VotesTotal.WithLabelValues(string(resp.Vote.VoteType)).Inc()
	} else {
		Metrics.VotesTotal.WithLabelValues("retracted").Inc()
	}
	return c.JSON(resp)
}

// Current handles GET /api/videos/:videoId/vote
func (h *VoteHandler) Current(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	vote, err := h.svc.Current(c.Context(), middleware.UserID(c), videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		}
		middleware.Logger.Error().Err(err).Msg("vote: lookup failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up vote")
	}

	// A missing vote is an empty result, not an error.
	return c.JSON(fiber.Map{"vote": vote})
}
