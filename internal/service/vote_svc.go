package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/MdAmzadAli/skillArena/internal/model"
	"github.com/MdAmzadAli/skillArena/internal/store"
)

// VoteService is the policy layer over the vote ledger: it validates the
// request, delegates the toggle/replace decision to the store's atomic
// CastVote, and returns the resulting vote with fresh tallies.
type VoteService struct {
	store store.Store
	cache *CacheService
	log   zerolog.Logger
}

func NewVoteService(st store.Store, cache *CacheService, log zerolog.Logger) *VoteService {
	return &VoteService{store: st, cache: cache, log: log}
}

// Cast records, replaces, or retracts the user's vote on a video.
// The returned Vote is nil when the cast retracted an existing vote of the
// same type (toggle-off).
func (s *VoteService) Cast(ctx context.Context, userID, videoID string, voteType model.VoteType) (*model.VoteResponse, error) {
	if !model.ValidVoteTypes[voteType] {
		return nil, validationErr("voteType must be one of: like, dislike, wow")
	}

	if _, err := s.store.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}

	vote, err := s.store.CastVote(ctx, userID, videoID, voteType)
	if err != nil {
		return nil, err
	}

	counts, err := s.store.VideoTallies(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFeed(ctx); err != nil {
			s.log.Warn().Err(err).Msg("cache: invalidate feed after vote")
		}
	}

	return &model.VoteResponse{Vote: vote, Votes: counts}, nil
}

// Current returns the user's current vote on a video, or nil when none.
func (s *VoteService) Current(ctx context.Context, userID, videoID string) (*model.Vote, error) {
	if _, err := s.store.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	return s.store.GetVote(ctx, userID, videoID)
}
