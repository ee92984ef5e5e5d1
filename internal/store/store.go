// Package store defines the persistence capability set behind the API and
// its two implementations: Postgres for deployments and an in-memory map
// store used for development and tests. The backend is selected once at
// process start and injected everywhere.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/MdAmzadAli/skillArena/internal/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when registering an already-taken username.
	ErrDuplicateUsername = errors.New("username already taken")
)

// Store is the full capability set the services depend on.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UsernamesFor(ctx context.Context, userIDs []string) (map[string]string, error)

	// Videos
	CreateVideo(ctx context.Context, v *model.Video) error
	GetVideo(ctx context.Context, id string) (*model.Video, error)
	ListVideos(ctx context.Context, limit int) ([]model.Video, error)
	ListVideosSince(ctx context.Context, since time.Time) ([]model.Video, error)
	DeleteVideo(ctx context.Context, id string) error

	// Votes. CastVote enforces the at-most-one-vote-per-(user,video)
	// invariant atomically: no existing vote inserts one, an existing vote
	// of the same type retracts it (returns nil), a different type replaces
	// it. The toggle/replace comparison happens inside the same transaction
	// or lock that mutates the row, so concurrent casts by the same user on
	// the same video serialize instead of racing.
	CastVote(ctx context.Context, userID, videoID string, voteType model.VoteType) (*model.Vote, error)
	// GetVote returns the caller's current vote, or nil (not an error) when
	// none exists.
	GetVote(ctx context.Context, userID, videoID string) (*model.Vote, error)
	VideoTallies(ctx context.Context, videoID string) (model.VoteCounts, error)
	TalliesForVideos(ctx context.Context, videoIDs []string) (map[string]model.VoteCounts, error)

	Close()
}
