package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MdAmzadAli/skillArena/internal/model"
)

// MemoryStore is the map-backed development fallback. A single mutex guards
// all maps; vote casts therefore serialize, which is what the ledger
// invariant needs.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[string]model.User  // by id
	names  map[string]string      // username -> user id
	videos map[string]model.Video // by id
	votes  map[voteKey]model.Vote
	now    func() time.Time
}

type voteKey struct {
	userID  string
	videoID string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]model.User),
		names:  make(map[string]string),
		videos: make(map[string]model.Video),
		votes:  make(map[voteKey]model.Vote),
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source. Tests use this to place records
// on either side of the weekly window boundary.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.names[u.Username]; taken {
		return ErrDuplicateUsername
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = s.now()
	s.users[u.ID] = *u
	s.names[u.Username] = u.ID
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.names[username]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) UsernamesFor(_ context.Context, userIDs []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			names[id] = u.Username
		}
	}
	return names, nil
}

func (s *MemoryStore) CreateVideo(_ context.Context, v *model.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	s.videos[v.ID] = *v
	return nil
}

func (s *MemoryStore) GetVideo(_ context.Context, id string) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (s *MemoryStore) ListVideos(_ context.Context, limit int) ([]model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos := s.sortedVideos()
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

func (s *MemoryStore) ListVideosSince(_ context.Context, since time.Time) ([]model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var videos []model.Video
	for _, v := range s.sortedVideos() {
		if !v.CreatedAt.Before(since) {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// sortedVideos returns all videos newest first. Callers hold s.mu.
func (s *MemoryStore) sortedVideos() []model.Video {
	videos := make([]model.Video, 0, len(s.videos))
	for _, v := range s.videos {
		videos = append(videos, v)
	}
	sort.Slice(videos, func(i, j int) bool {
		if !videos[i].CreatedAt.Equal(videos[j].CreatedAt) {
			return videos[i].CreatedAt.After(videos[j].CreatedAt)
		}
		return videos[i].ID > videos[j].ID
	})
	return videos
}

func (s *MemoryStore) DeleteVideo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[id]; !ok {
		return ErrNotFound
	}
	delete(s.videos, id)
	for k := range s.votes {
		if k.videoID == id {
			delete(s.votes, k)
		}
	}
	return nil
}

// CastVote compares and mutates under the store lock, so casts for the same
// (user, video) pair cannot interleave.
func (s *MemoryStore) CastVote(_ context.Context, userID, videoID string, voteType model.VoteType) (*model.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{userID: userID, videoID: videoID}
	if existing, ok := s.votes[key]; ok && existing.VoteType == voteType {
		delete(s.votes, key)
		return nil, nil
	}

	vote := model.Vote{
		ID:        uuid.NewString(),
		UserID:    userID,
		VideoID:   videoID,
		VoteType:  voteType,
		CreatedAt: s.now(),
	}
	s.votes[key] = vote
	return &vote, nil
}

func (s *MemoryStore) GetVote(_ context.Context, userID, videoID string) (*model.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.votes[voteKey{userID: userID, videoID: videoID}]; ok {
		return &v, nil
	}
	return nil, nil
}

func (s *MemoryStore) VideoTallies(_ context.Context, videoID string) (model.VoteCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tallies(videoID), nil
}

func (s *MemoryStore) TalliesForVideos(_ context.Context, videoIDs []string) (map[string]model.VoteCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]model.VoteCounts, len(videoIDs))
	for _, id := range videoIDs {
		out[id] = s.tallies(id)
	}
	return out, nil
}

// tallies counts votes for one video. Callers hold s.mu.
func (s *MemoryStore) tallies(videoID string) model.VoteCounts {
	var c model.VoteCounts
	for k, v := range s.votes {
		if k.videoID != videoID {
			continue
		}
		switch v.VoteType {
		case model.VoteLike:
			c.Likes++
		case model.VoteDislike:
			c.Dislikes++
		case model.VoteWow:
			c.Wows++
		}
	}
	return c
}
