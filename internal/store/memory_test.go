package store

import (
	"context"
	"errors"
	"testing"

	"github.com/MdAmzadAli/skillArena/internal/model"
)

func seed(t *testing.T) (*MemoryStore, string, string) {
	t.Helper()
	st := NewMemoryStore()
	ctx := context.Background()

	u := &model.User{Username: "alice", PasswordHash: "x"}
	if err := st.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	v := &model.Video{
		UserID:        u.ID,
		Filename:      "clip.mp4",
		OriginalName:  "handstand.mp4",
		DurationMs:    4200,
		Size:          1 << 20,
		SkillCategory: "handstands",
	}
	if err := st.CreateVideo(ctx, v); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return st, u.ID, v.ID
}

// countVotes returns how many vote rows exist for the pair, via tallies.
func countVotes(t *testing.T, st *MemoryStore, videoID string) int {
	t.Helper()
	c, err := st.VideoTallies(context.Background(), videoID)
	if err != nil {
		t.Fatalf("tallies: %v", err)
	}
	return c.Total()
}

func TestCastVote_AtMostOnePerPair(t *testing.T) {
	st, userID, videoID := seed(t)
	ctx := context.Background()

	sequence := []model.VoteType{
		model.VoteLike, model.VoteWow, model.VoteDislike,
		model.VoteDislike, model.VoteLike,
	}
	for _, vt := range sequence {
		if _, err := st.CastVote(ctx, userID, videoID, vt); err != nil {
			t.Fatalf("cast %s: %v", vt, err)
		}
		if n := countVotes(t, st, videoID); n > 1 {
			t.Fatalf("after casting %s: %d votes for pair, want at most 1", vt, n)
		}
	}
}

func TestCastVote_ToggleIdempotence(t *testing.T) {
	st, userID, videoID := seed(t)
	ctx := context.Background()

	// First cast creates.
	vote, err := st.CastVote(ctx, userID, videoID, model.VoteLike)
	if err != nil {
		t.Fatalf("first cast: %v", err)
	}
	if vote == nil || vote.VoteType != model.VoteLike {
		t.Fatalf("first cast returned %+v, want a like", vote)
	}

	// Second identical cast retracts.
	vote, err = st.CastVote(ctx, userID, videoID, model.VoteLike)
	if err != nil {
		t.Fatalf("second cast: %v", err)
	}
	if vote != nil {
		t.Errorf("second cast returned %+v, want nil (retraction)", vote)
	}
	if n := countVotes(t, st, videoID); n != 0 {
		t.Errorf("after toggle-off: %d votes, want 0", n)
	}

	// Third identical cast re-creates.
	vote, err = st.CastVote(ctx, userID, videoID, model.VoteLike)
	if err != nil {
		t.Fatalf("third cast: %v", err)
	}
	if vote == nil {
		t.Fatal("third cast returned nil, want a re-created vote")
	}
	if n := countVotes(t, st, videoID); n != 1 {
		t.Errorf("after re-cast: %d votes, want 1", n)
	}
}

func TestCastVote_ReplaceChangesType(t *testing.T) {
	st, userID, videoID := seed(t)
	ctx := context.Background()

	if _, err := st.CastVote(ctx, userID, videoID, model.VoteLike); err != nil {
		t.Fatalf("cast like: %v", err)
	}
	vote, err := st.CastVote(ctx, userID, videoID, model.VoteWow)
	if err != nil {
		t.Fatalf("cast wow: %v", err)
	}
	if vote == nil || vote.VoteType != model.VoteWow {
		t.Fatalf("replacement returned %+v, want a wow", vote)
	}

	counts, err := st.VideoTallies(ctx, videoID)
	if err != nil {
		t.Fatalf("tallies: %v", err)
	}
	if counts.Likes != 0 || counts.Wows != 1 {
		t.Errorf("tallies = %+v, want 0 likes / 1 wow", counts)
	}

	current, err := st.GetVote(ctx, userID, videoID)
	if err != nil {
		t.Fatalf("get vote: %v", err)
	}
	if current == nil || current.VoteType != model.VoteWow {
		t.Errorf("current vote = %+v, want wow", current)
	}
}

func TestGetVote_MissIsNilNotError(t *testing.T) {
	st, userID, videoID := seed(t)

	vote, err := st.GetVote(context.Background(), userID, videoID)
	if err != nil {
		t.Fatalf("get vote: %v", err)
	}
	if vote != nil {
		t.Errorf("got %+v, want nil for missing vote", vote)
	}
}

func TestVideoTallies_ZeroWhenNoVotes(t *testing.T) {
	st, _, videoID := seed(t)

	counts, err := st.VideoTallies(context.Background(), videoID)
	if err != nil {
		t.Fatalf("tallies: %v", err)
	}
	if counts != (model.VoteCounts{}) {
		t.Errorf("tallies = %+v, want all zero", counts)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	st, _, _ := seed(t)

	err := st.CreateUser(context.Background(), &model.User{Username: "alice", PasswordHash: "y"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("got %v, want ErrDuplicateUsername", err)
	}
}

func TestDeleteVideo_RemovesVotes(t *testing.T) {
	st, userID, videoID := seed(t)
	ctx := context.Background()

	if _, err := st.CastVote(ctx, userID, videoID, model.VoteLike); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if err := st.DeleteVideo(ctx, videoID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	if _, err := st.GetVideo(ctx, videoID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted video: got %v, want ErrNotFound", err)
	}
	vote, err := st.GetVote(ctx, userID, videoID)
	if err != nil || vote != nil {
		t.Errorf("vote after video delete = %+v (err %v), want nil", vote, err)
	}
}
