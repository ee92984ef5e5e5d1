package model

import "time"

// VoteType is the kind of reaction a user casts on a clip.
type VoteType string

const (
	VoteLike    VoteType = "like"
	VoteDislike VoteType = "dislike"
	VoteWow     VoteType = "wow"
)

// ValidVoteTypes are the accepted voteType values.
var ValidVoteTypes = map[VoteType]bool{
	VoteLike:    true,
	VoteDislike: true,
	VoteWow:     true,
}

// Vote represents a user's current reaction to a video. At most one vote
// exists per (UserID, VideoID) pair at any time.
type Vote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	VoteType  VoteType  `json:"voteType"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoteCounts are the aggregated tallies for a single video.
type VoteCounts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
	Wows     int `json:"wows"`
}

// Score is the derived video score: likes + wows - dislikes. Signed; goes
// negative when dislikes dominate.
func (c VoteCounts) Score() int {
	return c.Likes + c.Wows - c.Dislikes
}

// Total is the number of votes of any type.
func (c VoteCounts) Total() int {
	return c.Likes + c.Dislikes + c.Wows
}

// VoteRequest is the API request body for casting a vote.
type VoteRequest struct {
	VoteType VoteType `json:"voteType"`
}

// VoteResponse is the API response after casting a vote. Vote is null when
// the cast retracted an existing vote of the same type.
type VoteResponse struct {
	Vote  *Vote      `json:"vote"`
	Votes VoteCounts `json:"votes"`
}
