package model

import "time"

// Clip length and upload limits.
const (
	MaxDurationMs = 5000
	MaxUploadSize = 50 << 20 // 50MB
)

// Video represents an uploaded skill clip. The stored object and the record
// are created together; neither exists without the other.
type Video struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Filename      string    `json:"-"` // object storage key
	OriginalName  string    `json:"originalName"`
	DurationMs    int       `json:"duration"`
	Size          int64     `json:"size"`
	SkillCategory string    `json:"skillCategory"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// VideoResponse is a feed entry: the clip plus its aggregated vote counts
// and derived score.
type VideoResponse struct {
	Video
	Username string     `json:"username,omitempty"`
	Votes    VoteCounts `json:"votes"`
	Score    int        `json:"score"`
}

// UploadMetadata carries the client-declared fields of a multipart upload.
type UploadMetadata struct {
	OriginalName  string
	ContentType   string
	Size          int64
	DurationMs    int
	SkillCategory string
	Description   string
}

// LeaderboardEntry is one row of the weekly leaderboard.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	SkillCategory string `json:"skillCategory"`
	TotalScore    int    `json:"totalScore"`
	TotalVotes    int    `json:"totalVotes"`
}

// LeaderboardResponse is the API response for GET /api/leaderboard.
type LeaderboardResponse struct {
	WeekStart string             `json:"weekStart"`
	Entries   []LeaderboardEntry `json:"entries"`
}
