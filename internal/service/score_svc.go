package service

import (
	"context"
	"sort"
	"time"

	"github.com/MdAmzadAli/skillArena/internal/model"
	"github.com/MdAmzadAli/skillArena/internal/store"
)

// LeaderboardSize is the number of entries the weekly leaderboard reports.
const LeaderboardSize = 10

// ScoreService computes per-video scores and the weekly leaderboard. All
// arithmetic is integer; a video score is likes + wows - dislikes and a
// user's weekly total is the sum over their in-window videos.
type ScoreService struct {
	store store.Store
	now   func() time.Time
}

func NewScoreService(st store.Store) *ScoreService {
	return &ScoreService{store: st, now: time.Now}
}

// SetClock overrides the wall clock (tests pin it near week boundaries).
func (s *ScoreService) SetClock(now func() time.Time) {
	s.now = now
}

// StartOfWeek returns Monday 00:00:00.000 of the week containing t, in t's
// location. time.Weekday puts Sunday at 0, so Sunday maps to 6 days after
// the preceding Monday.
func StartOfWeek(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -daysSinceMonday).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the current weekly window's start instant. Derived per
// call: the boundary shifts at each Monday midnight and results must never
// straddle it.
func (s *ScoreService) WeekStart() time.Time {
	return StartOfWeek(s.now())
}

// Leaderboard returns the top creators of the current week, ranked by total
// score. Videos created at exactly the week start are included; anything
// earlier is not.
func (s *ScoreService) Leaderboard(ctx context.Context) (*model.LeaderboardResponse, error) {
	weekStart := s.WeekStart()

	videos, err := s.store.ListVideosSince(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	tallies, err := s.store.TalliesForVideos(ctx, ids)
	if err != nil {
		return nil, err
	}

	owners := make([]string, 0, len(videos))
	seen := make(map[string]bool, len(videos))
	for _, v := range videos {
		if !seen[v.UserID] {
			seen[v.UserID] = true
			owners = append(owners, v.UserID)
		}
	}
	usernames, err := s.store.UsernamesFor(ctx, owners)
	if err != nil {
		return nil, err
	}

	entries := rankCreators(videos, tallies, usernames)
	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}

	return &model.LeaderboardResponse{
		WeekStart: weekStart.Format(time.RFC3339),
		Entries:   entries,
	}, nil
}

// creatorAgg accumulates one user's in-window videos.
type creatorAgg struct {
	userID     string
	totalScore int
	totalVotes int
	// best in-window video decides the reported skillCategory:
	// highest score first, newest on equal score.
	bestScore   int
	bestCreated time.Time
	bestSet     bool
	category    string
}

// rankCreators groups videos by owner, sums scores and vote totals, and
// returns ranked entries: total score descending, ties broken by username
// ascending so the ordering is deterministic.
func rankCreators(videos []model.Video, tallies map[string]model.VoteCounts, usernames map[string]string) []model.LeaderboardEntry {
	aggs := make(map[string]*creatorAgg)
	for _, v := range videos {
		counts := tallies[v.ID]
		score := counts.Score()

		agg, ok := aggs[v.UserID]
		if !ok {
			agg = &creatorAgg{userID: v.UserID}
			aggs[v.UserID] = agg
		}
		agg.totalScore += score
		agg.totalVotes += counts.Total()

		if !agg.bestSet || score > agg.bestScore ||
			(score == agg.bestScore && v.CreatedAt.After(agg.bestCreated)) {
			agg.bestSet = true
			agg.bestScore = score
			agg.bestCreated = v.CreatedAt
			agg.category = v.SkillCategory
		}
	}

	entries := make([]model.LeaderboardEntry, 0, len(aggs))
	for _, agg := range aggs {
		entries = append(entries, model.LeaderboardEntry{
			UserID:        agg.userID,
			Username:      usernames[agg.userID],
			SkillCategory: agg.category,
			TotalScore:    agg.totalScore,
			TotalVotes:    agg.totalVotes,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
