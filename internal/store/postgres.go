package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MdAmzadAli/skillArena/internal/model"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore implements Store on pgx. Schema lives in migrations/.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pool for health checks.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		u.ID, u.Username, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE username = $1`, username))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) UsernamesFor(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, username FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (s *PostgresStore) CreateVideo(ctx context.Context, v *model.Video) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO videos (id, user_id, filename, original_name, duration_ms, size, skill_category, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		v.ID, v.UserID, v.Filename, v.OriginalName, v.DurationMs, v.Size,
		v.SkillCategory, v.Description).Scan(&v.CreatedAt)
}

const videoColumns = `id, user_id, filename, original_name, duration_ms, size, skill_category, description, created_at`

func (s *PostgresStore) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	var v model.Video
	err := s.pool.QueryRow(ctx, `
		SELECT `+videoColumns+` FROM videos WHERE id = $1`, id).Scan(
		&v.ID, &v.UserID, &v.Filename, &v.OriginalName, &v.DurationMs,
		&v.Size, &v.SkillCategory, &v.Description, &v.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVideos returns the newest clips first. Feed order is strictly by
// creation time; score never reorders the feed.
func (s *PostgresStore) ListVideos(ctx context.Context, limit int) ([]model.Video, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+videoColumns+` FROM videos
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanVideos(rows)
}

func (s *PostgresStore) ListVideosSince(ctx context.Context, since time.Time) ([]model.Video, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+videoColumns+` FROM videos
		WHERE created_at >= $1
		ORDER BY created_at DESC, id DESC`, since)
	if err != nil {
		return nil, err
	}
	return scanVideos(rows)
}

func scanVideos(rows pgx.Rows) ([]model.Video, error) {
	defer rows.Close()
	var videos []model.Video
	for rows.Next() {
		var v model.Video
		err := rows.Scan(
			&v.ID, &v.UserID, &v.Filename, &v.OriginalName, &v.DurationMs,
			&v.Size, &v.SkillCategory, &v.Description, &v.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (s *PostgresStore) DeleteVideo(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CastVote applies toggle/replace semantics in a single transaction. The
// existing row (if any) is locked with FOR UPDATE so a concurrent cast by the
// same user on the same video blocks until this one commits, and the
// uniqueness constraint on (user_id, video_id) backstops the invariant.
func (s *PostgresStore) CastVote(ctx context.Context, userID, videoID string, voteType model.VoteType) (*model.Vote, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var existing model.VoteType
	err = tx.QueryRow(ctx, `
		SELECT vote_type FROM votes
		WHERE user_id = $1 AND video_id = $2
		FOR UPDATE`,
		userID, videoID).Scan(&existing)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		existing = ""
	case err != nil:
		return nil, err
	}

	if existing == voteType {
		// Same type again: retraction.
		_, err = tx.Exec(ctx, `
			DELETE FROM votes WHERE user_id = $1 AND video_id = $2`,
			userID, videoID)
		if err != nil {
			return nil, err
		}
		return nil, tx.Commit(ctx)
	}

	vote := &model.Vote{
		ID:       uuid.NewString(),
		UserID:   userID,
		VideoID:  videoID,
		VoteType: voteType,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO votes (id, user_id, video_id, vote_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, video_id) DO UPDATE
		SET id = EXCLUDED.id, vote_type = EXCLUDED.vote_type, created_at = NOW()
		RETURNING created_at`,
		vote.ID, userID, videoID, string(voteType)).Scan(&vote.CreatedAt)
	if err != nil {
		return nil, err
	}

	return vote, tx.Commit(ctx)
}

func (s *PostgresStore) GetVote(ctx context.Context, userID, videoID string) (*model.Vote, error) {
	var v model.Vote
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, video_id, vote_type, created_at
		FROM votes WHERE user_id = $1 AND video_id = $2`,
		userID, videoID).Scan(&v.ID, &v.UserID, &v.VideoID, &v.VoteType, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PostgresStore) VideoTallies(ctx context.Context, videoID string) (model.VoteCounts, error) {
	var c model.VoteCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE vote_type = 'like'),
			COUNT(*) FILTER (WHERE vote_type = 'dislike'),
			COUNT(*) FILTER (WHERE vote_type = 'wow')
		FROM votes WHERE video_id = $1`,
		videoID).Scan(&c.Likes, &c.Dislikes, &c.Wows)
	return c, err
}

func (s *PostgresStore) TalliesForVideos(ctx context.Context, videoIDs []string) (map[string]model.VoteCounts, error) {
	tallies := make(map[string]model.VoteCounts, len(videoIDs))
	if len(videoIDs) == 0 {
		return tallies, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT video_id,
			COUNT(*) FILTER (WHERE vote_type = 'like'),
			COUNT(*) FILTER (WHERE vote_type = 'dislike'),
			COUNT(*) FILTER (WHERE vote_type = 'wow')
		FROM votes
		WHERE video_id = ANY($1)
		GROUP BY video_id`, videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var c model.VoteCounts
		if err := rows.Scan(&id, &c.Likes, &c.Dislikes, &c.Wows); err != nil {
			return nil, err
		}
		tallies[id] = c
	}
	return tallies, rows.Err()
}
