package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MdAmzadAli/skillArena/internal/model"
	"github.com/MdAmzadAli/skillArena/internal/storage"
	"github.com/MdAmzadAli/skillArena/internal/store"
)

// allowedTypes maps accepted MIME types to the stored file extension.
var allowedTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/x-msvideo": ".avi",
}

// allowedExts is the extension fallback for clients that send a generic
// content type on a well-named file.
var allowedExts = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

const defaultFeedLimit = 50

// VideoService owns the upload gate and the feed.
type VideoService struct {
	store   store.Store
	objects storage.ObjectStorage
	cache   *CacheService
	log     zerolog.Logger
}

func NewVideoService(st store.Store, objects storage.ObjectStorage, cache *CacheService, log zerolog.Logger) *VideoService {
	return &VideoService{store: st, objects: objects, cache: cache, log: log}
}

// Upload validates the clip, stores the binary, then creates the record.
// Validation happens entirely before the object write; any failure after the
// write deletes the object so a rejected upload leaves nothing behind.
func (s *VideoService) Upload(ctx context.Context, userID string, meta model.UploadMetadata, file io.Reader) (*model.Video, error) {
	ext, err := validateUpload(meta)
	if err != nil {
		return nil, err
	}

	key := uuid.NewString() + ext
	if err := s.objects.Put(ctx, key, file, meta.Size, meta.ContentType); err != nil {
		// Put is atomic per backend (temp file rename / single object PUT),
		// but delete anyway in case a partial object survived the abort.
		s.cleanup(key)
		return nil, fmt.Errorf("store clip: %w", err)
	}

	video := &model.Video{
		UserID:        userID,
		Filename:      key,
		OriginalName:  meta.OriginalName,
		DurationMs:    meta.DurationMs,
		Size:          meta.Size,
		SkillCategory: meta.SkillCategory,
		Description:   meta.Description,
	}
	if err := s.store.CreateVideo(ctx, video); err != nil {
		s.cleanup(key)
		return nil, fmt.Errorf("create video record: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFeed(ctx); err != nil {
			s.log.Warn().Err(err).Msg("cache: invalidate feed after upload")
		}
	}
	return video, nil
}

// cleanup removes an orphaned object after a failed upload. Uses a fresh
// context: the request context may already be cancelled, and the orphan must
// go regardless.
func (s *VideoService) cleanup(key string) {
	if err := s.objects.Delete(context.Background(), key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("upload: orphaned object cleanup failed")
	}
}

// validateUpload checks type, size, and duration in order and returns the
// storage extension. All checks run before any byte is persisted.
func validateUpload(meta model.UploadMetadata) (string, error) {
	ext, ok := allowedTypes[meta.ContentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(meta.OriginalName))
		if !allowedExts[ext] {
			return "", validationErr("file type must be mp4, mov, or avi")
		}
	}

	if meta.Size <= 0 {
		return "", validationErr("video file is required")
	}
	if meta.Size > model.MaxUploadSize {
		return "", validationErr("file exceeds the 50MB limit")
	}

	if meta.DurationMs <= 0 {
		return "", validationErr("duration is required")
	}
	if meta.DurationMs > model.MaxDurationMs {
		return "", validationErr("video must be 5 seconds or shorter")
	}

	if strings.TrimSpace(meta.SkillCategory) == "" {
		return "", validationErr("skillCategory is required")
	}

	return ext, nil
}

// Feed returns the newest clips with embedded tallies and scores.
func (s *VideoService) Feed(ctx context.Context, limit int) ([]model.VideoResponse, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	videos, err := s.store.ListVideos(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(videos))
	owners := make([]string, 0, len(videos))
	seen := make(map[string]bool, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
		if !seen[v.UserID] {
			seen[v.UserID] = true
			owners = append(owners, v.UserID)
		}
	}

	tallies, err := s.store.TalliesForVideos(ctx, ids)
	if err != nil {
		return nil, err
	}
	usernames, err := s.store.UsernamesFor(ctx, owners)
	if err != nil {
		return nil, err
	}

	responses := make([]model.VideoResponse, len(videos))
	for i, v := range videos {
		counts := tallies[v.ID]
		responses[i] = model.VideoResponse{
			Video:    v,
			Username: usernames[v.UserID],
			Votes:    counts,
			Score:    counts.Score(),
		}
	}
	return responses, nil
}

// Open returns the stored clip and its record for streaming.
func (s *VideoService) Open(ctx context.Context, videoID string) (*model.Video, io.ReadCloser, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.objects.Get(ctx, video.Filename)
	if err != nil {
		return nil, nil, err
	}
	return video, rc, nil
}
