package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MdAmzadAli/skillArena/internal/model"
	"github.com/MdAmzadAli/skillArena/internal/store"
)

// fakeObjects is an in-memory ObjectStorage that records what is stored.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// failingStore rejects CreateVideo to exercise cleanup-on-failure.
type failingStore struct {
	*store.MemoryStore
}

func (s *failingStore) CreateVideo(context.Context, *model.Video) error {
	return errors.New("record write failed")
}

func testVideoService(st store.Store, objects *fakeObjects) *VideoService {
	log := zerolog.Nop()
	return NewVideoService(st, objects, NewCacheService("", log), log)
}

func validMeta() model.UploadMetadata {
	return model.UploadMetadata{
		OriginalName:  "kickflip.mp4",
		ContentType:   "video/mp4",
		Size:          1 << 20,
		DurationMs:    5000,
		SkillCategory: "skateboarding",
	}
}

func TestUpload_DurationGate(t *testing.T) {
	tests := []struct {
		name       string
		durationMs int
		wantReject bool
	}{
		{"exactly at the limit", 5000, false},
		{"one ms over", 5001, true},
		{"zero", 0, true},
		{"negative", -100, true},
		{"well under", 3200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			objects := newFakeObjects()
			svc := testVideoService(st, objects)
			userID := seedUser(t, st, "uploader")

			meta := validMeta()
			meta.DurationMs = tt.durationMs

			video, err := svc.Upload(context.Background(), userID, meta, strings.NewReader("data"))
			if tt.wantReject {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("got err %v, want ValidationError", err)
				}
				// A rejected upload must leave no object behind.
				if objects.count() != 0 {
					t.Errorf("%d objects in storage after rejection, want 0", objects.count())
				}
				return
			}
			if err != nil {
				t.Fatalf("upload: %v", err)
			}
			if video.DurationMs != tt.durationMs {
				t.Errorf("stored duration = %d, want %d", video.DurationMs, tt.durationMs)
			}
			if objects.count() != 1 {
				t.Errorf("%d objects in storage, want 1", objects.count())
			}
		})
	}
}

func TestUpload_TypeAndSizeGate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.UploadMetadata)
	}{
		{"bad content type and extension", func(m *model.UploadMetadata) {
			m.ContentType = "image/png"
			m.OriginalName = "selfie.png"
		}},
		{"oversized file", func(m *model.UploadMetadata) {
			m.Size = model.MaxUploadSize + 1
		}},
		{"empty file", func(m *model.UploadMetadata) {
			m.Size = 0
		}},
		{"missing category", func(m *model.UploadMetadata) {
			m.SkillCategory = "   "
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			objects := newFakeObjects()
			svc := testVideoService(st, objects)
			userID := seedUser(t, st, "uploader")

			meta := validMeta()
			tt.mutate(&meta)

			_, err := svc.Upload(context.Background(), userID, meta, strings.NewReader("data"))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got err %v, want ValidationError", err)
			}
			if objects.count() != 0 {
				t.Errorf("%d objects in storage after rejection, want 0", objects.count())
			}
		})
	}
}

func TestUpload_ExtensionFallback(t *testing.T) {
	st := store.NewMemoryStore()
	objects := newFakeObjects()
	svc := testVideoService(st, objects)
	userID := seedUser(t, st, "uploader")

	// Generic content type on a well-named .mov file is accepted.
	meta := validMeta()
	meta.ContentType = "application/octet-stream"
	meta.OriginalName = "cartwheel.MOV"

	if _, err := svc.Upload(context.Background(), userID, meta, strings.NewReader("data")); err != nil {
		t.Fatalf("upload: %v", err)
	}
}

func TestUpload_RecordFailureDeletesObject(t *testing.T) {
	objects := newFakeObjects()
	svc := testVideoService(&failingStore{store.NewMemoryStore()}, objects)

	_, err := svc.Upload(context.Background(), "u1", validMeta(), strings.NewReader("data"))
	if err == nil {
		t.Fatal("expected error from failing record write")
	}
	if objects.count() != 0 {
		t.Errorf("%d objects in storage after record failure, want 0 (orphan must be deleted)", objects.count())
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %s: %v", s, err)
	}
	return ts
}

func TestFeed_NewestFirstWithScores(t *testing.T) {
	st := store.NewMemoryStore()
	objects := newFakeObjects()
	svc := testVideoService(st, objects)

	owner := seedUser(t, st, "creator")
	voter1 := seedUser(t, st, "v1")
	voter2 := seedUser(t, st, "v2")

	older := seedVideo(t, st, owner, "juggling", mustTime(t, "2024-03-12T10:00:00Z"))
	newer := seedVideo(t, st, owner, "juggling", mustTime(t, "2024-03-12T11:00:00Z"))

	// Older video scores higher; feed order must still be newest first.
	castVotes(t, st, older, []string{voter1, voter2}, model.VoteWow)

	feed, err := svc.Feed(context.Background(), 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed has %d entries, want 2", len(feed))
	}
	if feed[0].ID != newer {
		t.Errorf("feed[0] = %s, want newest video %s", feed[0].ID, newer)
	}
	if feed[1].Score != 2 {
		t.Errorf("older video score = %d, want 2", feed[1].Score)
	}
	if feed[0].Score != 0 {
		t.Errorf("newer video score = %d, want 0", feed[0].Score)
	}
	if feed[0].Username != "creator" {
		t.Errorf("feed username = %s, want creator", feed[0].Username)
	}
}
