package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

func newTestCache(t *testing.T) *MetadataCache {
	t.Helper()
	cache, err := NewMetadataCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestMetadataCachePutGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	track := domain.TrackMetadata{
		ID: "t1", Title: "Cached Track", Artist: "Cached Artist", Album: "Cached Album",
		DurationMs: 215000, Popularity: 48, ReleaseYear: 2011, Explicit: true, HasPreview: true,
	}
	if err := cache.Put(ctx, track); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := cache.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != track {
		t.Fatalf("track: got %+v, want %+v", got, track)
	}
}

func TestMetadataCacheMiss(t *testing.T) {
	cache := newTestCache(t)

	_, ok, err := cache.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected cache miss")
	}
}

func TestMetadataCacheReplace(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	track := domain.TrackMetadata{ID: "t1", Title: "Old Title", Artist: "Artist"}
	if err := cache.Put(ctx, track); err != nil {
		t.Fatalf("put: %v", err)
	}
	track.Title = "New Title"
	if err := cache.Put(ctx, track); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, ok, err := cache.Get(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Title != "New Title" {
		t.Fatalf("title: got %q, want %q", got.Title, "New Title")
	}
}
