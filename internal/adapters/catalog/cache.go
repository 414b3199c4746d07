package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

// MetadataCache caches raw catalog track metadata in SQLite so repeated
// seed fetches skip the upstream round trip. Only metadata is stored —
// never computed feature vectors.
type MetadataCache struct {
	db *sql.DB
}

var _ ports.TrackCache = (*MetadataCache)(nil)

// NewMetadataCache opens (or creates) the cache database and runs the
// schema migration.
func NewMetadataCache(storagePath string) (*MetadataCache, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache db: %w", err)
	}

	cache := &MetadataCache{db: db}
	if err := cache.migrate(); err != nil {
		return nil, fmt.Errorf("cache migration failed: %w", err)
	}

	return cache, nil
}

// Close releases the database handle.
func (m *MetadataCache) Close() error {
	return m.db.Close()
}

func (m *MetadataCache) migrate() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS tracks (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			artist       TEXT NOT NULL,
			album        TEXT,
			duration_ms  INTEGER,
			popularity   INTEGER,
			release_year INTEGER,
			explicit     INTEGER NOT NULL DEFAULT 0,
			has_preview  INTEGER NOT NULL DEFAULT 0,
			fetched_at   INTEGER NOT NULL
		)
	`)
	return err
}

// Get returns the cached track and true, or false when the track is not
// cached.
func (m *MetadataCache) Get(ctx context.Context, id string) (domain.TrackMetadata, bool, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, title, artist, album, duration_ms, popularity, release_year, explicit, has_preview
		FROM tracks WHERE id = ?
	`, id)

	var track domain.TrackMetadata
	var album sql.NullString
	var duration, popularity, releaseYear sql.NullInt64
	if err := row.Scan(
		&track.ID,
		&track.Title,
		&track.Artist,
		&album,
		&duration,
		&popularity,
		&releaseYear,
		&track.Explicit,
		&track.HasPreview,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.TrackMetadata{}, false, nil
		}
		return domain.TrackMetadata{}, false, fmt.Errorf("failed to load cached track: %w", err)
	}

	if album.Valid {
		track.Album = album.String
	}
	if duration.Valid {
		track.DurationMs = int(duration.Int64)
	}
	if popularity.Valid {
		track.Popularity = int(popularity.Int64)
	}
	if releaseYear.Valid {
		track.ReleaseYear = int(releaseYear.Int64)
	}
	return track, true, nil
}

// Put inserts or replaces the cached track.
func (m *MetadataCache) Put(ctx context.Context, track domain.TrackMetadata) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tracks
			(id, title, artist, album, duration_ms, popularity, release_year, explicit, has_preview, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		track.ID,
		track.Title,
		track.Artist,
		track.Album,
		track.DurationMs,
		track.Popularity,
		track.ReleaseYear,
		track.Explicit,
		track.HasPreview,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store cached track: %w", err)
	}
	return nil
}
