// Package storage provides the transcript cache backends. The cache is an
// optimization layer: callers must treat any cache error as a miss, never
// as a request failure.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/kalambet/ytnotes/internal/youtube"
)

// ErrNotFound is returned when no cached transcript exists for a video.
var ErrNotFound = errors.New("not found")

// CacheEntry is one cached transcript, keyed by video id. Upserted on every
// successful fetch; retention is an external concern.
type CacheEntry struct {
	VideoID    string                      `json:"video_id"`
	Transcript string                      `json:"transcript"`
	Segments   []youtube.TranscriptSegment `json:"segments"`
	Lang       string                      `json:"lang,omitempty"`
	Source     string                      `json:"source"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// Cache is the keyed transcript store consulted before network fetches.
type Cache interface {
	Get(ctx context.Context, videoID string) (*CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
}
