// Package resolver orchestrates transcript acquisition: override, then
// cache, then the fetch strategies in priority order.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/ytnotes/internal/storage"
	"github.com/kalambet/ytnotes/internal/youtube"
)

// ErrNoTranscript is returned when every acquisition path failed. The
// diagnostics returned alongside record what was tried.
var ErrNoTranscript = errors.New("no transcript available")

// MinOverrideChars is the acceptance threshold for caller-supplied
// transcripts. Shorter overrides are ignored and the normal pipeline runs.
const MinOverrideChars = 200

// AttemptInfo records the outcome of one fetch strategy.
type AttemptInfo struct {
	Strategy string `json:"strategy"`
	Error    string `json:"error,omitempty"`
	Segments int    `json:"segments,omitempty"`
	Chars    int    `json:"chars,omitempty"`
}

// Diagnostics describes how a transcript was (or was not) acquired. It is
// threaded through return values so callers can attach it to responses and
// logs without the resolver knowing about transports.
type Diagnostics struct {
	RequestID       string        `json:"requestId"`
	Attempted       []AttemptInfo `json:"attempted,omitempty"`
	CacheHit        bool          `json:"cacheHit"`
	OverrideUsed    bool          `json:"overrideUsed"`
	TranscriptChars int           `json:"transcriptChars"`
	SegmentCount    int           `json:"segmentCount"`
	LastError       string        `json:"lastError,omitempty"`
}

// Options configures a Resolver. Zero values fall back to defaults.
type Options struct {
	MinSegments      int
	MinChars         int
	MinOverrideChars int
}

// Resolver resolves a video id to a transcript.
type Resolver struct {
	cache            storage.Cache
	fetchers         []youtube.Fetcher
	minSegments      int
	minChars         int
	minOverrideChars int
}

// New creates a Resolver. cache may be nil, in which case every lookup is
// a miss and nothing is stored.
func New(cache storage.Cache, fetchers []youtube.Fetcher, opts Options) *Resolver {
	r := &Resolver{
		cache:            cache,
		fetchers:         fetchers,
		minSegments:      opts.MinSegments,
		minChars:         opts.MinChars,
		minOverrideChars: opts.MinOverrideChars,
	}
	if r.minSegments <= 0 {
		r.minSegments = youtube.DefaultMinSegments
	}
	if r.minChars <= 0 {
		r.minChars = youtube.DefaultMinChars
	}
	if r.minOverrideChars <= 0 {
		r.minOverrideChars = MinOverrideChars
	}
	return r
}

// Resolve acquires a transcript for videoID. Precedence: a usable override
// wins outright, then the cache, then each fetch strategy in order. When
// everything fails it returns ErrNoTranscript; the diagnostics are valid in
// every case, including the error one.
//
// startSeconds > 0 trims segments that end before the offset. If the trim
// would drop everything the original transcript is kept, so a bad offset
// degrades to "from the beginning" instead of an empty document.
func (r *Resolver) Resolve(ctx context.Context, videoID, override string, startSeconds float64) (*youtube.TranscriptResult, Diagnostics, error) {
	diag := Diagnostics{RequestID: uuid.NewString()}
	log := slog.With("request_id", diag.RequestID, "video_id", videoID)

	if trimmed := strings.TrimSpace(override); len(trimmed) >= r.minOverrideChars {
		diag.OverrideUsed = true
		diag.TranscriptChars = len(trimmed)
		log.Info("using transcript override", "chars", len(trimmed))
		return &youtube.TranscriptResult{
			Transcript: trimmed,
			Source:     youtube.SourceOverride,
		}, diag, nil
	}

	if result := r.fromCache(ctx, log, videoID); result != nil {
		diag.CacheHit = true
		result = applyStartOffset(result, startSeconds)
		diag.TranscriptChars = len(result.Transcript)
		diag.SegmentCount = len(result.Segments)
		return result, diag, nil
	}

	for _, f := range r.fetchers {
		result, err := f.Attempt(ctx, videoID)
		if err != nil {
			diag.Attempted = append(diag.Attempted, AttemptInfo{Strategy: f.Name(), Error: err.Error()})
			diag.LastError = err.Error()
			log.Debug("fetch strategy failed", "strategy", f.Name(), "error", err)
			if ctx.Err() != nil {
				return nil, diag, ctx.Err()
			}
			continue
		}

		diag.Attempted = append(diag.Attempted, AttemptInfo{
			Strategy: f.Name(),
			Segments: len(result.Segments),
			Chars:    len(result.Transcript),
		})
		log.Info("transcript fetched", "strategy", f.Name(), "segments", len(result.Segments), "chars", len(result.Transcript))

		r.store(ctx, log, videoID, result)

		result = applyStartOffset(result, startSeconds)
		diag.TranscriptChars = len(result.Transcript)
		diag.SegmentCount = len(result.Segments)
		return result, diag, nil
	}

	log.Info("no transcript available", "attempts", len(diag.Attempted))
	return nil, diag, ErrNoTranscript
}

// fromCache looks the video up in the cache. Any failure, including a
// broken backend, is logged and treated as a miss.
func (r *Resolver) fromCache(ctx context.Context, log *slog.Logger, videoID string) *youtube.TranscriptResult {
	if r.cache == nil {
		return nil
	}
	entry, err := r.cache.Get(ctx, videoID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("cache lookup failed", "error", err)
		}
		return nil
	}
	result := &youtube.TranscriptResult{
		Transcript: entry.Transcript,
		Segments:   entry.Segments,
		Lang:       entry.Lang,
		Source:     youtube.SourceCache,
		UsedCache:  true,
	}
	if !result.Usable(r.minSegments, r.minChars) {
		log.Warn("cached transcript below thresholds, refetching", "segments", len(entry.Segments), "chars", len(entry.Transcript))
		return nil
	}
	log.Info("transcript served from cache", "chars", len(entry.Transcript))
	return result
}

func (r *Resolver) store(ctx context.Context, log *slog.Logger, videoID string, result *youtube.TranscriptResult) {
	if r.cache == nil {
		return
	}
	err := r.cache.Put(ctx, storage.CacheEntry{
		VideoID:    videoID,
		Transcript: result.Transcript,
		Segments:   result.Segments,
		Lang:       result.Lang,
		Source:     string(result.Source),
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Warn("cache store failed", "error", err)
	}
}

// applyStartOffset drops segments that start before the offset. The filter
// never empties a transcript: when no segment survives, the original
// result is returned unchanged.
func applyStartOffset(result *youtube.TranscriptResult, startSeconds float64) *youtube.TranscriptResult {
	if startSeconds <= 0 || len(result.Segments) == 0 {
		return result
	}

	kept := make([]youtube.TranscriptSegment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		if seg.Start >= startSeconds {
			kept = append(kept, seg)
		}
	}
	if len(kept) == 0 || len(kept) == len(result.Segments) {
		return result
	}

	parts := make([]string, 0, len(kept))
	for _, seg := range kept {
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	trimmed := *result
	trimmed.Segments = kept
	trimmed.Transcript = strings.Join(parts, " ")
	return &trimmed
}
