package api

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kalambet/ytnotes/internal/resolver"
	"github.com/kalambet/ytnotes/internal/synthesis"
	"github.com/kalambet/ytnotes/internal/youtube"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fakeFetcher struct {
	name   string
	result *youtube.TranscriptResult
	err    error
	calls  int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Attempt(_ context.Context, _ string) (*youtube.TranscriptResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGenerator struct {
	calls     int
	responses []string
	err       error
}

func (g *fakeGenerator) Generate(_ context.Context, _ []synthesis.Message, _ *synthesis.Schema) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	resp := g.responses[0]
	if len(g.responses) > 1 {
		g.responses = g.responses[1:]
	}
	return resp, nil
}

type fakeTitles struct {
	title string
	err   error
}

func (t *fakeTitles) FetchTitle(_ context.Context, _ string) (string, error) {
	return t.title, t.err
}

// lectureResult builds a transcript of n segments spread over n*15 seconds.
func lectureResult(n int) *youtube.TranscriptResult {
	segs := make([]youtube.TranscriptSegment, n)
	parts := make([]string, n)
	for i := range segs {
		text := fmt.Sprintf("minute %d of the lecture covers subspaces", i)
		segs[i] = youtube.TranscriptSegment{Text: text, Start: float64(i) * 15, Duration: 15}
		parts[i] = text
	}
	return &youtube.TranscriptResult{
		Transcript: strings.Join(parts, " "),
		Segments:   segs,
		Lang:       "en",
		Source:     youtube.SourceTimedText,
	}
}

const goodNoteJSON = `{
	"title": "Subspaces",
	"summary": "A walkthrough of vector subspaces.",
	"keyPoints": ["Subspaces contain the zero vector."],
	"sections": [{"title": "Intro", "timestamp": "0:00", "content": "Definitions."}]
}`

func newTestService(fetchers []youtube.Fetcher, gen synthesis.Generator) *Service {
	return &Service{
		Resolver:   resolver.New(nil, fetchers, resolver.Options{}),
		Synth:      synthesis.New(gen, synthesis.Options{}),
		Titles:     &fakeTitles{title: "Linear Algebra 3"},
		Configured: true,
	}
}

func TestGenerateNotesHappyPath(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	gen := &fakeGenerator{responses: []string{goodNoteJSON}}
	svc := newTestService([]youtube.Fetcher{f}, gen)

	env := svc.GenerateNotes(context.Background(), NotesRequest{VideoURL: testVideoURL, VideoType: "Lecture"})
	if !env.Success {
		t.Fatalf("expected success, got %s: %s", env.ErrorCode, env.Error)
	}
	if env.Notes == nil {
		t.Fatal("expected notes in the envelope")
	}
	if env.Notes.Duration != "10:00" {
		t.Errorf("expected duration 10:00 for 40 segments over 600s, got %q", env.Notes.Duration)
	}
	if env.Notes.Title != "Subspaces" || len(env.Notes.KeyPoints) != 1 {
		t.Errorf("unexpected notes %+v", env.Notes)
	}
	if env.Notes.VideoTitle != "Linear Algebra 3" {
		t.Errorf("expected the oEmbed title, got %q", env.Notes.VideoTitle)
	}
	if env.Notes.VideoURL != testVideoURL {
		t.Errorf("unexpected video url %q", env.Notes.VideoURL)
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 generator call, got %d", gen.calls)
	}
	if env.Debug == nil || env.Debug.RequestID == "" {
		t.Error("expected diagnostics with a request id")
	}
}

func TestGenerateNotesNoTranscript(t *testing.T) {
	fetchers := []youtube.Fetcher{
		&fakeFetcher{name: "direct", err: fmt.Errorf("no usable captions")},
		&fakeFetcher{name: "tracklist", err: fmt.Errorf("empty track list")},
		&fakeFetcher{name: "watch_page", err: fmt.Errorf("no caption tracks in player response")},
	}
	gen := &fakeGenerator{responses: []string{goodNoteJSON}}
	svc := newTestService(fetchers, gen)

	env := svc.GenerateNotes(context.Background(), NotesRequest{VideoURL: testVideoURL})
	if env.Success {
		t.Fatal("expected failure")
	}
	if env.ErrorCode != CodeNoTranscript {
		t.Errorf("expected NO_TRANSCRIPT, got %q", env.ErrorCode)
	}
	if gen.calls != 0 {
		t.Errorf("generator must not be called without a transcript, got %d calls", gen.calls)
	}
	if env.Debug == nil || len(env.Debug.Attempted) != 3 {
		t.Fatalf("expected 3 recorded attempts, got %+v", env.Debug)
	}
}

func TestGenerateNotesPaymentRequired(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	gen := &fakeGenerator{err: fmt.Errorf("chat request: %w", synthesis.ErrPaymentRequired)}
	svc := newTestService([]youtube.Fetcher{f}, gen)

	env := svc.GenerateNotes(context.Background(), NotesRequest{VideoURL: testVideoURL})
	if env.Success {
		t.Fatal("expected failure")
	}
	if env.ErrorCode != CodePaymentRequired {
		t.Errorf("expected PAYMENT_REQUIRED, got %q", env.ErrorCode)
	}
}

func TestGenerateNotesRateLimited(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	gen := &fakeGenerator{err: fmt.Errorf("chat request: %w", synthesis.ErrRateLimited)}
	svc := newTestService([]youtube.Fetcher{f}, gen)

	env := svc.GenerateNotes(context.Background(), NotesRequest{VideoURL: testVideoURL})
	if env.ErrorCode != CodeRateLimit {
		t.Errorf("expected RATE_LIMIT, got %q", env.ErrorCode)
	}
}

func TestGenerateNotesNotConfigured(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	svc := newTestService([]youtube.Fetcher{f}, &fakeGenerator{responses: []string{goodNoteJSON}})
	svc.Configured = false

	env := svc.GenerateNotes(context.Background(), NotesRequest{VideoURL: testVideoURL})
	if env.ErrorCode != CodeAINotConfigured {
		t.Errorf("expected AI_NOT_CONFIGURED, got %q", env.ErrorCode)
	}
	if f.calls != 0 {
		t.Error("missing credentials must fail before any fetch work")
	}
}

func TestGenerateNotesInputErrors(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	svc := newTestService([]youtube.Fetcher{f}, &fakeGenerator{responses: []string{goodNoteJSON}})

	tests := []struct {
		name     string
		url      string
		wantCode string
	}{
		{"missing url", "", CodeBadRequest},
		{"not a video url", "https://example.com/watch?v=nope", CodeInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := svc.GenerateNotes(context.Background(), NotesRequest{VideoURL: tt.url})
			if env.Success || env.ErrorCode != tt.wantCode {
				t.Errorf("expected %s, got %q (success=%v)", tt.wantCode, env.ErrorCode, env.Success)
			}
		})
	}
	if f.calls != 0 {
		t.Error("input errors must be rejected before any network work")
	}
}

func TestGenerateNotesRejectsInvalidDocument(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	gen := &fakeGenerator{responses: []string{`{"title": "", "summary": "s", "keyPoints": ["k"], "sections": [{"title": "t", "timestamp": "", "content": "c"}]}`}}
	svc := newTestService([]youtube.Fetcher{f}, gen)

	env := svc.GenerateNotes(context.Background(), NotesRequest{VideoURL: testVideoURL})
	if env.Success {
		t.Fatal("a document with an empty title must be rejected")
	}
	if env.ErrorCode != CodeParseError {
		t.Errorf("expected PARSE_ERROR, got %q", env.ErrorCode)
	}
}

func TestGenerateNotesStartOffsetNarrowsDuration(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	gen := &fakeGenerator{responses: []string{goodNoteJSON}}
	svc := newTestService([]youtube.Fetcher{f}, gen)

	env := svc.GenerateNotes(context.Background(), NotesRequest{VideoURL: testVideoURL + "&t=300s"})
	if !env.Success {
		t.Fatalf("expected success, got %s: %s", env.ErrorCode, env.Error)
	}
	if env.Debug.SegmentCount != 20 {
		t.Errorf("expected 20 segments after the 300s offset, got %d", env.Debug.SegmentCount)
	}
}

func TestGetTranscript(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	svc := newTestService([]youtube.Fetcher{f}, &fakeGenerator{responses: []string{goodNoteJSON}})

	env := svc.GetTranscript(context.Background(), testVideoURL)
	if !env.Success {
		t.Fatalf("expected success, got %s: %s", env.ErrorCode, env.Error)
	}
	if env.Transcript == nil {
		t.Fatal("expected a transcript view")
	}
	if env.Transcript.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("unexpected video id %q", env.Transcript.VideoID)
	}
	if env.Transcript.Duration != "10:00" {
		t.Errorf("unexpected duration %q", env.Transcript.Duration)
	}
	if !strings.Contains(env.Transcript.Timestamped, "[0:00]") {
		t.Error("timestamped text should carry group timestamps")
	}
}
