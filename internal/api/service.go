// Package api is the boundary layer: it maps pipeline outcomes to the
// uniform response envelope and exposes them over HTTP and MCP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/ytnotes/internal/resolver"
	"github.com/kalambet/ytnotes/internal/synthesis"
	"github.com/kalambet/ytnotes/internal/transcript"
	"github.com/kalambet/ytnotes/internal/youtube"
)

// User-facing error codes. The success flag in the envelope is
// authoritative; these disambiguate failures for the caller.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeInvalidURL      = "INVALID_URL"
	CodeAINotConfigured = "AI_NOT_CONFIGURED"
	CodeNoTranscript    = "NO_TRANSCRIPT"
	CodeRateLimit       = "RATE_LIMIT"
	CodePaymentRequired = "PAYMENT_REQUIRED"
	CodeParseError      = "PARSE_ERROR"
)

// TitleFetcher looks up a video's display title.
type TitleFetcher interface {
	FetchTitle(ctx context.Context, videoID string) (string, error)
}

// NotesRequest is the payload for note generation, shared by the HTTP,
// MCP and CLI frontends.
type NotesRequest struct {
	VideoURL           string `json:"videoUrl"`
	VideoType          string `json:"videoType,omitempty"`
	TranscriptOverride string `json:"transcriptOverride,omitempty"`
}

// Notes is the assembled note document plus computed metadata.
type Notes struct {
	Title      string              `json:"title"`
	Summary    string              `json:"summary"`
	KeyPoints  []string            `json:"keyPoints"`
	Sections   []synthesis.Section `json:"sections"`
	VideoURL   string              `json:"videoUrl"`
	VideoTitle string              `json:"videoTitle,omitempty"`
	VideoType  string              `json:"videoType"`
	Duration   string              `json:"duration"`
}

// TranscriptView is the resolver output for the transcript endpoint.
type TranscriptView struct {
	VideoID     string `json:"videoId"`
	Transcript  string `json:"transcript"`
	Timestamped string `json:"timestamped"`
	Duration    string `json:"duration"`
	Lang        string `json:"lang,omitempty"`
	Source      string `json:"source"`
	UsedCache   bool   `json:"usedCache"`
}

// Envelope is the uniform response shape. Transport status is always 200
// for pipeline outcomes; Success is the authoritative signal.
type Envelope struct {
	Success    bool                  `json:"success"`
	Notes      *Notes                `json:"notes,omitempty"`
	Transcript *TranscriptView       `json:"transcript,omitempty"`
	Error      string                `json:"error,omitempty"`
	ErrorCode  string                `json:"errorCode,omitempty"`
	Debug      *resolver.Diagnostics `json:"debug,omitempty"`
}

// Service runs the pipeline for one request. It is shared by every
// frontend so HTTP, MCP and the CLI cannot drift apart.
type Service struct {
	Resolver   *resolver.Resolver
	Synth      *synthesis.Synthesizer
	Titles     TitleFetcher // optional; title lookup failure is ignored
	Configured bool         // generator credentials present
	GroupSize  int          // segments per timestamp group, 0 for default
}

// GenerateNotes runs the full pipeline: resolve a transcript, format it,
// synthesize notes, assemble the envelope. Failures come back inside the
// envelope, never as an error.
func (s *Service) GenerateNotes(ctx context.Context, req NotesRequest) Envelope {
	if strings.TrimSpace(req.VideoURL) == "" {
		return failure(CodeBadRequest, "videoUrl is required", nil)
	}

	videoID, err := youtube.ExtractVideoID(req.VideoURL)
	if err != nil {
		return failure(CodeInvalidURL, err.Error(), nil)
	}

	// Credentials are checked before any network work so a misconfigured
	// deployment fails fast instead of burning fetch quota.
	if !s.Configured {
		return failure(CodeAINotConfigured, "text generation service is not configured", nil)
	}

	startSeconds := float64(youtube.ParseStartOffset(req.VideoURL))

	var (
		result *youtube.TranscriptResult
		diag   resolver.Diagnostics
		title  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var rerr error
		result, diag, rerr = s.Resolver.Resolve(gctx, videoID, req.TranscriptOverride, startSeconds)
		return rerr
	})
	g.Go(func() error {
		if s.Titles == nil {
			return nil
		}
		t, terr := s.Titles.FetchTitle(gctx, videoID)
		if terr != nil {
			slog.Debug("title lookup failed", "video_id", videoID, "error", terr)
			return nil
		}
		title = t
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, resolver.ErrNoTranscript) {
			return failure(CodeNoTranscript, "no transcript could be obtained for this video", &diag)
		}
		return failure("", err.Error(), &diag)
	}

	timestamped := transcript.GroupSegments(result.Segments, s.GroupSize)
	if timestamped == "" {
		timestamped = result.Transcript
	}
	duration := transcript.Duration(result.Segments)

	meta := synthesis.Meta{
		VideoTitle: title,
		VideoURL:   req.VideoURL,
		VideoType:  req.VideoType,
		Duration:   duration,
	}
	doc, err := s.Synth.Synthesize(ctx, meta, timestamped)
	if err != nil {
		return failure(classifyGeneration(err), err.Error(), &diag)
	}

	notes, err := assemble(doc, req, title, duration)
	if err != nil {
		return failure(CodeParseError, err.Error(), &diag)
	}
	return Envelope{Success: true, Notes: notes, Debug: &diag}
}

// GetTranscript resolves a transcript without synthesis.
func (s *Service) GetTranscript(ctx context.Context, videoURL string) Envelope {
	if strings.TrimSpace(videoURL) == "" {
		return failure(CodeBadRequest, "url is required", nil)
	}

	videoID, err := youtube.ExtractVideoID(videoURL)
	if err != nil {
		return failure(CodeInvalidURL, err.Error(), nil)
	}

	startSeconds := float64(youtube.ParseStartOffset(videoURL))
	result, diag, err := s.Resolver.Resolve(ctx, videoID, "", startSeconds)
	if err != nil {
		if errors.Is(err, resolver.ErrNoTranscript) {
			return failure(CodeNoTranscript, "no transcript could be obtained for this video", &diag)
		}
		return failure("", err.Error(), &diag)
	}

	return Envelope{
		Success: true,
		Transcript: &TranscriptView{
			VideoID:     videoID,
			Transcript:  result.Transcript,
			Timestamped: transcript.GroupSegments(result.Segments, s.GroupSize),
			Duration:    transcript.Duration(result.Segments),
			Lang:        result.Lang,
			Source:      string(result.Source),
			UsedCache:   result.UsedCache,
		},
		Debug: &diag,
	}
}

// classifyGeneration maps generator failures to user-facing codes. Empty
// and malformed output both read as PARSE_ERROR: from the caller's side the
// distinction is diagnostic, and it stays visible in the error string.
func classifyGeneration(err error) string {
	var perr *synthesis.ParseError
	switch {
	case errors.Is(err, synthesis.ErrRateLimited):
		return CodeRateLimit
	case errors.Is(err, synthesis.ErrPaymentRequired):
		return CodePaymentRequired
	case errors.Is(err, synthesis.ErrEmptyResponse), errors.As(err, &perr):
		return CodeParseError
	default:
		return ""
	}
}

func failure(code, msg string, diag *resolver.Diagnostics) Envelope {
	return Envelope{Success: false, Error: msg, ErrorCode: code, Debug: diag}
}
