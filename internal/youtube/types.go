package youtube

import "strings"

// Source identifies where a transcript came from.
type Source string

const (
	SourceCache     Source = "cache"
	SourceOverride  Source = "override"
	SourceTimedText Source = "timedtext"
	SourceTrackList Source = "tracklist"
	SourceWatchPage Source = "watch_page"
)

// Default acceptance thresholds for a usable transcript. Both are policy,
// not protocol: anything shorter is treated as a failed fetch so the
// synthesizer never sees near-empty input.
const (
	DefaultMinSegments = 10
	DefaultMinChars    = 200
)

// TranscriptSegment is a single timed caption cue. Start and Duration are
// in seconds. Segments are ordered by Start; overlap is possible in
// auto-generated tracks and is tolerated downstream.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TranscriptResult is the outcome of a successful transcript acquisition.
type TranscriptResult struct {
	Transcript string              `json:"transcript"`
	Segments   []TranscriptSegment `json:"segments"`
	Lang       string              `json:"lang,omitempty"`
	Source     Source              `json:"source"`
	UsedCache  bool                `json:"usedCache"`
}

// Usable reports whether the result passes the acceptance thresholds.
// Override transcripts carry no segments and are validated separately.
func (r *TranscriptResult) Usable(minSegments, minChars int) bool {
	if r == nil {
		return false
	}
	if r.Source == SourceOverride {
		return len(strings.TrimSpace(r.Transcript)) >= minChars
	}
	return len(r.Segments) > minSegments && len(r.Transcript) > minChars
}

// joinSegments concatenates segment text with single spaces.
func joinSegments(segments []TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}
