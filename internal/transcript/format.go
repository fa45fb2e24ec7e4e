// Package transcript turns raw timed caption segments into the compact
// timestamped text the synthesizer consumes.
package transcript

import (
	"fmt"
	"strings"

	"github.com/kalambet/ytnotes/internal/youtube"
)

// DefaultGroupSize is how many consecutive segments share one timestamp
// line. Small enough to keep temporal landmarks, large enough to avoid
// per-cue timestamp noise.
const DefaultGroupSize = 12

// FormatTimestamp renders whole seconds as m:ss, or h:mm:ss at an hour
// and above.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// GroupSegments partitions segments into fixed-size groups and emits one
// "[m:ss] text" line per group, timestamped with the group's first segment.
func GroupSegments(segments []youtube.TranscriptSegment, groupSize int) string {
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}
	var lines []string
	for i := 0; i < len(segments); i += groupSize {
		end := min(i+groupSize, len(segments))
		var parts []string
		for _, s := range segments[i:end] {
			if s.Text != "" {
				parts = append(parts, s.Text)
			}
		}
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", FormatTimestamp(segments[i].Start), strings.Join(parts, " ")))
	}
	return strings.Join(lines, "\n")
}

// Duration computes the transcript's extent as max(start+duration) over
// all segments, formatted for display. Returns "Unknown" with no segments.
func Duration(segments []youtube.TranscriptSegment) string {
	if len(segments) == 0 {
		return "Unknown"
	}
	var maxEnd float64
	for _, s := range segments {
		if end := s.Start + s.Duration; end > maxEnd {
			maxEnd = end
		}
	}
	return FormatTimestamp(maxEnd)
}
