package youtube

import (
	"regexp"
	"strconv"
	"strings"
)

// cueRe matches one timed-text cue. dur is optional; auto-generated tracks
// occasionally omit it.
var cueRe = regexp.MustCompile(`(?s)<text\s+start="([\d.]+)"(?:\s+dur="([\d.]+)")?[^>]*>(.*?)</text>`)

// parseTimedText scans a timed-text XML payload for <text start dur> cues
// and returns the decoded segments plus the concatenated transcript string.
// It is deliberately not a full XML parser: YouTube's payloads are flat and
// occasionally malformed, and a cue scan survives both.
func parseTimedText(body string) ([]TranscriptSegment, string) {
	matches := cueRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, ""
	}

	segments := make([]TranscriptSegment, 0, len(matches))
	for _, m := range matches {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		var dur float64
		if m[2] != "" {
			dur, _ = strconv.ParseFloat(m[2], 64)
		}
		text := decodeEntities(m[3])
		if text == "" {
			continue
		}
		segments = append(segments, TranscriptSegment{
			Text:     text,
			Start:    start,
			Duration: dur,
		})
	}

	return segments, joinSegments(segments)
}

var (
	decEntityRe = regexp.MustCompile(`&#(\d+);`)
	hexEntityRe = regexp.MustCompile(`&#[xX]([0-9a-fA-F]+);`)
)

var namedEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&#39;", "'",
	"&nbsp;", " ",
)

// decodeEntities resolves XML entities in a cue payload, flattens newlines
// to spaces and collapses runs of whitespace.
func decodeEntities(s string) string {
	s = namedEntities.Replace(s)
	s = decEntityRe.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil || n <= 0 {
			return m
		}
		return string(rune(n))
	})
	s = hexEntityRe.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseInt(m[3:len(m)-1], 16, 32)
		if err != nil || n <= 0 {
			return m
		}
		return string(rune(n))
	})
	// Newlines inside a cue are line-wrapping, not sentence structure.
	return strings.Join(strings.Fields(s), " ")
}
