package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// videoIDRe matches the 11-character video id in the URL forms YouTube
// actually serves: watch?v=, /embed/, /v/, /shorts/ and the youtu.be
// short domain.
var videoIDRe = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|v/|shorts/)|youtu\.be/)([A-Za-z0-9_-]{11})`)

// ExtractVideoID pulls the 11-character video identifier out of a YouTube
// URL. It returns an error for anything that doesn't match a known form,
// so invalid input is rejected before any network call.
func ExtractVideoID(rawURL string) (string, error) {
	m := videoIDRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("no video id found in %q", rawURL)
	}
	return m[1], nil
}

var composedOffsetRe = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// ParseStartOffset reads the t= or start= query parameter from a video URL
// and returns it as whole seconds. Supported forms: bare seconds ("90"),
// trailing-s seconds ("90s") and composed "1h2m30s". Returns 0 when the
// parameter is absent or unparseable.
func ParseStartOffset(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	q := u.Query()
	raw := q.Get("t")
	if raw == "" {
		raw = q.Get("start")
	}
	if raw == "" {
		return 0
	}

	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return n
	}

	m := composedOffsetRe.FindStringSubmatch(strings.ToLower(raw))
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + s
}
