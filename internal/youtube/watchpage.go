package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// watchPageFetcher scrapes the public watch page for the embedded player
// response, and falls back to the internal player API when the page carries
// no caption data. Most expensive and most fragile strategy, tried last.
type watchPageFetcher struct {
	c *Client
}

func (f *watchPageFetcher) Name() string { return "watchpage" }

// watchPageHeaders bypass the consent interstitial served to cookie-less
// clients in some regions.
func watchPageHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      browserUserAgent,
		"Accept-Language": "en-US,en;q=0.9",
		"Cookie":          "CONSENT=YES+cb; SOCS=CAI",
	}
}

func (f *watchPageFetcher) Attempt(ctx context.Context, videoID string) (*TranscriptResult, error) {
	pageURL := f.c.watchBase + "/watch?v=" + videoID + "&hl=en"
	body, err := f.c.fetch(ctx, pageURL, watchPageHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetching watch page: %w", err)
	}
	page := string(body)

	tracks := tracksFromPlayerResponse(findPlayerResponse(page))
	if len(tracks) == 0 {
		// Page carried no caption data; ask the internal player API.
		tracks, err = f.playerAPITracks(ctx, page, videoID)
		if err != nil {
			return nil, err
		}
	}

	track, ok := pickTrack(tracks, f.c.preferredLang)
	if !ok || track.BaseURL == "" {
		return nil, fmt.Errorf("watch page exposes no caption tracks for video %s", videoID)
	}

	res, err := f.c.fetchTimedText(ctx, track.BaseURL, track.LangCode, SourceWatchPage)
	if err != nil {
		return nil, fmt.Errorf("fetching caption track from watch page: %w", err)
	}
	return res, nil
}

// playerResponse mirrors the slice of ytInitialPlayerResponse we need.
type playerResponse struct {
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// findPlayerResponse walks the page's <script> elements for the embedded
// ytInitialPlayerResponse assignment and extracts its JSON object.
func findPlayerResponse(page string) string {
	const marker = "ytInitialPlayerResponse"

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		// Malformed pages still often contain the script text; fall back
		// to scanning the raw page.
		return extractAfterMarker(page, marker)
	}

	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && n.FirstChild != nil {
			text := n.FirstChild.Data
			if strings.Contains(text, marker) {
				if obj := extractAfterMarker(text, marker); obj != "" {
					found = obj
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// extractAfterMarker finds marker in s and returns the first balanced JSON
// object after it.
func extractAfterMarker(s, marker string) string {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return ""
	}
	obj, ok := extractJSONObject(s, idx)
	if !ok {
		return ""
	}
	return obj
}

// extractJSONObject scans s from offset `from` for the next '{' and returns
// the substring up to its balancing '}'. The scanner tracks string and
// escape state explicitly: a regex cannot cope with braces nested inside
// string literals, which YouTube's embedded JSON is full of.
func extractJSONObject(s string, from int) (string, bool) {
	start := strings.IndexByte(s[from:], '{')
	if start < 0 {
		return "", false
	}
	start += from

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func tracksFromPlayerResponse(raw string) []captionTrack {
	if raw == "" {
		return nil
	}
	var pr playerResponse
	if err := json.Unmarshal([]byte(raw), &pr); err != nil {
		return nil
	}
	var tracks []captionTrack
	for _, t := range pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks {
		if t.BaseURL == "" {
			continue
		}
		tracks = append(tracks, captionTrack{
			LangCode: t.LanguageCode,
			Kind:     t.Kind,
			BaseURL:  t.BaseURL,
		})
	}
	return tracks
}

var innertubeKeyRe = regexp.MustCompile(`"INNERTUBE_API_KEY"\s*:\s*"([^"]+)"`)

// playerAPITracks extracts the innertube API key and client context from
// the watch page and calls the internal player API directly.
func (f *watchPageFetcher) playerAPITracks(ctx context.Context, page, videoID string) ([]captionTrack, error) {
	km := innertubeKeyRe.FindStringSubmatch(page)
	if km == nil {
		return nil, fmt.Errorf("watch page has no player data and no innertube key")
	}
	apiKey := km[1]

	ctxIdx := strings.Index(page, `"INNERTUBE_CONTEXT"`)
	if ctxIdx < 0 {
		return nil, fmt.Errorf("watch page has no innertube context")
	}
	clientCtx, ok := extractJSONObject(page, ctxIdx+len(`"INNERTUBE_CONTEXT"`))
	if !ok {
		return nil, fmt.Errorf("could not extract innertube context object")
	}

	payload, err := json.Marshal(map[string]json.RawMessage{
		"context": json.RawMessage(clientCtx),
		"videoId": json.RawMessage(`"` + videoID + `"`),
	})
	if err != nil {
		return nil, fmt.Errorf("building player API payload: %w", err)
	}

	apiURL := f.c.watchBase + "/youtubei/v1/player?key=" + apiKey
	body, err := f.postJSON(ctx, apiURL, payload)
	if err != nil {
		return nil, fmt.Errorf("calling player API: %w", err)
	}

	tracks := tracksFromPlayerResponse(string(body))
	if len(tracks) == 0 {
		return nil, fmt.Errorf("player API returned no caption tracks for video %s", videoID)
	}
	return tracks, nil
}

func (f *watchPageFetcher) postJSON(ctx context.Context, rawURL string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{status: resp.StatusCode, url: rawURL}
	}
	return io.ReadAll(resp.Body)
}
