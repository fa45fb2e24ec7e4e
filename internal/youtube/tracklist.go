package youtube

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// trackListFetcher asks the caption list endpoint which tracks exist for a
// video and fetches the best one. Costs one extra round trip over the
// direct guess but works for any captioned language.
type trackListFetcher struct {
	c *Client
}

func (f *trackListFetcher) Name() string { return "tracklist" }

// captionTrack is one entry from the list endpoint or a player response.
type captionTrack struct {
	LangCode string
	Kind     string
	Name     string
	BaseURL  string
}

var trackRe = regexp.MustCompile(`<track\s+([^>]*?)/?>`)
var trackAttrRe = regexp.MustCompile(`(\w+)="([^"]*)"`)

// parseTrackList extracts <track> entries from the list endpoint's XML.
func parseTrackList(body string) []captionTrack {
	var tracks []captionTrack
	for _, m := range trackRe.FindAllStringSubmatch(body, -1) {
		var t captionTrack
		for _, attr := range trackAttrRe.FindAllStringSubmatch(m[1], -1) {
			switch attr[1] {
			case "lang_code":
				t.LangCode = attr[2]
			case "kind":
				t.Kind = attr[2]
			case "name":
				t.Name = decodeEntities(attr[2])
			}
		}
		if t.LangCode != "" {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// pickTrack prefers the first track whose language code starts with the
// preferred prefix, otherwise falls back to the first track. Among
// matching languages a manual track beats an auto-generated one.
func pickTrack(tracks []captionTrack, preferredLang string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	var preferred *captionTrack
	for i := range tracks {
		if !strings.HasPrefix(tracks[i].LangCode, preferredLang) {
			continue
		}
		if tracks[i].Kind != "asr" {
			return tracks[i], true
		}
		if preferred == nil {
			preferred = &tracks[i]
		}
	}
	if preferred != nil {
		return *preferred, true
	}
	return tracks[0], true
}

func (f *trackListFetcher) Attempt(ctx context.Context, videoID string) (*TranscriptResult, error) {
	base := f.c.timedTextBases[0]
	listURL := base + "/api/timedtext?" + url.Values{
		"type": {"list"},
		"v":    {videoID},
	}.Encode()

	body, err := f.c.fetch(ctx, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("listing caption tracks: %w", err)
	}

	tracks := parseTrackList(string(body))
	track, ok := pickTrack(tracks, f.c.preferredLang)
	if !ok {
		return nil, fmt.Errorf("no caption tracks listed for video %s", videoID)
	}

	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", track.LangCode)
	if track.Kind != "" {
		q.Set("kind", track.Kind)
	}
	if track.Name != "" {
		q.Set("name", track.Name)
	}
	captionURL := base + "/api/timedtext?" + q.Encode()

	res, err := f.c.fetchTimedText(ctx, captionURL, track.LangCode, SourceTrackList)
	if err != nil {
		return nil, fmt.Errorf("fetching listed track %s: %w", track.LangCode, err)
	}
	return res, nil
}
