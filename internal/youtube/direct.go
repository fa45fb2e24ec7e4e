package youtube

import (
	"context"
	"fmt"
	"net/url"
)

// directFetcher guesses timed-text URLs from a fixed permutation table
// instead of asking what tracks exist. Cheapest strategy, works only for
// videos with the usual English tracks.
type directFetcher struct {
	c *Client
}

func (f *directFetcher) Name() string { return "direct" }

// captionVariant is one guessed lang/kind/format combination.
type captionVariant struct {
	lang string
	kind string // "" for manual tracks, "asr" for auto-generated
	fmt  string // "" for plain timed-text, "srv3" for the richer format
}

func (f *directFetcher) variants() []captionVariant {
	lang := f.c.preferredLang
	return []captionVariant{
		{lang: lang},
		{lang: lang, fmt: "srv3"},
		{lang: lang, kind: "asr"},
		{lang: lang, kind: "asr", fmt: "srv3"},
	}
}

func (f *directFetcher) Attempt(ctx context.Context, videoID string) (*TranscriptResult, error) {
	var lastErr error
	for _, base := range f.c.timedTextBases {
		for _, v := range f.variants() {
			q := url.Values{}
			q.Set("v", videoID)
			q.Set("lang", v.lang)
			if v.kind != "" {
				q.Set("kind", v.kind)
			}
			if v.fmt != "" {
				q.Set("fmt", v.fmt)
			}
			captionURL := base + "/api/timedtext?" + q.Encode()

			res, err := f.c.fetchTimedText(ctx, captionURL, v.lang, SourceTimedText)
			if err != nil {
				lastErr = err
				continue
			}
			return res, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no caption endpoints configured")
	}
	return nil, fmt.Errorf("direct caption guess failed: %w", lastErr)
}
