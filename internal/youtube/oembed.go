package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// FetchTitle looks up a video's title via the public oEmbed endpoint.
// Display context only; callers must tolerate failure.
func (c *Client) FetchTitle(ctx context.Context, videoID string) (string, error) {
	q := url.Values{}
	q.Set("url", "https://www.youtube.com/watch?v="+videoID)
	q.Set("format", "json")
	oembedURL := c.watchBase + "/oembed?" + q.Encode()

	body, err := c.fetch(ctx, oembedURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetching oembed info: %w", err)
	}

	var info struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("decoding oembed info: %w", err)
	}
	return info.Title, nil
}
