package youtube

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	defaultWatchBase     = "https://www.youtube.com"
	defaultTimedTextBase = "https://www.youtube.com"
	altTimedTextBase     = "https://video.google.com"

	defaultMaxAttempts = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultCallTimeout = 15 * time.Second

	// Desktop browser identity; YouTube serves a stripped page to unknown agents.
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	// WatchBase overrides the watch-page/innertube host (tests).
	WatchBase string
	// TimedTextBases override the caption endpoint hosts (tests).
	TimedTextBases []string
	// PreferredLang is the caption language prefix to prefer, e.g. "en".
	PreferredLang string
	// MinSegments and MinChars are the usable-transcript thresholds.
	MinSegments int
	MinChars    int
	// MaxAttempts bounds the retry loop for transient HTTP failures.
	MaxAttempts int
	// BackoffBase is the initial retry delay, doubled per attempt.
	BackoffBase time.Duration
	// CallTimeout bounds each individual upstream call.
	CallTimeout time.Duration

	HTTPClient *http.Client
}

// Client fetches caption data from YouTube's caption delivery surface.
// All fetch strategies share its HTTP plumbing, retry policy and
// acceptance thresholds.
type Client struct {
	watchBase      string
	timedTextBases []string
	preferredLang  string
	minSegments    int
	minChars       int
	maxAttempts    int
	backoffBase    time.Duration
	callTimeout    time.Duration
	httpClient     *http.Client
}

// NewClient creates a Client with the given options.
func NewClient(opts Options) *Client {
	c := &Client{
		watchBase:      opts.WatchBase,
		timedTextBases: opts.TimedTextBases,
		preferredLang:  opts.PreferredLang,
		minSegments:    opts.MinSegments,
		minChars:       opts.MinChars,
		maxAttempts:    opts.MaxAttempts,
		backoffBase:    opts.BackoffBase,
		callTimeout:    opts.CallTimeout,
		httpClient:     opts.HTTPClient,
	}
	if c.watchBase == "" {
		c.watchBase = defaultWatchBase
	}
	if len(c.timedTextBases) == 0 {
		c.timedTextBases = []string{defaultTimedTextBase, altTimedTextBase}
	}
	if c.preferredLang == "" {
		c.preferredLang = "en"
	}
	if c.minSegments <= 0 {
		c.minSegments = DefaultMinSegments
	}
	if c.minChars <= 0 {
		c.minChars = DefaultMinChars
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.backoffBase <= 0 {
		c.backoffBase = defaultBackoffBase
	}
	if c.callTimeout <= 0 {
		c.callTimeout = defaultCallTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.callTimeout}
	}
	return c
}

// Fetcher is one transcript acquisition strategy. Attempt returns a usable
// TranscriptResult or an error describing why this strategy failed; "no
// captions" is an error value, never a panic.
type Fetcher interface {
	Name() string
	Attempt(ctx context.Context, videoID string) (*TranscriptResult, error)
}

// Fetchers returns the strategies in priority order: cheapest and most
// fragile first, the watch-page scrape last.
func (c *Client) Fetchers() []Fetcher {
	return []Fetcher{
		&directFetcher{c: c},
		&trackListFetcher{c: c},
		&watchPageFetcher{c: c},
	}
}

// statusError carries a non-2xx HTTP status through the retry loop.
type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.status, e.url)
}

// transientStatus reports whether a status is worth retrying.
func transientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// fetch GETs a URL with bounded retry and exponential backoff on transient
// statuses. Non-transient failures return immediately.
func (c *Client) fetch(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxAttempts {
		if attempt > 0 {
			backoff := time.Duration(float64(c.backoffBase) * math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doFetch(ctx, rawURL, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if se, ok := err.(*statusError); ok && !transientStatus(se.status) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) doFetch(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{status: resp.StatusCode, url: rawURL}
	}

	return io.ReadAll(resp.Body)
}

// fetchTimedText retrieves and parses one caption URL, enforcing the
// acceptance thresholds.
func (c *Client) fetchTimedText(ctx context.Context, captionURL string, lang string, source Source) (*TranscriptResult, error) {
	body, err := c.fetch(ctx, captionURL, nil)
	if err != nil {
		return nil, err
	}

	segments, text := parseTimedText(string(body))
	res := &TranscriptResult{
		Transcript: text,
		Segments:   segments,
		Lang:       lang,
		Source:     source,
	}
	if !res.Usable(c.minSegments, c.minChars) {
		return nil, fmt.Errorf("caption payload too small: %d segments, %d chars", len(segments), len(text))
	}
	return res, nil
}
