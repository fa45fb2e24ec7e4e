package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL         = "https://openrouter.ai/api/v1"
	defaultGenerateTimeout = 120 * time.Second
	defaultRequestsPerSec  = 0.5
)

// Terminal generator failure classes. The boundary layer maps these to
// distinct user-facing codes, so they must survive wrapping (errors.Is).
var (
	ErrRateLimited     = errors.New("generation service rate limited")
	ErrPaymentRequired = errors.New("generation service quota exhausted")
	ErrEmptyResponse   = errors.New("generation service returned empty content")
)

// Message is a chat message in the generator API format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces structured text completions.
type Generator interface {
	Generate(ctx context.Context, messages []Message, schema *Schema) (string, error)
}

// Client calls an OpenRouter-compatible chat completion API with a
// JSON-schema output constraint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	referer    string
	title      string
}

// NewClient creates a generator client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: defaultGenerateTimeout,
		},
		// Paces the calls a single request issues back to back in
		// map-reduce mode, so one long video cannot burst the API.
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSec), 1),
		referer: "https://github.com/kalambet/ytnotes",
		title:   "ytnotes",
	}
}

// NewClientWithBaseURL creates a client pointing at a custom
// OpenRouter-compatible endpoint.
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	c := NewClient(apiKey, model)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// chatRequest is the JSON body for POST /chat/completions.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string       `json:"type"`
	JSONSchema *namedSchema `json:"json_schema,omitempty"`
}

type namedSchema struct {
	Name   string  `json:"name"`
	Strict bool    `json:"strict"`
	Schema *Schema `json:"schema"`
}

// chatResponse is the part of the completion response we consume. Content
// may arrive either as free text or as a tool-call arguments payload.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends one chat completion request and returns the raw response
// content. Status classification: 429 wraps ErrRateLimited, 402 wraps
// ErrPaymentRequired, other non-2xx are generic generation failures. No
// in-client retry: both throttling and quota exhaustion are terminal for
// the request and surfaced distinctly.
func (c *Client) Generate(ctx context.Context, messages []Message, schema *Schema) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req := chatRequest{
		Model:    c.model,
		Messages: messages,
	}
	if schema != nil {
		req.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &namedSchema{
				Name:   "notes",
				Strict: true,
				Schema: schema,
			},
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("HTTP-Referer", c.referer)
	httpReq.Header.Set("X-Title", c.title)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w (HTTP %d)", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusPaymentRequired:
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w (HTTP %d)", ErrPaymentRequired, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	content := extractContent(result)
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// extractContent prefers a structured tool-call payload over free text.
func extractContent(r chatResponse) string {
	if len(r.Choices) == 0 {
		return ""
	}
	msg := r.Choices[0].Message
	if len(msg.ToolCalls) > 0 && msg.ToolCalls[0].Function.Arguments != "" {
		return msg.ToolCalls[0].Function.Arguments
	}
	return msg.Content
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
