package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeGenerator struct {
	calls     int
	responses []string
	err       error
	schemas   []*Schema
	prompts   []string
}

func (g *fakeGenerator) Generate(_ context.Context, messages []Message, schema *Schema) (string, error) {
	g.calls++
	g.schemas = append(g.schemas, schema)
	if len(messages) > 0 {
		g.prompts = append(g.prompts, messages[len(messages)-1].Content)
	}
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", ErrEmptyResponse
	}
	resp := g.responses[0]
	if len(g.responses) > 1 {
		g.responses = g.responses[1:]
	}
	return resp, nil
}

const noteJSON = `{
	"title": "Linear Algebra, Lecture 3",
	"summary": "Covers vector spaces and subspaces.",
	"keyPoints": ["A subspace must contain the zero vector."],
	"sections": [
		{"title": "Vector spaces", "timestamp": "0:00", "content": "Definition and axioms."}
	]
}`

const chunkJSON = `{"chunkSummary": "Part covered subspaces.", "chunkKeyPoints": ["Closed under addition."]}`

func TestSynthesizeDirect(t *testing.T) {
	gen := &fakeGenerator{responses: []string{noteJSON}}
	s := New(gen, Options{})

	doc, err := s.Synthesize(context.Background(), Meta{VideoType: "Lecture"}, "[0:00] short transcript")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected 1 generator call, got %d", gen.calls)
	}
	if doc.Title != "Linear Algebra, Lecture 3" {
		t.Errorf("unexpected title %q", doc.Title)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Timestamp != "0:00" {
		t.Errorf("unexpected sections %+v", doc.Sections)
	}
	if gen.schemas[0].Properties["sections"] == nil {
		t.Error("direct call should use the note schema")
	}
}

func TestSynthesizeChunked(t *testing.T) {
	// 50k chars at the default 18k chunk size splits into 3 chunks, so the
	// run should take exactly 3 chunk calls plus 1 final call.
	long := strings.Repeat("[0:00] vector spaces and subspaces\n", 1429)
	if len(long) < 50000 {
		t.Fatalf("fixture too short: %d", len(long))
	}

	gen := &fakeGenerator{responses: []string{chunkJSON, chunkJSON, chunkJSON, noteJSON}}
	s := New(gen, Options{})

	doc, err := s.Synthesize(context.Background(), Meta{VideoType: "lecture"}, long)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gen.calls != 4 {
		t.Fatalf("expected 4 generator calls, got %d", gen.calls)
	}
	if doc.Summary == "" {
		t.Error("expected a summary from the final call")
	}
	for i := 0; i < 3; i++ {
		if gen.schemas[i].Properties["chunkSummary"] == nil {
			t.Errorf("call %d should use the chunk schema", i)
		}
		want := fmt.Sprintf("Portion %d of 3", i+1)
		if !strings.Contains(gen.prompts[i], want) {
			t.Errorf("call %d prompt missing %q", i, want)
		}
	}
	if gen.schemas[3].Properties["sections"] == nil {
		t.Error("final call should use the note schema")
	}
	if !strings.Contains(gen.prompts[3], "Part 1 of 3") {
		t.Error("final prompt should combine the chunk summaries")
	}
}

func TestSynthesizePaymentRequired(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("chat request: %w", ErrPaymentRequired)}
	s := New(gen, Options{})

	_, err := s.Synthesize(context.Background(), Meta{}, "[0:00] transcript")
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected the run to stop after the failing call, got %d calls", gen.calls)
	}
}

func TestSynthesizeRateLimitedStopsChunkRun(t *testing.T) {
	long := strings.Repeat("[0:00] vector spaces and subspaces\n", 1429)
	gen := &fakeGenerator{err: fmt.Errorf("chat request: %w", ErrRateLimited)}
	s := New(gen, Options{})

	_, err := s.Synthesize(context.Background(), Meta{}, long)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("a rate limit on chunk 1 should stop the run, got %d calls", gen.calls)
	}
}

func TestSynthesizeParseError(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"the model wrote prose instead of JSON"}}
	s := New(gen, Options{})

	_, err := s.Synthesize(context.Background(), Meta{}, "[0:00] transcript")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestSynthesizeCustomCeiling(t *testing.T) {
	gen := &fakeGenerator{responses: []string{chunkJSON, noteJSON}}
	s := New(gen, Options{DirectCeiling: 10, ChunkSize: 100, MaxChunks: 6})

	_, err := s.Synthesize(context.Background(), Meta{}, strings.Repeat("a", 50))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("expected 1 chunk call and 1 final call, got %d", gen.calls)
	}
}

func TestSystemPromptFallback(t *testing.T) {
	for _, vt := range []string{"Lecture", "tutorial", " REVIEW "} {
		if SystemPrompt(vt) == SystemPrompt("general") {
			t.Errorf("%q should get a specific instruction", vt)
		}
	}
	if SystemPrompt("podcast") != SystemPrompt("general") {
		t.Error("unknown types should fall back to the general instruction")
	}
}
