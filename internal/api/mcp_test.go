package api

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/ytnotes/internal/youtube"
)

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected tool content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func TestMCPTool_VideoNotes(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	svc := newTestService([]youtube.Fetcher{f}, &fakeGenerator{responses: []string{goodNoteJSON}})
	handler := mcpVideoNotes(svc)

	result, err := handler(context.Background(), makeCallToolRequest("video_notes", map[string]interface{}{
		"url":        testVideoURL,
		"video_type": "Lecture",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	text := toolText(t, result)
	if !strings.Contains(text, `"title": "Subspaces"`) {
		t.Errorf("expected the note title in the output, got: %s", text)
	}
	if !strings.Contains(text, `"duration": "10:00"`) {
		t.Errorf("expected the computed duration in the output, got: %s", text)
	}
}

func TestMCPTool_VideoNotes_MissingURL(t *testing.T) {
	svc := newTestService(nil, &fakeGenerator{responses: []string{goodNoteJSON}})
	handler := mcpVideoNotes(svc)

	result, err := handler(context.Background(), makeCallToolRequest("video_notes", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error without a url")
	}
}

func TestMCPTool_VideoNotes_PipelineFailure(t *testing.T) {
	fetchers := []youtube.Fetcher{&fakeFetcher{name: "direct", err: errNoCaptions}}
	svc := newTestService(fetchers, &fakeGenerator{responses: []string{goodNoteJSON}})
	handler := mcpVideoNotes(svc)

	result, err := handler(context.Background(), makeCallToolRequest("video_notes", map[string]interface{}{
		"url": testVideoURL,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error")
	}
	if !strings.Contains(toolText(t, result), CodeNoTranscript) {
		t.Errorf("tool error should carry the error code, got: %s", toolText(t, result))
	}
}

func TestMCPTool_GetTranscript(t *testing.T) {
	f := &fakeFetcher{name: "direct", result: lectureResult(40)}
	svc := newTestService([]youtube.Fetcher{f}, &fakeGenerator{responses: []string{goodNoteJSON}})
	handler := mcpGetTranscript(svc)

	result, err := handler(context.Background(), makeCallToolRequest("get_transcript", map[string]interface{}{
		"url": testVideoURL,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	text := toolText(t, result)
	if !strings.Contains(text, "dQw4w9WgXcQ") {
		t.Errorf("expected the video id in the header, got: %s", text)
	}
	if !strings.Contains(text, "[0:00]") {
		t.Errorf("expected timestamped lines, got: %s", text)
	}
}
