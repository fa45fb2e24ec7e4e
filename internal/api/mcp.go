package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/ytnotes/internal/synthesis"
)

// NewMCPServer creates an MCP server exposing the pipeline to agent
// clients over stdio. The tools mirror the HTTP surface.
func NewMCPServer(svc *Service) *server.MCPServer {
	s := server.NewMCPServer(
		"ytnotes",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("ytnotes — turns YouTube video transcripts into structured study notes."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("video_notes",
			mcp.WithDescription("Generate structured study notes from a YouTube video's transcript."),
			mcp.WithString("url", mcp.Description("YouTube video URL"), mcp.Required()),
			mcp.WithString("video_type", mcp.Description("Content category biasing the notes: "+strings.Join(synthesis.VideoTypes, ", "))),
			mcp.WithString("transcript", mcp.Description("Optional transcript override; used instead of fetching when long enough")),
		),
		mcpVideoNotes(svc),
	)

	s.AddTool(
		mcp.NewTool("get_transcript",
			mcp.WithDescription("Fetch a YouTube video's transcript as timestamped text, without generating notes."),
			mcp.WithString("url", mcp.Description("YouTube video URL"), mcp.Required()),
		),
		mcpGetTranscript(svc),
	)

	return s
}

func mcpVideoNotes(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := req.RequireString("url")
		if err != nil {
			return mcpError("url is required"), nil
		}

		env := svc.GenerateNotes(ctx, NotesRequest{
			VideoURL:           url,
			VideoType:          req.GetString("video_type", ""),
			TranscriptOverride: req.GetString("transcript", ""),
		})
		if !env.Success {
			return mcpError(envelopeError(env)), nil
		}

		b, err := json.MarshalIndent(env.Notes, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode notes: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetTranscript(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := req.RequireString("url")
		if err != nil {
			return mcpError("url is required"), nil
		}

		env := svc.GetTranscript(ctx, url)
		if !env.Success {
			return mcpError(envelopeError(env)), nil
		}

		tv := env.Transcript
		header := fmt.Sprintf("Video %s (%s, source: %s)\n\n", tv.VideoID, tv.Duration, tv.Source)
		body := tv.Timestamped
		if body == "" {
			body = tv.Transcript
		}
		return mcpText(header + body), nil
	}
}

func envelopeError(env Envelope) string {
	if env.ErrorCode != "" {
		return fmt.Sprintf("%s: %s", env.ErrorCode, env.Error)
	}
	return env.Error
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
