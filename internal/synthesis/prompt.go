package synthesis

import (
	"fmt"
	"strings"
)

// VideoTypes are the recognized prompt categories. Each biases tone and
// structure; unknown input falls back to General.
var VideoTypes = []string{
	"Lecture",
	"Tutorial",
	"Motivational",
	"Review",
	"Interview",
	"General",
}

const promptBase = `You are an expert note-taker. You turn video transcripts into clear,
well-structured study notes. Work only from the transcript you are given;
never invent content the speaker did not say. Use the [m:ss] timestamps in
the transcript to fill each section's timestamp field. Respond with JSON
only, matching the requested schema exactly.`

var typeInstructions = map[string]string{
	"lecture": `This is an academic lecture. Preserve definitions, theorems and the
lecturer's line of argument. Key points should read like exam revision notes.`,
	"tutorial": `This is a hands-on tutorial. Capture each step in order, including
commands, settings and gotchas the presenter mentions. Sections should follow
the steps of the tutorial.`,
	"motivational": `This is a motivational talk. Capture the core message, the stories
used to support it, and any practical advice. Keep the speaker's framing.`,
	"review": `This is a product or media review. Capture what is being reviewed, the
reviewer's criteria, pros and cons, and the final verdict.`,
	"interview": `This is an interview or Q&A. Organize sections around the questions
asked and preserve who said what where it matters.`,
	"general": `Summarize the video faithfully, organizing sections around its natural
topic shifts.`,
}

// SystemPrompt returns the system message for a video-type category.
func SystemPrompt(videoType string) string {
	instr, ok := typeInstructions[strings.ToLower(strings.TrimSpace(videoType))]
	if !ok {
		instr = typeInstructions["general"]
	}
	return promptBase + "\n\n" + instr
}

// Meta is the display context for a synthesis call. Title may be empty when
// the metadata lookup failed; correctness never depends on it.
type Meta struct {
	VideoTitle string
	VideoURL   string
	VideoType  string
	Duration   string
}

func userPrompt(meta Meta, transcript string) string {
	var sb strings.Builder
	if meta.VideoTitle != "" {
		fmt.Fprintf(&sb, "Video title: %s\n", meta.VideoTitle)
	}
	if meta.VideoURL != "" {
		fmt.Fprintf(&sb, "Video URL: %s\n", meta.VideoURL)
	}
	if meta.Duration != "" && meta.Duration != "Unknown" {
		fmt.Fprintf(&sb, "Duration: %s\n", meta.Duration)
	}
	sb.WriteString("\nTimestamped transcript:\n")
	sb.WriteString(transcript)
	return sb.String()
}

const chunkSystemPrompt = `You summarize one portion of a longer video transcript. Summarize
strictly what is present in this portion; do not speculate about the rest of
the video or add outside knowledge. Respond with JSON only, matching the
requested schema exactly.`

func chunkUserPrompt(index, total int, chunk string) string {
	return fmt.Sprintf("Portion %d of %d of the transcript:\n\n%s", index, total, chunk)
}

// combinedDocument flattens chunk summaries into the document the final
// reduce call synthesizes from.
func combinedDocument(summaries []ChunkSummary) string {
	var sb strings.Builder
	for i, s := range summaries {
		fmt.Fprintf(&sb, "Part %d of %d:\n%s\n", i+1, len(summaries), s.ChunkSummary)
		for _, kp := range s.ChunkKeyPoints {
			fmt.Fprintf(&sb, "- %s\n", kp)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
