// Package synthesis turns a timestamped transcript into a structured note
// document via a schema-constrained text generator.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kalambet/ytnotes/internal/transcript"
)

// DefaultDirectCeiling is the transcript length above which synthesis
// switches from one direct call to map-reduce over chunks. Configurable
// policy, like the chunking constants.
const DefaultDirectCeiling = 23000

// Section is one titled block of the note document.
type Section struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`
}

// NoteDocument is the final synthesis artifact.
type NoteDocument struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	KeyPoints []string  `json:"keyPoints"`
	Sections  []Section `json:"sections"`
}

// ChunkSummary is the per-chunk intermediate in map-reduce mode.
type ChunkSummary struct {
	ChunkSummary   string   `json:"chunkSummary"`
	ChunkKeyPoints []string `json:"chunkKeyPoints"`
}

// Options configures a Synthesizer. Zero values fall back to defaults.
type Options struct {
	DirectCeiling int
	ChunkSize     int
	MaxChunks     int
}

// Synthesizer orchestrates generator calls to produce a NoteDocument.
type Synthesizer struct {
	gen           Generator
	directCeiling int
	chunkSize     int
	maxChunks     int
}

// New creates a Synthesizer over the given generator.
func New(gen Generator, opts Options) *Synthesizer {
	s := &Synthesizer{
		gen:           gen,
		directCeiling: opts.DirectCeiling,
		chunkSize:     opts.ChunkSize,
		maxChunks:     opts.MaxChunks,
	}
	if s.directCeiling <= 0 {
		s.directCeiling = DefaultDirectCeiling
	}
	if s.chunkSize <= 0 {
		s.chunkSize = transcript.DefaultChunkSize
	}
	if s.maxChunks <= 0 {
		s.maxChunks = transcript.DefaultMaxChunks
	}
	return s
}

// Synthesize produces note documents from a timestamped transcript. Short
// transcripts go through one direct call; long ones are map-reduced:
// sequential per-chunk summaries, then one final call over the combined
// summaries. Chunk calls run sequentially; the generator client paces
// them against its rate limit.
func (s *Synthesizer) Synthesize(ctx context.Context, meta Meta, timestamped string) (*NoteDocument, error) {
	if len(timestamped) <= s.directCeiling {
		slog.Debug("synthesizing directly", "chars", len(timestamped))
		return s.synthesizeDirect(ctx, meta, timestamped)
	}

	chunks := transcript.Chunk(timestamped, s.chunkSize, s.maxChunks)
	slog.Debug("synthesizing chunked", "chars", len(timestamped), "chunks", len(chunks))

	summaries := make([]ChunkSummary, 0, len(chunks))
	for i, chunk := range chunks {
		summary, err := s.summarizeChunk(ctx, i+1, len(chunks), chunk)
		if err != nil {
			return nil, fmt.Errorf("summarizing chunk %d/%d: %w", i+1, len(chunks), err)
		}
		summaries = append(summaries, summary)
	}

	return s.synthesizeDirect(ctx, meta, combinedDocument(summaries))
}

func (s *Synthesizer) synthesizeDirect(ctx context.Context, meta Meta, document string) (*NoteDocument, error) {
	raw, err := s.gen.Generate(ctx, []Message{
		{Role: "system", Content: SystemPrompt(meta.VideoType)},
		{Role: "user", Content: userPrompt(meta, document)},
	}, noteSchema())
	if err != nil {
		return nil, err
	}

	var doc NoteDocument
	if err := DecodeLenient(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Synthesizer) summarizeChunk(ctx context.Context, index, total int, chunk string) (ChunkSummary, error) {
	raw, err := s.gen.Generate(ctx, []Message{
		{Role: "system", Content: chunkSystemPrompt},
		{Role: "user", Content: chunkUserPrompt(index, total, chunk)},
	}, chunkSchema())
	if err != nil {
		return ChunkSummary{}, err
	}

	var summary ChunkSummary
	if err := DecodeLenient(raw, &summary); err != nil {
		return ChunkSummary{}, err
	}
	return summary, nil
}
