package api

import (
	"fmt"
	"strings"

	"github.com/kalambet/ytnotes/internal/synthesis"
)

// assemble validates the synthesized document and merges in computed
// metadata. A document failing validation is rejected whole rather than
// forwarded partially populated.
func assemble(doc *synthesis.NoteDocument, req NotesRequest, videoTitle, duration string) (*Notes, error) {
	if strings.TrimSpace(doc.Title) == "" {
		return nil, fmt.Errorf("generated document has an empty title")
	}
	if strings.TrimSpace(doc.Summary) == "" {
		return nil, fmt.Errorf("generated document has an empty summary")
	}
	if len(doc.KeyPoints) == 0 {
		return nil, fmt.Errorf("generated document has no key points")
	}
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("generated document has no sections")
	}

	videoType := strings.TrimSpace(req.VideoType)
	if videoType == "" {
		videoType = "General"
	}

	return &Notes{
		Title:      doc.Title,
		Summary:    doc.Summary,
		KeyPoints:  doc.KeyPoints,
		Sections:   doc.Sections,
		VideoURL:   req.VideoURL,
		VideoTitle: videoTitle,
		VideoType:  videoType,
		Duration:   duration,
	}, nil
}
