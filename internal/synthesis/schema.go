package synthesis

// Schema is a JSON-schema fragment passed to the generator as a
// structured-output constraint. The constraint is a hint, not a guarantee;
// see decode.go for the recovery path.
type Schema struct {
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

func noAdditional() *bool {
	f := false
	return &f
}

// noteSchema is the full note document shape: all fields required, no
// additional properties.
func noteSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"title":   {Type: "string", Description: "Concise title for the notes"},
			"summary": {Type: "string", Description: "2-4 sentence overview of the video"},
			"keyPoints": {
				Type:        "array",
				Description: "The most important takeaways, in order",
				Items:       &Schema{Type: "string"},
			},
			"sections": {
				Type:        "array",
				Description: "Detailed notes split into titled sections",
				Items: &Schema{
					Type: "object",
					Properties: map[string]*Schema{
						"title":     {Type: "string"},
						"timestamp": {Type: "string", Description: "Timestamp like 12:34 where the section starts, or empty"},
						"content":   {Type: "string"},
					},
					Required:             []string{"title", "timestamp", "content"},
					AdditionalProperties: noAdditional(),
				},
			},
		},
		Required:             []string{"title", "summary", "keyPoints", "sections"},
		AdditionalProperties: noAdditional(),
	}
}

// chunkSchema is the narrower per-chunk shape used in map-reduce mode.
func chunkSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"chunkSummary": {Type: "string", Description: "Summary of this portion of the transcript"},
			"chunkKeyPoints": {
				Type:        "array",
				Description: "Key points from this portion only",
				Items:       &Schema{Type: "string"},
			},
		},
		Required:             []string{"chunkSummary", "chunkKeyPoints"},
		AdditionalProperties: noAdditional(),
	}
}
