package synthesis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports that generator output could not be decoded even after
// every repair pass. Raw is truncated for log safety.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse generator output as JSON: %s", truncate(e.Raw, 200))
}

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// DecodeLenient decodes generator output into v, tolerating the ways
// models degrade under load: prose around the JSON, markdown fences,
// trailing commas. Stages, in order:
//  1. strict parse of the whole string
//  2. the first fenced ```json block
//  3. the slice from the first '{' to the last '}'
//  4. stage 3 with trailing commas stripped
//
// Schema constraints on the generator reduce how often the later stages
// run; they do not make them unnecessary.
func DecodeLenient(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &ParseError{Raw: raw}
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	if m := fencedJSONRe.FindStringSubmatch(trimmed); m != nil {
		if err := json.Unmarshal([]byte(m[1]), v); err == nil {
			return nil
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return &ParseError{Raw: raw}
	}
	sliced := trimmed[start : end+1]
	if err := json.Unmarshal([]byte(sliced), v); err == nil {
		return nil
	}

	repaired := trailingCommaRe.ReplaceAllString(sliced, "$1")
	if err := json.Unmarshal([]byte(repaired), v); err == nil {
		return nil
	}

	return &ParseError{Raw: raw}
}
