// Package parse turns raw model completions into JSON documents on disk.
//
// Vision models routinely wrap their JSON in prose or fenced code blocks
// despite being told not to, so extraction is best-effort: a direct decode
// first, then a scan for the first balanced JSON object embedded in the
// text. There is no recovery beyond that — a completion with no decodable
// object is malformed, full stop.
package parse

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mmr-tortoise/receipted/internal/model"
)

// ExtractJSON locates and decodes the JSON object in a raw completion.
//
// The fast path decodes the whole (trimmed) text directly. When that
// fails, the text is scanned for the first balanced {...} span — which
// handles leading prose, trailing commentary, and ```json fences, since
// the fence markers simply fall outside the balanced span.
//
// Returns model.ErrMalformedJSON when no decodable object is found.
func ExtractJSON(raw string) (model.Document, error) {
	var doc model.Document

	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), &doc); err == nil {
		return doc, nil
	}

	candidate, ok := firstBalancedObject(trimmed)
	if !ok {
		return nil, model.ErrMalformedJSON
	}
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedJSON, err)
	}
	return doc, nil
}

// firstBalancedObject returns the first {...} span of raw with balanced
// braces, honoring JSON string literals so that braces inside strings
// (e.g., a vendor name containing "{") do not confuse the count.
func firstBalancedObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	// Ran out of input with unbalanced braces — truncated completion.
	return "", false
}

// Persist writes the document as indented JSON to targetPath, overwriting
// any existing file of the same name. The output ends with a newline so
// the files are friendly to line-oriented tools.
func Persist(doc model.Document, targetPath string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(targetPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", targetPath, err)
	}
	return nil
}
