// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\n?(.*?)```")

// ParseJSONObject recovers a JSON object from a free-form oracle reply.
// Code fences are stripped, then the text is decoded directly; failing that,
// the first balanced {...} substring is decoded. Numbers are kept as
// json.Number. It reports false when no object can be recovered.
func ParseJSONObject(raw string) (map[string]any, bool) {
	text := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if obj, ok := decodeObject(text); ok {
		return obj, true
	}
	if sub, ok := firstBalancedObject(text); ok {
		return decodeObject(sub)
	}
	// The fence may have held something else; give the whole reply a try.
	if sub, ok := firstBalancedObject(raw); ok {
		return decodeObject(sub)
	}
	return nil, false
}

// decodeObject decodes s as exactly one JSON object.
func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if strings.TrimSpace(s[dec.InputOffset():]) != "" {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// firstBalancedObject returns the substring from the first '{' to its
// matching '}', skipping braces inside JSON strings.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
