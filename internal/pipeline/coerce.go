package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CoerceModelResponse pulls one JSON object out of a model reply that may be
// wrapped in prose or Markdown fences. It takes the text from the first '{'
// to the last '}' and decodes it. ok is false when there are no braces or
// the span does not decode as an object.
func CoerceModelResponse(raw string) (map[string]interface{}, bool) {
	clean, found := cleanModelJSON(raw)
	if !found {
		return nil, false
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

// cleanModelJSON returns the span from the first '{' to the last '}'.
func cleanModelJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

var rawTextFieldRe = regexp.MustCompile(`"raw_text"\s*:\s*("(?:[^"\\]|\\.)*")`)

// transcriptFromResponse recovers the text an image reply transcribed when the
// reply as a whole could not be coerced: the "raw_text" string if one is
// present, otherwise the reply itself.
func transcriptFromResponse(raw string) string {
	if m := rawTextFieldRe.FindStringSubmatch(raw); m != nil {
		var s string
		if err := json.Unmarshal([]byte(m[1]), &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(raw)
}
