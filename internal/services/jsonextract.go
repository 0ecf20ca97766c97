package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSONObject decodes one JSON object out of free-form model
// output. Models regularly wrap the object in a markdown code fence or
// surround it with prose; fencing is stripped first, then a bare
// object is cut out of any remaining text. Parse failure means "no
// structured result", never a crash.
func ExtractJSONObject(text string, out any) error {
	s := strings.TrimSpace(text)
	if s == "" {
		return fmt.Errorf("empty model output")
	}

	if m := fencedBlockRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	if !strings.HasPrefix(s, "{") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start < 0 || end <= start {
			return fmt.Errorf("no JSON object in model output")
		}
		s = s[start : end+1]
	}

	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("parse model JSON: %w", err)
	}
	return nil
}
