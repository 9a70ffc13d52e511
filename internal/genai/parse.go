package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSONArray = errors.New("no JSON array in provider output")

// ParseQuestions normalizes raw model output into GeneratedQuestions. Models
// routinely wrap the payload in markdown fences or surrounding prose, so the
// parser strips fences and then cuts from the first '[' to the last ']'
// before unmarshalling.
func ParseQuestions(raw string) ([]GeneratedQuestion, error) {
	text := stripFences(strings.TrimSpace(raw))

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, errNoJSONArray
	}
	text = text[start : end+1]

	var items []struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
		Answer   string   `json:"answer"`
	}
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("unmarshal question array: %w", err)
	}

	out := make([]GeneratedQuestion, 0, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.Question) == "" {
			return nil, fmt.Errorf("question %d: empty question text", i)
		}
		if len(it.Options) != 4 {
			return nil, fmt.Errorf("question %d: expected 4 options, got %d", i, len(it.Options))
		}
		if strings.TrimSpace(it.Answer) == "" {
			return nil, fmt.Errorf("question %d: empty answer", i)
		}
		q := GeneratedQuestion{Question: it.Question, Answer: it.Answer}
		copy(q.Options[:], it.Options)
		out = append(out, q)
	}
	return out, nil
}

func stripFences(s string) string {
	if strings.HasPrefix(s, "```json") {
		s = strings.Replace(s, "```json", "", 1)
		s = strings.ReplaceAll(s, "```", "")
	} else if strings.HasPrefix(s, "```") {
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}
