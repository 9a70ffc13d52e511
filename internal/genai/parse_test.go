package genai

import "testing"

const goodArray = `[{"question":"What is a slice?","options":["a","b","c","d"],"answer":"A"},
{"question":"What is a map?","options":["a","b","c","d"],"answer":"C"}]`

func TestParseQuestionsPlainArray(t *testing.T) {
	out, err := ParseQuestions(goodArray)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d questions, want 2", len(out))
	}
	if out[0].Question != "What is a slice?" || out[0].Answer != "A" {
		t.Fatalf("first question = %+v", out[0])
	}
	if out[1].Options != [4]string{"a", "b", "c", "d"} {
		t.Fatalf("options = %+v", out[1].Options)
	}
}

func TestParseQuestionsFencedAndProse(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n" + goodArray + "\n```"},
		{"bare fence", "```\n" + goodArray + "\n```"},
		{"surrounding prose", "Sure! Here are your questions:\n" + goodArray + "\nHope that helps."},
		{"fence and prose", "Here you go:\n```json\n" + goodArray + "\n```"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ParseQuestions(tc.raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(out) != 2 {
				t.Fatalf("got %d questions, want 2", len(out))
			}
		})
	}
}

func TestParseQuestionsRejectsBadContent(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no array", "I could not generate questions."},
		{"not json", "[this is not json]"},
		{"empty question", `[{"question":"","options":["a","b","c","d"],"answer":"A"}]`},
		{"three options", `[{"question":"q","options":["a","b","c"],"answer":"A"}]`},
		{"empty answer", `[{"question":"q","options":["a","b","c","d"],"answer":""}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseQuestions(tc.raw); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}
