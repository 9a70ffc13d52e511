package grading

import (
	"context"
	"testing"
)

func TestMCQExactMatch(t *testing.T) {
	g := NewDefaultGrader()
	cases := []struct {
		name      string
		answer    string
		wantMarks int
	}{
		{"correct", "A", 1},
		{"correct with whitespace", " A ", 1},
		{"wrong", "B", 0},
		{"empty", "", 0},
		{"lowercase is wrong", "a", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := g.Grade(context.Background(), Q{Type: "MCQ", CorrectAnswer: "A"}, tc.answer)
			if err != nil {
				t.Fatalf("grade: %v", err)
			}
			if !res.Graded || res.NeedsManual {
				t.Fatalf("MCQ must be auto-graded, got %+v", res)
			}
			if res.Marks != tc.wantMarks {
				t.Fatalf("marks = %d, want %d", res.Marks, tc.wantMarks)
			}
		})
	}
}

func TestSAQNeedsManualReview(t *testing.T) {
	g := NewDefaultGrader()
	res, err := g.Grade(context.Background(), Q{Type: "SAQ"}, "an essay")
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Graded || !res.NeedsManual || res.Marks != 0 {
		t.Fatalf("SAQ result = %+v, want ungraded manual review", res)
	}
}

func TestUnknownTypeFallsToManual(t *testing.T) {
	g := NewDefaultGrader()
	res, err := g.Grade(context.Background(), Q{Type: "ESSAY"}, "x")
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !res.NeedsManual {
		t.Fatalf("unknown type must route to manual review, got %+v", res)
	}
}

func TestNoTrimOption(t *testing.T) {
	g := NewDefaultGrader(WithTrimAnswers(false))
	res, err := g.Grade(context.Background(), Q{Type: "MCQ", CorrectAnswer: "A"}, " A ")
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Marks != 0 {
		t.Fatalf("marks = %d, want 0 without trimming", res.Marks)
	}
}
