package genai

import (
	"context"
	"fmt"
)

// GeneratedQuestion is the normalized output of a provider: one MCQ with four
// options and the letter of the correct one.
type GeneratedQuestion struct {
	Question string    `json:"question"`
	Options  [4]string `json:"options"`
	Answer   string    `json:"answer"` // "A".."D", or the full option text for some providers
}

// Generator produces a batch of MCQs for a topic. Implementations isolate the
// provider-specific payload shape; callers only see normalized questions or a
// *GenerationError.
type Generator interface {
	Generate(ctx context.Context, topicTitle, difficulty string, count int) ([]GeneratedQuestion, error)
	// IsAvailable is a cheap liveness probe. False means the provider is
	// unreachable, which callers may use to skip straight to a degraded flow
	// instead of paying for a full generation attempt.
	IsAvailable(ctx context.Context) bool
}

// GenerationError covers every way a provider call can fail: unreachable,
// timed out, provider-reported error, or content that does not parse as a
// well-formed question array. Unavailable distinguishes "could not reach the
// provider" from "provider returned garbage".
type GenerationError struct {
	Provider    string
	Unavailable bool
	Err         error
}

func (e *GenerationError) Error() string {
	if e.Unavailable {
		return fmt.Sprintf("%s: provider unavailable: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func genErr(provider string, err error) error {
	return &GenerationError{Provider: provider, Err: err}
}

func unavailableErr(provider string, err error) error {
	return &GenerationError{Provider: provider, Unavailable: true, Err: err}
}

// mcqPrompt asks for JSON only; providers still wrap it in prose or fences
// often enough that ParseQuestions has to dig the array out.
func mcqPrompt(topicTitle, difficulty string, count int) string {
	return fmt.Sprintf(
		"Generate EXACTLY %d distinct MCQ questions on topic: %s with difficulty: %s. "+
			"Return JSON ONLY in format of a JSON array with %d objects. Format example:\n"+
			`[{"question":"...","options":["Option 1","Option 2","Option 3","Option 4"],"answer":"A"}]`,
		count, topicTitle, difficulty, count)
}
