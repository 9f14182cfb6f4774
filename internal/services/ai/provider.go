package ai

import (
	"context"
)

// Provider is the interface for AI providers. Implementations must be safe
// for concurrent use; calls are single-attempt and failures are recovered by
// callers with local fallback content.
type Provider interface {
	// SuggestHabits returns short wellbeing-habit suggestions that bridge
	// the previous and next task. Either task may be nil.
	SuggestHabits(ctx context.Context, prevTask, nextTask *string) ([]string, error)

	// SummarizeDay turns the day's completed tasks into a short warm
	// summary. Returns "" on failure; callers apply the local fallback.
	SummarizeDay(ctx context.Context, tasks []string) (string, error)

	// GenerateIllustration generates a diary illustration for the day and
	// returns its URL. Returns "" on failure; callers render a placeholder.
	GenerateIllustration(ctx context.Context, focus string, tasks []string) (string, error)
}

const (
	// MinSuggestions is the guaranteed lower bound of a suggestion response.
	MinSuggestions = 3
	// MaxSuggestions caps a suggestion response.
	MaxSuggestions = 5
)

// fallbackCandidates are the built-in habit suggestions used when the AI
// call fails, returns too little, or there is no context to prompt with.
var fallbackCandidates = []string{"깊은 숨 2분", "물 한잔", "짧은 산책", "스트레칭"}

// FallbackCandidates returns a copy of the built-in suggestion pool.
func FallbackCandidates() []string {
	out := make([]string, len(fallbackCandidates))
	copy(out, fallbackCandidates)
	return out
}
