package generation

import (
	"context"

	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// WithFallback runs attempt against primary. When that fails with an authorization error,
// primary belongs to the Gemini family and is not already the fallback model, attempt runs
// exactly once more against fallback. It returns the model that produced the final outcome.
//
// Groq has no designated fallback model, so its authorization failures are terminal.
func WithFallback[T any](ctx context.Context, primary, fallback llm.ModelID, attempt func(context.Context, llm.ModelID) (T, error)) (T, llm.ModelID, error) {
	out, err := attempt(ctx, primary)
	if err == nil || !shouldFallback(primary, fallback, err) {
		return out, primary, err
	}
	if ctx.Err() != nil {
		return out, primary, err
	}
	out, err = attempt(ctx, fallback)
	return out, fallback, err
}

func shouldFallback(primary, fallback llm.ModelID, err error) bool {
	return fallback != "" &&
		primary != fallback &&
		llm.Classify(primary) == llm.ProviderGemini &&
		llm.IsAuthorizationError(err)
}
