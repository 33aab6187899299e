package generation

import (
	"time"

	"github.com/adolfohrq/prdgen/internal/infra/llm"
	"github.com/adolfohrq/prdgen/pkg/uuid"
)

// TopicGenerationCompleted is published once per recipe invocation.
const TopicGenerationCompleted = "generation.completed"

// Outcome classifies a finished recipe.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeEmpty   Outcome = "empty"
	OutcomeError   Outcome = "error"
)

// Event describes one finished recipe. Prompts and outputs are not included.
type Event struct {
	ID           string         `json:"id"`
	Recipe       string         `json:"recipe"`
	Model        llm.ModelID    `json:"model"`
	Provider     llm.ProviderID `json:"provider"`
	Outcome      Outcome        `json:"outcome"`
	LatencyMs    int64          `json:"latencyMs"`
	FallbackUsed bool           `json:"fallbackUsed"`
	Error        string         `json:"error,omitempty"`
	OccurredAt   time.Time      `json:"occurredAt"`
}

// EventPublisher is the subset of the event bus the orchestrator needs.
type EventPublisher interface {
	Publish(topic string, payload any)
}

func newEvent(recipe string, meta callMeta, outcome Outcome, err error) Event {
	evt := Event{
		ID:           uuid.NewV7(),
		Recipe:       recipe,
		Model:        meta.model,
		Provider:     meta.provider,
		Outcome:      outcome,
		LatencyMs:    meta.latency.Milliseconds(),
		FallbackUsed: meta.fallbackUsed,
		OccurredAt:   time.Now().UTC(),
	}
	if err != nil {
		evt.Error = err.Error()
	}
	return evt
}
