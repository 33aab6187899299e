// Package llm — provider interfaces.
// The application depends on these interfaces only, never on a concrete vendor client.
package llm

import "context"

// Provider is the capability set every adapter offers.
type Provider interface {
	// ID names the provider family this adapter talks to.
	ID() ProviderID

	// GenerateText returns the raw model text for a single prompt.
	GenerateText(ctx context.Context, req TextRequest) (string, error)

	// GenerateStructured returns raw model output that is supposed to be JSON.
	// Callers must run it through the sanitizer; adapters do not validate it.
	GenerateStructured(ctx context.Context, req StructuredRequest) (string, error)

	// Chat continues a multi-turn conversation and returns the model reply.
	Chat(ctx context.Context, req ChatRequest) (string, error)

	// HealthCheck returns nil when the upstream API is reachable with the configured credential.
	HealthCheck(ctx context.Context) error
}

// MultimodalProvider is implemented only by providers with image and search capabilities.
type MultimodalProvider interface {
	Provider

	// GenerateWithImage answers a prompt about an attached image.
	GenerateWithImage(ctx context.Context, req ImageRequest) (string, error)

	// SynthesizeImage draws a picture from a text prompt.
	SynthesizeImage(ctx context.Context, req SynthesisRequest) (*Image, error)

	// GenerateGrounded answers using the provider's web search tool.
	GenerateGrounded(ctx context.Context, req GroundedRequest) (string, error)
}
