package generation

import (
	"context"
	"sync"

	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// stubProvider is a programmable llm.MultimodalProvider. Unset hooks return "".
type stubProvider struct {
	id llm.ProviderID

	mu    sync.Mutex
	calls []stubCall

	text       func(llm.TextRequest) (string, error)
	structured func(llm.StructuredRequest) (string, error)
	grounded   func(llm.GroundedRequest) (string, error)
	withImage  func(llm.ImageRequest) (string, error)
	synth      func(llm.SynthesisRequest) (*llm.Image, error)
}

type stubCall struct {
	op     string
	model  llm.ModelID
	apiKey string
}

func (s *stubProvider) record(op string, model llm.ModelID, key string) {
	s.mu.Lock()
	s.calls = append(s.calls, stubCall{op: op, model: model, apiKey: key})
	s.mu.Unlock()
}

func (s *stubProvider) Calls() []stubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stubCall(nil), s.calls...)
}

func (s *stubProvider) ID() llm.ProviderID { return s.id }

func (s *stubProvider) GenerateText(_ context.Context, req llm.TextRequest) (string, error) {
	s.record("text", req.Model, req.APIKey)
	if s.text == nil {
		return "", nil
	}
	return s.text(req)
}

func (s *stubProvider) GenerateStructured(_ context.Context, req llm.StructuredRequest) (string, error) {
	s.record("structured", req.Model, req.APIKey)
	if s.structured == nil {
		return "", nil
	}
	return s.structured(req)
}

func (s *stubProvider) Chat(_ context.Context, req llm.ChatRequest) (string, error) {
	s.record("chat", req.Model, req.APIKey)
	return "", nil
}

func (s *stubProvider) HealthCheck(_ context.Context) error { return nil }

func (s *stubProvider) GenerateWithImage(_ context.Context, req llm.ImageRequest) (string, error) {
	s.record("image", req.Model, "")
	if s.withImage == nil {
		return "", nil
	}
	return s.withImage(req)
}

func (s *stubProvider) SynthesizeImage(_ context.Context, req llm.SynthesisRequest) (*llm.Image, error) {
	s.record("synth", req.Model, "")
	if s.synth == nil {
		return nil, llm.ErrEmptyResponse
	}
	return s.synth(req)
}

func (s *stubProvider) GenerateGrounded(_ context.Context, req llm.GroundedRequest) (string, error) {
	s.record("grounded", req.Model, "")
	if s.grounded == nil {
		return "", nil
	}
	return s.grounded(req)
}

// captureBus records published events.
type captureBus struct {
	mu     sync.Mutex
	events []Event
}

func (b *captureBus) Publish(_ string, payload any) {
	if evt, ok := payload.(Event); ok {
		b.mu.Lock()
		b.events = append(b.events, evt)
		b.mu.Unlock()
	}
}

func (b *captureBus) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

func authError() error {
	return &llm.ProviderError{Provider: llm.ProviderGemini, Operation: "generateStructured", StatusCode: 400, Message: "API key not valid. Please pass a valid API key. [INVALID_ARGUMENT]"}
}

func newTestOrchestrator(gemini, groq *stubProvider, bus EventPublisher) *Orchestrator {
	providers := []llm.Provider{}
	if gemini != nil {
		providers = append(providers, gemini)
	}
	if groq != nil {
		providers = append(providers, groq)
	}
	return NewOrchestrator(llm.NewRegistry(providers...), Options{
		DefaultModel:  "gemini-2.5-pro",
		FallbackModel: "gemini-2.5-flash",
		Events:        bus,
	})
}

func testDoc() *Document {
	return &Document{Title: "TaskFox", Idea: "A todo app for foxes"}
}
