package generation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// ============================================================================
// ActiveConfiguration
// ============================================================================

func TestOrchestrator_Defaults(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(llm.NewRegistry(), Options{})
	cfg := o.Config()
	if cfg.SelectedModel != DefaultModel {
		t.Errorf("expected default model, got %q", cfg.SelectedModel)
	}
	if cfg.HasCredential() {
		t.Error("expected no credential")
	}
	if o.FallbackModel() != DefaultFallbackModel {
		t.Errorf("unexpected fallback %q", o.FallbackModel())
	}
}

func TestOrchestrator_ApplySettings_Partial(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(llm.NewRegistry(), Options{Credential: "gsk_old"})
	model := llm.ModelID("llama-3.3-70b-versatile")
	cfg := o.ApplySettings(ConfigPatch{SelectedModel: &model})
	if cfg.SelectedModel != model || cfg.ProviderCredential != "gsk_old" {
		t.Errorf("unexpected config %+v", cfg)
	}
	key := " gsk_new "
	cfg = o.ApplySettings(ConfigPatch{ProviderCredential: &key})
	if cfg.SelectedModel != model || cfg.ProviderCredential != "gsk_new" {
		t.Errorf("unexpected config %+v", cfg)
	}
	o.SetModel("   ")
	if o.Config().SelectedModel != model {
		t.Error("blank model must be ignored")
	}
}

func TestOrchestrator_CapturesConfigurationAtInvocation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	groq := &stubProvider{id: llm.ProviderGroq, structured: func(req llm.StructuredRequest) (string, error) {
		once.Do(func() { close(started) })
		<-release
		return `{"title":"T"}`, nil
	}}
	o := newTestOrchestrator(&stubProvider{id: llm.ProviderGemini}, groq, nil)
	o.SetModel("llama-3.3-70b-versatile")
	o.SetCredential("gsk_first")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := o.SuggestProject(context.Background(), "idea"); err != nil {
			t.Errorf("SuggestProject: %v", err)
		}
	}()
	<-started
	o.SetModel("gemini-2.5-flash")
	o.SetCredential("gsk_second")
	close(release)
	<-done

	calls := groq.Calls()
	if len(calls) != 1 || calls[0].model != "llama-3.3-70b-versatile" || calls[0].apiKey != "gsk_first" {
		t.Errorf("in-flight call must keep the captured configuration, got %+v", calls)
	}
}

// ============================================================================
// Routing
// ============================================================================

func TestOrchestrator_RoutesByModelFamily(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, text: func(llm.TextRequest) (string, error) { return "from gemini", nil }}
	groq := &stubProvider{id: llm.ProviderGroq, text: func(llm.TextRequest) (string, error) { return "from groq", nil }}
	o := newTestOrchestrator(gemini, groq, nil)

	o.SetModel("llama-3.3-70b-versatile")
	o.SetCredential("gsk_test")
	got, err := o.GenerateSection(context.Background(), testDoc(), SectionOverview)
	if err != nil || got != "from groq" {
		t.Fatalf("expected groq answer, got (%q, %v)", got, err)
	}
	if c := groq.Calls(); len(c) != 1 || c[0].apiKey != "gsk_test" {
		t.Errorf("groq must receive the credential, got %+v", c)
	}

	o.SetModel("gemini-2.5-flash")
	got, err = o.GenerateSection(context.Background(), testDoc(), SectionOverview)
	if err != nil || got != "from gemini" {
		t.Fatalf("expected gemini answer, got (%q, %v)", got, err)
	}
}

func TestOrchestrator_ImageInput_ForcedToGemini(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, withImage: func(req llm.ImageRequest) (string, error) {
		return "<think>hmm</think>A login screen", nil
	}}
	groq := &stubProvider{id: llm.ProviderGroq}
	o := newTestOrchestrator(gemini, groq, nil)
	o.SetModel("llama-3.3-70b-versatile")

	got, err := o.AnalyzeImage(context.Background(), "", llm.Image{MimeType: "image/png", Data: []byte{1}})
	if err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
	if got != "A login screen" {
		t.Errorf("unexpected text %q", got)
	}
	if len(groq.Calls()) != 0 {
		t.Error("groq must not be called for image input")
	}
	calls := gemini.Calls()
	if len(calls) != 1 || calls[0].model != "gemini-2.5-flash" {
		t.Errorf("expected forced gemini model, got %+v", calls)
	}
}

func TestOrchestrator_GroqWithoutCredential_IsConfigurationError(t *testing.T) {
	t.Parallel()

	groq := &stubProvider{id: llm.ProviderGroq, structured: func(req llm.StructuredRequest) (string, error) {
		if req.APIKey == "" {
			return "", llm.ErrMissingCredential
		}
		return "{}", nil
	}}
	o := newTestOrchestrator(&stubProvider{id: llm.ProviderGemini}, groq, nil)
	o.SetModel("llama-3.3-70b-versatile")

	_, err := o.SuggestProject(context.Background(), "idea")
	if !llm.IsConfigurationError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestOrchestrator_UnregisteredProvider_IsConfigurationError(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(&stubProvider{id: llm.ProviderGemini}, nil, nil)
	o.SetModel("llama-3.3-70b-versatile")
	_, err := o.GenerateSection(context.Background(), testDoc(), SectionGoals)
	if !errors.Is(err, llm.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestOrchestrator_AuthorizationFallback_PublishesEvent(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(req llm.StructuredRequest) (string, error) {
		if req.Model == "gemini-2.5-pro" {
			return "", authError()
		}
		return `{"title":"TaskFox","platforms":"web"}`, nil
	}}
	bus := &captureBus{}
	o := newTestOrchestrator(gemini, nil, bus)

	got, err := o.SuggestProject(context.Background(), "todo app for foxes")
	if err != nil {
		t.Fatalf("SuggestProject: %v", err)
	}
	if got == nil || got.Title != "TaskFox" || got.Platforms == nil {
		t.Fatalf("unexpected suggestion %+v", got)
	}
	if n := len(gemini.Calls()); n != 2 {
		t.Errorf("expected 2 calls, got %d", n)
	}
	events := bus.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	evt := events[0]
	if !evt.FallbackUsed || evt.Model != "gemini-2.5-flash" || evt.Outcome != OutcomeSuccess || evt.Recipe != "suggestion" {
		t.Errorf("unexpected event %+v", evt)
	}
}
