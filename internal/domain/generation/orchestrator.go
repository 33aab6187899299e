// Package generation is the façade the rest of the application calls to produce PRD content.
//
// An Orchestrator owns the ActiveConfiguration (selected model and provider credential),
// resolves each call through the llm capability registry, applies the authorization
// fallback policy, sanitizes structured output and returns typed results. Expected
// degraded output (prose instead of JSON, wrong shape) is reported as a nil result,
// never as an error.
package generation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

const (
	// DefaultModel is the model selected at process start.
	DefaultModel llm.ModelID = "gemini-2.5-flash"
	// DefaultFallbackModel is the known-good Gemini model used after an authorization failure.
	DefaultFallbackModel llm.ModelID = "gemini-2.5-flash"

	defaultBulkConcurrency = 4
)

// ActiveConfiguration is the process-wide generation setting.
type ActiveConfiguration struct {
	SelectedModel      llm.ModelID `json:"selectedModel"`
	ProviderCredential string      `json:"-"`
}

// HasCredential reports whether a provider credential is set.
func (c ActiveConfiguration) HasCredential() bool {
	return strings.TrimSpace(c.ProviderCredential) != ""
}

// ConfigPatch is a partial update; nil fields are left untouched.
type ConfigPatch struct {
	SelectedModel      *llm.ModelID
	ProviderCredential *string
}

// Options configures an Orchestrator. Zero values fall back to the package defaults.
type Options struct {
	DefaultModel    llm.ModelID
	FallbackModel   llm.ModelID
	ImageModel      llm.ModelID
	Credential      string
	BulkConcurrency int
	// Timeout bounds every upstream call. Zero disables the per-call deadline.
	Timeout time.Duration
	Events  EventPublisher
	Logger  *slog.Logger
}

// Orchestrator runs generation recipes. It is safe for concurrent use.
type Orchestrator struct {
	registry      *llm.Registry
	fallbackModel llm.ModelID
	imageModel    llm.ModelID
	bulkLimit     int
	timeout       time.Duration
	events        EventPublisher
	logger        *slog.Logger

	mu     sync.RWMutex
	active ActiveConfiguration
}

// NewOrchestrator creates an Orchestrator over the adapters in registry.
func NewOrchestrator(registry *llm.Registry, opts Options) *Orchestrator {
	if opts.DefaultModel == "" {
		opts.DefaultModel = DefaultModel
	}
	if opts.FallbackModel == "" {
		opts.FallbackModel = DefaultFallbackModel
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = defaultBulkConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		registry:      registry,
		fallbackModel: opts.FallbackModel,
		imageModel:    opts.ImageModel,
		bulkLimit:     opts.BulkConcurrency,
		timeout:       opts.Timeout,
		events:        opts.Events,
		logger:        opts.Logger,
		active: ActiveConfiguration{
			SelectedModel:      opts.DefaultModel,
			ProviderCredential: opts.Credential,
		},
	}
}

// Config returns a snapshot of the active configuration.
func (o *Orchestrator) Config() ActiveConfiguration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active
}

// SetModel changes the selected model for calls started afterwards.
func (o *Orchestrator) SetModel(model llm.ModelID) {
	model = llm.ModelID(strings.TrimSpace(string(model)))
	if model == "" {
		return
	}
	o.mu.Lock()
	o.active.SelectedModel = model
	o.mu.Unlock()
}

// SetCredential changes the provider credential for calls started afterwards.
func (o *Orchestrator) SetCredential(credential string) {
	o.mu.Lock()
	o.active.ProviderCredential = strings.TrimSpace(credential)
	o.mu.Unlock()
}

// ApplySettings applies a partial update and returns the resulting configuration.
func (o *Orchestrator) ApplySettings(p ConfigPatch) ActiveConfiguration {
	if p.SelectedModel != nil {
		o.SetModel(*p.SelectedModel)
	}
	if p.ProviderCredential != nil {
		o.SetCredential(*p.ProviderCredential)
	}
	return o.Config()
}

// FallbackModel returns the model used after a Gemini authorization failure.
func (o *Orchestrator) FallbackModel() llm.ModelID { return o.fallbackModel }

// ─── call plumbing ──────────────────────────────────────────────────────────

// callMeta records how a call was actually served, for events and logs.
type callMeta struct {
	model        llm.ModelID
	provider     llm.ProviderID
	fallbackUsed bool
	latency      time.Duration
}

// attemptFunc performs one upstream call with a resolved provider and model.
type attemptFunc func(ctx context.Context, p llm.Provider, model llm.ModelID) (string, error)

// resolve picks the adapter for capability. When the selected model's provider cannot serve
// the capability, the call is force-routed to Gemini and must use a Gemini model.
func (o *Orchestrator) resolve(model llm.ModelID, capability llm.Capability) (llm.Provider, llm.ModelID, error) {
	p, err := o.registry.Route(model, capability)
	if err != nil {
		return nil, "", err
	}
	if p.ID() != llm.Classify(model) {
		model = o.fallbackModel
	}
	return p, model, nil
}

// invoke runs one recipe step under the fallback policy and the per-call timeout.
func (o *Orchestrator) invoke(ctx context.Context, cfg ActiveConfiguration, capability llm.Capability, attempt attemptFunc) (string, callMeta, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	meta := callMeta{}
	_, primary, err := o.resolve(cfg.SelectedModel, capability)
	if err != nil {
		meta.model = cfg.SelectedModel
		meta.provider = llm.Classify(cfg.SelectedModel)
		return "", meta, err
	}

	out, used, err := WithFallback(ctx, primary, o.fallbackModel, func(ctx context.Context, model llm.ModelID) (string, error) {
		p, model, err := o.resolve(model, capability)
		if err != nil {
			return "", err
		}
		meta.provider = p.ID()
		return attempt(ctx, p, model)
	})
	meta.model = used
	meta.fallbackUsed = used != primary
	meta.latency = time.Since(start)
	if meta.fallbackUsed {
		o.logger.Warn("generation: primary model rejected credential, used fallback",
			"primary", primary, "fallback", used)
	}
	return out, meta, err
}

// finish publishes the completion event and logs failures.
func (o *Orchestrator) finish(recipe string, meta callMeta, ok bool, err error) {
	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = OutcomeError
		o.logger.Error("generation: recipe failed", "recipe", recipe, "model", meta.model, "provider", meta.provider, "error", err)
	case !ok:
		outcome = OutcomeEmpty
		o.logger.Warn("generation: no usable result", "recipe", recipe, "model", meta.model, "provider", meta.provider)
	default:
		o.logger.Debug("generation: recipe completed", "recipe", recipe, "model", meta.model, "latency", meta.latency)
	}
	if o.events != nil {
		o.events.Publish(TopicGenerationCompleted, newEvent(recipe, meta, outcome, err))
	}
}

// ─── provider call helpers ──────────────────────────────────────────────────

func (o *Orchestrator) text(ctx context.Context, cfg ActiveConfiguration, prompt, system string, temperature float32) (string, callMeta, error) {
	return o.invoke(ctx, cfg, llm.CapabilityText, func(ctx context.Context, p llm.Provider, model llm.ModelID) (string, error) {
		return p.GenerateText(ctx, llm.TextRequest{
			Model:             model,
			Prompt:            prompt,
			SystemInstruction: system,
			Temperature:       temperature,
			APIKey:            cfg.ProviderCredential,
		})
	})
}

func (o *Orchestrator) structured(ctx context.Context, cfg ActiveConfiguration, sp structuredPrompt) (string, callMeta, error) {
	return o.invoke(ctx, cfg, llm.CapabilityStructured, func(ctx context.Context, p llm.Provider, model llm.ModelID) (string, error) {
		return p.GenerateStructured(ctx, llm.StructuredRequest{
			TextRequest: llm.TextRequest{
				Model:             model,
				Prompt:            sp.prompt,
				SystemInstruction: sp.system,
				Temperature:       sp.temperature,
				APIKey:            cfg.ProviderCredential,
			},
			Schema: sp.schema,
		})
	})
}

func (o *Orchestrator) multimodal(ctx context.Context, cfg ActiveConfiguration, capability llm.Capability, call func(context.Context, llm.MultimodalProvider, llm.ModelID) (string, error)) (string, callMeta, error) {
	return o.invoke(ctx, cfg, capability, func(ctx context.Context, p llm.Provider, model llm.ModelID) (string, error) {
		mp, ok := p.(llm.MultimodalProvider)
		if !ok {
			var err error
			if mp, err = o.registry.Multimodal(); err != nil {
				return "", err
			}
		}
		return call(ctx, mp, model)
	})
}
