// Package llm — capability registry.
// Classify maps a model identifier to its provider through a small decision table, and
// Registry resolves which registered adapter serves a given capability.
package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Capability is one kind of generation a provider may support.
type Capability string

const (
	CapabilityText            Capability = "text"
	CapabilityStructured      Capability = "structured"
	CapabilityChat            Capability = "chat"
	CapabilityImageInput      Capability = "image_input"
	CapabilityImageSynthesis  Capability = "image_synthesis"
	CapabilitySearchGrounding Capability = "search_grounding"
)

// familyRule assigns every model whose identifier starts with prefix to provider.
type familyRule struct {
	prefix   string
	provider ProviderID
}

// familyRules is evaluated in order; the first matching prefix wins.
// Identifiers that match nothing belong to DefaultProvider.
var familyRules = []familyRule{
	{prefix: "llama", provider: ProviderGroq},
	{prefix: "meta-llama/", provider: ProviderGroq},
	{prefix: "mixtral", provider: ProviderGroq},
	{prefix: "gemma2", provider: ProviderGroq},
	{prefix: "qwen", provider: ProviderGroq},
	{prefix: "deepseek", provider: ProviderGroq},
	{prefix: "openai/", provider: ProviderGroq},
	{prefix: "moonshotai/", provider: ProviderGroq},
	{prefix: "groq/", provider: ProviderGroq},
	{prefix: "compound", provider: ProviderGroq},
}

// DefaultProvider serves every model identifier not claimed by a family rule.
const DefaultProvider = ProviderGemini

var capabilities = map[ProviderID]map[Capability]bool{
	ProviderGemini: {
		CapabilityText:            true,
		CapabilityStructured:      true,
		CapabilityChat:            true,
		CapabilityImageInput:      true,
		CapabilityImageSynthesis:  true,
		CapabilitySearchGrounding: true,
	},
	ProviderGroq: {
		CapabilityText:       true,
		CapabilityStructured: true,
		CapabilityChat:       true,
	},
}

// Classify returns the provider serving model. It is total and deterministic.
func Classify(model ModelID) ProviderID {
	id := strings.ToLower(strings.TrimSpace(string(model)))
	for _, rule := range familyRules {
		if strings.HasPrefix(id, rule.prefix) {
			return rule.provider
		}
	}
	return DefaultProvider
}

// Supports reports whether provider offers capability.
func Supports(provider ProviderID, capability Capability) bool {
	return capabilities[provider][capability]
}

// NativeSchema reports whether the provider enforces JSON schemas itself
// rather than relying on prompt instructions.
func NativeSchema(provider ProviderID) bool {
	return provider == ProviderGemini
}

// Registry holds the adapters available at runtime.
type Registry struct {
	mu        sync.RWMutex
	providers map[ProviderID]Provider
}

// NewRegistry creates a Registry from the given adapters, keyed by their ID.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[ProviderID]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.ID()] = p
	}
	return r
}

// Register adds (or replaces) an adapter.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

// Get returns the adapter registered for id.
func (r *Registry) Get(id ProviderID) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProvider, id, r.keys())
	}
	return p, nil
}

// Route returns the adapter that will serve capability for model.
// When the model's own provider lacks the capability, the call is force-routed to the
// default provider, which supports every capability.
func (r *Registry) Route(model ModelID, capability Capability) (Provider, error) {
	id := Classify(model)
	if !Supports(id, capability) {
		id = DefaultProvider
	}
	return r.Get(id)
}

// Multimodal returns the adapter that implements image and search capabilities.
func (r *Registry) Multimodal() (MultimodalProvider, error) {
	p, err := r.Get(DefaultProvider)
	if err != nil {
		return nil, err
	}
	mp, ok := p.(MultimodalProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no multimodal adapter", ErrUnsupportedCapability, DefaultProvider)
	}
	return mp, nil
}

// Providers returns the registered adapters sorted by ID.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// keys returns the registered provider names (for error messages).
func (r *Registry) keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
