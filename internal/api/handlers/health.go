package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

const providerCheckTimeout = 5 * time.Second

// ProviderLister exposes the registered adapters. *llm.Registry implements it.
type ProviderLister interface {
	Providers() []llm.Provider
}

type HealthHandler struct {
	providers ProviderLister
}

func NewHealthHandler(providers ProviderLister) *HealthHandler {
	return &HealthHandler{providers: providers}
}

// Health answers the liveness probe.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProviderStatus is the outcome of one adapter health check.
type ProviderStatus struct {
	Provider llm.ProviderID `json:"provider"`
	OK       bool           `json:"ok"`
	Error    string         `json:"error,omitempty"`
}

// Providers checks every adapter concurrently. The endpoint answers 503 when any check fails.
func (h *HealthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	statuses := CheckProviders(r.Context(), h.providers.Providers())
	code := http.StatusOK
	for _, s := range statuses {
		if !s.OK {
			code = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, dataResponse{Data: statuses})
}

// CheckProviders runs each HealthCheck with its own deadline, preserving input order.
func CheckProviders(ctx context.Context, providers []llm.Provider) []ProviderStatus {
	out := make([]ProviderStatus, len(providers))
	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
			defer cancel()
			out[i] = ProviderStatus{Provider: p.ID(), OK: true}
			if err := p.HealthCheck(checkCtx); err != nil {
				out[i] = ProviderStatus{Provider: p.ID(), Error: err.Error()}
			}
		}()
	}
	wg.Wait()
	return out
}
