package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// Applier receives settings changes. *generation.Orchestrator implements it.
type Applier interface {
	ApplySettings(p generation.ConfigPatch) generation.ActiveConfiguration
	Config() generation.ActiveConfiguration
}

// View is what clients see of a user's settings. The credential itself is never returned.
type View struct {
	SelectedModel llm.ModelID    `json:"selectedModel"`
	Provider      llm.ProviderID `json:"provider"`
	HasCredential bool           `json:"hasCredential"`
}

// Service combines the store with the process-wide active configuration.
type Service struct {
	store   Store
	applier Applier
}

// NewService creates a Service.
func NewService(store Store, applier Applier) *Service {
	return &Service{store: store, applier: applier}
}

// Get returns the user's stored settings completed with the active configuration.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	stored, err := s.store.LoadSettings(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return s.view(stored), nil
}

// Update saves partial for userID and applies the merged settings to the active configuration.
func (s *Service) Update(ctx context.Context, userID string, partial generation.ConfigPatch) (View, error) {
	if partial.SelectedModel != nil && strings.TrimSpace(string(*partial.SelectedModel)) == "" {
		return View{}, fmt.Errorf("%w: selected model cannot be blank", generation.ErrInvalidInput)
	}
	if err := s.store.SaveSettings(ctx, userID, partial); err != nil {
		return View{}, err
	}
	merged, err := s.store.LoadSettings(ctx, userID)
	if err != nil {
		return View{}, err
	}
	s.applier.ApplySettings(merged)
	return s.view(merged), nil
}

// Restore applies the user's stored settings to the active configuration without changing them.
func (s *Service) Restore(ctx context.Context, userID string) (generation.ActiveConfiguration, error) {
	stored, err := s.store.LoadSettings(ctx, userID)
	if err != nil {
		return generation.ActiveConfiguration{}, err
	}
	return s.applier.ApplySettings(stored), nil
}

func (s *Service) view(stored generation.ConfigPatch) View {
	active := s.applier.Config()
	v := View{SelectedModel: active.SelectedModel, HasCredential: active.HasCredential()}
	if stored.SelectedModel != nil {
		v.SelectedModel = *stored.SelectedModel
	}
	if stored.ProviderCredential != nil {
		v.HasCredential = strings.TrimSpace(*stored.ProviderCredential) != ""
	}
	v.Provider = llm.Classify(v.SelectedModel)
	return v
}
