package handlers

import (
	"context"
	"net/http"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/domain/settings"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

type SettingsService interface {
	Get(ctx context.Context, userID string) (settings.View, error)
	Update(ctx context.Context, userID string, partial generation.ConfigPatch) (settings.View, error)
}

type SettingsHandler struct {
	service SettingsService
}

func NewSettingsHandler(service SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// updateSettingsRequest is a partial update: omitted fields keep their stored value.
type updateSettingsRequest struct {
	SelectedModel      *string `json:"selectedModel,omitempty"`
	ProviderCredential *string `json:"providerCredential,omitempty"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	view, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, view)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req updateSettingsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if req.SelectedModel == nil && req.ProviderCredential == nil {
		writeFailure(w, badRequest("nothing to update"))
		return
	}
	patch := generation.ConfigPatch{ProviderCredential: req.ProviderCredential}
	if req.SelectedModel != nil {
		model := llm.ModelID(*req.SelectedModel)
		patch.SelectedModel = &model
	}
	view, err := h.service.Update(r.Context(), userID, patch)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, view)
}
