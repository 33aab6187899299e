package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/adolfohrq/prdgen/internal/domain/sanitize"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// ConverseRequest is one chat turn as the chat orchestrator prepared it.
type ConverseRequest struct {
	// Recipe names the call in events, e.g. "chat.product-manager".
	Recipe            string
	SystemInstruction string
	History           []llm.Turn
	Temperature       float32
}

// Converse sends a conversation to the routed provider's chat endpoint and returns the raw
// reply. A history carrying an image is served by Gemini whatever model is selected.
func (o *Orchestrator) Converse(ctx context.Context, req ConverseRequest) (string, error) {
	if len(req.History) == 0 {
		return "", fmt.Errorf("%w: conversation history is empty", ErrInvalidInput)
	}
	capability := llm.CapabilityChat
	for _, turn := range req.History {
		if !turn.Image.Empty() {
			capability = llm.CapabilityImageInput
			break
		}
	}
	recipe := req.Recipe
	if recipe == "" {
		recipe = "chat"
	}

	cfg := o.Config()
	raw, meta, err := o.invoke(ctx, cfg, capability, func(ctx context.Context, p llm.Provider, model llm.ModelID) (string, error) {
		return p.Chat(ctx, llm.ChatRequest{
			Model:             model,
			SystemInstruction: req.SystemInstruction,
			History:           req.History,
			Temperature:       req.Temperature,
			APIKey:            cfg.ProviderCredential,
		})
	})
	o.finish(recipe, meta, err == nil && raw != "", err)
	return raw, err
}

// CompleteRequest is a free-form single-shot prompt for recipes that live outside this package.
type CompleteRequest struct {
	Recipe            string
	Prompt            string
	SystemInstruction string
	Temperature       float32
}

// Complete runs a plain text generation with the thinking content removed. An empty answer
// is returned as "" with a nil error.
func (o *Orchestrator) Complete(ctx context.Context, req CompleteRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("%w: prompt is empty", ErrInvalidInput)
	}
	recipe := req.Recipe
	if recipe == "" {
		recipe = "complete"
	}
	raw, meta, err := o.text(ctx, o.Config(), req.Prompt, req.SystemInstruction, req.Temperature)
	out := strings.TrimSpace(sanitize.StripThinking(raw))
	o.finish(recipe, meta, err == nil && out != "", err)
	if err != nil {
		return "", err
	}
	return out, nil
}
