package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/adolfohrq/prdgen/internal/domain/classifier"
)

type IntentClassifier interface {
	Classify(ctx context.Context, text string, catalog []classifier.AgentDescriptor) (string, bool, error)
}

type ClassifyHandler struct {
	classifier IntentClassifier
}

func NewClassifyHandler(c IntentClassifier) *ClassifyHandler {
	return &ClassifyHandler{classifier: c}
}

// classifyRequest carries the text and an optional catalog; omitted means the built-in agents.
type classifyRequest struct {
	Text   string                       `json:"text"`
	Agents []classifier.AgentDescriptor `json:"agents,omitempty"`
}

type classifyResponse struct {
	AgentID string `json:"agentId,omitempty"`
	Matched bool   `json:"matched"`
}

func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeFailure(w, badRequest("text is required"))
		return
	}
	catalog := req.Agents
	if len(catalog) == 0 {
		catalog = classifier.DefaultCatalog()
	}
	for _, a := range catalog {
		if strings.TrimSpace(a.ID) == "" || strings.TrimSpace(a.MatchingText) == "" {
			writeFailure(w, badRequest("every agent needs an id and a matchingText"))
			return
		}
	}
	id, ok, err := h.classifier.Classify(r.Context(), req.Text, catalog)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, classifyResponse{AgentID: id, Matched: ok})
}
