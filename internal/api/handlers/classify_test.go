package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adolfohrq/prdgen/internal/domain/classifier"
)

func TestClassifyHandler_DefaultCatalog(t *testing.T) {
	t.Parallel()

	c := &stubClassifier{id: "market-analyst", ok: true}
	h := NewClassifyHandler(c)

	w := httptest.NewRecorder()
	h.Classify(w, jsonRequest(t, http.MethodPost, "/api/v1/classify", map[string]string{"text": "who are my competitors?"}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (body %s)", w.Code, w.Body.String())
	}
	if len(c.lastCatalog) != len(classifier.DefaultCatalog()) {
		t.Errorf("catalog size = %d; want default catalog", len(c.lastCatalog))
	}
	var got classifyResponse
	decodeData(t, w, &got)
	if !got.Matched || got.AgentID != "market-analyst" {
		t.Errorf("response = %+v", got)
	}
}

func TestClassifyHandler_CustomCatalogNoMatch(t *testing.T) {
	t.Parallel()

	c := &stubClassifier{}
	h := NewClassifyHandler(c)

	w := httptest.NewRecorder()
	h.Classify(w, jsonRequest(t, http.MethodPost, "/api/v1/classify", map[string]any{
		"text":   "book a flight",
		"agents": []map[string]string{{"id": "billing", "matchingText": "invoices and payments"}},
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if len(c.lastCatalog) != 1 || c.lastCatalog[0].ID != "billing" {
		t.Errorf("catalog = %+v; want custom catalog", c.lastCatalog)
	}
	if got := w.Body.String(); got != "{\"data\":{\"matched\":false}}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestClassifyHandler_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"blank text", map[string]any{"text": " "}},
		{"incomplete agent", map[string]any{"text": "x", "agents": []map[string]string{{"id": "a"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := NewClassifyHandler(&stubClassifier{})
			w := httptest.NewRecorder()
			h.Classify(w, jsonRequest(t, http.MethodPost, "/api/v1/classify", tc.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d; want 400", w.Code)
			}
		})
	}
}
