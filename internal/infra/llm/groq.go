// Package llm — Groq HTTP adapter.
// GroqProvider calls Groq's OpenAI-compatible REST API using stdlib net/http.
// Endpoints used:
//   - POST /openai/v1/chat/completions — non-streaming chat completion
//   - GET  /openai/v1/models           — health check
//
// Groq has no native schema enforcement: structured requests use JSON mode plus the
// schema serialized into the system prompt, and the caller sanitizes the result.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	// DefaultGroqBaseURL is the public Groq endpoint.
	DefaultGroqBaseURL = "https://api.groq.com"

	groqChatPath   = "/openai/v1/chat/completions"
	groqModelsPath = "/openai/v1/models"
)

// GroqProvider implements Provider against the Groq API.
// The credential is supplied per call; the provider keeps no key of its own.
type GroqProvider struct {
	baseURL    string
	httpClient *http.Client
	// keySource supplies the credential for HealthCheck, which has no request to carry one.
	keySource func() string
}

// NewGroqProvider creates a GroqProvider. A zero timeout leaves the client without a deadline;
// callers still bound each call through its context.
func NewGroqProvider(baseURL string, timeout time.Duration) *GroqProvider {
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	return &GroqProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithKeySource sets the credential lookup used by HealthCheck.
func (p *GroqProvider) WithKeySource(fn func() string) *GroqProvider {
	p.keySource = fn
	return p
}

// ─── internal Groq JSON types ───────────────────────────────────────────────

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponseFormat struct {
	Type string `json:"type"`
}

type groqChatRequest struct {
	Model          string              `json:"model"`
	Messages       []groqMessage       `json:"messages"`
	Temperature    float32             `json:"temperature"`
	ResponseFormat *groqResponseFormat `json:"response_format,omitempty"`
}

type groqChatResponse struct {
	Choices []struct {
		Message      groqMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// ─── Provider implementation ────────────────────────────────────────────────

// ID returns ProviderGroq.
func (p *GroqProvider) ID() ProviderID { return ProviderGroq }

// GenerateText performs a single-turn completion.
func (p *GroqProvider) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	msgs := systemMessages(req.SystemInstruction)
	msgs = append(msgs, groqMessage{Role: "user", Content: req.Prompt})
	return p.complete(ctx, "generateText", req.APIKey, groqChatRequest{
		Model:       string(req.Model),
		Messages:    msgs,
		Temperature: temperatureOr(req.Temperature, 0.7),
	})
}

// GenerateStructured requests JSON mode and describes the schema in the system prompt.
func (p *GroqProvider) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	system := strings.TrimSpace(req.SystemInstruction + "\n\n" + SchemaInstruction(req.Schema))
	msgs := systemMessages(system)
	msgs = append(msgs, groqMessage{Role: "user", Content: req.Prompt})
	return p.complete(ctx, "generateStructured", req.APIKey, groqChatRequest{
		Model:          string(req.Model),
		Messages:       msgs,
		Temperature:    temperatureOr(req.Temperature, 0.4),
		ResponseFormat: &groqResponseFormat{Type: "json_object"},
	})
}

// Chat sends the full history. Image attachments are dropped: Groq models are text-only here
// and the registry routes image conversations elsewhere.
func (p *GroqProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	msgs := systemMessages(req.SystemInstruction)
	for _, turn := range req.History {
		role := "user"
		if turn.Role == RoleModel {
			role = "assistant"
		}
		msgs = append(msgs, groqMessage{Role: role, Content: turn.Text})
	}
	return p.complete(ctx, "chat", req.APIKey, groqChatRequest{
		Model:       string(req.Model),
		Messages:    msgs,
		Temperature: temperatureOr(req.Temperature, 0.7),
	})
}

// HealthCheck lists models with the current credential.
func (p *GroqProvider) HealthCheck(ctx context.Context) error {
	key := ""
	if p.keySource != nil {
		key = p.keySource()
	}
	if key == "" {
		return fmt.Errorf("groq healthcheck: %w", ErrMissingCredential)
	}
	return getJSON(ctx, p.httpClient, ProviderGroq, "healthcheck", p.baseURL+groqModelsPath, map[string]string{
		"Authorization": "Bearer " + key,
	})
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// complete validates the credential before any I/O, then posts the chat request.
func (p *GroqProvider) complete(ctx context.Context, op, apiKey string, body groqChatRequest) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", fmt.Errorf("groq %s: %w", op, ErrMissingCredential)
	}
	var resp groqChatResponse
	err := postJSON(ctx, p.httpClient, ProviderGroq, op, p.baseURL+groqChatPath, map[string]string{
		"Authorization": "Bearer " + apiKey,
	}, body, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq %s: %w", op, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func systemMessages(instruction string) []groqMessage {
	if strings.TrimSpace(instruction) == "" {
		return nil
	}
	return []groqMessage{{Role: "system", Content: instruction}}
}

func temperatureOr(v, fallback float32) float32 {
	if v == 0 {
		return fallback
	}
	return v
}

// SchemaInstruction renders a schema as a prompt instruction for providers without
// constrained decoding.
func SchemaInstruction(schema *jsonschema.Schema) string {
	if schema == nil {
		return "Respond with valid JSON only. Do not wrap it in markdown."
	}
	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "Respond with valid JSON only. Do not wrap it in markdown."
	}
	return "Respond with valid JSON only, no prose and no markdown fences. " +
		"The JSON must conform to this JSON Schema:\n" + string(raw)
}
