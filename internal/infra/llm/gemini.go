// Package llm — Gemini HTTP adapter.
// GeminiProvider calls the Generative Language REST API using stdlib net/http.
// Endpoints used:
//   - POST /v1beta/models/{model}:generateContent — text, JSON, image input, image output, search
//   - GET  /v1beta/models                         — health check
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	// DefaultGeminiBaseURL is the public Generative Language endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultImageModel draws logos when no image model is configured.
	DefaultImageModel ModelID = "gemini-2.5-flash-image"

	headerGoogAPIKey = "x-goog-api-key"
)

// GeminiProvider implements MultimodalProvider against the Gemini API.
type GeminiProvider struct {
	baseURL    string
	apiKey     string
	imageModel ModelID
	httpClient *http.Client
}

// NewGeminiProvider creates a GeminiProvider. The key is fixed at construction: Gemini access is
// a deployment credential, not a user setting.
func NewGeminiProvider(baseURL, apiKey string, imageModel ModelID, timeout time.Duration) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	return &GeminiProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		imageModel: imageModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ─── internal Gemini JSON types ─────────────────────────────────────────────

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"` // base64 on the wire; encoding/json handles it
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
	Thought    bool        `json:"thought,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type        string                   `json:"type,omitempty"`
	Description string                   `json:"description,omitempty"`
	Enum        []string                 `json:"enum,omitempty"`
	Nullable    bool                     `json:"nullable,omitempty"`
	Properties  map[string]*geminiSchema `json:"properties,omitempty"`
	Required    []string                 `json:"required,omitempty"`
	Ordering    []string                 `json:"propertyOrdering,omitempty"`
	Items       *geminiSchema            `json:"items,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature        float32       `json:"temperature,omitempty"`
	ResponseMimeType   string        `json:"responseMimeType,omitempty"`
	ResponseSchema     *geminiSchema `json:"responseSchema,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// ─── Provider implementation ────────────────────────────────────────────────

// ID returns ProviderGemini.
func (p *GeminiProvider) ID() ProviderID { return ProviderGemini }

// GenerateText performs a single-turn completion.
func (p *GeminiProvider) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	resp, err := p.generate(ctx, "generateText", req.Model, geminiRequest{
		Contents:          []geminiContent{userText(req.Prompt)},
		SystemInstruction: systemContent(req.SystemInstruction),
		GenerationConfig:  &geminiGenerationConfig{Temperature: req.Temperature},
	})
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// GenerateStructured uses constrained decoding with the schema converted to Gemini's dialect.
func (p *GeminiProvider) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	resp, err := p.generate(ctx, "generateStructured", req.Model, geminiRequest{
		Contents:          []geminiContent{userText(req.Prompt)},
		SystemInstruction: systemContent(req.SystemInstruction),
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      req.Temperature,
			ResponseMimeType: mimeJSON,
			ResponseSchema:   toGeminiSchema(req.Schema),
		},
	})
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// Chat maps the history onto Gemini's user/model contents, including inline images.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	contents := make([]geminiContent, 0, len(req.History))
	for _, turn := range req.History {
		role := "user"
		if turn.Role == RoleModel {
			role = "model"
		}
		parts := []geminiPart{}
		if turn.Text != "" {
			parts = append(parts, geminiPart{Text: turn.Text})
		}
		if !turn.Image.Empty() {
			parts = append(parts, geminiPart{InlineData: &geminiBlob{MimeType: turn.Image.MimeType, Data: turn.Image.Data}})
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, geminiContent{Role: role, Parts: parts})
	}
	resp, err := p.generate(ctx, "chat", req.Model, geminiRequest{
		Contents:          contents,
		SystemInstruction: systemContent(req.SystemInstruction),
		GenerationConfig:  &geminiGenerationConfig{Temperature: req.Temperature},
	})
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// GenerateWithImage sends the prompt and the image in one user turn.
func (p *GeminiProvider) GenerateWithImage(ctx context.Context, req ImageRequest) (string, error) {
	mime := req.Image.MimeType
	if mime == "" {
		mime = http.DetectContentType(req.Image.Data)
	}
	resp, err := p.generate(ctx, "generateWithImage", req.Model, geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiBlob{MimeType: mime, Data: req.Image.Data}},
				{Text: req.Prompt},
			},
		}},
		SystemInstruction: systemContent(req.SystemInstruction),
	})
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// SynthesizeImage asks the image model for an IMAGE modality response and returns the first picture.
func (p *GeminiProvider) SynthesizeImage(ctx context.Context, req SynthesisRequest) (*Image, error) {
	model := req.Model
	if model == "" {
		model = p.imageModel
	}
	resp, err := p.generate(ctx, "synthesizeImage", model, geminiRequest{
		Contents:         []geminiContent{userText(req.Prompt)},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return nil, err
	}
	for _, c := range resp.Candidates {
		for _, part := range c.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &Image{MimeType: part.InlineData.MimeType, Data: part.InlineData.Data}, nil
			}
		}
	}
	return nil, fmt.Errorf("gemini synthesizeImage: %w", ErrEmptyResponse)
}

// GenerateGrounded enables the Google Search tool. Gemini does not combine tools with a
// response schema, so callers describe the expected JSON in the prompt.
func (p *GeminiProvider) GenerateGrounded(ctx context.Context, req GroundedRequest) (string, error) {
	resp, err := p.generate(ctx, "generateGrounded", req.Model, geminiRequest{
		Contents:          []geminiContent{userText(req.Prompt)},
		SystemInstruction: systemContent(req.SystemInstruction),
		Tools:             []geminiTool{{GoogleSearch: &struct{}{}}},
	})
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// HealthCheck lists models with the configured key.
func (p *GeminiProvider) HealthCheck(ctx context.Context) error {
	if p.apiKey == "" {
		return fmt.Errorf("gemini healthcheck: %w", ErrMissingCredential)
	}
	return getJSON(ctx, p.httpClient, ProviderGemini, "healthcheck", p.baseURL+"/v1beta/models", map[string]string{
		headerGoogAPIKey: p.apiKey,
	})
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (p *GeminiProvider) generate(ctx context.Context, op string, model ModelID, body geminiRequest) (*geminiResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("gemini %s: %w", op, ErrMissingCredential)
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, model)
	var resp geminiResponse
	if err := postJSON(ctx, p.httpClient, ProviderGemini, op, url, map[string]string{headerGoogAPIKey: p.apiKey}, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback.BlockReason != "" {
			return nil, &ProviderError{Provider: ProviderGemini, Operation: op, Message: "prompt blocked: " + resp.PromptFeedback.BlockReason}
		}
		return nil, fmt.Errorf("gemini %s: %w", op, ErrEmptyResponse)
	}
	return &resp, nil
}

// text concatenates the visible text parts of the first candidate.
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		if part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func userText(text string) geminiContent {
	return geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}}
}

func systemContent(instruction string) *geminiContent {
	if strings.TrimSpace(instruction) == "" {
		return nil
	}
	return &geminiContent{Parts: []geminiPart{{Text: instruction}}}
}

// toGeminiSchema converts a JSON Schema into Gemini's OpenAPI-subset responseSchema.
func toGeminiSchema(s *jsonschema.Schema) *geminiSchema {
	if s == nil {
		return nil
	}
	out := &geminiSchema{Description: s.Description, Required: s.Required, Ordering: s.PropertyOrder}
	typ := s.Type
	if typ == "" {
		for _, t := range s.Types {
			if t == "null" {
				out.Nullable = true
				continue
			}
			if typ == "" {
				typ = t
			}
		}
	}
	out.Type = strings.ToUpper(typ)
	for _, v := range s.Enum {
		if str, ok := v.(string); ok {
			out.Enum = append(out.Enum, str)
		}
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*geminiSchema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	out.Items = toGeminiSchema(s.Items)
	return out
}
