// Package llm defines the provider abstraction shared by the Gemini and Groq adapters.
// All request/response types here are provider-neutral; adapters translate them to wire format.
package llm

import "github.com/google/jsonschema-go/jsonschema"

// ModelID names a specific upstream model, e.g. "gemini-2.5-flash" or "llama-3.3-70b-versatile".
type ModelID string

// ProviderID identifies an upstream API family.
type ProviderID string

const (
	ProviderGemini ProviderID = "gemini"
	ProviderGroq   ProviderID = "groq"
)

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Image is an inline binary attachment or a synthesized picture.
type Image struct {
	MimeType string
	Data     []byte
}

// Empty reports whether the image carries no bytes.
func (i *Image) Empty() bool {
	return i == nil || len(i.Data) == 0
}

// Turn is one message of a multi-turn conversation, already stripped of UI metadata.
type Turn struct {
	Role  Role
	Text  string
	Image *Image
}

// TextRequest is the input for free-text generation.
type TextRequest struct {
	Model             ModelID
	Prompt            string
	SystemInstruction string
	Temperature       float32
	// APIKey is the per-call credential. Required by Groq, ignored by Gemini.
	APIKey string
}

// StructuredRequest asks for JSON output shaped like Schema.
type StructuredRequest struct {
	TextRequest
	Schema *jsonschema.Schema
}

// ChatRequest carries a full conversation history.
type ChatRequest struct {
	Model             ModelID
	SystemInstruction string
	History           []Turn
	Temperature       float32
	APIKey            string
}

// ImageRequest is a multimodal prompt with an attached picture.
type ImageRequest struct {
	Model             ModelID
	Prompt            string
	SystemInstruction string
	Image             Image
}

// SynthesisRequest asks the provider to draw a picture.
type SynthesisRequest struct {
	Model  ModelID
	Prompt string
}

// GroundedRequest is a text request that may use the provider's web search tool.
type GroundedRequest struct {
	Model             ModelID
	Prompt            string
	SystemInstruction string
}
