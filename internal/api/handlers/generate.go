package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// Generator is the recipe surface of *generation.Orchestrator.
type Generator interface {
	SuggestProject(ctx context.Context, idea string) (*generation.ProjectSuggestion, error)
	GenerateSection(ctx context.Context, doc *generation.Document, key generation.SectionKey) (string, error)
	GenerateSections(ctx context.Context, doc *generation.Document, keys []generation.SectionKey) (generation.BatchResult, error)
	GenerateCompetitors(ctx context.Context, doc *generation.Document) ([]generation.Competitor, error)
	GenerateUIPlan(ctx context.Context, doc *generation.Document) ([]generation.Screen, error)
	GenerateDBSchema(ctx context.Context, doc *generation.Document) ([]generation.Table, error)
	GenerateTechExport(ctx context.Context, doc *generation.Document, format generation.TechFormat) (string, error)
	GenerateLogo(ctx context.Context, doc *generation.Document) (*generation.Logo, error)
	AnalyzeIdea(ctx context.Context, idea string) (*generation.IdeaAnalysis, error)
	AnalyzeImage(ctx context.Context, prompt string, img llm.Image) (string, error)
}

type GenerateHandler struct {
	generator Generator
}

func NewGenerateHandler(generator Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

type ideaRequest struct {
	Idea string `json:"idea"`
}

type documentRequest struct {
	Document *generation.Document `json:"document"`
}

type sectionRequest struct {
	Document *generation.Document  `json:"document"`
	Section  generation.SectionKey `json:"section"`
}

type sectionsRequest struct {
	Document *generation.Document    `json:"document"`
	Sections []generation.SectionKey `json:"sections,omitempty"`
}

type techExportRequest struct {
	Document *generation.Document  `json:"document"`
	Format   generation.TechFormat `json:"format"`
}

// imagePayload is an inline image; Data is base64 in JSON.
type imagePayload struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

func (p *imagePayload) image() *llm.Image {
	if p == nil || len(p.Data) == 0 {
		return nil
	}
	return &llm.Image{MimeType: p.MimeType, Data: p.Data}
}

type imageAnalysisRequest struct {
	Prompt string        `json:"prompt"`
	Image  *imagePayload `json:"image"`
}

// textResult keeps free-text recipes JSON-shaped; an empty text is reported as null data.
type textResult struct {
	Text string `json:"text"`
}

// sectionsResult returns the batch report with the merged document.
type sectionsResult struct {
	Result   generation.BatchResult `json:"result"`
	Document *generation.Document   `json:"document"`
}

func (h *GenerateHandler) Suggestion(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := decodeIdea(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	out, err := h.generator.SuggestProject(r.Context(), req.Idea)
	respond(w, out, err)
}

func (h *GenerateHandler) IdeaAnalysis(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := decodeIdea(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	out, err := h.generator.AnalyzeIdea(r.Context(), req.Idea)
	respond(w, out, err)
}

func (h *GenerateHandler) Section(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if !req.Section.Valid() {
		writeFailure(w, badRequest("unknown section %q", req.Section))
		return
	}
	text, err := h.generator.GenerateSection(r.Context(), req.Document, req.Section)
	respondText(w, text, err)
}

func (h *GenerateHandler) Sections(w http.ResponseWriter, r *http.Request) {
	var req sectionsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if req.Document == nil {
		writeFailure(w, badRequest("document is required"))
		return
	}
	doc := req.Document.Clone()
	res, err := h.generator.GenerateSections(r.Context(), doc, req.Sections)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, sectionsResult{Result: res, Document: doc})
}

func (h *GenerateHandler) Competitors(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	out, err := h.generator.GenerateCompetitors(r.Context(), doc)
	respond(w, out, err)
}

func (h *GenerateHandler) UIPlan(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	out, err := h.generator.GenerateUIPlan(r.Context(), doc)
	respond(w, out, err)
}

func (h *GenerateHandler) DBSchema(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	out, err := h.generator.GenerateDBSchema(r.Context(), doc)
	respond(w, out, err)
}

func (h *GenerateHandler) Logo(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	out, err := h.generator.GenerateLogo(r.Context(), doc)
	respond(w, out, err)
}

func (h *GenerateHandler) TechExport(w http.ResponseWriter, r *http.Request) {
	var req techExportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if !req.Format.Valid() {
		writeFailure(w, badRequest("unsupported format %q", req.Format))
		return
	}
	text, err := h.generator.GenerateTechExport(r.Context(), req.Document, req.Format)
	respondText(w, text, err)
}

func (h *GenerateHandler) ImageAnalysis(w http.ResponseWriter, r *http.Request) {
	var req imageAnalysisRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	img := req.Image.image()
	if img == nil {
		writeFailure(w, badRequest("image is required"))
		return
	}
	text, err := h.generator.AnalyzeImage(r.Context(), req.Prompt, *img)
	respondText(w, text, err)
}

func decodeIdea(w http.ResponseWriter, r *http.Request, req *ideaRequest) error {
	if err := decodeBody(w, r, req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Idea) == "" {
		return badRequest("idea is required")
	}
	return nil
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (*generation.Document, bool) {
	var req documentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return nil, false
	}
	if req.Document == nil {
		writeFailure(w, badRequest("document is required"))
		return nil, false
	}
	return req.Document, true
}

// respond writes a recipe result. A nil result is a degraded outcome, not a failure.
func respond[T any](w http.ResponseWriter, out T, err error) {
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, out)
}

func respondText(w http.ResponseWriter, text string, err error) {
	if err != nil {
		writeFailure(w, err)
		return
	}
	if text == "" {
		writeData(w, nil)
		return
	}
	writeData(w, textResult{Text: text})
}
