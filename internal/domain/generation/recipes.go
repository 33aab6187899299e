package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adolfohrq/prdgen/internal/domain/sanitize"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// SuggestProject proposes PRD metadata for a raw idea. A nil result means the model's
// answer could not be used.
func (o *Orchestrator) SuggestProject(ctx context.Context, idea string) (*ProjectSuggestion, error) {
	if strings.TrimSpace(idea) == "" {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	cfg := o.Config()
	raw, meta, err := o.structured(ctx, cfg, suggestionPrompt(idea))
	if err != nil {
		o.finish("suggestion", meta, false, err)
		return nil, err
	}
	out := sanitize.DecodeObject[ProjectSuggestion](raw, suggestionArrayFields...)
	o.finish("suggestion", meta, out != nil, nil)
	return out, nil
}

// GenerateSection writes one free-text PRD section. An empty string means no usable result.
func (o *Orchestrator) GenerateSection(ctx context.Context, doc *Document, key SectionKey) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	if !key.Valid() {
		return "", fmt.Errorf("%w: unknown section %q", ErrInvalidInput, key)
	}
	return o.generateSection(ctx, o.Config(), doc, key, "")
}

func (o *Orchestrator) generateSection(ctx context.Context, cfg ActiveConfiguration, doc *Document, key SectionKey, extra string) (string, error) {
	recipe := "section." + string(key)
	raw, meta, err := o.text(ctx, cfg, sectionPrompt(doc, key, extra), systemProductWriter, 0.7)
	if err != nil {
		o.finish(recipe, meta, false, err)
		return "", err
	}
	text := sanitize.Clean(raw)
	o.finish(recipe, meta, text != "", nil)
	return text, nil
}

// GenerateCompetitors lists competitors. It first asks Gemini with web search so names are
// real; any failure of that path falls back to the schema-constrained call on the active model.
func (o *Orchestrator) GenerateCompetitors(ctx context.Context, doc *Document) ([]Competitor, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return o.generateCompetitors(ctx, o.Config(), doc, "")
}

func (o *Orchestrator) generateCompetitors(ctx context.Context, cfg ActiveConfiguration, doc *Document, extra string) ([]Competitor, error) {
	raw, meta, err := o.multimodal(ctx, cfg, llm.CapabilitySearchGrounding, func(ctx context.Context, mp llm.MultimodalProvider, model llm.ModelID) (string, error) {
		return mp.GenerateGrounded(ctx, llm.GroundedRequest{
			Model:             model,
			Prompt:            groundedCompetitorPrompt(doc, extra),
			SystemInstruction: systemMarketResearch,
		})
	})
	var grounded []Competitor
	if err == nil {
		grounded = sanitize.DecodeList[Competitor](raw, competitorArrayFields...)
	}
	o.finish("competitors.grounded", meta, len(grounded) > 0, err)
	if len(grounded) > 0 {
		return grounded, nil
	}

	raw, meta, err = o.structured(ctx, cfg, competitorPrompt(doc, extra))
	if err != nil {
		o.finish("competitors", meta, false, err)
		if grounded != nil {
			return grounded, nil
		}
		return nil, err
	}
	out := sanitize.DecodeList[Competitor](raw, competitorArrayFields...)
	o.finish("competitors", meta, len(out) > 0, nil)
	if out == nil {
		return grounded, nil
	}
	return out, nil
}

// GenerateUIPlan proposes the screens of the product.
func (o *Orchestrator) GenerateUIPlan(ctx context.Context, doc *Document) ([]Screen, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return o.generateUIPlan(ctx, o.Config(), doc, "")
}

func (o *Orchestrator) generateUIPlan(ctx context.Context, cfg ActiveConfiguration, doc *Document, extra string) ([]Screen, error) {
	return structuredList[Screen](ctx, o, cfg, "ui_plan", uiPlanPrompt(doc, extra), screenArrayFields)
}

// GenerateDBSchema proposes the relational schema of the product.
func (o *Orchestrator) GenerateDBSchema(ctx context.Context, doc *Document) ([]Table, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return o.generateDBSchema(ctx, o.Config(), doc, "")
}

func (o *Orchestrator) generateDBSchema(ctx context.Context, cfg ActiveConfiguration, doc *Document, extra string) ([]Table, error) {
	return structuredList[Table](ctx, o, cfg, "db_schema", dbSchemaPrompt(doc, extra), tableArrayFields)
}

// structuredList runs a schema-constrained list recipe and decodes it.
func structuredList[T any](ctx context.Context, o *Orchestrator, cfg ActiveConfiguration, recipe string, sp structuredPrompt, arrayFields []string) ([]T, error) {
	raw, meta, err := o.structured(ctx, cfg, sp)
	if err != nil {
		o.finish(recipe, meta, false, err)
		return nil, err
	}
	out := sanitize.DecodeList[T](raw, arrayFields...)
	o.finish(recipe, meta, len(out) > 0, nil)
	return out, nil
}

// GenerateTechExport renders the document's data model as code in format.
func (o *Orchestrator) GenerateTechExport(ctx context.Context, doc *Document, format TechFormat) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	if !format.Valid() {
		return "", fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, format)
	}
	recipe := "tech_export." + string(format)
	raw, meta, err := o.text(ctx, o.Config(), techExportPrompt(doc, format), systemProductWriter, 0.2)
	if err != nil {
		o.finish(recipe, meta, false, err)
		return "", err
	}
	code := sanitize.JoinFences(sanitize.Clean(raw))
	o.finish(recipe, meta, code != "", nil)
	return code, nil
}

// GenerateLogo produces a logo concept with the active model, then draws it with the Gemini
// image model. A failed drawing keeps the concept and leaves the image empty.
func (o *Orchestrator) GenerateLogo(ctx context.Context, doc *Document) (*Logo, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return o.generateLogo(ctx, o.Config(), doc, "")
}

func (o *Orchestrator) generateLogo(ctx context.Context, cfg ActiveConfiguration, doc *Document, extra string) (*Logo, error) {
	raw, meta, err := o.structured(ctx, cfg, logoPrompt(doc, extra))
	if err != nil {
		o.finish("logo.concept", meta, false, err)
		return nil, err
	}
	concept := sanitize.DecodeObject[logoConcept](raw, logoArrayFields...)
	o.finish("logo.concept", meta, concept != nil, nil)
	if concept == nil {
		return nil, nil
	}
	logo := &Logo{
		Concept:     concept.Concept,
		Description: concept.Description,
		Palette:     concept.Palette,
		Typography:  concept.Typography,
		ImagePrompt: logoImagePrompt(concept, doc.Title),
	}

	img, imeta, err := o.synthesize(ctx, logo.ImagePrompt)
	o.finish("logo.image", imeta, err == nil, err)
	if err == nil {
		logo.ImageMIME = img.MimeType
		logo.Image = img.Data
	}
	return logo, nil
}

// synthesize draws an image with the Gemini image model. The authorization fallback does not
// apply: the fallback model cannot produce images.
func (o *Orchestrator) synthesize(ctx context.Context, prompt string) (*llm.Image, callMeta, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	meta := callMeta{model: o.imageModel, provider: llm.ProviderGemini}
	if meta.model == "" {
		meta.model = llm.DefaultImageModel
	}
	start := time.Now()
	mp, err := o.registry.Multimodal()
	if err != nil {
		return nil, meta, err
	}
	img, err := mp.SynthesizeImage(ctx, llm.SynthesisRequest{Model: o.imageModel, Prompt: prompt})
	meta.latency = time.Since(start)
	if err != nil {
		return nil, meta, err
	}
	if img.Empty() {
		return nil, meta, fmt.Errorf("logo image: %w", llm.ErrEmptyResponse)
	}
	return img, meta, nil
}

// AnalyzeIdea scores the quality of a product idea.
func (o *Orchestrator) AnalyzeIdea(ctx context.Context, idea string) (*IdeaAnalysis, error) {
	if strings.TrimSpace(idea) == "" {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	raw, meta, err := o.structured(ctx, o.Config(), analysisPrompt(idea))
	if err != nil {
		o.finish("idea_analysis", meta, false, err)
		return nil, err
	}
	out := sanitize.DecodeObject[IdeaAnalysis](raw, analysisArrayFields...)
	if out != nil {
		out.Score = clampScore(out.Score)
	}
	o.finish("idea_analysis", meta, out != nil, nil)
	return out, nil
}

func clampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// AnalyzeImage answers prompt about img. Image input is always served by Gemini,
// whatever model is selected.
func (o *Orchestrator) AnalyzeImage(ctx context.Context, prompt string, img llm.Image) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = "Describe this interface screenshot and list the product features and UI components it shows."
	}
	raw, meta, err := o.multimodal(ctx, o.Config(), llm.CapabilityImageInput, func(ctx context.Context, mp llm.MultimodalProvider, model llm.ModelID) (string, error) {
		return mp.GenerateWithImage(ctx, llm.ImageRequest{
			Model:             model,
			Prompt:            prompt,
			SystemInstruction: systemProductWriter,
			Image:             img,
		})
	})
	if err != nil {
		o.finish("image_analysis", meta, false, err)
		return "", err
	}
	text := sanitize.Clean(raw)
	o.finish("image_analysis", meta, text != "", nil)
	return text, nil
}

// RefineRequest re-runs the recipe behind target with a conversation transcript as context.
type RefineRequest struct {
	Target     Target
	Section    SectionKey
	Document   *Document
	Transcript string
}

// Refine regenerates one part of the document using the transcript as extra instructions.
// It goes through the same schema and sanitizer as the direct recipe. A nil result means
// nothing usable came back.
func (o *Orchestrator) Refine(ctx context.Context, req RefineRequest) (*Refinement, error) {
	if err := req.Document.Validate(); err != nil {
		return nil, err
	}
	cfg := o.Config()
	out := &Refinement{Target: req.Target}
	switch req.Target {
	case TargetSection:
		if !req.Section.Valid() {
			return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidInput, req.Section)
		}
		text, err := o.generateSection(ctx, cfg, req.Document, req.Section, req.Transcript)
		if err != nil || text == "" {
			return nil, err
		}
		out.Section, out.Text = req.Section, text
	case TargetCompetitors:
		list, err := o.generateCompetitors(ctx, cfg, req.Document, req.Transcript)
		if err != nil || list == nil {
			return nil, err
		}
		out.Competitors = list
	case TargetUIPlan:
		list, err := o.generateUIPlan(ctx, cfg, req.Document, req.Transcript)
		if err != nil || list == nil {
			return nil, err
		}
		out.UIPlan = list
	case TargetDBSchema:
		list, err := o.generateDBSchema(ctx, cfg, req.Document, req.Transcript)
		if err != nil || list == nil {
			return nil, err
		}
		out.DBSchema = list
	case TargetLogo:
		logo, err := o.generateLogo(ctx, cfg, req.Document, req.Transcript)
		if err != nil || logo == nil {
			return nil, err
		}
		out.Logo = logo
	default:
		return nil, fmt.Errorf("%w: unknown refinement target %q", ErrInvalidInput, req.Target)
	}
	return out, nil
}
