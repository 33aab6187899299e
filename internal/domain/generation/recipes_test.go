package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// ============================================================================
// Competitors
// ============================================================================

func TestGenerateCompetitors_PrefersGroundedPath(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{
		id: llm.ProviderGemini,
		grounded: func(req llm.GroundedRequest) (string, error) {
			return "Based on my search:\n```json\n{\"competitors\": [{\"name\":\"Todoist\",\"strengths\":\"mature\"}]}\n```", nil
		},
		structured: func(llm.StructuredRequest) (string, error) {
			t.Error("schema path must not run when grounding succeeds")
			return "", nil
		},
	}
	o := newTestOrchestrator(gemini, nil, nil)

	got, err := o.GenerateCompetitors(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("GenerateCompetitors: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Todoist" {
		t.Fatalf("unexpected competitors %+v", got)
	}
	if got[0].Strengths == nil || len(got[0].Strengths) != 0 || got[0].Weaknesses == nil {
		t.Errorf("nested lists must be coerced to empty arrays, got %+v", got[0])
	}
}

func TestGenerateCompetitors_GroundedFailure_FallsBackToSchemaPath(t *testing.T) {
	t.Parallel()

	cases := map[string]func(llm.GroundedRequest) (string, error){
		"error":   func(llm.GroundedRequest) (string, error) { return "", &llm.ProviderError{Provider: llm.ProviderGemini, StatusCode: 500, Message: "x"} },
		"prose":   func(llm.GroundedRequest) (string, error) { return "I could not find anything.", nil },
		"no list": func(llm.GroundedRequest) (string, error) { return `{"note":"none"}`, nil },
	}
	for name, grounded := range cases {
		grounded := grounded
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			gemini := &stubProvider{id: llm.ProviderGemini, grounded: grounded}
			groq := &stubProvider{id: llm.ProviderGroq, structured: func(llm.StructuredRequest) (string, error) {
				return `[{"name":"Any.do","strengths":["sync"],"weaknesses":["price"]}]`, nil
			}}
			o := newTestOrchestrator(gemini, groq, nil)
			o.SetModel("llama-3.3-70b-versatile")
			o.SetCredential("gsk_test")

			got, err := o.GenerateCompetitors(context.Background(), testDoc())
			if err != nil {
				t.Fatalf("GenerateCompetitors: %v", err)
			}
			if len(got) != 1 || got[0].Name != "Any.do" {
				t.Errorf("expected schema-path result, got %+v", got)
			}
			gc := gemini.Calls()
			if len(gc) != 1 || gc[0].op != "grounded" || gc[0].model != "gemini-2.5-flash" {
				t.Errorf("grounding must be forced to gemini, got %+v", gc)
			}
		})
	}
}

func TestGenerateCompetitors_BothPathsFail_ReturnsError(t *testing.T) {
	t.Parallel()

	boom := &llm.ProviderError{Provider: llm.ProviderGemini, StatusCode: 503, Message: "unavailable"}
	gemini := &stubProvider{
		id:         llm.ProviderGemini,
		grounded:   func(llm.GroundedRequest) (string, error) { return "", boom },
		structured: func(llm.StructuredRequest) (string, error) { return "", boom },
	}
	o := newTestOrchestrator(gemini, nil, nil)
	got, err := o.GenerateCompetitors(context.Background(), testDoc())
	if !errors.Is(err, boom) || got != nil {
		t.Errorf("expected error and nil result, got (%+v, %v)", got, err)
	}
}

// ============================================================================
// Lists with nested coercion
// ============================================================================

func TestGenerateDBSchema_CoercesColumns(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(llm.StructuredRequest) (string, error) {
		return `{"tables":[{"name":"users","columns":[{"name":"id","type":"uuid","primaryKey":true}]},{"name":"tasks","columns":{"id":"uuid"}}]}`, nil
	}}
	o := newTestOrchestrator(gemini, nil, nil)
	got, err := o.GenerateDBSchema(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("GenerateDBSchema: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(got))
	}
	if !got[0].Columns[0].PrimaryKey {
		t.Errorf("expected primary key, got %+v", got[0])
	}
	if got[1].Columns == nil || len(got[1].Columns) != 0 {
		t.Errorf("expected coerced empty columns, got %+v", got[1])
	}
}

func TestGenerateDBSchema_StringBooleanKeepsTable(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(llm.StructuredRequest) (string, error) {
		return `[{"name":"users","columns":[{"name":"id","type":"uuid","primaryKey":"true"}]},{"name":"tasks","columns":[]}]`, nil
	}}
	o := newTestOrchestrator(gemini, nil, nil)
	got, err := o.GenerateDBSchema(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("GenerateDBSchema: %v", err)
	}
	if len(got) != 2 || got[0].Name != "users" || !got[0].Columns[0].PrimaryKey {
		t.Errorf("expected users table with its primary key, got %+v", got)
	}
}

func TestGenerateDBSchema_TruncatedAnswer_ReturnsNil(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(llm.StructuredRequest) (string, error) {
		return `[{"name":"users","columns":[{"name":"id","type":"uuid"},{"name":"email","type":"text"}]},{"name":"tasks","colu`, nil
	}}
	o := newTestOrchestrator(gemini, nil, nil)
	got, err := o.GenerateDBSchema(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("GenerateDBSchema: %v", err)
	}
	if got != nil {
		t.Errorf("truncated output must yield nil, got %+v", got)
	}
}

func TestGenerateUIPlan_ProseAnswer_ReturnsNilWithoutError(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(llm.StructuredRequest) (string, error) {
		return "Sorry, I can only answer in prose.", nil
	}}
	bus := &captureBus{}
	o := newTestOrchestrator(gemini, nil, bus)
	got, err := o.GenerateUIPlan(context.Background(), testDoc())
	if err != nil || got != nil {
		t.Errorf("expected (nil, nil), got (%+v, %v)", got, err)
	}
	if ev := bus.Events(); len(ev) != 1 || ev[0].Outcome != OutcomeEmpty {
		t.Errorf("expected one empty-outcome event, got %+v", ev)
	}
}

func TestGenerateUIPlan_SendsSchema(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(req llm.StructuredRequest) (string, error) {
		if req.Schema == nil || req.Schema.Items == nil || req.Schema.Items.Properties["components"] == nil {
			t.Errorf("expected screen list schema, got %+v", req.Schema)
		}
		return `[{"name":"Home","purpose":"overview","components":["TaskList"]}]`, nil
	}}
	o := newTestOrchestrator(gemini, nil, nil)
	got, err := o.GenerateUIPlan(context.Background(), testDoc())
	if err != nil || len(got) != 1 || got[0].Components[0] != "TaskList" {
		t.Errorf("unexpected result (%+v, %v)", got, err)
	}
}

// ============================================================================
// Logo
// ============================================================================

const logoConceptJSON = `{"concept":"A fox tail shaped like a checkmark","description":"Orange tail forming a tick","palette":["#FF7A00","#1F2937"],"typography":"rounded sans","imagePrompt":"flat vector fox tail checkmark"}`

func TestGenerateLogo_ImageFailure_KeepsConcept(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{
		id:         llm.ProviderGemini,
		structured: func(llm.StructuredRequest) (string, error) { return logoConceptJSON, nil },
		synth: func(llm.SynthesisRequest) (*llm.Image, error) {
			return nil, &llm.ProviderError{Provider: llm.ProviderGemini, StatusCode: 429, Message: "quota"}
		},
	}
	bus := &captureBus{}
	o := newTestOrchestrator(gemini, nil, bus)

	logo, err := o.GenerateLogo(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("image failure must not fail the recipe: %v", err)
	}
	if logo == nil || logo.Description == "" || len(logo.Palette) != 2 {
		t.Fatalf("expected concept to survive, got %+v", logo)
	}
	if logo.HasImage() {
		t.Error("expected empty image payload")
	}
	ev := bus.Events()
	if len(ev) != 2 || ev[1].Recipe != "logo.image" || ev[1].Outcome != OutcomeError {
		t.Errorf("expected concept + failed image events, got %+v", ev)
	}
}

func TestGenerateLogo_GroqConcept_GeminiImage(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, synth: func(req llm.SynthesisRequest) (*llm.Image, error) {
		if !strings.Contains(req.Prompt, "fox tail") {
			t.Errorf("expected concept image prompt, got %q", req.Prompt)
		}
		return &llm.Image{MimeType: "image/png", Data: []byte{0x89, 0x50}}, nil
	}}
	groq := &stubProvider{id: llm.ProviderGroq, structured: func(llm.StructuredRequest) (string, error) {
		return "<think>brainstorm</think>" + logoConceptJSON, nil
	}}
	o := newTestOrchestrator(gemini, groq, nil)
	o.SetModel("llama-3.3-70b-versatile")
	o.SetCredential("gsk_test")

	logo, err := o.GenerateLogo(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("GenerateLogo: %v", err)
	}
	if !logo.HasImage() || logo.ImageMIME != "image/png" {
		t.Errorf("expected image, got %+v", logo)
	}
	if len(groq.Calls()) != 1 {
		t.Error("concept must come from the active provider")
	}
}

func TestGenerateLogo_ConceptUnusable_ReturnsNil(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(llm.StructuredRequest) (string, error) { return "no", nil }}
	o := newTestOrchestrator(gemini, nil, nil)
	logo, err := o.GenerateLogo(context.Background(), testDoc())
	if err != nil || logo != nil {
		t.Errorf("expected (nil, nil), got (%+v, %v)", logo, err)
	}
	for _, c := range gemini.Calls() {
		if c.op == "synth" {
			t.Error("image must not be drawn without a concept")
		}
	}
}

// ============================================================================
// Other recipes
// ============================================================================

func TestAnalyzeIdea_ClampsScore(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(llm.StructuredRequest) (string, error) {
		return `{"score": 140, "verdict": "great", "strengths": ["niche"]}`, nil
	}}
	o := newTestOrchestrator(gemini, nil, nil)
	got, err := o.AnalyzeIdea(context.Background(), "todo app for foxes")
	if err != nil || got == nil {
		t.Fatalf("AnalyzeIdea: (%+v, %v)", got, err)
	}
	if got.Score != 100 || got.Risks == nil || got.Suggestions == nil {
		t.Errorf("unexpected analysis %+v", got)
	}
}

func TestAnalyzeIdea_FractionalScore(t *testing.T) {
	t.Parallel()

	groq := &stubProvider{id: llm.ProviderGroq, structured: func(llm.StructuredRequest) (string, error) {
		return `{"score": 72.5, "verdict": "promising", "strengths": ["niche"], "risks": [], "suggestions": []}`, nil
	}}
	o := newTestOrchestrator(nil, groq, nil)
	o.SetModel("llama-3.3-70b-versatile")
	o.SetCredential("gsk_test")
	got, err := o.AnalyzeIdea(context.Background(), "todo app for foxes")
	if err != nil || got == nil {
		t.Fatalf("AnalyzeIdea: (%+v, %v)", got, err)
	}
	if got.Score != 73 || got.Verdict != "promising" {
		t.Errorf("unexpected analysis %+v", got)
	}
}

func TestGenerateTechExport_JoinsFencedBlocks(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, text: func(llm.TextRequest) (string, error) {
		return "```prisma\nmodel User {\n  id String @id\n}\n```\nAnd tasks:\n```prisma\nmodel Task {\n  id String @id\n}\n```", nil
	}}
	o := newTestOrchestrator(gemini, nil, nil)
	doc := testDoc()
	doc.DBSchema = []Table{{Name: "users", Columns: []Column{{Name: "id", Type: "uuid"}}}}

	got, err := o.GenerateTechExport(context.Background(), doc, FormatPrisma)
	if err != nil {
		t.Fatalf("GenerateTechExport: %v", err)
	}
	want := "model User {\n  id String @id\n}\n\nmodel Task {\n  id String @id\n}"
	if got != want {
		t.Errorf("export = %q; want %q", got, want)
	}
}

func TestGenerateTechExport_StripsFences(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, text: func(req llm.TextRequest) (string, error) {
		if !strings.Contains(req.Prompt, "users:") {
			t.Errorf("expected schema in prompt, got %q", req.Prompt)
		}
		return "```sql\nCREATE TABLE users (id uuid primary key);\n```", nil
	}}
	o := newTestOrchestrator(gemini, nil, nil)
	doc := testDoc()
	doc.DBSchema = []Table{{Name: "users", Columns: []Column{{Name: "id", Type: "uuid", PrimaryKey: true}}}}

	got, err := o.GenerateTechExport(context.Background(), doc, FormatSQL)
	if err != nil {
		t.Fatalf("GenerateTechExport: %v", err)
	}
	if got != "CREATE TABLE users (id uuid primary key);" {
		t.Errorf("unexpected export %q", got)
	}
}

func TestRecipes_InvalidInput(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(&stubProvider{id: llm.ProviderGemini}, nil, nil)
	ctx := context.Background()
	checks := map[string]error{}
	_, checks["suggest"] = o.SuggestProject(ctx, "  ")
	_, checks["section"] = o.GenerateSection(ctx, testDoc(), "appendix")
	_, checks["empty doc"] = o.GenerateUIPlan(ctx, &Document{})
	_, checks["format"] = o.GenerateTechExport(ctx, testDoc(), "cobol")
	_, checks["image"] = o.AnalyzeImage(ctx, "what", llm.Image{})
	_, checks["target"] = o.Refine(ctx, RefineRequest{Target: "cover", Document: testDoc()})
	for name, err := range checks {
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestRefine_UsesTranscriptAndSameSchema(t *testing.T) {
	t.Parallel()

	gemini := &stubProvider{id: llm.ProviderGemini, structured: func(req llm.StructuredRequest) (string, error) {
		if !strings.Contains(req.Prompt, "user: add an audit table") {
			t.Errorf("expected transcript in prompt, got %q", req.Prompt)
		}
		if req.Schema != dbSchemaSchema {
			t.Error("refinement must request the db schema")
		}
		return "```json\n[{\"name\":\"audit\"}]\n```", nil
	}}
	o := newTestOrchestrator(gemini, nil, nil)
	doc := testDoc()
	ref, err := o.Refine(context.Background(), RefineRequest{
		Target:     TargetDBSchema,
		Document:   doc,
		Transcript: "user: add an audit table\nmodel: sure",
	})
	if err != nil || ref == nil {
		t.Fatalf("Refine: (%+v, %v)", ref, err)
	}
	if !doc.Apply(ref) || len(doc.DBSchema) != 1 || doc.DBSchema[0].Columns == nil {
		t.Errorf("expected refinement to apply, got %+v", doc.DBSchema)
	}
}
