package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adolfohrq/prdgen/internal/domain/classifier"
	"github.com/adolfohrq/prdgen/internal/domain/generation"
)

type suggestProjectInput struct {
	Idea string `json:"idea" jsonschema:"the raw product idea in a few sentences"`
}

// Found is false when the model answered but nothing usable could be recovered.
type suggestProjectOutput struct {
	Found      bool                         `json:"found"`
	Suggestion generation.ProjectSuggestion `json:"suggestion"`
}

type documentInput struct {
	Title   string `json:"title" jsonschema:"the product name"`
	Idea    string `json:"idea,omitempty" jsonschema:"the product idea"`
	Summary string `json:"summary,omitempty" jsonschema:"an optional one-paragraph summary"`
}

func (in documentInput) document() *generation.Document {
	doc := &generation.Document{Title: strings.TrimSpace(in.Title), Idea: strings.TrimSpace(in.Idea)}
	if s := strings.TrimSpace(in.Summary); s != "" {
		doc.Suggestion = &generation.ProjectSuggestion{Title: doc.Title, Summary: s}
	}
	return doc
}

type competitorsOutput struct {
	Found       bool                    `json:"found"`
	Competitors []generation.Competitor `json:"competitors"`
}

type dbSchemaOutput struct {
	Found  bool               `json:"found"`
	Tables []generation.Table `json:"tables"`
}

type classifyIntentInput struct {
	Text   string                       `json:"text" jsonschema:"the user request to route"`
	Agents []classifier.AgentDescriptor `json:"agents,omitempty" jsonschema:"optional agent catalog; the built-in agents are used when omitted"`
}

type classifyIntentOutput struct {
	Matched bool   `json:"matched"`
	AgentID string `json:"agentId"`
}

func suggestProject(gen Generator) mcp.ToolHandlerFor[suggestProjectInput, suggestProjectOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in suggestProjectInput) (*mcp.CallToolResult, suggestProjectOutput, error) {
		if strings.TrimSpace(in.Idea) == "" {
			return nil, suggestProjectOutput{}, fmt.Errorf("idea is required")
		}
		s, err := gen.SuggestProject(ctx, in.Idea)
		if err != nil || s == nil {
			return nil, suggestProjectOutput{}, err
		}
		return nil, suggestProjectOutput{Found: true, Suggestion: *s}, nil
	}
}

func generateCompetitors(gen Generator) mcp.ToolHandlerFor[documentInput, competitorsOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in documentInput) (*mcp.CallToolResult, competitorsOutput, error) {
		list, err := gen.GenerateCompetitors(ctx, in.document())
		if err != nil {
			return nil, competitorsOutput{}, err
		}
		return nil, competitorsOutput{Found: list != nil, Competitors: nonNil(list)}, nil
	}
}

func generateDBSchema(gen Generator) mcp.ToolHandlerFor[documentInput, dbSchemaOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in documentInput) (*mcp.CallToolResult, dbSchemaOutput, error) {
		tables, err := gen.GenerateDBSchema(ctx, in.document())
		if err != nil {
			return nil, dbSchemaOutput{}, err
		}
		return nil, dbSchemaOutput{Found: tables != nil, Tables: nonNil(tables)}, nil
	}
}

func classifyIntent(c IntentClassifier) mcp.ToolHandlerFor[classifyIntentInput, classifyIntentOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in classifyIntentInput) (*mcp.CallToolResult, classifyIntentOutput, error) {
		catalog := in.Agents
		if len(catalog) == 0 {
			catalog = classifier.DefaultCatalog()
		}
		id, ok, err := c.Classify(ctx, in.Text, catalog)
		if err != nil {
			return nil, classifyIntentOutput{}, err
		}
		return nil, classifyIntentOutput{Matched: ok, AgentID: id}, nil
	}
}

// nonNil keeps list outputs JSON arrays; Found carries the nil-versus-empty distinction.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
