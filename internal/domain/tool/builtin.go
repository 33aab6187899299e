// Package tool exposes prdgen recipes as MCP tools, so agents and editors can call the
// generation layer over stdio.
package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adolfohrq/prdgen/internal/domain/classifier"
	"github.com/adolfohrq/prdgen/internal/domain/generation"
)

const (
	BuiltinSuggestProject      = "suggest_project"
	BuiltinGenerateCompetitors = "generate_competitors"
	BuiltinGenerateDBSchema    = "generate_db_schema"
	BuiltinClassifyIntent      = "classify_intent"
)

// Generator is the recipe subset the tools call. *generation.Orchestrator implements it.
type Generator interface {
	SuggestProject(ctx context.Context, idea string) (*generation.ProjectSuggestion, error)
	GenerateCompetitors(ctx context.Context, doc *generation.Document) ([]generation.Competitor, error)
	GenerateDBSchema(ctx context.Context, doc *generation.Document) ([]generation.Table, error)
}

// IntentClassifier is implemented by *classifier.Classifier.
type IntentClassifier interface {
	Classify(ctx context.Context, text string, catalog []classifier.AgentDescriptor) (string, bool, error)
}

// BuiltinServices are the services behind the built-in tools.
type BuiltinServices struct {
	Generator  Generator
	Classifier IntentClassifier
}

// NewServer creates an MCP server with every built-in tool registered.
func NewServer(svc BuiltinServices, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "prdgen", Title: "PRD generator", Version: version}, nil)
	RegisterBuiltins(server, svc)
	return server
}

// RegisterBuiltins adds the built-in tools to server.
func RegisterBuiltins(server *mcp.Server, svc BuiltinServices) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        BuiltinSuggestProject,
		Description: "Turn a raw product idea into PRD metadata: title, tagline, summary, audience, platforms and key features.",
	}, suggestProject(svc.Generator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        BuiltinGenerateCompetitors,
		Description: "List the main competitors of a product with strengths and weaknesses.",
	}, generateCompetitors(svc.Generator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        BuiltinGenerateDBSchema,
		Description: "Propose the relational database schema of a product.",
	}, generateDBSchema(svc.Generator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        BuiltinClassifyIntent,
		Description: "Route a user request to the best matching agent id, or report that none fits.",
	}, classifyIntent(svc.Classifier))
}
