package generation

import "errors"

// ErrNoResult marks a recipe outcome where the model answered but nothing usable could be
// recovered. It only appears in batch outcomes; single recipes report it as a nil value.
var ErrNoResult = errors.New("generation: no usable result")

// ErrInvalidInput is returned for requests the orchestrator refuses before calling a model.
var ErrInvalidInput = errors.New("generation: invalid input")

// ProjectSuggestion is the PRD metadata proposed for a raw idea.
type ProjectSuggestion struct {
	Title          string   `json:"title"`
	Tagline        string   `json:"tagline"`
	Summary        string   `json:"summary"`
	TargetAudience string   `json:"targetAudience"`
	Category       string   `json:"category"`
	Platforms      []string `json:"platforms"`
	KeyFeatures    []string `json:"keyFeatures"`
}

// Competitor is one entry of the competitive landscape.
type Competitor struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Website      string   `json:"website,omitempty"`
	PricingModel string   `json:"pricingModel,omitempty"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
}

// Screen is one view of the proposed UI plan.
type Screen struct {
	Name       string   `json:"name"`
	Route      string   `json:"route,omitempty"`
	Purpose    string   `json:"purpose"`
	Components []string `json:"components"`
}

// Column is a column of a proposed database table.
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	PrimaryKey  bool   `json:"primaryKey,omitempty"`
	Nullable    bool   `json:"nullable,omitempty"`
	References  string `json:"references,omitempty"`
	Description string `json:"description,omitempty"`
}

// Table is a proposed database table.
type Table struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns"`
}

// Logo is a brand concept plus an optional rendered image.
// An empty Image with a filled concept is a valid partial result.
type Logo struct {
	Concept     string   `json:"concept"`
	Description string   `json:"description"`
	Palette     []string `json:"palette"`
	Typography  string   `json:"typography,omitempty"`
	ImagePrompt string   `json:"imagePrompt,omitempty"`
	ImageMIME   string   `json:"imageMimeType,omitempty"`
	Image       []byte   `json:"image,omitempty"`
}

// HasImage reports whether image synthesis produced bytes.
func (l *Logo) HasImage() bool { return l != nil && len(l.Image) > 0 }

// IdeaAnalysis is a quality assessment of a product idea.
type IdeaAnalysis struct {
	Score        int      `json:"score"`
	Verdict      string   `json:"verdict"`
	TargetMarket string   `json:"targetMarket,omitempty"`
	Strengths    []string `json:"strengths"`
	Risks        []string `json:"risks"`
	Suggestions  []string `json:"suggestions"`
}

// TechFormat is a target of the technical export recipe.
type TechFormat string

const (
	FormatSQL        TechFormat = "sql"
	FormatTypeScript TechFormat = "typescript"
	FormatPrisma     TechFormat = "prisma"
	FormatOpenAPI    TechFormat = "openapi"
)

var techFormats = map[TechFormat]string{
	FormatSQL:        "PostgreSQL DDL (CREATE TABLE statements with constraints and indexes)",
	FormatTypeScript: "TypeScript interfaces and enums",
	FormatPrisma:     "a Prisma schema file (schema.prisma models)",
	FormatOpenAPI:    "an OpenAPI 3.1 YAML document with CRUD paths for each table",
}

// Valid reports whether f is a supported export format.
func (f TechFormat) Valid() bool {
	_, ok := techFormats[f]
	return ok
}
