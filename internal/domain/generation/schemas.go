package generation

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// logoConcept is the text phase of the logo recipe; the image is filled in afterwards.
type logoConcept struct {
	Concept     string   `json:"concept" jsonschema:"one-sentence idea behind the mark"`
	Description string   `json:"description" jsonschema:"visual description of the logo"`
	Palette     []string `json:"palette" jsonschema:"3 to 5 hex colors"`
	Typography  string   `json:"typography" jsonschema:"typeface direction"`
	ImagePrompt string   `json:"imagePrompt" jsonschema:"prompt for an image model to draw the logo"`
}

// Schemas are derived from the result types so prompt, decoding and validation agree.
var (
	suggestionSchema = mustSchema[ProjectSuggestion]()
	competitorSchema = mustSchema[[]Competitor]()
	uiPlanSchema     = mustSchema[[]Screen]()
	dbSchemaSchema   = mustSchema[[]Table]()
	logoSchema       = mustSchema[logoConcept]()
	analysisSchema   = mustSchema[IdeaAnalysis]()
)

// Nested fields that must always decode as arrays.
var (
	suggestionArrayFields = []string{"platforms", "keyFeatures"}
	competitorArrayFields = []string{"strengths", "weaknesses"}
	screenArrayFields     = []string{"components"}
	tableArrayFields      = []string{"columns"}
	logoArrayFields       = []string{"palette"}
	analysisArrayFields   = []string{"strengths", "risks", "suggestions"}
)

func mustSchema[T any]() *jsonschema.Schema {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("generation: schema for %T: %v", *new(T), err))
	}
	return s
}
