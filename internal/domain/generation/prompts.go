package generation

import (
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	systemProductWriter = "You are a senior product manager and software architect. " +
		"You write precise, practical Product Requirements Documents. Be specific to the product described; avoid generic filler."
	systemStructured = systemProductWriter + " When asked for JSON, return only JSON that matches the requested structure."
	systemMarketResearch = "You are a market analyst. Use web search to find real, currently operating products. " +
		"Never invent companies."
)

// structuredPrompt is everything a schema-constrained call needs.
type structuredPrompt struct {
	prompt      string
	system      string
	schema      *jsonschema.Schema
	temperature float32
}

func writeDocumentContext(b *strings.Builder, doc *Document) {
	b.WriteString("Product title: ")
	b.WriteString(strings.TrimSpace(doc.Title))
	b.WriteString("\nProduct idea: ")
	b.WriteString(strings.TrimSpace(doc.Idea))
	if s := doc.Suggestion; s != nil {
		if s.Summary != "" {
			b.WriteString("\nSummary: ")
			b.WriteString(s.Summary)
		}
		if s.TargetAudience != "" {
			b.WriteString("\nTarget audience: ")
			b.WriteString(s.TargetAudience)
		}
		if len(s.KeyFeatures) > 0 {
			b.WriteString("\nKey features: ")
			b.WriteString(strings.Join(s.KeyFeatures, "; "))
		}
	}
	for _, key := range SectionKeys() {
		text := strings.TrimSpace(doc.Sections[key])
		if text == "" {
			continue
		}
		b.WriteString("\n\n## ")
		b.WriteString(key.Title())
		b.WriteString("\n")
		b.WriteString(text)
	}
}

func writeExtraContext(b *strings.Builder, extra string) {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return
	}
	b.WriteString("\n\nConversation with the user. Apply every change they agreed on:\n")
	b.WriteString(extra)
}

func suggestionPrompt(idea string) structuredPrompt {
	b := strings.Builder{}
	b.WriteString("Raw product idea:\n")
	b.WriteString(strings.TrimSpace(idea))
	b.WriteString("\n\nTask: propose the PRD metadata for this idea: a short product title, a one-line tagline, ")
	b.WriteString("a 2-3 sentence summary, the target audience, a category, the platforms it should ship on ")
	b.WriteString("and 4-6 key features.")
	return structuredPrompt{prompt: b.String(), system: systemStructured, schema: suggestionSchema, temperature: 0.7}
}

func sectionPrompt(doc *Document, key SectionKey, extra string) string {
	b := strings.Builder{}
	writeDocumentContext(&b, doc)
	writeExtraContext(&b, extra)
	b.WriteString("\n\nTask: write the \"")
	b.WriteString(key.Title())
	b.WriteString("\" section of the PRD: ")
	b.WriteString(key.brief())
	b.WriteString(".\nUse Markdown. Do not repeat the section heading. Do not include other sections.")
	return b.String()
}

func competitorPrompt(doc *Document, extra string) structuredPrompt {
	b := strings.Builder{}
	writeDocumentContext(&b, doc)
	writeExtraContext(&b, extra)
	b.WriteString("\n\nTask: list 3 to 6 direct or indirect competitors of this product. ")
	b.WriteString("For each give its name, a short description, its website if known, its pricing model, ")
	b.WriteString("and its main strengths and weaknesses relative to this product.")
	return structuredPrompt{prompt: b.String(), system: systemStructured, schema: competitorSchema, temperature: 0.4}
}

// groundedCompetitorPrompt describes the JSON in prose: Gemini cannot combine the search
// tool with a response schema.
func groundedCompetitorPrompt(doc *Document, extra string) string {
	sp := competitorPrompt(doc, extra)
	return sp.prompt + "\nSearch the web for real products. Respond ONLY with a JSON array in this format: " +
		`[{"name":"...","description":"...","website":"https://...","pricingModel":"...","strengths":["..."],"weaknesses":["..."]}]`
}

func uiPlanPrompt(doc *Document, extra string) structuredPrompt {
	b := strings.Builder{}
	writeDocumentContext(&b, doc)
	writeExtraContext(&b, extra)
	b.WriteString("\n\nTask: design the UI plan. List the 5 to 10 screens the product needs, each with its name, ")
	b.WriteString("a URL route, its purpose and the main UI components it contains.")
	return structuredPrompt{prompt: b.String(), system: systemStructured, schema: uiPlanSchema, temperature: 0.5}
}

func dbSchemaPrompt(doc *Document, extra string) structuredPrompt {
	b := strings.Builder{}
	writeDocumentContext(&b, doc)
	if len(doc.UIPlan) > 0 {
		b.WriteString("\n\nScreens: ")
		names := make([]string, 0, len(doc.UIPlan))
		for _, s := range doc.UIPlan {
			names = append(names, s.Name)
		}
		b.WriteString(strings.Join(names, ", "))
	}
	writeExtraContext(&b, extra)
	b.WriteString("\n\nTask: design a normalized relational database schema for this product. ")
	b.WriteString("For each table give its name, a description and its columns with SQL type, primary key flag, ")
	b.WriteString("nullability and the referenced table.column for foreign keys.")
	return structuredPrompt{prompt: b.String(), system: systemStructured, schema: dbSchemaSchema, temperature: 0.2}
}

func techExportPrompt(doc *Document, format TechFormat) string {
	b := strings.Builder{}
	b.WriteString("Product title: ")
	b.WriteString(doc.Title)
	if len(doc.DBSchema) > 0 {
		b.WriteString("\n\nDatabase schema:\n")
		for _, t := range doc.DBSchema {
			fmt.Fprintf(&b, "- %s:", t.Name)
			for _, c := range t.Columns {
				fmt.Fprintf(&b, " %s %s", c.Name, c.Type)
				if c.PrimaryKey {
					b.WriteString(" pk")
				}
				if c.References != "" {
					b.WriteString(" -> " + c.References)
				}
				b.WriteString(";")
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString("\n\n")
		writeDocumentContext(&b, doc)
	}
	b.WriteString("\nTask: produce ")
	b.WriteString(techFormats[format])
	b.WriteString(" for this data model. Return only the code, in a single fenced code block.")
	return b.String()
}

func logoPrompt(doc *Document, extra string) structuredPrompt {
	b := strings.Builder{}
	writeDocumentContext(&b, doc)
	writeExtraContext(&b, extra)
	b.WriteString("\n\nTask: as a brand designer, propose a logo concept for this product: the idea behind the mark, ")
	b.WriteString("a visual description, a 3-5 color hex palette, a typography direction and a prompt an image model ")
	b.WriteString("can use to draw it (flat vector, centered, plain background, no mockups).")
	return structuredPrompt{prompt: b.String(), system: systemStructured, schema: logoSchema, temperature: 0.9}
}

func logoImagePrompt(c *logoConcept, title string) string {
	if p := strings.TrimSpace(c.ImagePrompt); p != "" {
		return p
	}
	return fmt.Sprintf("Minimal flat vector logo for %q. %s Colors: %s. Centered on a plain background.",
		title, c.Description, strings.Join(c.Palette, ", "))
}

func analysisPrompt(idea string) structuredPrompt {
	b := strings.Builder{}
	b.WriteString("Product idea:\n")
	b.WriteString(strings.TrimSpace(idea))
	b.WriteString("\n\nTask: assess the quality of this idea as a product. Give a score from 0 to 100, ")
	b.WriteString("a one-sentence verdict, the target market, its strengths, its main risks and concrete suggestions ")
	b.WriteString("to improve it.")
	return structuredPrompt{prompt: b.String(), system: systemStructured, schema: analysisSchema, temperature: 0.3}
}
