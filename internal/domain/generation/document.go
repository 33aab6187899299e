package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SectionKey names a free-text PRD section.
type SectionKey string

const (
	SectionOverview       SectionKey = "overview"
	SectionProblem        SectionKey = "problem"
	SectionGoals          SectionKey = "goals"
	SectionUserStories    SectionKey = "user_stories"
	SectionRequirements   SectionKey = "requirements"
	SectionSuccessMetrics SectionKey = "success_metrics"
	SectionRisks          SectionKey = "risks"
)

// sectionBriefs describes what each section must contain; the order is the PRD order.
var sectionBriefs = []struct {
	key   SectionKey
	title string
	brief string
}{
	{SectionOverview, "Overview", "a concise product overview: what it is, who it is for and why now"},
	{SectionProblem, "Problem Statement", "the user problem, its impact and current workarounds"},
	{SectionGoals, "Goals and Non-Goals", "measurable product goals and explicit non-goals"},
	{SectionUserStories, "User Stories", "user stories in the form 'As a <role>, I want <capability> so that <benefit>' with acceptance criteria"},
	{SectionRequirements, "Functional Requirements", "numbered functional and non-functional requirements"},
	{SectionSuccessMetrics, "Success Metrics", "KPIs with targets and how each is measured"},
	{SectionRisks, "Risks and Mitigations", "product, technical and market risks, each with a mitigation"},
}

// SectionKeys returns every section in PRD order.
func SectionKeys() []SectionKey {
	out := make([]SectionKey, len(sectionBriefs))
	for i, s := range sectionBriefs {
		out[i] = s.key
	}
	return out
}

// Valid reports whether k is a known section.
func (k SectionKey) Valid() bool {
	for _, s := range sectionBriefs {
		if s.key == k {
			return true
		}
	}
	return false
}

// Title returns the human-readable heading of the section.
func (k SectionKey) Title() string {
	for _, s := range sectionBriefs {
		if s.key == k {
			return s.title
		}
	}
	return string(k)
}

func (k SectionKey) brief() string {
	for _, s := range sectionBriefs {
		if s.key == k {
			return s.brief
		}
	}
	return ""
}

// Document is the working PRD a client edits and sends back with each request.
type Document struct {
	ID           string                `json:"id,omitempty"`
	Title        string                `json:"title"`
	Idea         string                `json:"idea"`
	Suggestion   *ProjectSuggestion    `json:"suggestion,omitempty"`
	Sections     map[SectionKey]string `json:"sections,omitempty"`
	Competitors  []Competitor          `json:"competitors,omitempty"`
	UIPlan       []Screen              `json:"uiPlan,omitempty"`
	DBSchema     []Table               `json:"dbSchema,omitempty"`
	Logo         *Logo                 `json:"logo,omitempty"`
	TechExports  map[TechFormat]string `json:"techExports,omitempty"`
	IdeaAnalysis *IdeaAnalysis         `json:"ideaAnalysis,omitempty"`
}

// Validate checks the minimum a recipe needs to build a prompt.
func (d *Document) Validate() error {
	if d == nil || (strings.TrimSpace(d.Idea) == "" && strings.TrimSpace(d.Title) == "") {
		return fmt.Errorf("%w: document needs a title or an idea", ErrInvalidInput)
	}
	return nil
}

// Clone returns a copy whose maps can be written without affecting d.
// Slices and pointers are shared: Apply replaces them wholesale.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.Sections != nil {
		c.Sections = make(map[SectionKey]string, len(d.Sections))
		for k, v := range d.Sections {
			c.Sections[k] = v
		}
	}
	if d.TechExports != nil {
		c.TechExports = make(map[TechFormat]string, len(d.TechExports))
		for k, v := range d.TechExports {
			c.TechExports[k] = v
		}
	}
	return &c
}

// SetSection stores a section body, allocating the map on first use.
func (d *Document) SetSection(key SectionKey, text string) {
	if d.Sections == nil {
		d.Sections = make(map[SectionKey]string, len(sectionBriefs))
	}
	d.Sections[key] = text
}

// ContextJSON renders the document without binary payloads, for use inside prompts.
func (d *Document) ContextJSON() string {
	if d == nil {
		return "{}"
	}
	c := *d
	if c.Logo != nil {
		logo := *c.Logo
		logo.Image = nil
		c.Logo = &logo
	}
	c.TechExports = nil
	raw, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// Target identifies the part of a Document a refinement replaces.
type Target string

const (
	TargetSection     Target = "section"
	TargetCompetitors Target = "competitors"
	TargetUIPlan      Target = "ui_plan"
	TargetDBSchema    Target = "db_schema"
	TargetLogo        Target = "logo"
)

// Refinement is the structured output of a conversation-driven regeneration.
type Refinement struct {
	Target      Target       `json:"target"`
	Section     SectionKey   `json:"section,omitempty"`
	Text        string       `json:"text,omitempty"`
	Competitors []Competitor `json:"competitors,omitempty"`
	UIPlan      []Screen     `json:"uiPlan,omitempty"`
	DBSchema    []Table      `json:"dbSchema,omitempty"`
	Logo        *Logo        `json:"logo,omitempty"`
}

// Apply writes the refinement into the document. It reports false when the refinement
// carries nothing for its target, in which case the document is unchanged. An empty list
// counts as nothing: a degraded answer must not erase the user's existing list.
func (d *Document) Apply(r *Refinement) bool {
	if d == nil || r == nil {
		return false
	}
	switch r.Target {
	case TargetSection:
		if !r.Section.Valid() || strings.TrimSpace(r.Text) == "" {
			return false
		}
		d.SetSection(r.Section, r.Text)
	case TargetCompetitors:
		if len(r.Competitors) == 0 {
			return false
		}
		d.Competitors = r.Competitors
	case TargetUIPlan:
		if len(r.UIPlan) == 0 {
			return false
		}
		d.UIPlan = r.UIPlan
	case TargetDBSchema:
		if len(r.DBSchema) == 0 {
			return false
		}
		d.DBSchema = r.DBSchema
	case TargetLogo:
		if r.Logo == nil {
			return false
		}
		d.Logo = r.Logo
	default:
		return false
	}
	return true
}
