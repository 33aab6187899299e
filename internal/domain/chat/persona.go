package chat

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
)

// PersonaID is the closed set of chat personas.
type PersonaID string

const (
	PersonaProductManager PersonaID = "product-manager"
	PersonaMarketAnalyst  PersonaID = "market-analyst"
	PersonaUXDesigner     PersonaID = "ux-designer"
	PersonaDataArchitect  PersonaID = "data-architect"
	PersonaBrandDirector  PersonaID = "brand-director"
)

// Persona is a fixed system instruction bound to the document part it refines.
type Persona struct {
	ID             PersonaID             `yaml:"id" json:"id"`
	Name           string                `yaml:"name" json:"name"`
	Target         generation.Target     `yaml:"target" json:"target"`
	DefaultSection generation.SectionKey `yaml:"default_section" json:"defaultSection,omitempty"`
	Temperature    float32               `yaml:"temperature" json:"-"`
	Instruction    string                `yaml:"instruction" json:"-"`
}

//go:embed personas.yaml
var personasYAML []byte

var personas = mustLoadPersonas(personasYAML)

func mustLoadPersonas(raw []byte) map[PersonaID]Persona {
	out, err := loadPersonas(raw)
	if err != nil {
		panic(err)
	}
	return out
}

func loadPersonas(raw []byte) (map[PersonaID]Persona, error) {
	var file struct {
		Personas []Persona `yaml:"personas"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("chat: decode personas: %w", err)
	}
	out := make(map[PersonaID]Persona, len(file.Personas))
	for _, p := range file.Personas {
		if p.ID == "" || strings.TrimSpace(p.Instruction) == "" {
			return nil, fmt.Errorf("chat: persona %q is incomplete", p.ID)
		}
		if p.Target == generation.TargetSection && !p.DefaultSection.Valid() {
			return nil, fmt.Errorf("chat: persona %q needs a valid default_section", p.ID)
		}
		p.Instruction = strings.TrimSpace(p.Instruction)
		out[p.ID] = p
	}
	return out, nil
}

// LookupPersona returns the persona with id.
func LookupPersona(id PersonaID) (Persona, bool) {
	p, ok := personas[id]
	return p, ok
}

// Personas returns every persona sorted by ID.
func Personas() []Persona {
	out := make([]Persona, 0, len(personas))
	for _, p := range personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
