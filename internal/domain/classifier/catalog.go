package classifier

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AgentDescriptor is one routable agent. MatchingText describes what the agent handles.
type AgentDescriptor struct {
	ID           string `yaml:"id" json:"id"`
	MatchingText string `yaml:"matching_text" json:"matchingText"`
}

//go:embed agents.yaml
var agentsYAML []byte

var defaultCatalog = mustLoadCatalog(agentsYAML)

// DefaultCatalog returns a copy of the embedded agent catalog.
func DefaultCatalog() []AgentDescriptor {
	return append([]AgentDescriptor(nil), defaultCatalog...)
}

func mustLoadCatalog(raw []byte) []AgentDescriptor {
	out, err := LoadCatalog(raw)
	if err != nil {
		panic(err)
	}
	return out
}

// LoadCatalog decodes a YAML catalog with a top-level "agents" list. Ids must be unique and
// must not collide with the none token.
func LoadCatalog(raw []byte) ([]AgentDescriptor, error) {
	var file struct {
		Agents []AgentDescriptor `yaml:"agents"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("classifier: decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(file.Agents))
	for i, a := range file.Agents {
		id := strings.TrimSpace(a.ID)
		switch {
		case id == "" || strings.TrimSpace(a.MatchingText) == "":
			return nil, fmt.Errorf("classifier: agent %d is incomplete", i)
		case strings.EqualFold(id, NoneToken):
			return nil, fmt.Errorf("classifier: agent id %q is reserved", id)
		case seen[id]:
			return nil, fmt.Errorf("classifier: duplicate agent id %q", id)
		}
		seen[id] = true
		file.Agents[i].ID = id
	}
	return file.Agents, nil
}
