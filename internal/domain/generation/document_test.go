package generation

import (
	"strings"
	"testing"
)

func TestDocument_Apply(t *testing.T) {
	t.Parallel()

	doc := testDoc()
	cases := []struct {
		name string
		ref  *Refinement
		want bool
	}{
		{"nil", nil, false},
		{"section", &Refinement{Target: TargetSection, Section: SectionGoals, Text: "ship v1"}, true},
		{"section unknown", &Refinement{Target: TargetSection, Section: "appendix", Text: "x"}, false},
		{"section blank", &Refinement{Target: TargetSection, Section: SectionGoals, Text: "  "}, false},
		{"competitors", &Refinement{Target: TargetCompetitors, Competitors: []Competitor{{Name: "A"}}}, true},
		{"competitors empty list", &Refinement{Target: TargetCompetitors, Competitors: []Competitor{}}, false},
		{"db schema empty list", &Refinement{Target: TargetDBSchema, DBSchema: []Table{}}, false},
		{"ui plan missing", &Refinement{Target: TargetUIPlan}, false},
		{"logo", &Refinement{Target: TargetLogo, Logo: &Logo{Concept: "c"}}, true},
		{"unknown target", &Refinement{Target: "cover"}, false},
	}
	for _, tc := range cases {
		if got := doc.Apply(tc.ref); got != tc.want {
			t.Errorf("%s: Apply = %v; want %v", tc.name, got, tc.want)
		}
	}
	if doc.Sections[SectionGoals] != "ship v1" || doc.Logo == nil {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestDocument_ContextJSON_OmitsBinaryPayloads(t *testing.T) {
	t.Parallel()

	doc := testDoc()
	doc.Logo = &Logo{Concept: "fox", Image: []byte("PNGDATA")}
	doc.TechExports = map[TechFormat]string{FormatSQL: "CREATE TABLE"}
	got := doc.ContextJSON()
	if strings.Contains(got, "UE5HREFUQQ") || strings.Contains(got, "CREATE TABLE") {
		t.Errorf("binary or export payload leaked: %s", got)
	}
	if !strings.Contains(got, `"concept":"fox"`) || doc.Logo.Image == nil {
		t.Errorf("unexpected context %s", got)
	}
}

func TestSectionKeys_Order(t *testing.T) {
	t.Parallel()

	keys := SectionKeys()
	if len(keys) != 7 || keys[0] != SectionOverview || keys[6] != SectionRisks {
		t.Errorf("unexpected keys %v", keys)
	}
	if SectionUserStories.Title() != "User Stories" {
		t.Errorf("unexpected title %q", SectionUserStories.Title())
	}
}
