package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
)

type stubCompleter struct {
	answer string
	err    error
	reqs   []generation.CompleteRequest
}

func (s *stubCompleter) Complete(_ context.Context, req generation.CompleteRequest) (string, error) {
	s.reqs = append(s.reqs, req)
	return s.answer, s.err
}

var testCatalog = []AgentDescriptor{
	{ID: "market-analyst", MatchingText: "competitors and pricing"},
	{ID: "data-architect", MatchingText: "database tables"},
}

func TestClassify_StripsPunctuationAroundValidID(t *testing.T) {
	t.Parallel()

	cases := []string{
		"market-analyst",
		"  market-analyst\n",
		`"market-analyst"`,
		"`market-analyst`.",
		"'market-analyst'!",
		"\n\n**market-analyst**\nbecause it mentions pricing",
	}
	for _, answer := range cases {
		c := New(&stubCompleter{answer: answer})
		id, ok, err := c.Classify(context.Background(), "who else sells this?", testCatalog)
		if err != nil || !ok || id != "market-analyst" {
			t.Errorf("answer %q: got (%q, %v, %v)", answer, id, ok, err)
		}
	}
}

func TestClassify_NoMatch(t *testing.T) {
	t.Parallel()

	for _, answer := range []string{"none", "None.", "brand-director", "market", "", "MARKET-ANALYST"} {
		c := New(&stubCompleter{answer: answer})
		id, ok, err := c.Classify(context.Background(), "draw a logo", testCatalog)
		if err != nil || ok || id != "" {
			t.Errorf("answer %q: expected no match, got (%q, %v, %v)", answer, id, ok, err)
		}
	}
}

func TestClassify_PromptEnumeratesCatalog(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{answer: "data-architect"}
	if _, _, err := New(stub).Classify(context.Background(), "add a users table", testCatalog); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	req := stub.reqs[0]
	for _, want := range []string{"- market-analyst: competitors and pricing", "- data-architect: database tables", "add a users table"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, req.Prompt)
		}
	}
	if req.Recipe != "classify" || !strings.Contains(req.SystemInstruction, NoneToken) {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestClassify_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream")
	if _, _, err := New(&stubCompleter{err: boom}).Classify(context.Background(), "x", testCatalog); !errors.Is(err, boom) {
		t.Errorf("expected provider error, got %v", err)
	}
	if _, _, err := New(&stubCompleter{}).Classify(context.Background(), "  ", testCatalog); !errors.Is(err, generation.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	stub := &stubCompleter{answer: "market-analyst"}
	if _, ok, err := New(stub).Classify(context.Background(), "x", nil); ok || err != nil || len(stub.reqs) != 0 {
		t.Errorf("empty catalog must not call the model, got (%v, %v, %d calls)", ok, err, len(stub.reqs))
	}
}

// ============================================================================
// Catalog
// ============================================================================

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	cat := DefaultCatalog()
	if len(cat) == 0 {
		t.Fatal("embedded catalog is empty")
	}
	cat[0].ID = "mutated"
	if DefaultCatalog()[0].ID == "mutated" {
		t.Error("DefaultCatalog must return a copy")
	}
}

func TestLoadCatalog_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"incomplete": "agents:\n  - id: a\n",
		"reserved":   "agents:\n  - id: none\n    matching_text: x\n",
		"duplicate":  "agents:\n  - id: a\n    matching_text: x\n  - id: a\n    matching_text: y\n",
		"syntax":     "agents: [",
	}
	for name, raw := range cases {
		if _, err := LoadCatalog([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
