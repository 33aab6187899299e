// Package classifier maps free-text intent to the id of the best matching agent in a finite
// catalog. The model answers with a bare id; only exact matches against the catalog count.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
)

// NoneToken is the answer the model gives when no agent fits.
const NoneToken = "none"

const systemClassifier = "You route user requests to agents. Answer with exactly one agent id from the list, " +
	"or " + NoneToken + " when no agent fits. Output only the id: no quotes, no punctuation, no explanation."

// Completer is the single-shot generation surface the classifier needs.
type Completer interface {
	Complete(ctx context.Context, req generation.CompleteRequest) (string, error)
}

// Classifier routes intent with a Completer.
type Classifier struct {
	engine Completer
}

// New creates a Classifier.
func New(engine Completer) *Classifier {
	return &Classifier{engine: engine}
}

// Classify returns the matching agent id and true, or "" and false when the model answered
// none or named an id that is not in the catalog. Errors are provider or input failures only.
func (c *Classifier) Classify(ctx context.Context, text string, catalog []AgentDescriptor) (string, bool, error) {
	if strings.TrimSpace(text) == "" {
		return "", false, fmt.Errorf("%w: text is empty", generation.ErrInvalidInput)
	}
	if len(catalog) == 0 {
		return "", false, nil
	}
	raw, err := c.engine.Complete(ctx, generation.CompleteRequest{
		Recipe:            "classify",
		Prompt:            prompt(text, catalog),
		SystemInstruction: systemClassifier,
	})
	if err != nil {
		return "", false, err
	}
	return Match(raw, catalog)
}

// Match validates a raw model answer against catalog.
func Match(raw string, catalog []AgentDescriptor) (string, bool, error) {
	answer := Normalize(raw)
	if answer == "" || strings.EqualFold(answer, NoneToken) {
		return "", false, nil
	}
	for _, a := range catalog {
		if a.ID == answer {
			return a.ID, true, nil
		}
	}
	return "", false, nil
}

// Normalize keeps the first non-empty line of raw and trims whitespace, quotes, backticks and
// punctuation from both ends.
func Normalize(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimFunc(line, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '`'
		})
		if line != "" {
			return line
		}
	}
	return ""
}

func prompt(text string, catalog []AgentDescriptor) string {
	b := strings.Builder{}
	b.WriteString("Agents:\n")
	for _, a := range catalog {
		fmt.Fprintf(&b, "- %s: %s\n", a.ID, strings.TrimSpace(a.MatchingText))
	}
	b.WriteString("\nUser request:\n")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n\nAgent id:")
	return b.String()
}
