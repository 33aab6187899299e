package generation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// SectionOutcome is the result of one section inside a batch.
type SectionOutcome struct {
	Section SectionKey `json:"section"`
	OK      bool       `json:"ok"`
	Error   string     `json:"error,omitempty"`
}

// BatchResult reports a bulk generation. A batch is never failed as a whole.
type BatchResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Outcomes  []SectionOutcome `json:"outcomes"`
}

// GenerateSections generates every key concurrently and merges the successful sections into doc.
// One failing section never cancels the others. An empty keys list means every section.
func (o *Orchestrator) GenerateSections(ctx context.Context, doc *Document, keys []SectionKey) (BatchResult, error) {
	if err := doc.Validate(); err != nil {
		return BatchResult{}, err
	}
	if len(keys) == 0 {
		keys = SectionKeys()
	}
	for _, k := range keys {
		if !k.Valid() {
			return BatchResult{}, fmt.Errorf("%w: unknown section %q", ErrInvalidInput, k)
		}
	}

	cfg := o.Config()
	// Recipes share a frozen copy; results are merged into doc after the join.
	snapshot := doc.Clone()
	texts := make([]string, len(keys))
	errs := make([]error, len(keys))

	var g errgroup.Group
	g.SetLimit(o.bulkLimit)
	for i, key := range keys {
		g.Go(func() error {
			text, err := o.generateSection(ctx, cfg, snapshot, key, "")
			if err == nil && text == "" {
				err = ErrNoResult
			}
			texts[i], errs[i] = text, err
			return nil
		})
	}
	_ = g.Wait()

	res := BatchResult{Outcomes: make([]SectionOutcome, len(keys))}
	for i, key := range keys {
		out := SectionOutcome{Section: key}
		if errs[i] != nil {
			res.Failed++
			out.Error = errs[i].Error()
		} else {
			res.Succeeded++
			out.OK = true
			doc.SetSection(key, texts[i])
		}
		res.Outcomes[i] = out
	}
	if res.Failed > 0 {
		o.logger.Warn("generation: bulk sections partially failed", "succeeded", res.Succeeded, "failed", res.Failed)
	}
	return res, nil
}
