package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/adolfohrq/prdgen/internal/domain/audit"
	"github.com/adolfohrq/prdgen/internal/domain/generation"
)

type AuditReader interface {
	List(ctx context.Context, f audit.Filter) ([]generation.Event, error)
	Stats(ctx context.Context) ([]audit.RecipeStats, error)
}

type GenerationsHandler struct {
	audit AuditReader
}

func NewGenerationsHandler(audit AuditReader) *GenerationsHandler {
	return &GenerationsHandler{audit: audit}
}

// List handles GET /generations?recipe=&outcome=&limit=.
func (h *GenerationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := audit.Filter{Recipe: q.Get("recipe"), Outcome: generation.Outcome(q.Get("outcome"))}
	switch f.Outcome {
	case "", generation.OutcomeSuccess, generation.OutcomeEmpty, generation.OutcomeError:
	default:
		writeFailure(w, badRequest("unknown outcome %q", f.Outcome))
		return
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeFailure(w, badRequest("limit must be a positive integer"))
			return
		}
		f.Limit = limit
	}
	events, err := h.audit.List(r.Context(), f)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if events == nil {
		events = []generation.Event{}
	}
	writeData(w, events)
}

// Stats handles GET /generations/stats.
func (h *GenerationsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.audit.Stats(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	if stats == nil {
		stats = []audit.RecipeStats{}
	}
	writeData(w, stats)
}
