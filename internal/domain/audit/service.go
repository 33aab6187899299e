// Package audit keeps the append-only log of finished generation recipes.
// Rows are written from the generation.completed topic of the event bus; nothing updates or
// deletes them.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/infra/eventbus"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
	"github.com/adolfohrq/prdgen/pkg/uuid"
)

// timeLayout has a fixed width so occurred_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Service reads and writes the generation_event table.
type Service struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(db *sql.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, logger: logger}
}

// Log appends one event. A missing id or timestamp is filled in.
func (s *Service) Log(ctx context.Context, evt generation.Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewV7()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	var errText any
	if evt.Error != "" {
		errText = evt.Error
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_event
			(id, recipe, model, provider, outcome, latency_ms, fallback_used, error, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.ID, evt.Recipe, string(evt.Model), string(evt.Provider), string(evt.Outcome),
		evt.LatencyMs, evt.FallbackUsed, errText, evt.OccurredAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("audit: log %s: %w", evt.Recipe, err)
	}
	return nil
}

// List returns the most recent events, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]generation.Event, error) {
	where, args := f.clause()
	args = append(args, f.limit())
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipe, model, provider, outcome, latency_ms, fallback_used, error, occurred_at
		FROM generation_event`+where+`
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := []generation.Event{}
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// Stats aggregates all stored events per recipe, ordered by recipe name.
func (s *Service) Stats(ctx context.Context) ([]RecipeStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recipe,
		       COUNT(*),
		       SUM(CASE WHEN outcome = 'success' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'empty' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'error' THEN 1 ELSE 0 END),
		       SUM(fallback_used),
		       AVG(latency_ms)
		FROM generation_event
		GROUP BY recipe
		ORDER BY recipe`)
	if err != nil {
		return nil, fmt.Errorf("audit: stats: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := []RecipeStats{}
	for rows.Next() {
		var st RecipeStats
		if err := rows.Scan(&st.Recipe, &st.Total, &st.Succeeded, &st.Empty, &st.Failed, &st.FallbackUsed, &st.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("audit: scan stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Record consumes events until ctx is done or the channel is closed. Payloads that are not
// generation events are skipped. Storage failures are logged and do not stop the loop.
func (s *Service) Record(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			evt, ok := msg.Payload.(generation.Event)
			if !ok {
				s.logger.Warn("audit: unexpected payload", "topic", msg.Topic)
				continue
			}
			if err := s.Log(ctx, evt); err != nil {
				s.logger.Error("audit: failed to store generation event", "recipe", evt.Recipe, "error", err)
			}
		}
	}
}

func (f Filter) clause() (string, []any) {
	var conds []string
	var args []any
	if f.Recipe != "" {
		conds = append(conds, "recipe = ?")
		args = append(args, f.Recipe)
	}
	if f.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, string(f.Outcome))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEvent(rows *sql.Rows) (generation.Event, error) {
	var (
		evt                  generation.Event
		model, provider, out string
		errText              sql.NullString
		occurredAt           string
	)
	if err := rows.Scan(&evt.ID, &evt.Recipe, &model, &provider, &out, &evt.LatencyMs, &evt.FallbackUsed, &errText, &occurredAt); err != nil {
		return evt, err
	}
	evt.Model, evt.Provider, evt.Outcome = llm.ModelID(model), llm.ProviderID(provider), generation.Outcome(out)
	evt.Error = errText.String
	t, err := time.Parse(timeLayout, occurredAt)
	if err != nil {
		return evt, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
	}
	evt.OccurredAt = t
	return evt, nil
}
