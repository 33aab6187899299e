// Package settings persists per-user generation settings and applies them to the orchestrator.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// ErrInvalidUser is returned for an empty user id.
var ErrInvalidUser = errors.New("settings: user id is required")

// Store loads and saves partial settings. A nil field in a loaded patch was never set.
type Store interface {
	LoadSettings(ctx context.Context, userID string) (generation.ConfigPatch, error)
	SaveSettings(ctx context.Context, userID string, partial generation.ConfigPatch) error
}

// SQLiteStore implements Store on the user_settings table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a SQLiteStore. The schema comes from the sqlite migrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// LoadSettings returns the stored settings for userID; an unknown user yields an empty patch.
func (s *SQLiteStore) LoadSettings(ctx context.Context, userID string) (generation.ConfigPatch, error) {
	if strings.TrimSpace(userID) == "" {
		return generation.ConfigPatch{}, ErrInvalidUser
	}
	var model, credential sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT selected_model, provider_credential FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&model, &credential)
	if errors.Is(err, sql.ErrNoRows) {
		return generation.ConfigPatch{}, nil
	}
	if err != nil {
		return generation.ConfigPatch{}, fmt.Errorf("settings: load %q: %w", userID, err)
	}

	out := generation.ConfigPatch{}
	if model.Valid {
		m := llm.ModelID(model.String)
		out.SelectedModel = &m
	}
	if credential.Valid {
		c := credential.String
		out.ProviderCredential = &c
	}
	return out, nil
}

// SaveSettings upserts the non-nil fields of partial and leaves the others as stored.
func (s *SQLiteStore) SaveSettings(ctx context.Context, userID string, partial generation.ConfigPatch) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}
	var model, credential any
	if partial.SelectedModel != nil {
		model = strings.TrimSpace(string(*partial.SelectedModel))
	}
	if partial.ProviderCredential != nil {
		credential = strings.TrimSpace(*partial.ProviderCredential)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, selected_model, provider_credential, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			selected_model      = COALESCE(excluded.selected_model, user_settings.selected_model),
			provider_credential = COALESCE(excluded.provider_credential, user_settings.provider_credential),
			updated_at          = excluded.updated_at`,
		userID, model, credential, s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("settings: save %q: %w", userID, err)
	}
	return nil
}
