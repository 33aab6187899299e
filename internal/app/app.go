// Package app builds the prdgen service graph from a Config: provider adapters, the
// orchestrators, the event bus and the SQLite-backed stores.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/adolfohrq/prdgen/internal/api"
	"github.com/adolfohrq/prdgen/internal/domain/audit"
	"github.com/adolfohrq/prdgen/internal/domain/chat"
	"github.com/adolfohrq/prdgen/internal/domain/classifier"
	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/domain/settings"
	"github.com/adolfohrq/prdgen/internal/infra/config"
	"github.com/adolfohrq/prdgen/internal/infra/eventbus"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
	pkgauth "github.com/adolfohrq/prdgen/pkg/auth"
)

// App owns every long-lived component. Close releases them in reverse order.
type App struct {
	Config       config.Config
	Logger       *slog.Logger
	DB           *sql.DB
	Bus          *eventbus.Bus
	Registry     *llm.Registry
	Orchestrator *generation.Orchestrator
	Classifier   *classifier.Classifier
	Chat         *chat.Service
	Settings     *settings.Service
	Audit        *audit.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires the components. db must already be migrated.
func New(cfg config.Config, db *sql.DB, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	bus := eventbus.New()

	gemini := llm.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, llm.ModelID(cfg.ImageModel), cfg.LLMTimeout)
	groq := llm.NewGroqProvider(cfg.GroqBaseURL, cfg.LLMTimeout)
	registry := llm.NewRegistry(gemini, groq)

	orch := generation.NewOrchestrator(registry, generation.Options{
		DefaultModel:    llm.ModelID(cfg.DefaultModel),
		FallbackModel:   llm.ModelID(cfg.FallbackModel),
		ImageModel:      llm.ModelID(cfg.ImageModel),
		Credential:      cfg.GroqAPIKey,
		BulkConcurrency: cfg.BulkConcurrency,
		Timeout:         cfg.LLMTimeout,
		Events:          bus,
		Logger:          logger,
	})
	groq.WithKeySource(func() string { return orch.Config().ProviderCredential })

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Bus:          bus,
		Registry:     registry,
		Orchestrator: orch,
		Classifier:   classifier.New(orch),
		Chat:         chat.NewService(orch, cfg.ChatMaxHistory, logger),
		Settings:     settings.NewService(settings.NewSQLiteStore(db), orch),
		Audit:        audit.NewService(db, logger),
	}
}

// Start runs the audit recorder until Close or ctx is done.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	events := a.Bus.Subscribe(generation.TopicGenerationCompleted)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Audit.Record(ctx, events)
	}()
}

// Handler builds the HTTP router. It fails when the JWT secret is missing or too short.
func (a *App) Handler() (http.Handler, error) {
	signer, err := a.Signer()
	if err != nil {
		return nil, err
	}
	return api.NewRouter(api.Deps{
		Tokens:     signer,
		Providers:  a.Registry,
		Generator:  a.Orchestrator,
		Settings:   a.Settings,
		Classifier: a.Classifier,
		Chat:       a.Chat,
		Audit:      a.Audit,
		Logger:     a.Logger,
	}), nil
}

// Signer returns the JWT signer for the configured secret.
func (a *App) Signer() (*pkgauth.Signer, error) {
	if err := a.Config.RequireJWT(); err != nil {
		return nil, err
	}
	return pkgauth.NewSigner(a.Config.JWTSecret, a.Config.JWTExpiry)
}

// Close closes the bus, waits for the recorder to drain and closes the database.
func (a *App) Close() error {
	a.Bus.Close()
	if a.cancel != nil {
		a.wg.Wait()
		a.cancel()
	}
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
