package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adolfohrq/prdgen/internal/api/handlers"
	"github.com/adolfohrq/prdgen/internal/app"
		"github.com/adolfohrq/prdgen/internal/infra/llm"
	"github.com/adolfohrq/prdgen/internal/ui"
)

// errWarn marks a check that passed with a caveat.
type errWarn string

func (e errWarn) Error() string { return string(e) }

func (c *cli) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, storage and provider connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.doctor(cmd.Context())
		},
	}
}

func (c *cli) doctor(ctx context.Context) error {
	w := c.errOut
	ui.Title(w, "prdgen doctor")
	pass, fail, warn := 0, 0, 0

	check := func(name string, fn func() (string, error)) {
		detail, err := fn()
		switch {
		case err == nil:
			if detail != "" {
				name += " (" + detail + ")"
			}
			ui.Pass(w, name)
			pass++
		case isWarn(err):
			ui.Warn(w, name)
			ui.Detail(w, err.Error())
			warn++
		default:
			ui.Failure(w, name)
			ui.Detail(w, err.Error())
			fail++
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		ui.Failure(w, "Configuration")
		return err
	}
	check("Configuration", func() (string, error) { return c.envFile, nil })
	check("JWT secret", func() (string, error) {
		if err := cfg.RequireJWT(); err != nil {
			return "", fmt.Errorf("%w; serve and token need it", err)
		}
		return "", nil
	})

	check("Database", func() (string, error) {
		db, applied, err := openDB(cfg)
		if err != nil {
			return "", err
		}
		db.Close() //nolint:errcheck
		if len(applied) > 0 {
			return fmt.Sprintf("%s, applied %d migrations", cfg.DBPath, len(applied)), nil
		}
		return cfg.DBPath, nil
	})

	// Provider checks do not need the configured database.
	memCfg := cfg
	memCfg.DBPath = ":memory:"
	db, _, err := openDB(memCfg)
	if err != nil {
		return err
	}
	a := app.New(cfg, db, slog.New(slog.DiscardHandler))
	defer a.Close() //nolint:errcheck

	active := a.Orchestrator.Config()
	check(fmt.Sprintf("Default model (%s)", active.SelectedModel), func() (string, error) {
		p, err := a.Registry.Route(active.SelectedModel, llm.CapabilityStructured)
		if err != nil {
			return "", err
		}
		return "served by " + string(p.ID()), nil
	})
	check("Gemini key", func() (string, error) {
		if cfg.GeminiAPIKey == "" {
			return "", errWarn("GEMINI_API_KEY is not set; Gemini models, logos and image analysis will fail")
		}
		return "", nil
	})
	check("Groq key", func() (string, error) {
		if !active.HasCredential() {
			return "", errWarn("GROQ_API_KEY is not set; users must store a credential before using Groq models")
		}
		return "", nil
	})

	sp := ui.NewSpinner(w, "Contacting providers...")
	sp.Start()
	statuses := handlers.CheckProviders(ctx, a.Registry.Providers())
	sp.Stop()
	for _, s := range statuses {
		check(fmt.Sprintf("%s reachable", s.Provider), func() (string, error) {
			if !s.OK {
				return "", fmt.Errorf("%s", s.Error)
			}
			return "", nil
		})
	}

	fmt.Fprintln(w) //nolint:errcheck
	switch {
	case fail > 0:
		ui.Failure(w, fmt.Sprintf("%d passed, %d failed, %d warnings", pass, fail, warn))
		return fmt.Errorf("doctor: %d checks failed", fail)
	case warn > 0:
		ui.Warn(w, fmt.Sprintf("%d passed, %d warnings", pass, warn))
	default:
		ui.Pass(w, fmt.Sprintf("all %d checks passed", pass))
	}
	return nil
}

func isWarn(err error) bool {
	var w errWarn
	return errors.As(err, &w)
}
