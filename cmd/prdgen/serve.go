package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adolfohrq/prdgen/internal/server"
)

func (c *cli) serveCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, user)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "restore this user's stored settings at startup")
	return cmd
}

func (c *cli) serve(ctx context.Context, user string) error {
	a, err := c.bootstrap(ctx, user)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	handler, err := a.Handler()
	if err != nil {
		return err
	}
	cfg := server.DefaultConfig()
	cfg.Host = a.Config.Host
	cfg.Port = a.Config.Port
	if err := server.NewServer(handler, cfg, a.Logger).Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
