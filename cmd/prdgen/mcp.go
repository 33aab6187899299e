package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/adolfohrq/prdgen/internal/domain/tool"
	"github.com/adolfohrq/prdgen/internal/version"
)

func (c *cli) mcpCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the generation tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := c.bootstrap(ctx, user)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			server := tool.NewServer(tool.BuiltinServices{
				Generator:  a.Orchestrator,
				Classifier: a.Classifier,
			}, version.Version)
			a.Logger.Info("mcp server starting", "transport", "stdio")
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "restore this user's stored settings at startup")
	return cmd
}
