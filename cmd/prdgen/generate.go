package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adolfohrq/prdgen/internal/domain/classifier"
	"github.com/adolfohrq/prdgen/internal/ui"
)

func (c *cli) suggestCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "suggest <idea>",
		Short: "Suggest PRD metadata for a product idea",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea := strings.Join(args, " ")
			a, err := c.bootstrap(cmd.Context(), user)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			sp := ui.NewSpinner(c.errOut, "Asking "+string(a.Orchestrator.Config().SelectedModel)+"...")
			sp.Start()
			suggestion, err := a.Orchestrator.SuggestProject(cmd.Context(), idea)
			if err != nil {
				sp.Fail("generation failed")
				return err
			}
			if suggestion == nil {
				sp.Fail("the model answered but nothing usable came back")
				return nil
			}
			sp.Success(suggestion.Title)
			return c.printJSON(suggestion)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "use this user's stored settings")
	return cmd
}

func (c *cli) classifyCmd() *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Route a request to the best matching agent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := classifier.DefaultCatalog()
			if catalogPath != "" {
				raw, err := os.ReadFile(catalogPath)
				if err != nil {
					return fmt.Errorf("read catalog: %w", err)
				}
				if catalog, err = classifier.LoadCatalog(raw); err != nil {
					return err
				}
			}

			a, err := c.bootstrap(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			sp := ui.NewSpinner(c.errOut, "Classifying...")
			sp.Start()
			id, ok, err := a.Classifier.Classify(cmd.Context(), strings.Join(args, " "), catalog)
			if err != nil {
				sp.Fail("classification failed")
				return err
			}
			if !ok {
				sp.Fail("no agent matches")
				_, err = fmt.Fprintln(c.out, "none")
				return err
			}
			sp.Success("matched")
			_, err = fmt.Fprintln(c.out, id)
			return err
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML agent catalog replacing the built-in agents")
	return cmd
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
