// Command prdgen serves the PRD generation API and exposes its recipes from the terminal.
package main

import (
	"io"
	"os"

	"github.com/fatih/color"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, out, errOut io.Writer) int {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(errOut, "Error: %v\n", err) //nolint:errcheck
		return 1
	}
	return 0
}
