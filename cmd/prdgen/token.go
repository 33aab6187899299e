package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pkgauth "github.com/adolfohrq/prdgen/pkg/auth"
)

func (c *cli) tokenCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if strings.TrimSpace(user) == "" {
				return errors.New("--user is required")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireJWT(); err != nil {
				return err
			}
			signer, err := pkgauth.NewSigner(cfg.JWTSecret, cfg.JWTExpiry)
			if err != nil {
				return err
			}
			token, err := signer.Issue(user)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id carried in the token")
	return cmd
}
