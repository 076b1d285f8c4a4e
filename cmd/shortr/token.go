package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shortr/internal/platform/auth"
)

func (c *cli) tokenCmd() *cobra.Command {
	var subject string
	var scopes []string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Mint a bearer token for the management API.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if ttl > 0 {
				cfg.Auth.TokenTTL = ttl
			}

			token, err := auth.NewTokenService(cfg.Auth).GenerateToken(subject, scopes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeLinksWrite}, "Granted scopes")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default from config)")
	return cmd
}
