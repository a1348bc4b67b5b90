package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Temutjin2k/crowdguard/config"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/auth"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig(root.configPath, types.MonitorService)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.AccessTokenTTL
			}

			tokens := auth.NewTokenService(cfg.Auth.JWTSecret, ttl)
			token, exp, err := tokens.Issue(subject, types.UserRole(strings.ToUpper(role)))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "operator the token is issued to")
	cmd.Flags().StringVar(&role, "role", types.RoleDispatcher.String(), "DISPATCHER or VIEWER")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to AUTH_ACCESS_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
