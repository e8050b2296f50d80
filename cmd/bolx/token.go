package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bolx/internal/config"
	"bolx/internal/domain"
	"bolx/internal/service"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with BOLX_JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			r := domain.Role(role)
			if !r.Valid() {
				return fmt.Errorf("role must be %q or %q", domain.RoleAdmin, domain.RoleService)
			}

			tok, err := service.NewAuthService(cfg.JWT, cfg.Auth).IssueToken(subject, r, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", tok.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleService), "admin or service")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default BOLX_JWT_ACCESS_EXPIRY)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
