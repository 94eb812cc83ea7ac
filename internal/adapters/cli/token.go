package cli

import (
	"errors"
	"fmt"
	"time"

	"inventory-manager/internal/adapters/web"
	"inventory-manager/internal/config"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id",
		Long: `Sign an HS256 token with JWT_SECRET whose subject is the given user id.
Intended for local development and smoke tests.

Examples:
  inventory token --user auth0|123 --ttl 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET environment variable not set")
			}
			token, err := web.IssueToken(cfg.JWT.Secret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id placed in the sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
