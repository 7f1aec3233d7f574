package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jayphen/taskvoice/internal/auth"
	"github.com/Jayphen/taskvoice/internal/config"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage account-linking access tokens",
	}

	cmd.AddCommand(newTokenIssueCmd())

	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var user string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access token for development",
		Long: `Issue an access token signed with auth.jwt_secret. Paste it into a
test voice request as session.user.accessToken, or send it as a Bearer
token to /v1/interpret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Get()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Auth.TokenTTL
			}
			tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
			if err != nil {
				return fmt.Errorf("%w (set auth.jwt_secret or TASKVOICE_JWT_SECRET)", err)
			}
			token, err := tokens.IssueAccessToken(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User ID to put in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.token_ttl)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
