package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xoulomon/stellarsave/internal/auth"
	"github.com/xoulomon/stellarsave/internal/config"
)

func newTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token [address]",
		Short: "Mint a session token, for the operator by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			address := cfg.OperatorAddress
			if len(args) == 1 {
				address = args[0]
			}
			if err := auth.ValidateAddress(address); err != nil {
				return err
			}

			token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).Generate(address)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
