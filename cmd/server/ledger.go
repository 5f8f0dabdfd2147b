package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xoulomon/stellarsave/internal/config"
	"github.com/xoulomon/stellarsave/internal/storage/sqlite"
)

func openLedger(cmd *cobra.Command, flagPath string) (*sqlite.Ledger, error) {
	cfg, err := config.LoadLedger()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("ledger-db") {
		cfg.LedgerDBPath = flagPath
	}
	return sqlite.OpenLedger(cfg.LedgerDBPath)
}

func newFundCommand() *cobra.Command {
	var ledgerDB string

	cmd := &cobra.Command{
		Use:   "fund <address> <amount>",
		Short: "Credit an account in the ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			ledger, err := openLedger(cmd, ledgerDB)
			if err != nil {
				return err
			}
			defer ledger.Close()

			if err := ledger.Deposit(cmd.Context(), args[0], amount); err != nil {
				return err
			}
			balance, err := ledger.Balance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", args[0], balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&ledgerDB, "ledger-db", "", "ledger database path (overrides LEDGER_DB_PATH)")
	return cmd
}

func newBalanceCommand() *cobra.Command {
	var ledgerDB string

	cmd := &cobra.Command{
		Use:   "balance <address>...",
		Short: "Print ledger balances",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd, ledgerDB)
			if err != nil {
				return err
			}
			defer ledger.Close()

			for _, address := range args {
				balance, err := ledger.Balance(cmd.Context(), address)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", address, balance)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ledgerDB, "ledger-db", "", "ledger database path (overrides LEDGER_DB_PATH)")
	return cmd
}
