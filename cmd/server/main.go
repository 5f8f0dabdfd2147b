package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xoulomon/stellarsave/pkg/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stellarsave",
		Short:         "Rotating savings groups over Connect RPC",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup()
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newFundCommand())
	cmd.AddCommand(newBalanceCommand())
	cmd.AddCommand(newTokenCommand())

	return cmd
}
