package main

import (
	"fmt"

	"github.com/diewo77/go-billing/internal/logger"
	"github.com/spf13/cobra"
)

var nextNumberCmd = &cobra.Command{
	Use:   "next-number",
	Short: "Print the invoice number proposed for the next invoice",
	Long: `Print the number a new invoice form would display.

The number is only a proposal: nothing is reserved, and the invoice that is
eventually saved may receive a later number.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd.Context(), cfg, logger.WithComponent("next-number"))
		if err != nil {
			return err
		}
		defer b.Close()
		fmt.Fprintln(cmd.OutOrStdout(), b.alloc.Propose(cmd.Context()))
		return nil
	},
}
