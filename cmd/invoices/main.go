// Command invoices serves the billing API and runs maintenance tasks.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Bilingual invoicing service",
	Long: `invoices manages clients, products and invoices, allocates
sequential invoice numbers and renders English or Arabic PDF documents.

Configuration is read from the environment and an optional .env file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		config.LoadDotEnv(envFile)

		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if logCloser, err = logger.Setup(cfg.Log); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.AddCommand(serveCmd, migrateCmd, nextNumberCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithComponent("cmd").Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
