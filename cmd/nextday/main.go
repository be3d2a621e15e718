package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"NextDay/internal/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		provider string
		cfg      *config.Config
	)

	rootCmd := &cobra.Command{
		Use:   "nextday",
		Short: "NextDay - guess the next trading day",
		Long: `NextDay picks a random recent trading day for a ticker, shows the week before it,
and asks you whether the following day closed higher or lower.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if v := os.Getenv("CONFIG_PATH"); v != "" && !cmd.Flags().Changed("config") {
				cfgPath = v
			}
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if provider != "" {
				loaded.DataSource.Provider = provider
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			*cfg = *loaded
			return nil
		},
	}
	cfg = &config.Config{}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "configs/config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Override data_source.provider (alphavantage, yahoo, alpaca, file, mock)")

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newPlayCmd(cfg))
	rootCmd.AddCommand(newFetchCmd(cfg))
	return rootCmd
}
