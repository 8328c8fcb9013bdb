package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const configFlag = "config"

func configFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		configFlag: &cobraflags.StringFlag{
			Name:  configFlag,
			Value: "config.toml",
			Usage: "Path to the TOML configuration file",
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pricecompare",
		Short: "Price comparison and price alert backend",
		Long: `pricecompare aggregates retailer prices for a product catalog, serves the
comparison API and evaluates price alerts.

Without a subcommand the HTTP server is started.`,
		SilenceUsage: true,
	}

	serveCmd := newServeCommand()
	rootCmd.RunE = serveCmd.RunE
	cobraflags.RegisterMap(rootCmd, serveFlags)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newCheckAlertsCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newTokenCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
