package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chartchat/internal/logger"
)

var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chartchat",
	Short: "Turn natural-language requests into chart specifications",
	Long: `chartchat turns a natural-language description (optionally accompanied by an
uploaded CSV, JSON or XLSX file) into chart specifications using an LLM
completion service, and keeps a versioned, durable history of every request.

Quick start:
  chartchat serve            # start the HTTP API
  chartchat history list     # inspect stored sessions
  chartchat history clear    # wipe the stored history`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			logger.SetLevel(logLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}
