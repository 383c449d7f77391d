package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"chartchat/internal/config"
	"chartchat/internal/history"
	"chartchat/internal/llm"
	"chartchat/internal/logger"
	"chartchat/internal/orchestrator"
	"chartchat/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chart generation HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if logLevel == "" {
			logger.SetLevel(cfg.Log.Level)
		}
		if cfg.LLM.APIKey == "" {
			logger.L.Warn("no OpenAI API key configured, generation requests will fail until one is set")
		}

		client := llm.NewClient(cfg.LLM)
		orch := orchestrator.New(client, cfg.LLM)
		store := history.Open(history.NewSQLiteBlob(cfg.History.DBPath))
		srv := server.New(orch, store, cfg.LLM)

		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.L.Info("starting server", "address", addr)
		return http.ListenAndServe(addr, srv)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
