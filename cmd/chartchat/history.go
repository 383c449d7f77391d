package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chartchat/internal/config"
	"chartchat/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the stored chart history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		sessions := store.Sessions()
		if len(sessions) == 0 {
			fmt.Println("no sessions stored")
			return nil
		}
		for _, sess := range sessions {
			fmt.Printf("%s  %s  %d version(s)  %q\n",
				sess.ID,
				time.UnixMilli(sess.Timestamp).Format(time.RFC3339),
				len(sess.Versions),
				sess.OriginalRequest)
		}
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <session-id>",
	Short: "Remove one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if _, ok := store.Get(args[0]); !ok {
			return fmt.Errorf("session %s not found", args[0])
		}
		store.Remove(args[0])
		fmt.Printf("removed session %s\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		store.Clear()
		fmt.Println("history cleared")
		return nil
	},
}

func openStore() (*history.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return history.Open(history.NewSQLiteBlob(cfg.History.DBPath)), nil
}

func init() {
	historyCmd.AddCommand(historyListCmd, historyRemoveCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
