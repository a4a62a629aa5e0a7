package main

import (
	"fmt"
	"log/slog"

	"github.com/riteshshukladev/FinSight/internal/engine"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var messagesPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync periodically until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			orchestrator, err := buildOrchestrator(store, messagesPath)
			if err != nil {
				return err
			}

			// Run once immediately so the first window of data doesn't wait
			// a full interval.
			if _, err := orchestrator.Refresh(cmd.Context()); err != nil {
				slog.Error("initial sync failed", "error", err)
			}

			auto, err := engine.NewAutoRefresh(orchestrator, refreshInterval(), slog.Default())
			if err != nil {
				return err
			}

			auto.Start()
			fmt.Printf("Auto-refresh every %s; press Ctrl-C to stop.\n", refreshInterval())

			<-cmd.Context().Done()
			auto.Stop()

			return nil
		},
	}

	cmd.Flags().StringVar(&messagesPath, "messages", "", "path to a JSON export of SMS messages")

	return cmd
}
