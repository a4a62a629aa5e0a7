package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	var (
		force        bool
		messagesPath string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the classification pipeline once",
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

			var bar *progressbar.ProgressBar
			orchestrator.OnBatch(func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription("classifying batches"),
						progressbar.OptionShowCount(),
					)
				}
				_ = bar.Set(done)
			})

			var runErr error
			if force {
				_, runErr = orchestrator.ForceRefresh(cmd.Context())
			} else {
				_, runErr = orchestrator.Refresh(cmd.Context())
			}
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}
			if runErr != nil {
				return runErr
			}

			for _, line := range orchestrator.ProgressLog() {
				fmt.Println(line)
			}

			info, err := orchestrator.GetSyncInfo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Ledger: %d bank, %d upi transactions\n", info.BankCount, info.UPICount)

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "clear all cached state and re-sync from scratch")
	cmd.Flags().StringVar(&messagesPath, "messages", "", "path to a JSON export of SMS messages")

	return cmd
}
