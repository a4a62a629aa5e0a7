package main

import (
	"fmt"
	"time"

	"github.com/riteshshukladev/FinSight/internal/aggregate"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show window summaries and per-category totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()

			ledger, err := store.GetLedger(ctx)
			if err != nil {
				return err
			}

			windows := aggregate.Windows(ledger, time.Now())
			printWindow("Today", windows.Today)
			printWindow("Last 7 days", windows.Week)
			printWindow("This month", windows.Month)
			printWindow("Last 60 days", windows.TwoMonths)

			stats := aggregate.Stats(ledger)
			fmt.Println("\nBy category:")
			fmt.Printf("  BANK: %d txns (%d debit / %d credit), out %s, in %s\n",
				stats.Bank.Total, stats.Bank.Debits, stats.Bank.Credits,
				stats.Bank.TotalDebitAmount, stats.Bank.TotalCreditAmount)
			fmt.Printf("  UPI:  %d txns (%d debit / %d credit), out %s, in %s\n",
				stats.UPI.Total, stats.UPI.Debits, stats.UPI.Credits,
				stats.UPI.TotalDebitAmount, stats.UPI.TotalCreditAmount)

			info, err := store.GetSyncInfo(ctx)
			if err != nil {
				return err
			}
			if info.LastSync != nil {
				fmt.Printf("\nLast sync: %s (%d messages scanned)\n",
					info.LastSync.Local().Format(time.RFC1123), info.TotalMessages)
			} else {
				fmt.Println("\nNo sync has run yet.")
			}

			return nil
		},
	}
}

func printWindow(label string, w aggregate.WindowSummary) {
	fmt.Printf("%-12s %3d txns  credit %10s  debit %10s  net %10s\n",
		label, w.TotalCount, w.TotalCredit, w.TotalDebit, w.Net)
}
