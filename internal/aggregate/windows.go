// Package aggregate computes time-windowed rollups over the ledger. All
// functions are pure read-side computations: they never mutate the input and
// are safe to call concurrently with pipeline writes as long as the caller
// passes a consistent ledger snapshot.
package aggregate

import (
	"time"

	"github.com/riteshshukladev/FinSight/internal/model"
	"github.com/shopspring/decimal"
)

// WindowSummary is a derived, non-persisted rollup of a time-bounded ledger
// slice.
type WindowSummary struct {
	TotalCredit decimal.Decimal           `json:"totalCredit"`
	TotalDebit  decimal.Decimal           `json:"totalDebit"`
	Net         decimal.Decimal           `json:"net"`
	List        []model.TransactionRecord `json:"list"`
	Top         []model.TransactionRecord `json:"top"`
	TotalCount  int                       `json:"totalCount"`
}

// TransactionWindows holds the four standard windows derived from "now".
type TransactionWindows struct {
	Today     WindowSummary `json:"today"`
	Week      WindowSummary `json:"week"`
	Month     WindowSummary `json:"month"`
	TwoMonths WindowSummary `json:"twoMonths"`
}

// Summarize filters records dated at or after from, sums credits and debits,
// and takes the first topN of the date-descending filtered list.
func Summarize(records []model.TransactionRecord, from time.Time, topN int) WindowSummary {
	filtered := make([]model.TransactionRecord, 0, len(records))
	totalCredit := decimal.Zero
	totalDebit := decimal.Zero

	for _, r := range records {
		if r.Date.Before(from) {
			continue
		}
		filtered = append(filtered, r)
		if r.Type == model.TypeCredit {
			totalCredit = totalCredit.Add(r.Amount.Abs())
		} else {
			totalDebit = totalDebit.Add(r.Amount.Abs())
		}
	}

	top := filtered
	if topN >= 0 && len(top) > topN {
		top = top[:topN]
	}

	return WindowSummary{
		TotalCount:  len(filtered),
		TotalCredit: totalCredit,
		TotalDebit:  totalDebit,
		Net:         totalCredit.Sub(totalDebit),
		List:        filtered,
		Top:         top,
	}
}

// Windows computes the four standard windows: start of today, now minus
// seven days, start of the current month, and now minus sixty days.
func Windows(records []model.TransactionRecord, now time.Time) TransactionWindows {
	startToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startWeek := startToday.AddDate(0, 0, -7)
	startMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startTwoMonths := startToday.AddDate(0, 0, -60)

	return TransactionWindows{
		Today:     Summarize(records, startToday, 5),
		Week:      Summarize(records, startWeek, 5),
		Month:     Summarize(records, startMonth, 4),
		TwoMonths: Summarize(records, startTwoMonths, 5),
	}
}

// Stats computes per-category debit/credit counts and totals across the
// whole ledger.
func Stats(records []model.TransactionRecord) model.TransactionStats {
	var stats model.TransactionStats
	stats.Bank.TotalDebitAmount = decimal.Zero
	stats.Bank.TotalCreditAmount = decimal.Zero
	stats.UPI.TotalDebitAmount = decimal.Zero
	stats.UPI.TotalCreditAmount = decimal.Zero

	for _, r := range records {
		var cs *model.CategoryStats
		switch r.Category {
		case model.CategoryBank:
			cs = &stats.Bank
		case model.CategoryUPI:
			cs = &stats.UPI
		default:
			continue
		}

		cs.Total++
		if r.Type == model.TypeCredit {
			cs.Credits++
			cs.TotalCreditAmount = cs.TotalCreditAmount.Add(r.Amount.Abs())
		} else {
			cs.Debits++
			cs.TotalDebitAmount = cs.TotalDebitAmount.Add(r.Amount.Abs())
		}
	}

	return stats
}
