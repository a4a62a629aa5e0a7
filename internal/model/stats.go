package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SyncInfo describes the outcome of the most recent completed sync.
type SyncInfo struct {
	LastSync      *time.Time `json:"lastSync"`
	TotalMessages int        `json:"totalMessages"`
	BankCount     int        `json:"bankCount"`
	UPICount      int        `json:"upiCount"`
}

// CategoryStats aggregates debit/credit counts and totals for one category.
type CategoryStats struct {
	TotalDebitAmount  decimal.Decimal `json:"totalDebitAmount"`
	TotalCreditAmount decimal.Decimal `json:"totalCreditAmount"`
	Total             int             `json:"total"`
	Debits            int             `json:"debits"`
	Credits           int             `json:"credits"`
}

// TransactionStats holds per-category rollups for the whole ledger.
type TransactionStats struct {
	Bank CategoryStats `json:"bank"`
	UPI  CategoryStats `json:"upi"`
}
