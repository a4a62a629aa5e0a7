package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the transaction rail a record was classified onto. The set is
// closed: anything the classifier returns outside it is rejected, never
// coerced.
type Category string

// Valid categories.
const (
	CategoryBank Category = "BANK"
	CategoryUPI  Category = "UPI"
)

// Valid reports whether the category is one of the closed set.
func (c Category) Valid() bool {
	return c == CategoryBank || c == CategoryUPI
}

// TxnType is the direction of money movement.
type TxnType string

// Valid transaction types.
const (
	TypeDebit  TxnType = "DEBIT"
	TypeCredit TxnType = "CREDIT"
)

// Valid reports whether the type is one of the closed set.
func (t TxnType) Valid() bool {
	return t == TypeDebit || t == TypeCredit
}

// TransactionRecord is a classified financial transaction. Records are
// immutable once constructed; the only way to remove one is a full cache
// clear.
type TransactionRecord struct {
	Date            time.Time       `json:"date"`
	ID              string          `json:"id"`
	Description     string          `json:"description"`
	OriginalMessage string          `json:"originalMessage"`
	RawSender       string          `json:"rawSender"`
	Fingerprint     Fingerprint     `json:"fingerprint"`
	Category        Category        `json:"category"`
	Type            TxnType         `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Confidence      float64         `json:"confidence"`
	BatchNumber     int             `json:"batchNumber"`
}

// Validate checks the invariants a record must satisfy before it may enter
// the ledger.
func (r TransactionRecord) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("invalid category: %q", r.Category)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("invalid type: %q", r.Type)
	}
	if r.Amount.IsZero() {
		return fmt.Errorf("amount is required")
	}
	if r.OriginalMessage == "" {
		return fmt.Errorf("original message is required")
	}
	if r.Fingerprint == "" {
		return fmt.Errorf("fingerprint is required")
	}
	return nil
}

// MergeRecords unions two record lists into a single ledger ordering:
// duplicates collapse by fingerprint with the first occurrence winning, and
// the result is sorted by date descending. Pure; neither input is modified.
func MergeRecords(existing, incoming []TransactionRecord) []TransactionRecord {
	seen := make(map[Fingerprint]bool, len(existing)+len(incoming))
	merged := make([]TransactionRecord, 0, len(existing)+len(incoming))

	for _, r := range existing {
		if seen[r.Fingerprint] {
			continue
		}
		seen[r.Fingerprint] = true
		merged = append(merged, r)
	}
	for _, r := range incoming {
		if seen[r.Fingerprint] {
			continue
		}
		seen[r.Fingerprint] = true
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	return merged
}
