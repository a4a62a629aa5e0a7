package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/riteshshukladev/FinSight/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(fp string, date time.Time, category model.Category, txnType model.TxnType, amount string) model.TransactionRecord {
	return model.TransactionRecord{
		ID:              "id-" + fp,
		Fingerprint:     model.Fingerprint(fp),
		Category:        category,
		Type:            txnType,
		Amount:          decimal.RequireFromString(amount),
		OriginalMessage: "msg " + fp,
		Date:            date,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("credits and debits sum into net", func(t *testing.T) {
		records := []model.TransactionRecord{
			record("a", now, model.CategoryBank, model.TypeCredit, "100"),
			record("b", now, model.CategoryBank, model.TypeDebit, "40"),
		}

		s := Summarize(records, now.Add(-time.Hour), 5)

		assert.Equal(t, 2, s.TotalCount)
		assert.True(t, s.TotalCredit.Equal(decimal.NewFromInt(100)))
		assert.True(t, s.TotalDebit.Equal(decimal.NewFromInt(40)))
		assert.True(t, s.Net.Equal(decimal.NewFromInt(60)))
	})

	t.Run("records before the boundary are excluded", func(t *testing.T) {
		from := now.AddDate(0, 0, -7)
		records := []model.TransactionRecord{
			record("in", from, model.CategoryBank, model.TypeDebit, "10"),
			record("out", from.Add(-time.Second), model.CategoryBank, model.TypeDebit, "999"),
		}

		s := Summarize(records, from, 5)

		assert.Equal(t, 1, s.TotalCount)
		assert.True(t, s.TotalDebit.Equal(decimal.NewFromInt(10)))
	})

	t.Run("negative stored amounts count by magnitude", func(t *testing.T) {
		records := []model.TransactionRecord{
			record("neg", now, model.CategoryBank, model.TypeDebit, "-25"),
		}

		s := Summarize(records, now.Add(-time.Hour), 5)

		assert.True(t, s.TotalDebit.Equal(decimal.NewFromInt(25)))
	})

	t.Run("top keeps the first N of the filtered list", func(t *testing.T) {
		var records []model.TransactionRecord
		for i := 0; i < 8; i++ {
			records = append(records,
				record(fmt.Sprintf("fp%d", i), now.Add(-time.Duration(i)*time.Hour),
					model.CategoryBank, model.TypeDebit, "10"))
		}

		s := Summarize(records, now.AddDate(0, 0, -1), 5)

		assert.Equal(t, 8, s.TotalCount)
		require.Len(t, s.Top, 5)
		assert.Equal(t, model.Fingerprint("fp0"), s.Top[0].Fingerprint)
		assert.Len(t, s.List, 8)
	})

	t.Run("empty input yields zero-valued summary", func(t *testing.T) {
		s := Summarize(nil, now, 5)

		assert.Zero(t, s.TotalCount)
		assert.True(t, s.Net.IsZero())
		assert.Empty(t, s.List)
	})
}

func TestWindows(t *testing.T) {
	// Mid-month noon so every window boundary is unambiguous.
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	records := []model.TransactionRecord{
		record("today", now.Add(-time.Hour), model.CategoryBank, model.TypeDebit, "10"),
		record("yesterday", now.AddDate(0, 0, -1), model.CategoryBank, model.TypeDebit, "20"),
		record("last-week", now.AddDate(0, 0, -10), model.CategoryUPI, model.TypeCredit, "30"),
		record("last-month", now.AddDate(0, 0, -40), model.CategoryUPI, model.TypeDebit, "40"),
		record("ancient", now.AddDate(0, 0, -90), model.CategoryBank, model.TypeDebit, "50"),
	}

	w := Windows(records, now)

	assert.Equal(t, 1, w.Today.TotalCount)
	assert.Equal(t, 2, w.Week.TotalCount)
	assert.Equal(t, 3, w.Month.TotalCount)
	assert.Equal(t, 4, w.TwoMonths.TotalCount)

	assert.True(t, w.TwoMonths.TotalCredit.Equal(decimal.NewFromInt(30)))
	assert.True(t, w.TwoMonths.TotalDebit.Equal(decimal.NewFromInt(70)))
	assert.True(t, w.TwoMonths.Net.Equal(decimal.NewFromInt(-40)))
}

func TestWindows_TopNLimits(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	var records []model.TransactionRecord
	for i := 0; i < 10; i++ {
		records = append(records,
			record(fmt.Sprintf("fp%d", i), now.Add(-time.Duration(i)*time.Minute),
				model.CategoryBank, model.TypeDebit, "10"))
	}

	w := Windows(records, now)

	assert.Len(t, w.Today.Top, 5)
	assert.Len(t, w.Week.Top, 5)
	assert.Len(t, w.Month.Top, 4)
	assert.Len(t, w.TwoMonths.Top, 5)
}

func TestStats(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	records := []model.TransactionRecord{
		record("b1", now, model.CategoryBank, model.TypeDebit, "100"),
		record("b2", now, model.CategoryBank, model.TypeCredit, "250"),
		record("u1", now, model.CategoryUPI, model.TypeDebit, "30"),
		record("u2", now, model.CategoryUPI, model.TypeDebit, "20"),
	}

	stats := Stats(records)

	assert.Equal(t, 2, stats.Bank.Total)
	assert.Equal(t, 1, stats.Bank.Debits)
	assert.Equal(t, 1, stats.Bank.Credits)
	assert.True(t, stats.Bank.TotalDebitAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, stats.Bank.TotalCreditAmount.Equal(decimal.NewFromInt(250)))

	assert.Equal(t, 2, stats.UPI.Total)
	assert.Equal(t, 2, stats.UPI.Debits)
	assert.Equal(t, 0, stats.UPI.Credits)
	assert.True(t, stats.UPI.TotalDebitAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, stats.UPI.TotalCreditAmount.IsZero())
}

func TestStats_EmptyLedger(t *testing.T) {
	stats := Stats(nil)

	assert.Zero(t, stats.Bank.Total)
	assert.True(t, stats.Bank.TotalDebitAmount.IsZero())
	assert.True(t, stats.UPI.TotalCreditAmount.IsZero())
}
