package classify

import (
	"strings"
	"testing"

	"github.com/riteshshukladev/FinSight/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchMessages() []model.RawMessage {
	return []model.RawMessage{
		{Sender: "VM-HDFCBK", TimestampMs: 1000, Body: "Rs.500.00 debited from a/c XX1234 on 14-11-23 to VPA coffee@upi"},
		{Sender: "VM-ICICIB", TimestampMs: 2000, Body: "INR 2,000.00 credited to your account XX9876 via NEFT"},
	}
}

func debitCandidate() Candidate {
	return Candidate{
		IsFinancial:     true,
		Category:        "BANK",
		Type:            "DEBIT",
		Amount:          "500.00",
		Description:     "coffee shop payment",
		OriginalMessage: "Rs.500.00 debited from a/c XX1234 on 14-11-23 to VPA coffee@upi",
		Confidence:      0.9,
	}
}

func TestMatchCandidates(t *testing.T) {
	t.Run("exact echo matches its message", func(t *testing.T) {
		records := MatchCandidates([]Candidate{debitCandidate()}, batchMessages(), 3)

		require.Len(t, records, 1)
		r := records[0]
		assert.Equal(t, model.CategoryBank, r.Category)
		assert.Equal(t, model.TypeDebit, r.Type)
		assert.True(t, r.Amount.Equal(decimal.RequireFromString("500.00")))
		assert.Equal(t, batchMessages()[0].Body, r.OriginalMessage)
		assert.Equal(t, "VM-HDFCBK", r.RawSender)
		assert.Equal(t, batchMessages()[0].Fingerprint(), r.Fingerprint)
		assert.Equal(t, 3, r.BatchNumber)
		assert.NotEmpty(t, r.ID)
	})

	t.Run("truncated echo still matches via prefix containment", func(t *testing.T) {
		c := debitCandidate()
		c.OriginalMessage = "Rs.500.00 debited from a/c XX1234"

		records := MatchCandidates([]Candidate{c}, batchMessages(), 1)

		require.Len(t, records, 1)
		assert.Equal(t, batchMessages()[0].Fingerprint(), records[0].Fingerprint)
	})

	t.Run("echo longer than the body matches the other direction", func(t *testing.T) {
		c := debitCandidate()
		c.OriginalMessage = batchMessages()[0].Body + " Avl bal Rs.1,234.56"

		records := MatchCandidates([]Candidate{c}, batchMessages(), 1)

		require.Len(t, records, 1)
		assert.Equal(t, batchMessages()[0].Fingerprint(), records[0].Fingerprint)
	})

	t.Run("whitespace and case differences are normalized", func(t *testing.T) {
		c := debitCandidate()
		c.OriginalMessage = "RS.500.00   DEBITED FROM A/C XX1234 on 14-11-23 to VPA coffee@upi"

		records := MatchCandidates([]Candidate{c}, batchMessages(), 1)

		assert.Len(t, records, 1)
	})

	t.Run("rewritten echo falls back to amount containment", func(t *testing.T) {
		c := Candidate{
			IsFinancial:     true,
			Category:        "BANK",
			Type:            "CREDIT",
			Amount:          "2,000.00",
			OriginalMessage: "A NEFT credit was received in the account",
			Confidence:      0.7,
		}

		records := MatchCandidates([]Candidate{c}, batchMessages(), 1)

		require.Len(t, records, 1)
		assert.Equal(t, batchMessages()[1].Fingerprint(), records[0].Fingerprint)
		assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("2000")))
	})

	t.Run("a message is consumed by at most one candidate", func(t *testing.T) {
		first := debitCandidate()
		second := debitCandidate()
		second.Description = "duplicate attribution attempt"

		records := MatchCandidates([]Candidate{first, second}, batchMessages(), 1)

		require.Len(t, records, 1)
		assert.Equal(t, "coffee shop payment", records[0].Description)
	})

	t.Run("unmatched candidates are dropped", func(t *testing.T) {
		c := Candidate{
			IsFinancial:     true,
			Category:        "UPI",
			Type:            "DEBIT",
			Amount:          "77777",
			OriginalMessage: "completely unrelated text with nothing in common",
			Confidence:      0.6,
		}

		records := MatchCandidates([]Candidate{c}, batchMessages(), 1)

		assert.Empty(t, records)
	})

	t.Run("unparseable amount drops the candidate", func(t *testing.T) {
		c := debitCandidate()
		c.Amount = "Rs.500.00 debited"

		records := MatchCandidates([]Candidate{c}, batchMessages(), 1)

		assert.Empty(t, records)
	})

	t.Run("negative amount drops the candidate", func(t *testing.T) {
		msgs := []model.RawMessage{
			{Sender: "VM-HDFCBK", TimestampMs: 1000, Body: "Adjustment of -500 applied to a/c"},
		}
		c := Candidate{
			IsFinancial:     true,
			Category:        "BANK",
			Type:            "DEBIT",
			Amount:          "-500",
			OriginalMessage: "Adjustment of -500 applied to a/c",
			Confidence:      0.6,
		}

		records := MatchCandidates([]Candidate{c}, msgs, 1)

		assert.Empty(t, records)
	})

	t.Run("empty inputs yield no records", func(t *testing.T) {
		assert.Empty(t, MatchCandidates(nil, batchMessages(), 1))
		assert.Empty(t, MatchCandidates([]Candidate{debitCandidate()}, nil, 1))
	})
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(batchMessages())

	assert.Contains(t, prompt, "Message 1 (from VM-HDFCBK")
	assert.Contains(t, prompt, "Message 2 (from VM-ICICIB")
	assert.Contains(t, prompt, batchMessages()[0].Body)
	assert.Contains(t, prompt, `"isFinancial"`)
	assert.Contains(t, prompt, "STRICT JSON array")
	assert.Equal(t, 1, strings.Count(prompt, "Messages:"))
}
