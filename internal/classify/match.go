package classify

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/riteshshukladev/FinSight/internal/model"
	"github.com/shopspring/decimal"
)

// matchPrefixLen bounds how much echoed text participates in matching. The
// model frequently truncates or lightly rewrites the tail of long messages,
// so only the head is trustworthy.
const matchPrefixLen = 40

// MatchCandidates associates each validated candidate with exactly one
// message from its originating batch and constructs the final records.
// Matching is heuristic: bidirectional prefix containment on the echoed
// original message, falling back to an amount-substring check. First match
// wins and a message is consumed by at most one candidate, so two candidates
// can never attribute to the same SMS. Unmatched candidates are dropped.
func MatchCandidates(candidates []Candidate, batch []model.RawMessage, batchNumber int) []model.TransactionRecord {
	used := make([]bool, len(batch))
	records := make([]model.TransactionRecord, 0, len(candidates))

	for _, candidate := range candidates {
		idx := findMessage(candidate, batch, used)
		if idx == -1 {
			slog.Debug("dropping unmatched candidate",
				"batch", batchNumber,
				"description", candidate.Description)
			continue
		}

		record, ok := buildRecord(candidate, batch[idx], batchNumber)
		if !ok {
			continue
		}

		used[idx] = true
		records = append(records, record)
	}

	return records
}

// findMessage locates the batch message a candidate belongs to.
func findMessage(candidate Candidate, batch []model.RawMessage, used []bool) int {
	echoed := normalize(candidate.OriginalMessage)

	for i, m := range batch {
		if used[i] {
			continue
		}
		body := normalize(m.Body)
		if prefixContained(echoed, body) {
			return i
		}
	}

	// Fallback: the echoed text may be rewritten beyond recognition, but the
	// amount usually survives verbatim in the source body.
	if candidate.Amount != "" {
		for i, m := range batch {
			if used[i] {
				continue
			}
			if strings.Contains(m.Body, candidate.Amount) {
				return i
			}
		}
	}

	return -1
}

// prefixContained checks containment of either string's prefix in the other.
func prefixContained(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ap := a
	if len(ap) > matchPrefixLen {
		ap = ap[:matchPrefixLen]
	}
	bp := b
	if len(bp) > matchPrefixLen {
		bp = bp[:matchPrefixLen]
	}
	return strings.Contains(b, ap) || strings.Contains(a, bp)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// buildRecord stamps a candidate with the identity of its source message.
func buildRecord(candidate Candidate, msg model.RawMessage, batchNumber int) (model.TransactionRecord, bool) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(candidate.Amount, ",", ""))
	if err != nil || amount.IsNegative() {
		slog.Debug("dropping candidate with unparseable amount",
			"amount", candidate.Amount,
			"error", err)
		return model.TransactionRecord{}, false
	}

	record := model.TransactionRecord{
		ID:              uuid.NewString(),
		Category:        model.Category(candidate.Category),
		Type:            model.TxnType(candidate.Type),
		Amount:          amount,
		Description:     candidate.Description,
		OriginalMessage: msg.Body,
		Confidence:      candidate.Confidence,
		Date:            msg.Date(),
		Fingerprint:     msg.Fingerprint(),
		BatchNumber:     batchNumber,
		RawSender:       msg.Sender,
	}

	if err := record.Validate(); err != nil {
		slog.Debug("dropping candidate failing record validation", "error", err)
		return model.TransactionRecord{}, false
	}

	return record, true
}
