// Package classify turns batches of raw SMS messages into candidate
// transaction records by calling an external text-classification service and
// repairing whatever it sends back.
package classify

import (
	"context"

	"github.com/riteshshukladev/FinSight/internal/model"
)

// Client defines the interface for classification providers.
type Client interface {
	ClassifyBatch(ctx context.Context, messages []model.RawMessage) ([]Candidate, error)
}

// Candidate is one loosely-typed object extracted from the classifier's
// response. It is untrusted until validated and matched back to a source
// message.
type Candidate struct {
	IsFinancial     bool    `json:"isFinancial"`
	Category        string  `json:"category"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	Description     string  `json:"description"`
	OriginalMessage string  `json:"originalMessage"`
	Confidence      float64 `json:"confidence"`
}
