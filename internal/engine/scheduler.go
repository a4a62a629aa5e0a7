package engine

import (
	"time"

	"github.com/riteshshukladev/FinSight/internal/model"
)

// Batch is a bounded group of unseen messages dispatched to the classifier
// together. Numbers start at 1 and increase in dispatch order.
type Batch struct {
	Messages []model.RawMessage
	Number   int
}

// planBatches partitions messages into ordered fixed-size batches. Batch
// sizes stay small so prompts stay small and a failure costs little.
func planBatches(messages []model.RawMessage, size int) []Batch {
	if size <= 0 {
		size = defaultBatchSize
	}

	batches := make([]Batch, 0, (len(messages)+size-1)/size)
	for start := 0; start < len(messages); start += size {
		end := start + size
		if end > len(messages) {
			end = len(messages)
		}
		batches = append(batches, Batch{
			Number:   len(batches) + 1,
			Messages: messages[start:end],
		})
	}
	return batches
}

// dispatchDelay is the pause before dispatching the batch at index i
// (0-based). The delay grows with the batch index up to a cap. This is a
// rate-limit throttle owed to the external classifier, not a performance
// knob: batches must stay sequential and paced.
func dispatchDelay(i int, base, step, maxDelay time.Duration) time.Duration {
	if i <= 0 {
		return 0
	}
	d := base + time.Duration(i)*step
	if d > maxDelay {
		return maxDelay
	}
	return d
}
