package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/riteshshukladev/FinSight/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedMessages(n int) []model.RawMessage {
	messages := make([]model.RawMessage, n)
	for i := range messages {
		messages[i] = model.RawMessage{
			Sender:      "VM-HDFCBK",
			TimestampMs: int64(i + 1),
			Body:        fmt.Sprintf("Rs.%d debited", i+1),
		}
	}
	return messages
}

func TestPlanBatches(t *testing.T) {
	tests := []struct {
		name      string
		messages  int
		size      int
		wantSizes []int
	}{
		{"empty input yields no batches", 0, 3, nil},
		{"exact multiple", 6, 3, []int{3, 3}},
		{"remainder forms a short final batch", 7, 3, []int{3, 3, 1}},
		{"single oversized batch", 2, 10, []int{2}},
		{"size one", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := planBatches(numberedMessages(tt.messages), tt.size)

			require.Len(t, batches, len(tt.wantSizes))
			for i, b := range batches {
				assert.Len(t, b.Messages, tt.wantSizes[i])
				assert.Equal(t, i+1, b.Number)
			}
		})
	}
}

func TestPlanBatches_PreservesOrder(t *testing.T) {
	batches := planBatches(numberedMessages(5), 2)

	var flattened []int64
	for _, b := range batches {
		for _, m := range b.Messages {
			flattened = append(flattened, m.TimestampMs)
		}
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, flattened)
}

func TestPlanBatches_DefaultSize(t *testing.T) {
	batches := planBatches(numberedMessages(9), 0)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Messages, defaultBatchSize)
}

func TestDispatchDelay(t *testing.T) {
	base := 500 * time.Millisecond
	step := 250 * time.Millisecond
	maxDelay := 2 * time.Second

	tests := []struct {
		name string
		i    int
		want time.Duration
	}{
		{"first batch dispatches immediately", 0, 0},
		{"second batch waits base plus one step", 1, 750 * time.Millisecond},
		{"third batch waits base plus two steps", 2, 1000 * time.Millisecond},
		{"delay is capped", 100, 2 * time.Second},
		{"negative index treated as first", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dispatchDelay(tt.i, base, step, maxDelay))
		})
	}
}

func TestDispatchDelay_Monotonic(t *testing.T) {
	prev := time.Duration(0)
	for i := 0; i < 20; i++ {
		d := dispatchDelay(i, 500*time.Millisecond, 250*time.Millisecond, 2*time.Second)
		assert.GreaterOrEqual(t, d, prev, "delay must not shrink at index %d", i)
		prev = d
	}
}
