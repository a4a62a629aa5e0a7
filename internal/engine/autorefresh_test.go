package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAutoRefresh(t *testing.T) {
	store := testStore(t)
	o := newTestOrchestrator(t, store, inboxMessages(2), &stubClassifier{})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		_, err := NewAutoRefresh(o, 0, nil)
		assert.Error(t, err)

		_, err = NewAutoRefresh(o, -time.Minute, nil)
		assert.Error(t, err)
	})

	t.Run("start and stop are clean", func(t *testing.T) {
		auto, err := NewAutoRefresh(o, time.Hour, nil)
		require.NoError(t, err)

		auto.Start()
		auto.Stop()
	})
}
