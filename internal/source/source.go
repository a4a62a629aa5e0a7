// Package source abstracts where raw SMS messages come from. The pipeline is
// platform-agnostic: anything that can list sender/timestamp/body triples can
// feed it.
package source

import (
	"context"
	"time"

	"github.com/riteshshukladev/FinSight/internal/model"
)

// MessageSource lists raw messages for the pipeline. A permission failure is
// fatal for the whole run and is reported as common.ErrPermissionDenied.
type MessageSource interface {
	List(ctx context.Context, minTimestamp time.Time, maxCount int) ([]model.RawMessage, error)
}
