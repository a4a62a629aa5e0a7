package engine

import (
	"context"
	"time"

	"github.com/riteshshukladev/FinSight/internal/model"
)

// Store defines the persistence operations the orchestrator needs.
type Store interface {
	FilterUnseen(ctx context.Context, raw []model.RawMessage) ([]model.RawMessage, error)
	CommitFingerprints(ctx context.Context, fingerprints []model.Fingerprint) error
	SaveRecords(ctx context.Context, records []model.TransactionRecord) error
	GetLedger(ctx context.Context) ([]model.TransactionRecord, error)
	GetLedgerByCategory(ctx context.Context, category model.Category) ([]model.TransactionRecord, error)
	GetSyncInfo(ctx context.Context) (model.SyncInfo, error)
	SetLastSync(ctx context.Context, at time.Time, totalMessages, bankCount, upiCount int) error
	ClearAll(ctx context.Context) error
}
