package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riteshshukladev/FinSight/internal/model"
)

// FilterUnseen keeps the messages whose fingerprint has never been sent to
// the classifier. Re-running the pipeline on an unchanged inbox therefore
// produces zero classifier calls.
func (s *SQLiteStore) FilterUnseen(ctx context.Context, raw []model.RawMessage) ([]model.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	stmt, err := s.db.PrepareContext(ctx, `SELECT 1 FROM seen_messages WHERE fingerprint = ?`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare lookup: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	unseen := make([]model.RawMessage, 0, len(raw))
	for _, m := range raw {
		var one int
		err := stmt.QueryRowContext(ctx, string(m.Fingerprint())).Scan(&one)
		switch {
		case err == sql.ErrNoRows:
			unseen = append(unseen, m)
		case err != nil:
			return nil, fmt.Errorf("failed to check fingerprint: %w", err)
		}
	}

	return unseen, nil
}

// CommitFingerprints records that a batch of messages has been offered to
// the classifier, regardless of what the classifier made of them. The insert
// is an idempotent union: a fingerprint enters the set exactly once and only
// a full cache clear removes it.
func (s *SQLiteStore) CommitFingerprints(ctx context.Context, fingerprints []model.Fingerprint) error {
	if len(fingerprints) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO seen_messages (fingerprint) VALUES (?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, fp := range fingerprints {
			if _, err := stmt.ExecContext(ctx, string(fp)); err != nil {
				return fmt.Errorf("failed to commit fingerprint: %w", err)
			}
		}
		return nil
	})
}

// SeenCount returns the size of the dedup index.
func (s *SQLiteStore) SeenCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count seen messages: %w", err)
	}
	return n, nil
}
