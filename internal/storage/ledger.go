package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riteshshukladev/FinSight/internal/model"
	"github.com/shopspring/decimal"
)

// SaveRecords inserts new records into the ledger. Records whose fingerprint
// is already present are ignored, so replaying a batch is harmless.
func (s *SQLiteStore) SaveRecords(ctx context.Context, records []model.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transactions (
				id, fingerprint, category, type, amount,
				description, original_message, confidence, date, batch_number, raw_sender
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range records {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("refusing to persist invalid record %s: %w", r.ID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				r.ID,
				string(r.Fingerprint),
				string(r.Category),
				string(r.Type),
				r.Amount.String(),
				r.Description,
				r.OriginalMessage,
				r.Confidence,
				r.Date.UTC(),
				r.BatchNumber,
				r.RawSender,
			); err != nil {
				return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

// GetLedger returns the full ledger sorted by date descending.
func (s *SQLiteStore) GetLedger(ctx context.Context) ([]model.TransactionRecord, error) {
	return s.queryRecords(ctx, `
		SELECT id, fingerprint, category, type, amount,
		       description, original_message, confidence, date, batch_number, raw_sender
		FROM transactions
		ORDER BY date DESC`)
}

// GetLedgerByCategory returns the BANK or UPI projection of the ledger,
// sorted by date descending. Projections are pure filters over the same
// rows, never separately authoritative.
func (s *SQLiteStore) GetLedgerByCategory(ctx context.Context, category model.Category) ([]model.TransactionRecord, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("invalid category: %q", category)
	}
	return s.queryRecords(ctx, `
		SELECT id, fingerprint, category, type, amount,
		       description, original_message, confidence, date, batch_number, raw_sender
		FROM transactions
		WHERE category = ?
		ORDER BY date DESC`, string(category))
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]model.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.TransactionRecord
	for rows.Next() {
		var r model.TransactionRecord
		var fingerprint, category, txnType, amount string
		var description, rawSender sql.NullString

		if err := rows.Scan(
			&r.ID, &fingerprint, &category, &txnType, &amount,
			&description, &r.OriginalMessage, &r.Confidence, &r.Date,
			&r.BatchNumber, &rawSender,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		r.Fingerprint = model.Fingerprint(fingerprint)
		r.Category = model.Category(category)
		r.Type = model.TxnType(txnType)
		r.Description = description.String
		r.RawSender = rawSender.String

		r.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q for record %s: %w", amount, r.ID, err)
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

// SetLastSync records the sync marker and the counts shown by GetSyncInfo.
func (s *SQLiteStore) SetLastSync(ctx context.Context, at time.Time, totalMessages, bankCount, upiCount int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sync_state (id, last_sync, total_messages, bank_count, upi_count)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				last_sync = excluded.last_sync,
				total_messages = excluded.total_messages,
				bank_count = excluded.bank_count,
				upi_count = excluded.upi_count
		`, at.UTC(), totalMessages, bankCount, upiCount)
		if err != nil {
			return fmt.Errorf("failed to update sync state: %w", err)
		}
		return nil
	})
}

// GetSyncInfo returns the last sync marker and counts, zero-valued when no
// sync has completed yet.
func (s *SQLiteStore) GetSyncInfo(ctx context.Context) (model.SyncInfo, error) {
	var info model.SyncInfo
	var lastSync sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT last_sync, total_messages, bank_count, upi_count
		FROM sync_state WHERE id = 1
	`).Scan(&lastSync, &info.TotalMessages, &info.BankCount, &info.UPICount)
	if err == sql.ErrNoRows {
		return model.SyncInfo{}, nil
	}
	if err != nil {
		return model.SyncInfo{}, fmt.Errorf("failed to read sync state: %w", err)
	}

	if lastSync.Valid {
		t := lastSync.Time
		info.LastSync = &t
	}
	return info, nil
}

// ClearAll removes the ledger, both projections, the dedup index and the
// sync marker together, as one transaction.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"transactions", "seen_messages", "sync_state"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}
