// Package model defines the core data types shared across the pipeline.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// fingerprintBodyPrefix is how much of the message body participates in the
// fingerprint. Bank SMS bodies frequently differ only in trailing balance
// text, so a fixed prefix keeps the hash stable across re-reads while still
// separating distinct transactions from the same sender.
const fingerprintBodyPrefix = 50

// RawMessage is a single SMS as delivered by the message source. It is
// ephemeral: the source produces a fresh set on every sync and nothing
// mutates one after creation.
type RawMessage struct {
	Sender      string `json:"sender"`
	TimestampMs int64  `json:"timestampMs"`
	Body        string `json:"body"`
}

// Date returns the message timestamp as a time.Time.
func (m RawMessage) Date() time.Time {
	return time.UnixMilli(m.TimestampMs)
}

// Fingerprint derives the stable content hash used as the dedup and merge
// key. Two messages with the same sender, timestamp and body prefix are the
// same message forever, across restarts.
func (m RawMessage) Fingerprint() Fingerprint {
	body := m.Body
	if len(body) > fingerprintBodyPrefix {
		body = body[:fingerprintBodyPrefix]
	}
	data := fmt.Sprintf("%s:%d:%s", m.Sender, m.TimestampMs, body)
	hash := sha256.Sum256([]byte(data))
	return Fingerprint(fmt.Sprintf("%x", hash))
}

// Fingerprint identifies a raw message for deduplication purposes.
type Fingerprint string
