package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawMessage_Fingerprint(t *testing.T) {
	base := RawMessage{
		Sender:      "VM-HDFCBK",
		TimestampMs: 1700000000000,
		Body:        "Rs.500.00 debited from a/c XX1234 on 14-11-23 to VPA coffee@upi. Ref 123456.",
	}

	tests := []struct {
		name     string
		other    RawMessage
		wantSame bool
	}{
		{
			name:     "identical messages have the same fingerprint",
			other:    base,
			wantSame: true,
		},
		{
			name: "different sender produces different fingerprint",
			other: RawMessage{
				Sender:      "VM-ICICIB",
				TimestampMs: base.TimestampMs,
				Body:        base.Body,
			},
			wantSame: false,
		},
		{
			name: "different timestamp produces different fingerprint",
			other: RawMessage{
				Sender:      base.Sender,
				TimestampMs: base.TimestampMs + 1,
				Body:        base.Body,
			},
			wantSame: false,
		},
		{
			name: "body differing within the first 50 chars produces different fingerprint",
			other: RawMessage{
				Sender:      base.Sender,
				TimestampMs: base.TimestampMs,
				Body:        "Rs.999.00 debited from a/c XX1234 on 14-11-23 to VPA coffee@upi. Ref 123456.",
			},
			wantSame: false,
		},
		{
			name: "body differing only after the first 50 chars keeps the fingerprint",
			other: RawMessage{
				Sender:      base.Sender,
				TimestampMs: base.TimestampMs,
				Body:        base.Body[:50] + " completely different tail text",
			},
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantSame {
				assert.Equal(t, base.Fingerprint(), tt.other.Fingerprint())
			} else {
				assert.NotEqual(t, base.Fingerprint(), tt.other.Fingerprint())
			}
		})
	}
}

func TestRawMessage_FingerprintDeterministic(t *testing.T) {
	m := RawMessage{Sender: "SBIINB", TimestampMs: 42, Body: strings.Repeat("x", 200)}

	first := m.Fingerprint()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.Fingerprint())
	}
}

func TestRawMessage_FingerprintShortBody(t *testing.T) {
	m := RawMessage{Sender: "SBIINB", TimestampMs: 42, Body: "hi"}
	assert.NotEmpty(t, m.Fingerprint())
}
