package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixFromSubadqA(t *testing.T) {
	tests := []struct {
		raw  string
		want PixStatus
	}{
		{"PENDING", PixPending},
		{"PROCESSING", PixProcessing},
		{"CONFIRMED", PixPaid},
		{"CANCELLED", PixCancelled},
		{"FAILED", PixFailed},
		{"confirmed", PixPaid},
		{"Pending", PixPending},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, PixFromSubadqA(tt.raw))
		})
	}
}

func TestPixFromSubadqB(t *testing.T) {
	tests := []struct {
		raw  string
		want PixStatus
	}{
		{"PENDING", PixPending},
		{"PROCESSING", PixProcessing},
		{"PAID", PixPaid},
		{"CANCELLED", PixCancelled},
		{"FAILED", PixFailed},
		{"paid", PixPaid},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, PixFromSubadqB(tt.raw))
		})
	}
}

func TestPixUnknownStatusFallsOpenToPending(t *testing.T) {
	for _, raw := range []string{"", "REFUNDED", "EXPIRED", "whatever", "COMPLETED"} {
		assert.Equal(t, PixPending, PixFromSubadqA(raw), "SubadqA %q", raw)
		assert.Equal(t, PixPending, PixFromSubadqB(raw), "SubadqB %q", raw)
	}
}

func TestPixStatusPredicates(t *testing.T) {
	tests := []struct {
		status  PixStatus
		pending bool
		paid    bool
		final   bool
	}{
		{PixPending, true, false, false},
		{PixProcessing, true, false, false},
		{PixConfirmed, false, true, true},
		{PixPaid, false, true, true},
		{PixCancelled, false, false, true},
		{PixFailed, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.pending, tt.status.IsPending())
			assert.Equal(t, tt.paid, tt.status.IsPaid())
			assert.Equal(t, tt.final, tt.status.IsFinal())
		})
	}
}
