package status

import "strings"

// PixStatus is the internal lifecycle status of a PIX payment.
type PixStatus string

const (
	PixPending    PixStatus = "pending"
	PixProcessing PixStatus = "processing"
	PixConfirmed  PixStatus = "confirmed"
	PixPaid       PixStatus = "paid"
	PixCancelled  PixStatus = "cancelled"
	PixFailed     PixStatus = "failed"
)

// Provider status tables. Unknown raw values deliberately fall back to
// pending so that an unrecognized provider status never finalizes a
// transaction.
var pixFromSubadqA = map[string]PixStatus{
	"PENDING":    PixPending,
	"PROCESSING": PixProcessing,
	"CONFIRMED":  PixPaid,
	"CANCELLED":  PixCancelled,
	"FAILED":     PixFailed,
}

var pixFromSubadqB = map[string]PixStatus{
	"PENDING":    PixPending,
	"PROCESSING": PixProcessing,
	"PAID":       PixPaid,
	"CANCELLED":  PixCancelled,
	"FAILED":     PixFailed,
}

// PixFromSubadqA maps a SubadqA status string to the internal status.
func PixFromSubadqA(raw string) PixStatus {
	if s, ok := pixFromSubadqA[strings.ToUpper(raw)]; ok {
		return s
	}
	return PixPending
}

// PixFromSubadqB maps a SubadqB status string to the internal status.
func PixFromSubadqB(raw string) PixStatus {
	if s, ok := pixFromSubadqB[strings.ToUpper(raw)]; ok {
		return s
	}
	return PixPending
}

// IsPending reports whether the payment is still awaiting confirmation.
func (s PixStatus) IsPending() bool {
	return s == PixPending || s == PixProcessing
}

// IsPaid reports whether the payment reached a success state.
func (s PixStatus) IsPaid() bool {
	return s == PixConfirmed || s == PixPaid
}

// IsFinal reports whether no further transition is allowed.
func (s PixStatus) IsFinal() bool {
	return s.IsPaid() || s == PixCancelled || s == PixFailed
}

func (s PixStatus) String() string {
	return string(s)
}
