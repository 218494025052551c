package status

import "strings"

// WithdrawStatus is the internal lifecycle status of a withdrawal.
type WithdrawStatus string

const (
	WithdrawPending    WithdrawStatus = "pending"
	WithdrawProcessing WithdrawStatus = "processing"
	WithdrawSuccess    WithdrawStatus = "success"
	WithdrawDone       WithdrawStatus = "done"
	WithdrawCancelled  WithdrawStatus = "cancelled"
	WithdrawFailed     WithdrawStatus = "failed"
)

var withdrawFromSubadqA = map[string]WithdrawStatus{
	"PENDING":    WithdrawPending,
	"PROCESSING": WithdrawProcessing,
	"SUCCESS":    WithdrawSuccess,
	"CANCELLED":  WithdrawCancelled,
	"FAILED":     WithdrawFailed,
}

var withdrawFromSubadqB = map[string]WithdrawStatus{
	"PENDING":    WithdrawPending,
	"PROCESSING": WithdrawProcessing,
	"DONE":       WithdrawSuccess,
	"CANCELLED":  WithdrawCancelled,
	"FAILED":     WithdrawFailed,
}

// WithdrawFromSubadqA maps a SubadqA status string to the internal status.
func WithdrawFromSubadqA(raw string) WithdrawStatus {
	if s, ok := withdrawFromSubadqA[strings.ToUpper(raw)]; ok {
		return s
	}
	return WithdrawPending
}

// WithdrawFromSubadqB maps a SubadqB status string to the internal status.
func WithdrawFromSubadqB(raw string) WithdrawStatus {
	if s, ok := withdrawFromSubadqB[strings.ToUpper(raw)]; ok {
		return s
	}
	return WithdrawPending
}

// IsPending reports whether the withdrawal is still awaiting completion.
func (s WithdrawStatus) IsPending() bool {
	return s == WithdrawPending || s == WithdrawProcessing
}

// IsCompleted reports whether the withdrawal reached a success state.
func (s WithdrawStatus) IsCompleted() bool {
	return s == WithdrawSuccess || s == WithdrawDone
}

// IsFinal reports whether no further transition is allowed.
func (s WithdrawStatus) IsFinal() bool {
	return s.IsCompleted() || s == WithdrawCancelled || s == WithdrawFailed
}

func (s WithdrawStatus) String() string {
	return string(s)
}
