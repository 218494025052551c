package events

import (
	"log"

	"github.com/example/pixgate/internal/models"
)

// PixConfirmed is emitted once a PIX payment reaches a success state.
type PixConfirmed struct {
	Pix *models.PixTransaction
}

// WithdrawCompleted is emitted once a withdrawal reaches a success state.
type WithdrawCompleted struct {
	Withdrawal *models.Withdrawal
}

// Dispatcher delivers domain events to out-of-process consumers.
// Notification and integration logic subscribe outside this module.
type Dispatcher interface {
	Dispatch(event any)
}

// LogDispatcher records events to the application log. It is the default
// dispatcher when no external consumer is wired in.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(event any) {
	switch e := event.(type) {
	case PixConfirmed:
		log.Printf("[events] pix confirmed: id=%s external_id=%s amount=%s", e.Pix.ID, e.Pix.ExternalID, e.Pix.Amount)
	case WithdrawCompleted:
		log.Printf("[events] withdraw completed: id=%s external_id=%s amount=%s", e.Withdrawal.ID, e.Withdrawal.ExternalID, e.Withdrawal.Amount)
	default:
		log.Printf("[events] dispatched: %T", event)
	}
}
