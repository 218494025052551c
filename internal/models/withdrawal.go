package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/pixgate/internal/status"
)

// Withdrawal stores the lifecycle of a payout, either to a PIX key or to
// a bank account.
type Withdrawal struct {
	BaseModel
	AccountID       uuid.UUID             `gorm:"type:uuid;index" json:"account_id"`
	SubacquirerID   uuid.UUID             `gorm:"type:uuid;index" json:"subacquirer_id"`
	Subacquirer     *Subacquirer          `json:"subacquirer,omitempty"`
	ExternalID      string                `gorm:"index" json:"external_id"`
	Amount          decimal.Decimal       `gorm:"type:numeric(15,2)" json:"amount"`
	Status          status.WithdrawStatus `gorm:"index" json:"status"`
	PixKey          string                `json:"pix_key"`
	PixKeyType      string                `json:"pix_key_type"`
	BankCode        string                `json:"bank_code"`
	BankName        string                `json:"bank_name"`
	Agency          string                `json:"agency"`
	Account         string                `json:"account"`
	AccountType     string                `json:"account_type"`
	RequestPayload  []byte                `gorm:"type:jsonb" json:"request_payload,omitempty"`
	ResponsePayload []byte                `gorm:"type:jsonb" json:"response_payload,omitempty"`
	WebhookPayload  []byte                `gorm:"type:jsonb" json:"webhook_payload,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at"`
}

func (w *Withdrawal) IsPending() bool {
	return w.Status.IsPending()
}

func (w *Withdrawal) IsCompleted() bool {
	return w.Status.IsCompleted()
}

func (w *Withdrawal) IsFinal() bool {
	return w.Status.IsFinal()
}
