package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/pixgate/internal/status"
)

// PixTransaction stores the lifecycle of a single PIX payment.
//
// The raw request/response/webhook payloads are kept verbatim for audit
// and debugging; they are never interpreted after being written.
type PixTransaction struct {
	BaseModel
	AccountID       uuid.UUID        `gorm:"type:uuid;index" json:"account_id"`
	SubacquirerID   uuid.UUID        `gorm:"type:uuid;index" json:"subacquirer_id"`
	Subacquirer     *Subacquirer     `json:"subacquirer,omitempty"`
	ExternalID      string           `gorm:"index" json:"external_id"`
	Amount          decimal.Decimal  `gorm:"type:numeric(15,2)" json:"amount"`
	Status          status.PixStatus `gorm:"index" json:"status"`
	QRCode          string           `gorm:"column:qr_code" json:"qr_code"`
	QRCodeBase64    string           `gorm:"column:qr_code_base64" json:"qr_code_base64"`
	RequestPayload  []byte           `gorm:"type:jsonb" json:"request_payload,omitempty"`
	ResponsePayload []byte           `gorm:"type:jsonb" json:"response_payload,omitempty"`
	WebhookPayload  []byte           `gorm:"type:jsonb" json:"webhook_payload,omitempty"`
	PayerName       string           `json:"payer_name"`
	PayerDocument   string           `json:"payer_document"`
	PaidAt          *time.Time       `json:"paid_at"`
	ExpiresAt       *time.Time       `json:"expires_at"`
}

func (p *PixTransaction) IsPending() bool {
	return p.Status.IsPending()
}

func (p *PixTransaction) IsPaid() bool {
	return p.Status.IsPaid()
}

func (p *PixTransaction) IsFinal() bool {
	return p.Status.IsFinal()
}
