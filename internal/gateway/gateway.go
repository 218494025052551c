package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/pixgate/internal/status"
)

// Gateway is the capability contract every subacquirer integration
// implements. Real gateways speak JSON over HTTPS to the provider;
// MockGateway synthesizes everything locally.
type Gateway interface {
	// Identifier returns the subacquirer slug the gateway was built for.
	Identifier() string

	// CreatePix asks the provider to create a PIX charge.
	CreatePix(req PixRequest) (*PixResponse, error)

	// CreateWithdraw asks the provider to pay out funds.
	CreateWithdraw(req WithdrawRequest) (*WithdrawResponse, error)

	// ParsePixWebhook normalizes a provider PIX webhook payload.
	ParsePixWebhook(payload map[string]any) (*WebhookData, error)

	// ParseWithdrawWebhook normalizes a provider withdrawal webhook payload.
	ParseWithdrawWebhook(payload map[string]any) (*WebhookData, error)

	// GeneratePixWebhook produces a provider-shaped confirmation payload
	// for the given charge, used to simulate the asynchronous callback.
	GeneratePixWebhook(externalID string, amount decimal.Decimal) map[string]any

	// GenerateWithdrawWebhook produces a provider-shaped completion payload.
	GenerateWithdrawWebhook(externalID string, amount decimal.Decimal) map[string]any
}

// PixRequest carries the inputs for creating a PIX charge.
type PixRequest struct {
	Amount            decimal.Decimal
	Description       string
	ExpirationMinutes int
}

// PixResponse is the normalized result of a PIX creation call.
type PixResponse struct {
	ExternalID   string
	Status       status.PixStatus
	QRCode       string
	QRCodeBase64 string
	ExpiresAt    *time.Time
	Raw          map[string]any
}

// WithdrawRequest carries the inputs for creating a withdrawal. Either
// the PIX key fields or the bank account fields are set.
type WithdrawRequest struct {
	Amount      decimal.Decimal
	PixKey      string
	PixKeyType  string
	BankCode    string
	Agency      string
	Account     string
	AccountType string
}

// WithdrawResponse is the normalized result of a withdrawal creation call.
type WithdrawResponse struct {
	ExternalID    string
	Status        status.WithdrawStatus
	TransactionID string
	Raw           map[string]any
}

// WebhookData is a normalized webhook event. It is transient: produced
// by a gateway's parse step and folded into the transaction by the
// orchestrator, never persisted on its own.
type WebhookData struct {
	ExternalID    string
	Status        string
	Amount        *decimal.Decimal
	PaidAt        *time.Time
	CompletedAt   *time.Time
	FailureReason string
	Raw           map[string]any
}

const (
	defaultDescription       = "PIX Payment"
	defaultExpirationMinutes = 30
	defaultPixKeyType        = "cpf"
)

// amountFrom extracts an optional monetary amount from a webhook field.
// Synthesized payloads carry decimal.Decimal directly; payloads decoded
// from JSON carry float64 or string.
func amountFrom(v any) *decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return &n
	case float64:
		d := decimal.NewFromFloat(n)
		return &d
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return &d
		}
	}
	return nil
}

// timeFrom extracts an optional RFC 3339 timestamp from a webhook field.
func timeFrom(v any) *time.Time {
	switch ts := v.(type) {
	case time.Time:
		return &ts
	case string:
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			return &parsed
		}
	}
	return nil
}

func stringFrom(v any) string {
	s, _ := v.(string)
	return s
}
