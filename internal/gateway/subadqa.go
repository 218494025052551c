package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/status"
)

// SubadqA integrates the SubadqA provider. Its wire format is flat:
// the PIX id lives in "pix_id" and the withdrawal id in "withdraw_id"
// at the top level of every payload.
type SubadqA struct {
	sub  *models.Subacquirer
	http *client
}

// NewSubadqA builds a SubadqA gateway for the given subacquirer profile.
func NewSubadqA(sub *models.Subacquirer, timeout time.Duration) *SubadqA {
	return &SubadqA{
		sub:  sub,
		http: newClient(sub.Slug, sub.BaseURL, timeout),
	}
}

func (g *SubadqA) Identifier() string {
	return g.sub.Slug
}

// CreatePix creates a PIX charge via SubadqA.
func (g *SubadqA) CreatePix(req PixRequest) (*PixResponse, error) {
	description := req.Description
	if description == "" {
		description = defaultDescription
	}
	expiration := req.ExpirationMinutes
	if expiration == 0 {
		expiration = defaultExpirationMinutes
	}

	payload := map[string]any{
		"amount":             req.Amount,
		"description":        description,
		"expiration_minutes": expiration,
	}

	resp, err := g.http.post("/pix/create", payload, map[string]string{
		"x-mock-response-name": "[SUCESSO_PIX] pix_create",
	})
	if err != nil {
		return nil, err
	}

	return &PixResponse{
		ExternalID:   stringFrom(resp["pix_id"]),
		Status:       status.PixFromSubadqA(stringFrom(resp["status"])),
		QRCode:       stringFrom(resp["qr_code"]),
		QRCodeBase64: stringFrom(resp["qr_code_base64"]),
		ExpiresAt:    timeFrom(resp["expires_at"]),
		Raw:          resp,
	}, nil
}

// CreateWithdraw creates a withdrawal via SubadqA.
func (g *SubadqA) CreateWithdraw(req WithdrawRequest) (*WithdrawResponse, error) {
	keyType := req.PixKeyType
	if keyType == "" {
		keyType = defaultPixKeyType
	}

	payload := map[string]any{
		"amount":       req.Amount,
		"pix_key":      req.PixKey,
		"pix_key_type": keyType,
	}

	resp, err := g.http.post("/withdraw", payload, map[string]string{
		"x-mock-response-name": "[SUCESSO_WD] withdraw",
	})
	if err != nil {
		return nil, err
	}

	return &WithdrawResponse{
		ExternalID:    stringFrom(resp["withdraw_id"]),
		Status:        status.WithdrawFromSubadqA(stringFrom(resp["status"])),
		TransactionID: stringFrom(resp["transaction_id"]),
		Raw:           resp,
	}, nil
}

// ParsePixWebhook normalizes a SubadqA PIX webhook.
//
// Example payload:
//
//	{
//	  "event": "pix_payment_confirmed",
//	  "pix_id": "PIX123456789",
//	  "status": "CONFIRMED",
//	  "amount": 125.50,
//	  "payment_date": "2025-11-13T14:25:00Z"
//	}
func (g *SubadqA) ParsePixWebhook(payload map[string]any) (*WebhookData, error) {
	if stringFrom(payload["pix_id"]) == "" {
		return nil, invalidPayload(g.Identifier(), "missing required field: pix_id", payload)
	}
	if _, ok := payload["status"]; !ok {
		return nil, invalidPayload(g.Identifier(), "missing required field: status", payload)
	}

	return &WebhookData{
		ExternalID: stringFrom(payload["pix_id"]),
		Status:     status.PixFromSubadqA(stringFrom(payload["status"])).String(),
		Amount:     amountFrom(payload["amount"]),
		PaidAt:     timeFrom(payload["payment_date"]),
		Raw:        payload,
	}, nil
}

// ParseWithdrawWebhook normalizes a SubadqA withdrawal webhook.
//
// Example payload:
//
//	{
//	  "event": "withdraw_completed",
//	  "withdraw_id": "WD123456789",
//	  "status": "SUCCESS",
//	  "amount": 500.00,
//	  "completed_at": "2025-11-13T13:12:30Z"
//	}
func (g *SubadqA) ParseWithdrawWebhook(payload map[string]any) (*WebhookData, error) {
	if stringFrom(payload["withdraw_id"]) == "" {
		return nil, invalidPayload(g.Identifier(), "missing required field: withdraw_id", payload)
	}
	if _, ok := payload["status"]; !ok {
		return nil, invalidPayload(g.Identifier(), "missing required field: status", payload)
	}

	return &WebhookData{
		ExternalID:  stringFrom(payload["withdraw_id"]),
		Status:      status.WithdrawFromSubadqA(stringFrom(payload["status"])).String(),
		Amount:      amountFrom(payload["amount"]),
		CompletedAt: timeFrom(payload["completed_at"]),
		Raw:         payload,
	}, nil
}

// GeneratePixWebhook produces a SubadqA-shaped confirmation event.
func (g *SubadqA) GeneratePixWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return map[string]any{
		"event":          "pix_payment_confirmed",
		"transaction_id": "TXN" + randomID(),
		"pix_id":         externalID,
		"status":         "CONFIRMED",
		"amount":         amount,
		"payer_name":     "Cliente Teste",
		"payer_cpf":      "12345678900",
		"payment_date":   time.Now().UTC().Format(time.RFC3339),
		"metadata": map[string]any{
			"source":      "SubadqA",
			"environment": "sandbox",
		},
	}
}

// GenerateWithdrawWebhook produces a SubadqA-shaped completion event.
func (g *SubadqA) GenerateWithdrawWebhook(externalID string, amount decimal.Decimal) map[string]any {
	now := time.Now().UTC()
	return map[string]any{
		"event":          "withdraw_completed",
		"withdraw_id":    externalID,
		"transaction_id": "TXN" + randomID(),
		"status":         "SUCCESS",
		"amount":         amount,
		"requested_at":   now.Add(-2 * time.Minute).Format(time.RFC3339),
		"completed_at":   now.Format(time.RFC3339),
		"metadata": map[string]any{
			"source":           "SubadqA",
			"destination_bank": "Banco Teste",
		},
	}
}
