package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/status"
)

// SubadqB integrates the SubadqB provider. Unlike SubadqA, every payload
// wraps the interesting fields in a "data" envelope and identifies
// transactions through "data.id".
type SubadqB struct {
	sub  *models.Subacquirer
	http *client
}

// NewSubadqB builds a SubadqB gateway for the given subacquirer profile.
func NewSubadqB(sub *models.Subacquirer, timeout time.Duration) *SubadqB {
	return &SubadqB{
		sub:  sub,
		http: newClient(sub.Slug, sub.BaseURL, timeout),
	}
}

func (g *SubadqB) Identifier() string {
	return g.sub.Slug
}

// CreatePix creates a PIX charge via SubadqB.
func (g *SubadqB) CreatePix(req PixRequest) (*PixResponse, error) {
	description := req.Description
	if description == "" {
		description = defaultDescription
	}
	expiration := req.ExpirationMinutes
	if expiration == 0 {
		expiration = defaultExpirationMinutes
	}

	payload := map[string]any{
		"value":       req.Amount,
		"description": description,
		"expiration":  expiration,
	}

	resp, err := g.http.post("/pix/create", payload, map[string]string{
		"x-mock-response-name": "[SUCESSO_PIX] pix_create",
	})
	if err != nil {
		return nil, err
	}

	data := envelope(resp)

	return &PixResponse{
		ExternalID:   stringFrom(data["id"]),
		Status:       status.PixFromSubadqB(stringFrom(data["status"])),
		QRCode:       stringFrom(data["qr_code"]),
		QRCodeBase64: stringFrom(data["qr_code_base64"]),
		ExpiresAt:    timeFrom(data["expires_at"]),
		Raw:          resp,
	}, nil
}

// CreateWithdraw creates a withdrawal via SubadqB.
func (g *SubadqB) CreateWithdraw(req WithdrawRequest) (*WithdrawResponse, error) {
	keyType := req.PixKeyType
	if keyType == "" {
		keyType = defaultPixKeyType
	}

	payload := map[string]any{
		"amount": req.Amount,
		"destination": map[string]any{
			"pix_key": req.PixKey,
			"type":    keyType,
		},
	}

	resp, err := g.http.post("/withdraw", payload, map[string]string{
		"x-mock-response-name": "[SUCESSO_WD] withdraw",
	})
	if err != nil {
		return nil, err
	}

	data := envelope(resp)

	return &WithdrawResponse{
		ExternalID:    stringFrom(data["id"]),
		Status:        status.WithdrawFromSubadqB(stringFrom(data["status"])),
		TransactionID: stringFrom(data["transaction_id"]),
		Raw:           resp,
	}, nil
}

// ParsePixWebhook normalizes a SubadqB PIX webhook.
//
// Example payload:
//
//	{
//	  "type": "pix.status_update",
//	  "data": {
//	    "id": "PX987654321",
//	    "status": "PAID",
//	    "value": 250.00,
//	    "confirmed_at": "2025-11-13T14:40:00Z"
//	  },
//	  "signature": "d1c4b6f98eaa"
//	}
func (g *SubadqB) ParsePixWebhook(payload map[string]any) (*WebhookData, error) {
	data, _ := payload["data"].(map[string]any)

	if stringFrom(data["id"]) == "" {
		return nil, invalidPayload(g.Identifier(), "missing required field: data.id", payload)
	}
	if _, ok := data["status"]; !ok {
		return nil, invalidPayload(g.Identifier(), "missing required field: data.status", payload)
	}

	return &WebhookData{
		ExternalID: stringFrom(data["id"]),
		Status:     status.PixFromSubadqB(stringFrom(data["status"])).String(),
		Amount:     amountFrom(data["value"]),
		PaidAt:     timeFrom(data["confirmed_at"]),
		Raw:        payload,
	}, nil
}

// ParseWithdrawWebhook normalizes a SubadqB withdrawal webhook.
//
// Example payload:
//
//	{
//	  "type": "withdraw.status_update",
//	  "data": {
//	    "id": "WDX54321",
//	    "status": "DONE",
//	    "amount": 850.00,
//	    "processed_at": "2025-11-13T13:45:10Z"
//	  },
//	  "signature": "aabbccddeeff112233"
//	}
func (g *SubadqB) ParseWithdrawWebhook(payload map[string]any) (*WebhookData, error) {
	data, _ := payload["data"].(map[string]any)

	if stringFrom(data["id"]) == "" {
		return nil, invalidPayload(g.Identifier(), "missing required field: data.id", payload)
	}
	if _, ok := data["status"]; !ok {
		return nil, invalidPayload(g.Identifier(), "missing required field: data.status", payload)
	}

	return &WebhookData{
		ExternalID:  stringFrom(data["id"]),
		Status:      status.WithdrawFromSubadqB(stringFrom(data["status"])).String(),
		Amount:      amountFrom(data["amount"]),
		CompletedAt: timeFrom(data["processed_at"]),
		Raw:         payload,
	}, nil
}

// GeneratePixWebhook produces a SubadqB-shaped confirmation event.
func (g *SubadqB) GeneratePixWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return map[string]any{
		"type": "pix.status_update",
		"data": map[string]any{
			"id":     externalID,
			"status": "PAID",
			"value":  amount,
			"payer": map[string]any{
				"name":     "Cliente Teste",
				"document": "98765432100",
			},
			"confirmed_at": time.Now().UTC().Format(time.RFC3339),
		},
		"signature": randomID(),
	}
}

// GenerateWithdrawWebhook produces a SubadqB-shaped completion event.
func (g *SubadqB) GenerateWithdrawWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return map[string]any{
		"type": "withdraw.status_update",
		"data": map[string]any{
			"id":     externalID,
			"status": "DONE",
			"amount": amount,
			"bank_account": map[string]any{
				"bank":    "Banco Teste",
				"agency":  "0001",
				"account": "12345-6",
			},
			"processed_at": time.Now().UTC().Format(time.RFC3339),
		},
		"signature": randomID(),
	}
}

func envelope(resp map[string]any) map[string]any {
	if data, ok := resp["data"].(map[string]any); ok {
		return data
	}
	return resp
}
