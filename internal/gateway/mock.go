package gateway

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/status"
)

const (
	mockQRCodePrefix = "00020126580014br.gov.bcb.pix0136"
	mockQRCodeSuffix = "5204000053039865802BR5913Mock Gateway6008Sao Paulo62070503***6304"
	// 1x1 transparent PNG.
	mockQRCodeBase64 = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="
)

// MockGateway never touches the network. It returns a pending creation
// response immediately and confirms every synthesized webhook, so the
// full lifecycle can be exercised without provider credentials.
type MockGateway struct {
	sub *models.Subacquirer
}

// NewMockGateway builds a mock gateway for the given subacquirer profile.
func NewMockGateway(sub *models.Subacquirer) *MockGateway {
	return &MockGateway{sub: sub}
}

func (g *MockGateway) Identifier() string {
	return "mock"
}

// CreatePix synthesizes a pending PIX charge.
func (g *MockGateway) CreatePix(req PixRequest) (*PixResponse, error) {
	externalID := "PIX_" + randomID()
	expiresAt := time.Now().Add(defaultExpirationMinutes * time.Minute)

	return &PixResponse{
		ExternalID:   externalID,
		Status:       status.PixPending,
		QRCode:       mockQRCodePrefix + uuid.NewString() + mockQRCodeSuffix,
		QRCodeBase64: mockQRCodeBase64,
		ExpiresAt:    &expiresAt,
		Raw: map[string]any{
			"pix_id":  externalID,
			"status":  "PENDING",
			"qr_code": "mock_qr_code",
			"mock":    true,
		},
	}, nil
}

// CreateWithdraw synthesizes a pending withdrawal.
func (g *MockGateway) CreateWithdraw(req WithdrawRequest) (*WithdrawResponse, error) {
	externalID := "WD_" + randomID()

	return &WithdrawResponse{
		ExternalID: externalID,
		Status:     status.WithdrawPending,
		Raw: map[string]any{
			"withdraw_id": externalID,
			"status":      "PENDING",
			"mock":        true,
		},
	}, nil
}

// ParsePixWebhook always normalizes to paid.
func (g *MockGateway) ParsePixWebhook(payload map[string]any) (*WebhookData, error) {
	externalID := stringFrom(payload["pix_id"])
	if externalID == "" {
		externalID = stringFrom(payload["external_id"])
	}
	if externalID == "" {
		return nil, invalidPayload(g.Identifier(), "missing required field: pix_id", payload)
	}

	now := time.Now()
	return &WebhookData{
		ExternalID: externalID,
		Status:     status.PixPaid.String(),
		Amount:     amountFrom(payload["amount"]),
		PaidAt:     &now,
		Raw:        payload,
	}, nil
}

// ParseWithdrawWebhook always normalizes to success.
func (g *MockGateway) ParseWithdrawWebhook(payload map[string]any) (*WebhookData, error) {
	externalID := stringFrom(payload["withdraw_id"])
	if externalID == "" {
		externalID = stringFrom(payload["external_id"])
	}
	if externalID == "" {
		return nil, invalidPayload(g.Identifier(), "missing required field: withdraw_id", payload)
	}

	now := time.Now()
	return &WebhookData{
		ExternalID:  externalID,
		Status:      status.WithdrawSuccess.String(),
		Amount:      amountFrom(payload["amount"]),
		CompletedAt: &now,
		Raw:         payload,
	}, nil
}

// GeneratePixWebhook produces a deterministic confirmation payload.
func (g *MockGateway) GeneratePixWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return map[string]any{
		"event":   "pix.confirmed",
		"pix_id":  externalID,
		"status":  "CONFIRMED",
		"amount":  amount,
		"paid_at": time.Now().UTC().Format(time.RFC3339),
		"mock":    true,
	}
}

// GenerateWithdrawWebhook produces a deterministic completion payload.
func (g *MockGateway) GenerateWithdrawWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return map[string]any{
		"event":        "withdraw.completed",
		"withdraw_id":  externalID,
		"status":       "COMPLETED",
		"amount":       amount,
		"completed_at": time.Now().UTC().Format(time.RFC3339),
		"mock":         true,
	}
}

func randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
