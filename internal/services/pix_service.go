package services

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/pixgate/internal/gateway"
	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/status"
)

// PixService orchestrates PIX payment creation and webhook application.
type PixService struct {
	store    Store
	factory  gateway.Factory
	webhooks WebhookEnqueuer
}

// NewPixService constructs a PixService.
func NewPixService(store Store, factory gateway.Factory, webhooks WebhookEnqueuer) *PixService {
	return &PixService{store: store, factory: factory, webhooks: webhooks}
}

// CreatePix creates a PIX transaction for the account, calls the
// account's gateway and records the outcome. The record insert and the
// gateway attempt share one atomic block; a gateway failure is committed
// as status=failed (the audit trail survives) and returned to the caller.
func (s *PixService) CreatePix(ctx context.Context, account *models.Account, amount decimal.Decimal, description string) (*models.PixTransaction, error) {
	if account.SubacquirerID == nil || account.Subacquirer == nil {
		return nil, ErrNoSubacquirer
	}

	var (
		pixID uuid.UUID
		gwErr error
	)

	err := s.store.Atomically(ctx, func(tx Store) error {
		pix := &models.PixTransaction{
			AccountID:     account.ID,
			SubacquirerID: *account.SubacquirerID,
			Amount:        amount,
			Status:        status.PixPending,
		}
		if err := tx.CreatePix(ctx, pix); err != nil {
			return err
		}
		pixID = pix.ID

		gw, err := s.factory.Make(account.Subacquirer)
		if err != nil {
			return err
		}

		req := gateway.PixRequest{
			Amount:            amount,
			Description:       description,
			ExpirationMinutes: 30,
		}

		requestPayload, err := json.Marshal(map[string]any{
			"amount":             amount,
			"description":        description,
			"expiration_minutes": req.ExpirationMinutes,
		})
		if err != nil {
			return err
		}
		if err := tx.UpdatePix(ctx, pix.ID, map[string]any{"request_payload": requestPayload}); err != nil {
			return err
		}

		resp, err := gw.CreatePix(req)
		if err != nil {
			fields := map[string]any{"status": status.PixFailed}
			if gerr, ok := gateway.AsError(err); ok && gerr.Response != nil {
				if raw, merr := json.Marshal(gerr.Response); merr == nil {
					fields["response_payload"] = raw
				}
			}
			if uerr := tx.UpdatePix(ctx, pix.ID, fields); uerr != nil {
				return uerr
			}
			// Committing the failed state keeps the audit trail; the
			// gateway error is surfaced after the block.
			gwErr = err
			return nil
		}

		responsePayload, err := json.Marshal(resp.Raw)
		if err != nil {
			return err
		}

		fields := map[string]any{
			"external_id":      resp.ExternalID,
			"status":           resp.Status,
			"qr_code":          resp.QRCode,
			"qr_code_base64":   resp.QRCodeBase64,
			"response_payload": responsePayload,
		}
		if resp.ExpiresAt != nil {
			fields["expires_at"] = resp.ExpiresAt
		} else {
			expiresAt := time.Now().Add(30 * time.Minute)
			fields["expires_at"] = &expiresAt
		}

		return tx.UpdatePix(ctx, pix.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	if gwErr != nil {
		log.Printf("[pix] creation failed: id=%s account=%s error=%v", pixID, account.ID, gwErr)
		return nil, gwErr
	}

	pix, err := s.store.FindPix(ctx, pixID)
	if err != nil {
		return nil, err
	}

	// Simulate asynchronous provider confirmation with a short random delay.
	s.webhooks.EnqueuePix(pix.ID, time.Duration(2+rand.Intn(4))*time.Second)

	log.Printf("[pix] created: id=%s external_id=%s account=%s amount=%s", pix.ID, pix.ExternalID, account.ID, amount)
	return pix, nil
}

// ApplyWebhook folds a normalized webhook event into the transaction:
// status, paid timestamp (when supplied) and the raw payload are
// overwritten. Re-applying an identical event is a no-op in effect.
func (s *PixService) ApplyWebhook(ctx context.Context, pix *models.PixTransaction, data *gateway.WebhookData) (*models.PixTransaction, error) {
	webhookPayload, err := json.Marshal(data.Raw)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"status":          status.PixStatus(data.Status),
		"webhook_payload": webhookPayload,
	}
	if data.PaidAt != nil {
		fields["paid_at"] = data.PaidAt
	}

	if err := s.store.UpdatePix(ctx, pix.ID, fields); err != nil {
		return nil, err
	}

	fresh, err := s.store.FindPix(ctx, pix.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("[pix] webhook applied: id=%s external_id=%s status=%s", fresh.ID, fresh.ExternalID, fresh.Status)
	return fresh, nil
}

// FindByID returns the PIX transaction or ErrNotFound.
func (s *PixService) FindByID(ctx context.Context, id uuid.UUID) (*models.PixTransaction, error) {
	return s.store.FindPix(ctx, id)
}

// ListByAccount returns the account's most recent PIX transactions.
func (s *PixService) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.PixTransaction, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.ListPixByAccount(ctx, accountID, limit)
}
