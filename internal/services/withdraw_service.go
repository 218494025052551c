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

// BankData carries the optional bank account destination of a withdrawal.
type BankData struct {
	BankCode    string
	BankName    string
	Agency      string
	Account     string
	AccountType string
}

// WithdrawService orchestrates withdrawal creation and webhook application.
type WithdrawService struct {
	store    Store
	factory  gateway.Factory
	webhooks WebhookEnqueuer
}

// NewWithdrawService constructs a WithdrawService.
func NewWithdrawService(store Store, factory gateway.Factory, webhooks WebhookEnqueuer) *WithdrawService {
	return &WithdrawService{store: store, factory: factory, webhooks: webhooks}
}

// CreateWithdraw creates a withdrawal for the account, calls the
// account's gateway and records the outcome, mirroring
// PixService.CreatePix.
func (s *WithdrawService) CreateWithdraw(ctx context.Context, account *models.Account, amount decimal.Decimal, pixKey, pixKeyType string, bank *BankData) (*models.Withdrawal, error) {
	if account.SubacquirerID == nil || account.Subacquirer == nil {
		return nil, ErrNoSubacquirer
	}

	if bank == nil {
		bank = &BankData{}
	}

	var (
		withdrawalID uuid.UUID
		gwErr        error
	)

	err := s.store.Atomically(ctx, func(tx Store) error {
		withdrawal := &models.Withdrawal{
			AccountID:     account.ID,
			SubacquirerID: *account.SubacquirerID,
			Amount:        amount,
			Status:        status.WithdrawPending,
			PixKey:        pixKey,
			PixKeyType:    pixKeyType,
			BankCode:      bank.BankCode,
			BankName:      bank.BankName,
			Agency:        bank.Agency,
			Account:       bank.Account,
			AccountType:   bank.AccountType,
		}
		if err := tx.CreateWithdrawal(ctx, withdrawal); err != nil {
			return err
		}
		withdrawalID = withdrawal.ID

		gw, err := s.factory.Make(account.Subacquirer)
		if err != nil {
			return err
		}

		req := gateway.WithdrawRequest{
			Amount:      amount,
			PixKey:      pixKey,
			PixKeyType:  pixKeyType,
			BankCode:    bank.BankCode,
			Agency:      bank.Agency,
			Account:     bank.Account,
			AccountType: bank.AccountType,
		}

		requestPayload, err := json.Marshal(withdrawRequestFields(req))
		if err != nil {
			return err
		}
		if err := tx.UpdateWithdrawal(ctx, withdrawal.ID, map[string]any{"request_payload": requestPayload}); err != nil {
			return err
		}

		resp, err := gw.CreateWithdraw(req)
		if err != nil {
			fields := map[string]any{"status": status.WithdrawFailed}
			if gerr, ok := gateway.AsError(err); ok && gerr.Response != nil {
				if raw, merr := json.Marshal(gerr.Response); merr == nil {
					fields["response_payload"] = raw
				}
			}
			if uerr := tx.UpdateWithdrawal(ctx, withdrawal.ID, fields); uerr != nil {
				return uerr
			}
			gwErr = err
			return nil
		}

		responsePayload, err := json.Marshal(resp.Raw)
		if err != nil {
			return err
		}

		return tx.UpdateWithdrawal(ctx, withdrawal.ID, map[string]any{
			"external_id":      resp.ExternalID,
			"status":           resp.Status,
			"response_payload": responsePayload,
		})
	})
	if err != nil {
		return nil, err
	}

	if gwErr != nil {
		log.Printf("[withdraw] creation failed: id=%s account=%s error=%v", withdrawalID, account.ID, gwErr)
		return nil, gwErr
	}

	withdrawal, err := s.store.FindWithdrawal(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	s.webhooks.EnqueueWithdraw(withdrawal.ID, time.Duration(2+rand.Intn(4))*time.Second)

	log.Printf("[withdraw] created: id=%s external_id=%s account=%s amount=%s", withdrawal.ID, withdrawal.ExternalID, account.ID, amount)
	return withdrawal, nil
}

// ApplyWebhook folds a normalized webhook event into the withdrawal.
func (s *WithdrawService) ApplyWebhook(ctx context.Context, withdrawal *models.Withdrawal, data *gateway.WebhookData) (*models.Withdrawal, error) {
	webhookPayload, err := json.Marshal(data.Raw)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"status":          status.WithdrawStatus(data.Status),
		"webhook_payload": webhookPayload,
	}
	if data.CompletedAt != nil {
		fields["completed_at"] = data.CompletedAt
	}

	if err := s.store.UpdateWithdrawal(ctx, withdrawal.ID, fields); err != nil {
		return nil, err
	}

	fresh, err := s.store.FindWithdrawal(ctx, withdrawal.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("[withdraw] webhook applied: id=%s external_id=%s status=%s", fresh.ID, fresh.ExternalID, fresh.Status)
	return fresh, nil
}

// FindByID returns the withdrawal or ErrNotFound.
func (s *WithdrawService) FindByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	return s.store.FindWithdrawal(ctx, id)
}

// ListByAccount returns the account's most recent withdrawals.
func (s *WithdrawService) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.Withdrawal, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.ListWithdrawalsByAccount(ctx, accountID, limit)
}

func withdrawRequestFields(req gateway.WithdrawRequest) map[string]any {
	fields := map[string]any{"amount": req.Amount}
	optional := map[string]string{
		"pix_key":      req.PixKey,
		"pix_key_type": req.PixKeyType,
		"bank_code":    req.BankCode,
		"agency":       req.Agency,
		"account":      req.Account,
		"account_type": req.AccountType,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
