package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/services"
	"github.com/example/pixgate/internal/utils"
)

// WithdrawHandler exposes the withdrawal endpoints.
type WithdrawHandler struct {
	store services.Store
	svc   *services.WithdrawService
}

// NewWithdrawHandler constructs a WithdrawHandler.
func NewWithdrawHandler(store services.Store, svc *services.WithdrawService) *WithdrawHandler {
	return &WithdrawHandler{store: store, svc: svc}
}

type createWithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PixKey      string          `json:"pix_key"`
	PixKeyType  string          `json:"pix_key_type"`
	BankCode    string          `json:"bank_code"`
	BankName    string          `json:"bank_name"`
	Agency      string          `json:"agency"`
	Account     string          `json:"account"`
	AccountType string          `json:"account_type"`
}

// Create requests a payout to a PIX key or bank account.
func (h *WithdrawHandler) Create(c *fiber.Ctx) error {
	var req createWithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "amount must be greater than zero")
	}
	if req.Amount.GreaterThan(maxAmount) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "amount exceeds the maximum allowed")
	}
	if req.PixKey == "" && req.BankCode == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "provide a pix key or bank account details")
	}
	if req.BankCode != "" && (req.Agency == "" || req.Account == "") {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "agency and account are required with bank_code")
	}

	account, err := currentAccount(c, h.store)
	if err != nil {
		return err
	}

	bank := &services.BankData{
		BankCode:    req.BankCode,
		BankName:    req.BankName,
		Agency:      req.Agency,
		Account:     req.Account,
		AccountType: req.AccountType,
	}

	withdrawal, err := h.svc.CreateWithdraw(c.Context(), account, req.Amount, req.PixKey, req.PixKeyType, bank)
	if err != nil {
		return creationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Withdrawal created successfully.",
		"data":    withdrawResource(withdrawal),
	})
}

// Show returns a single withdrawal owned by the caller.
func (h *WithdrawHandler) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	account, err := currentAccount(c, h.store)
	if err != nil {
		return err
	}

	withdrawal, err := h.svc.FindByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "withdrawal not found")
		}
		return err
	}

	if withdrawal.AccountID != account.ID {
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}

	return c.JSON(fiber.Map{"data": withdrawResource(withdrawal)})
}

// Index lists the caller's withdrawals, newest first.
func (h *WithdrawHandler) Index(c *fiber.Ctx) error {
	account, err := currentAccount(c, h.store)
	if err != nil {
		return err
	}

	pagination := utils.ParsePagination(c)
	withdrawals, err := h.svc.ListByAccount(c.Context(), account.ID, pagination.Limit)
	if err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(withdrawals))
	for i := range withdrawals {
		data = append(data, withdrawResource(&withdrawals[i]))
	}

	return c.JSON(fiber.Map{"data": data})
}

func withdrawResource(withdrawal *models.Withdrawal) fiber.Map {
	return fiber.Map{
		"id":           withdrawal.ID,
		"external_id":  withdrawal.ExternalID,
		"amount":       withdrawal.Amount,
		"status":       withdrawal.Status,
		"pix_key":      withdrawal.PixKey,
		"pix_key_type": withdrawal.PixKeyType,
		"bank_code":    withdrawal.BankCode,
		"bank_name":    withdrawal.BankName,
		"completed_at": isoTime(withdrawal.CompletedAt),
		"created_at":   withdrawal.CreatedAt.Format(time.RFC3339),
		"updated_at":   withdrawal.UpdatedAt.Format(time.RFC3339),
	}
}
