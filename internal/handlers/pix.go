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

var maxAmount = decimal.RequireFromString("999999.99")

// PixHandler exposes the PIX payment endpoints.
type PixHandler struct {
	store services.Store
	svc   *services.PixService
}

// NewPixHandler constructs a PixHandler.
func NewPixHandler(store services.Store, svc *services.PixService) *PixHandler {
	return &PixHandler{store: store, svc: svc}
}

type createPixRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Create creates a PIX charge and returns the QR code for payment.
func (h *PixHandler) Create(c *fiber.Ctx) error {
	var req createPixRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "amount must be greater than zero")
	}
	if req.Amount.GreaterThan(maxAmount) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "amount exceeds the maximum allowed")
	}

	account, err := currentAccount(c, h.store)
	if err != nil {
		return err
	}

	pix, err := h.svc.CreatePix(c.Context(), account, req.Amount, req.Description)
	if err != nil {
		return creationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "PIX created successfully.",
		"data":    pixResource(pix),
	})
}

// Show returns a single PIX transaction owned by the caller.
func (h *PixHandler) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	account, err := currentAccount(c, h.store)
	if err != nil {
		return err
	}

	pix, err := h.svc.FindByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "PIX not found")
		}
		return err
	}

	if pix.AccountID != account.ID {
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}

	return c.JSON(fiber.Map{"data": pixResource(pix)})
}

// Index lists the caller's PIX transactions, newest first.
func (h *PixHandler) Index(c *fiber.Ctx) error {
	account, err := currentAccount(c, h.store)
	if err != nil {
		return err
	}

	pagination := utils.ParsePagination(c)
	transactions, err := h.svc.ListByAccount(c.Context(), account.ID, pagination.Limit)
	if err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(transactions))
	for i := range transactions {
		data = append(data, pixResource(&transactions[i]))
	}

	return c.JSON(fiber.Map{"data": data})
}

func pixResource(pix *models.PixTransaction) fiber.Map {
	return fiber.Map{
		"id":             pix.ID,
		"external_id":    pix.ExternalID,
		"amount":         pix.Amount,
		"status":         pix.Status,
		"qr_code":        pix.QRCode,
		"qr_code_base64": pix.QRCodeBase64,
		"payer_name":     pix.PayerName,
		"payer_document": pix.PayerDocument,
		"paid_at":        isoTime(pix.PaidAt),
		"expires_at":     isoTime(pix.ExpiresAt),
		"created_at":     pix.CreatedAt.Format(time.RFC3339),
		"updated_at":     pix.UpdatedAt.Format(time.RFC3339),
	}
}
