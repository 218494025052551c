package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/pixgate/internal/config"
	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/services"
	"github.com/example/pixgate/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	store services.Store
	cfg   *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(store services.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg}
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Subacquirer string `json:"subacquirer"`
}

// Register creates a new merchant account bound to a payment provider.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	if _, err := h.store.FindAccountByEmail(c.Context(), req.Email); err == nil {
		return fiber.NewError(fiber.StatusConflict, "account already exists")
	} else if !errors.Is(err, services.ErrNotFound) {
		return err
	}

	slug := req.Subacquirer
	if slug == "" {
		slug = "mock"
	}
	sub, err := h.store.FindSubacquirerBySlug(c.Context(), slug)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown subacquirer")
		}
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	account := &models.Account{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  passwordHash,
		SubacquirerID: &sub.ID,
		Subacquirer:   sub,
	}

	if err := h.store.CreateAccount(c.Context(), account); err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, account.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"account": accountResource(account),
		"token":   token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing account and issues a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	account, err := h.store.FindAccountByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(account.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, account.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"account": accountResource(account),
		"token":   token,
		"type":    "Bearer",
	})
}

// Account returns the authenticated account's profile.
func (h *AuthHandler) Account(c *fiber.Ctx) error {
	account, err := currentAccount(c, h.store)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": accountResource(account)})
}

func accountResource(account *models.Account) fiber.Map {
	resource := fiber.Map{
		"id":    account.ID,
		"name":  account.Name,
		"email": account.Email,
	}
	if account.Subacquirer != nil {
		resource["subacquirer"] = fiber.Map{
			"name": account.Subacquirer.Name,
			"slug": account.Subacquirer.Slug,
		}
	}
	return resource
}
