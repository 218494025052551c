package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/pixgate/internal/models"
)

// ErrNotFound is returned by Store lookups when no record matches.
var ErrNotFound = errors.New("record not found")

// ErrNoSubacquirer indicates an account that was never assigned a
// payment provider. This is a configuration error, surfaced before any
// record is written.
var ErrNoSubacquirer = errors.New("account does not have a subacquirer configured")

// Store is the transactional record store the orchestrators run on.
// Implementations must make Atomically all-or-nothing: every store call
// made through the Store handed to fn is committed or rolled back as one
// unit.
type Store interface {
	Atomically(ctx context.Context, fn func(Store) error) error

	CreateAccount(ctx context.Context, account *models.Account) error
	FindAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	CreateSubacquirer(ctx context.Context, sub *models.Subacquirer) error
	FindSubacquirer(ctx context.Context, id uuid.UUID) (*models.Subacquirer, error)
	FindSubacquirerBySlug(ctx context.Context, slug string) (*models.Subacquirer, error)

	CreatePix(ctx context.Context, pix *models.PixTransaction) error
	UpdatePix(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindPix(ctx context.Context, id uuid.UUID) (*models.PixTransaction, error)
	ListPixByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.PixTransaction, error)

	CreateWithdrawal(ctx context.Context, withdrawal *models.Withdrawal) error
	UpdateWithdrawal(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindWithdrawal(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	ListWithdrawalsByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.Withdrawal, error)
}

// WebhookEnqueuer schedules the simulated provider confirmation for a
// freshly created transaction. The reconciliation worker implements it.
type WebhookEnqueuer interface {
	EnqueuePix(id uuid.UUID, delay time.Duration)
	EnqueueWithdraw(id uuid.UUID, delay time.Duration)
}
