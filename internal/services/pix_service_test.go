package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pixgate/internal/gateway"
	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/repository"
	"github.com/example/pixgate/internal/services"
	"github.com/example/pixgate/internal/status"
)

// createGateway scripts the creation calls; webhook methods are not
// exercised by the orchestrator tests.
type createGateway struct {
	pixResp      *gateway.PixResponse
	pixErr       error
	withdrawResp *gateway.WithdrawResponse
	withdrawErr  error
}

func (g *createGateway) Identifier() string { return "script" }

func (g *createGateway) CreatePix(req gateway.PixRequest) (*gateway.PixResponse, error) {
	if g.pixErr != nil {
		return nil, g.pixErr
	}
	return g.pixResp, nil
}

func (g *createGateway) CreateWithdraw(req gateway.WithdrawRequest) (*gateway.WithdrawResponse, error) {
	if g.withdrawErr != nil {
		return nil, g.withdrawErr
	}
	return g.withdrawResp, nil
}

func (g *createGateway) ParsePixWebhook(payload map[string]any) (*gateway.WebhookData, error) {
	return nil, nil
}

func (g *createGateway) ParseWithdrawWebhook(payload map[string]any) (*gateway.WebhookData, error) {
	return nil, nil
}

func (g *createGateway) GeneratePixWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return nil
}

func (g *createGateway) GenerateWithdrawWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return nil
}

type stubFactory struct {
	gw  gateway.Gateway
	err error
}

func (f *stubFactory) Make(sub *models.Subacquirer) (gateway.Gateway, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.gw, nil
}

// recordEnqueuer captures what would be scheduled.
type recordEnqueuer struct {
	pix       []uuid.UUID
	withdraws []uuid.UUID
}

func (e *recordEnqueuer) EnqueuePix(id uuid.UUID, delay time.Duration) {
	e.pix = append(e.pix, id)
}

func (e *recordEnqueuer) EnqueueWithdraw(id uuid.UUID, delay time.Duration) {
	e.withdraws = append(e.withdraws, id)
}

func testAccount(t *testing.T, store *repository.MemoryStore) *models.Account {
	t.Helper()

	sub := &models.Subacquirer{Name: "Mock Provider", Slug: "mock", IsActive: true}
	require.NoError(t, store.CreateSubacquirer(context.Background(), sub))

	account := &models.Account{
		Name:          "Merchant",
		Email:         "merchant@example.com",
		SubacquirerID: &sub.ID,
		Subacquirer:   sub,
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func TestCreatePixSuccess(t *testing.T) {
	store := repository.NewMemoryStore()
	account := testAccount(t, store)
	enqueuer := &recordEnqueuer{}

	gw := &createGateway{pixResp: &gateway.PixResponse{
		ExternalID:   "PIX123",
		Status:       status.PixPending,
		QRCode:       "00020126...",
		QRCodeBase64: "iVBORw0KGgo=",
		Raw:          map[string]any{"pix_id": "PIX123", "status": "PENDING"},
	}}
	svc := services.NewPixService(store, &stubFactory{gw: gw}, enqueuer)

	amount := decimal.RequireFromString("100.50")
	pix, err := svc.CreatePix(context.Background(), account, amount, "Order #42")
	require.NoError(t, err)

	assert.Equal(t, "PIX123", pix.ExternalID)
	assert.Equal(t, status.PixPending, pix.Status)
	assert.True(t, pix.Amount.Equal(amount), "amount must survive exactly, got %s", pix.Amount)
	assert.Equal(t, "00020126...", pix.QRCode)
	assert.NotEmpty(t, pix.RequestPayload)
	assert.NotEmpty(t, pix.ResponsePayload)
	require.NotNil(t, pix.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *pix.ExpiresAt, time.Minute)

	require.Len(t, enqueuer.pix, 1)
	assert.Equal(t, pix.ID, enqueuer.pix[0])
}

func TestCreatePixGatewayFailureKeepsRecord(t *testing.T) {
	store := repository.NewMemoryStore()
	account := testAccount(t, store)
	enqueuer := &recordEnqueuer{}

	gwErr := &gateway.Error{
		Kind:     gateway.KindValidation,
		Gateway:  "script",
		Message:  "validation failed",
		Response: map[string]any{"message": "amount too low"},
	}
	svc := services.NewPixService(store, &stubFactory{gw: &createGateway{pixErr: gwErr}}, enqueuer)

	_, err := svc.CreatePix(context.Background(), account, decimal.RequireFromString("0.01"), "")
	require.Error(t, err)

	gerr, ok := gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, gateway.KindValidation, gerr.Kind)

	// The failed record survives the rollback boundary as the audit trail.
	records, lerr := store.ListPixByAccount(context.Background(), account.ID, 10)
	require.NoError(t, lerr)
	require.Len(t, records, 1)
	assert.Equal(t, status.PixFailed, records[0].Status)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(records[0].ResponsePayload, &stored))
	assert.Equal(t, "amount too low", stored["message"])

	assert.Empty(t, enqueuer.pix, "failed creations must not schedule webhooks")
}

func TestCreatePixWithoutSubacquirer(t *testing.T) {
	store := repository.NewMemoryStore()
	enqueuer := &recordEnqueuer{}
	svc := services.NewPixService(store, &stubFactory{gw: &createGateway{}}, enqueuer)

	account := &models.Account{Name: "Orphan", Email: "orphan@example.com"}
	require.NoError(t, store.CreateAccount(context.Background(), account))

	_, err := svc.CreatePix(context.Background(), account, decimal.RequireFromString("10.00"), "")
	assert.ErrorIs(t, err, services.ErrNoSubacquirer)

	records, lerr := store.ListPixByAccount(context.Background(), account.ID, 10)
	require.NoError(t, lerr)
	assert.Empty(t, records, "no record is written before the provider check")
}

func TestCreatePixUnsupportedGateway(t *testing.T) {
	store := repository.NewMemoryStore()
	account := testAccount(t, store)
	enqueuer := &recordEnqueuer{}

	factory := &stubFactory{err: &gateway.UnsupportedGatewayError{Slug: "nope"}}
	svc := services.NewPixService(store, factory, enqueuer)

	_, err := svc.CreatePix(context.Background(), account, decimal.RequireFromString("10.00"), "")
	require.Error(t, err)

	var unsupported *gateway.UnsupportedGatewayError
	assert.ErrorAs(t, err, &unsupported)
	assert.Empty(t, enqueuer.pix)
}

func TestPixApplyWebhook(t *testing.T) {
	store := repository.NewMemoryStore()
	account := testAccount(t, store)
	svc := services.NewPixService(store, &stubFactory{gw: &createGateway{}}, &recordEnqueuer{})

	pix := &models.PixTransaction{
		AccountID:     account.ID,
		SubacquirerID: *account.SubacquirerID,
		ExternalID:    "PIX123",
		Amount:        decimal.RequireFromString("100.50"),
		Status:        status.PixPending,
	}
	require.NoError(t, store.CreatePix(context.Background(), pix))

	paidAt := time.Now()
	data := &gateway.WebhookData{
		ExternalID: "PIX123",
		Status:     string(status.PixPaid),
		PaidAt:     &paidAt,
		Raw:        map[string]any{"pix_id": "PIX123", "status": "CONFIRMED"},
	}

	fresh, err := svc.ApplyWebhook(context.Background(), pix, data)
	require.NoError(t, err)
	assert.Equal(t, status.PixPaid, fresh.Status)
	require.NotNil(t, fresh.PaidAt)
	assert.NotEmpty(t, fresh.WebhookPayload)

	// Re-applying the same event changes nothing observable.
	again, err := svc.ApplyWebhook(context.Background(), pix, data)
	require.NoError(t, err)
	assert.Equal(t, status.PixPaid, again.Status)
}

func TestListPixByAccountDefaultLimit(t *testing.T) {
	store := repository.NewMemoryStore()
	account := testAccount(t, store)
	svc := services.NewPixService(store, &stubFactory{gw: &createGateway{}}, &recordEnqueuer{})

	for i := 0; i < 12; i++ {
		pix := &models.PixTransaction{
			AccountID:     account.ID,
			SubacquirerID: *account.SubacquirerID,
			Amount:        decimal.RequireFromString("1.00"),
			Status:        status.PixPending,
		}
		require.NoError(t, store.CreatePix(context.Background(), pix))
	}

	records, err := svc.ListByAccount(context.Background(), account.ID, 0)
	require.NoError(t, err)
	assert.Len(t, records, 10)
}
