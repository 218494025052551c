package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pixgate/internal/events"
	"github.com/example/pixgate/internal/gateway"
	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/repository"
	"github.com/example/pixgate/internal/services"
	"github.com/example/pixgate/internal/status"
)

// stubScheduler records scheduled tasks so tests can drive time by hand.
type stubScheduler struct {
	entries []scheduledTask
}

type scheduledTask struct {
	delay time.Duration
	task  func()
}

func (s *stubScheduler) Schedule(delay time.Duration, task func()) {
	s.entries = append(s.entries, scheduledTask{delay: delay, task: task})
}

func (s *stubScheduler) runNext(t *testing.T) time.Duration {
	t.Helper()
	require.NotEmpty(t, s.entries, "expected a scheduled task")
	next := s.entries[0]
	s.entries = s.entries[1:]
	next.task()
	return next.delay
}

type recordingDispatcher struct {
	events []any
}

func (d *recordingDispatcher) Dispatch(event any) {
	d.events = append(d.events, event)
}

// scriptGateway lets each test script the parse outcome while the
// generate side stays provider-shaped.
type scriptGateway struct {
	pixParseErr      error
	withdrawParseErr error
	pixStatus        string
	withdrawStatus   string
}

func (g *scriptGateway) Identifier() string { return "script" }

func (g *scriptGateway) CreatePix(req gateway.PixRequest) (*gateway.PixResponse, error) {
	return nil, errors.New("not used")
}

func (g *scriptGateway) CreateWithdraw(req gateway.WithdrawRequest) (*gateway.WithdrawResponse, error) {
	return nil, errors.New("not used")
}

func (g *scriptGateway) ParsePixWebhook(payload map[string]any) (*gateway.WebhookData, error) {
	if g.pixParseErr != nil {
		return nil, g.pixParseErr
	}
	st := g.pixStatus
	if st == "" {
		st = string(status.PixPaid)
	}
	paidAt := time.Now()
	return &gateway.WebhookData{
		ExternalID: payload["pix_id"].(string),
		Status:     st,
		PaidAt:     &paidAt,
		Raw:        payload,
	}, nil
}

func (g *scriptGateway) ParseWithdrawWebhook(payload map[string]any) (*gateway.WebhookData, error) {
	if g.withdrawParseErr != nil {
		return nil, g.withdrawParseErr
	}
	st := g.withdrawStatus
	if st == "" {
		st = string(status.WithdrawSuccess)
	}
	completedAt := time.Now()
	return &gateway.WebhookData{
		ExternalID:  payload["withdraw_id"].(string),
		Status:      st,
		CompletedAt: &completedAt,
		Raw:         payload,
	}, nil
}

func (g *scriptGateway) GeneratePixWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return map[string]any{"pix_id": externalID, "status": "CONFIRMED", "amount": amount}
}

func (g *scriptGateway) GenerateWithdrawWebhook(externalID string, amount decimal.Decimal) map[string]any {
	return map[string]any{"withdraw_id": externalID, "status": "SUCCESS", "amount": amount}
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

type workerFixture struct {
	store      *repository.MemoryStore
	scheduler  *stubScheduler
	dispatcher *recordingDispatcher
	gateway    *scriptGateway
	worker     *WebhookWorker
	pix        *models.PixTransaction
	withdrawal *models.Withdrawal
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	store := repository.NewMemoryStore()
	ctx := context.Background()

	sub := &models.Subacquirer{Name: "Mock Provider", Slug: "mock", IsActive: true}
	require.NoError(t, store.CreateSubacquirer(ctx, sub))

	pix := &models.PixTransaction{
		AccountID:     uuid.New(),
		SubacquirerID: sub.ID,
		ExternalID:    "PIX_abc123",
		Amount:        decimal.RequireFromString("100.50"),
		Status:        status.PixPending,
	}
	require.NoError(t, store.CreatePix(ctx, pix))

	withdrawal := &models.Withdrawal{
		AccountID:     uuid.New(),
		SubacquirerID: sub.ID,
		ExternalID:    "WD_abc123",
		Amount:        decimal.RequireFromString("50.00"),
		Status:        status.WithdrawPending,
		PixKey:        "12345678901",
		PixKeyType:    "cpf",
	}
	require.NoError(t, store.CreateWithdrawal(ctx, withdrawal))

	f := &workerFixture{
		store:      store,
		scheduler:  &stubScheduler{},
		dispatcher: &recordingDispatcher{},
		gateway:    &scriptGateway{},
	}
	f.worker = NewWebhookWorker(store, &stubFactory{gw: f.gateway}, f.scheduler, f.dispatcher, 3, 5*time.Second)

	pixSvc := services.NewPixService(store, &stubFactory{gw: f.gateway}, f.worker)
	withdrawSvc := services.NewWithdrawService(store, &stubFactory{gw: f.gateway}, f.worker)
	f.worker.Bind(pixSvc, withdrawSvc)

	f.pix = pix
	f.withdrawal = withdrawal
	return f
}

func TestWebhookWorkerConfirmsPix(t *testing.T) {
	f := newWorkerFixture(t)

	f.worker.EnqueuePix(f.pix.ID, 2*time.Second)
	delay := f.scheduler.runNext(t)
	assert.Equal(t, 2*time.Second, delay)

	fresh, err := f.store.FindPix(context.Background(), f.pix.ID)
	require.NoError(t, err)
	assert.Equal(t, status.PixPaid, fresh.Status)
	assert.NotNil(t, fresh.PaidAt)
	assert.NotEmpty(t, fresh.WebhookPayload)

	require.Len(t, f.dispatcher.events, 1)
	confirmed, ok := f.dispatcher.events[0].(events.PixConfirmed)
	require.True(t, ok)
	assert.Equal(t, f.pix.ID, confirmed.Pix.ID)
	assert.Empty(t, f.scheduler.entries)

	// A redelivery after finalization is a silent no-op.
	f.worker.EnqueuePix(f.pix.ID, 0)
	f.scheduler.runNext(t)
	assert.Len(t, f.dispatcher.events, 1)
	assert.Empty(t, f.scheduler.entries)
}

func TestWebhookWorkerCompletesWithdraw(t *testing.T) {
	f := newWorkerFixture(t)

	f.worker.EnqueueWithdraw(f.withdrawal.ID, time.Second)
	f.scheduler.runNext(t)

	fresh, err := f.store.FindWithdrawal(context.Background(), f.withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, status.WithdrawSuccess, fresh.Status)
	assert.NotNil(t, fresh.CompletedAt)

	require.Len(t, f.dispatcher.events, 1)
	completed, ok := f.dispatcher.events[0].(events.WithdrawCompleted)
	require.True(t, ok)
	assert.Equal(t, f.withdrawal.ID, completed.Withdrawal.ID)
}

func TestWebhookWorkerRateLimitReschedules(t *testing.T) {
	f := newWorkerFixture(t)
	f.gateway.pixParseErr = &gateway.Error{
		Kind:       gateway.KindRateLimit,
		Gateway:    "script",
		Message:    "too many requests",
		RetryAfter: 45,
	}

	f.worker.EnqueuePix(f.pix.ID, 0)
	f.scheduler.runNext(t)

	// Rate limits do not consume the attempt budget: keep hitting the
	// limit past the ordinary retry count and the worker keeps waiting.
	for i := 0; i < 5; i++ {
		delay := f.scheduler.runNext(t)
		assert.Equal(t, 45*time.Second, delay)
	}

	fresh, err := f.store.FindPix(context.Background(), f.pix.ID)
	require.NoError(t, err)
	assert.Equal(t, status.PixPending, fresh.Status)
	assert.Empty(t, f.dispatcher.events)
}

func TestWebhookWorkerRateLimitDefaultDelay(t *testing.T) {
	f := newWorkerFixture(t)
	f.gateway.pixParseErr = &gateway.Error{Kind: gateway.KindRateLimit, Gateway: "script", Message: "too many requests"}

	f.worker.EnqueuePix(f.pix.ID, 0)
	f.scheduler.runNext(t)

	delay := f.scheduler.runNext(t)
	assert.Equal(t, 60*time.Second, delay)
}

func TestWebhookWorkerInvalidPayloadFailsImmediately(t *testing.T) {
	f := newWorkerFixture(t)
	f.gateway.pixParseErr = &gateway.Error{Kind: gateway.KindInvalidPayload, Gateway: "script", Message: "missing pix_id"}

	f.worker.EnqueuePix(f.pix.ID, 0)
	f.scheduler.runNext(t)

	fresh, err := f.store.FindPix(context.Background(), f.pix.ID)
	require.NoError(t, err)
	assert.Equal(t, status.PixFailed, fresh.Status)
	assert.Empty(t, f.scheduler.entries, "invalid payloads must not retry")
	assert.Empty(t, f.dispatcher.events)
}

func TestWebhookWorkerRetriesThenFails(t *testing.T) {
	f := newWorkerFixture(t)
	f.gateway.withdrawParseErr = &gateway.Error{Kind: gateway.KindConnection, Gateway: "script", Message: "connection refused"}

	f.worker.EnqueueWithdraw(f.withdrawal.ID, 0)
	f.scheduler.runNext(t)

	// Two more attempts with the fixed backoff, then the budget is spent.
	for i := 0; i < 2; i++ {
		delay := f.scheduler.runNext(t)
		assert.Equal(t, 5*time.Second, delay)
	}

	fresh, err := f.store.FindWithdrawal(context.Background(), f.withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, status.WithdrawFailed, fresh.Status)
	assert.Empty(t, f.scheduler.entries)
	assert.Empty(t, f.dispatcher.events)
}

func TestWebhookWorkerRetriesNonGatewayErrors(t *testing.T) {
	f := newWorkerFixture(t)
	f.gateway.pixParseErr = errors.New("boom")

	f.worker.EnqueuePix(f.pix.ID, 0)
	f.scheduler.runNext(t)

	delay := f.scheduler.runNext(t)
	assert.Equal(t, 5*time.Second, delay)
	f.scheduler.runNext(t)

	fresh, err := f.store.FindPix(context.Background(), f.pix.ID)
	require.NoError(t, err)
	assert.Equal(t, status.PixFailed, fresh.Status)
	assert.Empty(t, f.scheduler.entries)
}

func TestWebhookWorkerSkipsFinalTransaction(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.UpdatePix(ctx, f.pix.ID, map[string]any{"status": status.PixCancelled}))

	f.worker.EnqueuePix(f.pix.ID, 0)
	f.scheduler.runNext(t)

	fresh, err := f.store.FindPix(ctx, f.pix.ID)
	require.NoError(t, err)
	assert.Equal(t, status.PixCancelled, fresh.Status)
	assert.Empty(t, fresh.WebhookPayload)
	assert.Empty(t, f.dispatcher.events)
	assert.Empty(t, f.scheduler.entries)
}

func TestWebhookWorkerLoadsSubacquirerWhenNotPreloaded(t *testing.T) {
	// MemoryStore never preloads the association, so this exercises the
	// FindSubacquirer fallback end to end.
	f := newWorkerFixture(t)

	f.worker.EnqueuePix(f.pix.ID, 0)
	f.scheduler.runNext(t)

	fresh, err := f.store.FindPix(context.Background(), f.pix.ID)
	require.NoError(t, err)
	assert.Equal(t, status.PixPaid, fresh.Status)
}

func TestWebhookWorkerMissingRecordRetries(t *testing.T) {
	f := newWorkerFixture(t)

	f.worker.EnqueuePix(uuid.New(), 0)
	f.scheduler.runNext(t)

	delay := f.scheduler.runNext(t)
	assert.Equal(t, 5*time.Second, delay)
}
