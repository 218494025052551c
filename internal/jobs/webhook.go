package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/pixgate/internal/events"
	"github.com/example/pixgate/internal/gateway"
	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/services"
	"github.com/example/pixgate/internal/status"
)

const (
	// DefaultTries is the total attempt budget for retryable failures.
	DefaultTries = 3
	// DefaultBackoff separates ordinary retries.
	DefaultBackoff = 5 * time.Second
	// defaultRetryAfter applies when a rate-limited provider does not
	// say how long to wait.
	defaultRetryAfter = 60 * time.Second
)

// PixApplier applies a normalized webhook to a PIX transaction.
type PixApplier interface {
	ApplyWebhook(ctx context.Context, pix *models.PixTransaction, data *gateway.WebhookData) (*models.PixTransaction, error)
}

// WithdrawApplier applies a normalized webhook to a withdrawal.
type WithdrawApplier interface {
	ApplyWebhook(ctx context.Context, withdrawal *models.Withdrawal, data *gateway.WebhookData) (*models.Withdrawal, error)
}

// WebhookWorker simulates the provider's asynchronous confirmation: it
// synthesizes a webhook for a transaction, parses it through the same
// gateway and applies the result. One worker run handles one transaction;
// rescheduling goes back through the Scheduler boundary.
//
// Retry policy: rate limits reschedule after the provider-supplied delay
// without consuming the attempt budget; invalid payloads fail the
// transaction immediately; everything else retries up to the budget with
// a fixed backoff, then fails the transaction permanently.
type WebhookWorker struct {
	store     services.Store
	factory   gateway.Factory
	scheduler Scheduler
	events    events.Dispatcher

	pix      PixApplier
	withdraw WithdrawApplier

	tries   int
	backoff time.Duration
}

// NewWebhookWorker constructs a worker. Bind must be called with the
// orchestrators before any webhook is enqueued.
func NewWebhookWorker(store services.Store, factory gateway.Factory, scheduler Scheduler, dispatcher events.Dispatcher, tries int, backoff time.Duration) *WebhookWorker {
	if tries <= 0 {
		tries = DefaultTries
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &WebhookWorker{
		store:     store,
		factory:   factory,
		scheduler: scheduler,
		events:    dispatcher,
		tries:     tries,
		backoff:   backoff,
	}
}

// Bind wires the orchestrators in. Split from the constructor because
// the services themselves need the worker as their enqueuer.
func (w *WebhookWorker) Bind(pix PixApplier, withdraw WithdrawApplier) {
	w.pix = pix
	w.withdraw = withdraw
}

// EnqueuePix schedules the simulated PIX confirmation webhook.
func (w *WebhookWorker) EnqueuePix(id uuid.UUID, delay time.Duration) {
	w.scheduler.Schedule(delay, func() { w.runPix(id, 1) })
}

// EnqueueWithdraw schedules the simulated withdrawal completion webhook.
func (w *WebhookWorker) EnqueueWithdraw(id uuid.UUID, delay time.Duration) {
	w.scheduler.Schedule(delay, func() { w.runWithdraw(id, 1) })
}

func (w *WebhookWorker) runPix(id uuid.UUID, attempt int) {
	if err := w.handlePix(id); err != nil {
		w.retry(id, attempt, err, w.runPix, w.failPix)
	}
}

func (w *WebhookWorker) runWithdraw(id uuid.UUID, attempt int) {
	if err := w.handleWithdraw(id); err != nil {
		w.retry(id, attempt, err, w.runWithdraw, w.failWithdraw)
	}
}

func (w *WebhookWorker) handlePix(id uuid.UUID) error {
	ctx := context.Background()

	pix, err := w.store.FindPix(ctx, id)
	if err != nil {
		return err
	}

	// Re-read state decides: a redelivery after finalization is a
	// silent no-op.
	if pix.IsFinal() {
		log.Printf("[webhook] pix already final, skipping: id=%s status=%s", pix.ID, pix.Status)
		return nil
	}

	gw, err := w.gatewayFor(ctx, pix.Subacquirer, pix.SubacquirerID)
	if err != nil {
		return err
	}

	payload := gw.GeneratePixWebhook(pix.ExternalID, pix.Amount)

	data, err := gw.ParsePixWebhook(payload)
	if err != nil {
		return err
	}

	fresh, err := w.pix.ApplyWebhook(ctx, pix, data)
	if err != nil {
		return err
	}

	if fresh.IsPaid() {
		w.events.Dispatch(events.PixConfirmed{Pix: fresh})
	}

	log.Printf("[webhook] pix reconciled: id=%s external_id=%s status=%s", fresh.ID, fresh.ExternalID, fresh.Status)
	return nil
}

func (w *WebhookWorker) handleWithdraw(id uuid.UUID) error {
	ctx := context.Background()

	withdrawal, err := w.store.FindWithdrawal(ctx, id)
	if err != nil {
		return err
	}

	if withdrawal.IsFinal() {
		log.Printf("[webhook] withdrawal already final, skipping: id=%s status=%s", withdrawal.ID, withdrawal.Status)
		return nil
	}

	gw, err := w.gatewayFor(ctx, withdrawal.Subacquirer, withdrawal.SubacquirerID)
	if err != nil {
		return err
	}

	payload := gw.GenerateWithdrawWebhook(withdrawal.ExternalID, withdrawal.Amount)

	data, err := gw.ParseWithdrawWebhook(payload)
	if err != nil {
		return err
	}

	fresh, err := w.withdraw.ApplyWebhook(ctx, withdrawal, data)
	if err != nil {
		return err
	}

	if fresh.IsCompleted() {
		w.events.Dispatch(events.WithdrawCompleted{Withdrawal: fresh})
	}

	log.Printf("[webhook] withdrawal reconciled: id=%s external_id=%s status=%s", fresh.ID, fresh.ExternalID, fresh.Status)
	return nil
}

// retry decides what a failed attempt means. Rate limits reschedule with
// the provider's delay and keep the attempt counter; invalid payloads
// fail immediately; everything else retries until the budget runs out.
func (w *WebhookWorker) retry(id uuid.UUID, attempt int, cause error, run func(uuid.UUID, int), fail func(uuid.UUID, error)) {
	if gerr, ok := gateway.AsError(cause); ok {
		switch gerr.Kind {
		case gateway.KindRateLimit:
			delay := defaultRetryAfter
			if gerr.RetryAfter > 0 {
				delay = time.Duration(gerr.RetryAfter) * time.Second
			}
			log.Printf("[webhook] rate limited, rescheduling: id=%s delay=%s", id, delay)
			w.scheduler.Schedule(delay, func() { run(id, attempt) })
			return
		case gateway.KindInvalidPayload:
			log.Printf("[webhook] invalid payload, not retrying: id=%s error=%v", id, cause)
			fail(id, cause)
			return
		}
	}

	if attempt < w.tries {
		log.Printf("[webhook] attempt %d/%d failed, retrying: id=%s error=%v", attempt, w.tries, id, cause)
		w.scheduler.Schedule(w.backoff, func() { run(id, attempt+1) })
		return
	}

	log.Printf("[webhook] retries exhausted: id=%s error=%v", id, cause)
	fail(id, cause)
}

func (w *WebhookWorker) failPix(id uuid.UUID, cause error) {
	if err := w.store.UpdatePix(context.Background(), id, map[string]any{"status": status.PixFailed}); err != nil {
		log.Printf("[webhook] failed to mark pix failed: id=%s error=%v", id, err)
		return
	}
	log.Printf("[webhook] pix failed permanently: id=%s cause=%v", id, cause)
}

func (w *WebhookWorker) failWithdraw(id uuid.UUID, cause error) {
	if err := w.store.UpdateWithdrawal(context.Background(), id, map[string]any{"status": status.WithdrawFailed}); err != nil {
		log.Printf("[webhook] failed to mark withdrawal failed: id=%s error=%v", id, err)
		return
	}
	log.Printf("[webhook] withdrawal failed permanently: id=%s cause=%v", id, cause)
}

func (w *WebhookWorker) gatewayFor(ctx context.Context, sub *models.Subacquirer, subID uuid.UUID) (gateway.Gateway, error) {
	if sub == nil {
		loaded, err := w.store.FindSubacquirer(ctx, subID)
		if err != nil {
			return nil, err
		}
		sub = loaded
	}
	return w.factory.Make(sub)
}
