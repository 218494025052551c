package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/services"
	"github.com/example/pixgate/internal/status"
)

// MemoryStore is an in-memory services.Store. It backs the test suites
// and DB-less local runs, the same way MockGateway stands in for a real
// provider. Single-row updates are serialized by one mutex; Atomically
// is a plain sequential block since there is no concurrent writer to a
// freshly inserted row.
type MemoryStore struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]*models.Account
	subacquirers map[uuid.UUID]*models.Subacquirer
	pix          map[uuid.UUID]*models.PixTransaction
	withdrawals  map[uuid.UUID]*models.Withdrawal
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[uuid.UUID]*models.Account),
		subacquirers: make(map[uuid.UUID]*models.Subacquirer),
		pix:          make(map[uuid.UUID]*models.PixTransaction),
		withdrawals:  make(map[uuid.UUID]*models.Withdrawal),
	}
}

func (s *MemoryStore) Atomically(ctx context.Context, fn func(services.Store) error) error {
	return fn(s)
}

func (s *MemoryStore) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&account.ID)
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	clone := *account
	s.accounts[account.ID] = &clone
	return nil
}

func (s *MemoryStore) FindAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	clone := *account
	return &clone, nil
}

func (s *MemoryStore) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *MemoryStore) CreateSubacquirer(ctx context.Context, sub *models.Subacquirer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&sub.ID)
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	clone := *sub
	s.subacquirers[sub.ID] = &clone
	return nil
}

func (s *MemoryStore) FindSubacquirer(ctx context.Context, id uuid.UUID) (*models.Subacquirer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subacquirers[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	clone := *sub
	return &clone, nil
}

func (s *MemoryStore) FindSubacquirerBySlug(ctx context.Context, slug string) (*models.Subacquirer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subacquirers {
		if sub.Slug == slug {
			clone := *sub
			return &clone, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *MemoryStore) CreatePix(ctx context.Context, pix *models.PixTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&pix.ID)
	pix.CreatedAt = time.Now()
	pix.UpdatedAt = pix.CreatedAt
	clone := *pix
	s.pix[pix.ID] = &clone
	return nil
}

func (s *MemoryStore) UpdatePix(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pix, ok := s.pix[id]
	if !ok {
		return services.ErrNotFound
	}

	for column, value := range fields {
		switch column {
		case "status":
			pix.Status = status.PixStatus(asString(value))
		case "external_id":
			pix.ExternalID = value.(string)
		case "qr_code":
			pix.QRCode = value.(string)
		case "qr_code_base64":
			pix.QRCodeBase64 = value.(string)
		case "request_payload":
			pix.RequestPayload = value.([]byte)
		case "response_payload":
			pix.ResponsePayload = value.([]byte)
		case "webhook_payload":
			pix.WebhookPayload = value.([]byte)
		case "paid_at":
			pix.PaidAt = asTime(value)
		case "expires_at":
			pix.ExpiresAt = asTime(value)
		}
	}
	pix.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) FindPix(ctx context.Context, id uuid.UUID) (*models.PixTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pix, ok := s.pix[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	clone := *pix
	return &clone, nil
}

func (s *MemoryStore) ListPixByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.PixTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.PixTransaction
	for _, pix := range s.pix {
		if pix.AccountID == accountID {
			out = append(out, *pix)
		}
	}
	sortByCreatedAtDesc(out, func(p models.PixTransaction) time.Time { return p.CreatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) CreateWithdrawal(ctx context.Context, withdrawal *models.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&withdrawal.ID)
	withdrawal.CreatedAt = time.Now()
	withdrawal.UpdatedAt = withdrawal.CreatedAt
	clone := *withdrawal
	s.withdrawals[withdrawal.ID] = &clone
	return nil
}

func (s *MemoryStore) UpdateWithdrawal(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	withdrawal, ok := s.withdrawals[id]
	if !ok {
		return services.ErrNotFound
	}

	for column, value := range fields {
		switch column {
		case "status":
			withdrawal.Status = status.WithdrawStatus(asString(value))
		case "external_id":
			withdrawal.ExternalID = value.(string)
		case "request_payload":
			withdrawal.RequestPayload = value.([]byte)
		case "response_payload":
			withdrawal.ResponsePayload = value.([]byte)
		case "webhook_payload":
			withdrawal.WebhookPayload = value.([]byte)
		case "completed_at":
			withdrawal.CompletedAt = asTime(value)
		}
	}
	withdrawal.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) FindWithdrawal(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	withdrawal, ok := s.withdrawals[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	clone := *withdrawal
	return &clone, nil
}

func (s *MemoryStore) ListWithdrawalsByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Withdrawal
	for _, withdrawal := range s.withdrawals {
		if withdrawal.AccountID == accountID {
			out = append(out, *withdrawal)
		}
	}
	sortByCreatedAtDesc(out, func(w models.Withdrawal) time.Time { return w.CreatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case status.PixStatus:
		return string(s)
	case status.WithdrawStatus:
		return string(s)
	}
	return ""
}

func asTime(v any) *time.Time {
	switch t := v.(type) {
	case *time.Time:
		return t
	case time.Time:
		return &t
	}
	return nil
}

func sortByCreatedAtDesc[T any](items []T, createdAt func(T) time.Time) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && createdAt(items[j]).After(createdAt(items[j-1])); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
