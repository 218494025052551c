package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/pixgate/internal/models"
	"github.com/example/pixgate/internal/services"
)

// GormStore implements services.Store on top of GORM/Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomically runs fn inside one database transaction; every store call
// made through the handed Store commits or rolls back together.
func (s *GormStore) Atomically(ctx context.Context, fn func(services.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateAccount(ctx context.Context, account *models.Account) error {
	return s.db.WithContext(ctx).Create(account).Error
}

func (s *GormStore) FindAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Preload("Subacquirer").First(&account, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Preload("Subacquirer").Where("email = ?", email).First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) CreateSubacquirer(ctx context.Context, sub *models.Subacquirer) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

func (s *GormStore) FindSubacquirer(ctx context.Context, id uuid.UUID) (*models.Subacquirer, error) {
	var sub models.Subacquirer
	err := s.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (s *GormStore) FindSubacquirerBySlug(ctx context.Context, slug string) (*models.Subacquirer, error) {
	var sub models.Subacquirer
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&sub).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (s *GormStore) CreatePix(ctx context.Context, pix *models.PixTransaction) error {
	return s.db.WithContext(ctx).Create(pix).Error
}

func (s *GormStore) UpdatePix(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.PixTransaction{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (s *GormStore) FindPix(ctx context.Context, id uuid.UUID) (*models.PixTransaction, error) {
	var pix models.PixTransaction
	err := s.db.WithContext(ctx).Preload("Subacquirer").First(&pix, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pix, nil
}

func (s *GormStore) ListPixByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.PixTransaction, error) {
	var transactions []models.PixTransaction
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at desc").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

func (s *GormStore) CreateWithdrawal(ctx context.Context, withdrawal *models.Withdrawal) error {
	return s.db.WithContext(ctx).Create(withdrawal).Error
}

func (s *GormStore) UpdateWithdrawal(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (s *GormStore) FindWithdrawal(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := s.db.WithContext(ctx).Preload("Subacquirer").First(&withdrawal, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &withdrawal, nil
}

func (s *GormStore) ListWithdrawalsByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at desc").
		Limit(limit).
		Find(&withdrawals).Error
	return withdrawals, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}
