package models

import (
	"github.com/google/uuid"
)

// Account represents an authenticated API client that creates PIX
// payments and withdrawals.
type Account struct {
	BaseModel
	Name          string       `json:"name"`
	Email         string       `gorm:"uniqueIndex" json:"email"`
	PasswordHash  string       `json:"-"`
	SubacquirerID *uuid.UUID   `gorm:"type:uuid;index" json:"subacquirer_id"`
	Subacquirer   *Subacquirer `json:"subacquirer,omitempty"`
}
