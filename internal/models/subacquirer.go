package models

// Subacquirer is an external payment provider profile. Each account is
// assigned exactly one subacquirer; transactions keep a reference to the
// profile they were created against.
type Subacquirer struct {
	BaseModel
	Name        string `json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	BaseURL     string `gorm:"column:base_url" json:"base_url"`
	Credentials []byte `gorm:"type:jsonb" json:"-"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}
