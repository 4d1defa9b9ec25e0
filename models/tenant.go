package models

// Tenant represents an isolated business/organization context identified
// by a session code. Every other entity is scoped to one tenant.
// It corresponds to the 'session_codes' table.
type Tenant struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string `gorm:"uniqueIndex;not null" json:"code"`
	BusinessName string `gorm:"not null" json:"business_name"`
	CreatedAt    int64  `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Tenant) TableName() string {
	return "session_codes"
}
