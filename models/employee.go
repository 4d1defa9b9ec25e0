package models

import "strings"

// Employee represents a recognizable individual within one tenant.
// RegID is stored upper-cased so the (tenant, reg_id) uniqueness
// constraint is effectively case-insensitive.
// It corresponds to the 'employees' table.
type Employee struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionCodeID uint   `gorm:"not null;uniqueIndex:uix_employee_reg" json:"session_code_id"`
	RegID         string `gorm:"not null;uniqueIndex:uix_employee_reg" json:"reg_id"`
	FirstName     string `gorm:"not null" json:"first_name"`
	LastName      string `gorm:"not null" json:"last_name"`
	Occupation    string `json:"occupation"`

	// payroll-adjacent attributes captured on the attendance snapshot
	RegularWage          float64 `json:"regular_wage"`
	OvertimeWage         float64 `json:"overtime_wage"`
	RegularHours         int     `json:"regular_hours"`
	MaximumOvertimeHours *int    `json:"maximum_overtime_hours,omitempty"`

	// relative path of the enrollment portrait within the media store;
	// the face encoding itself is derived from it, not stored here
	PhotoPath *string `json:"photo_path,omitempty"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Employee) TableName() string {
	return "employees"
}

// NormalizeRegID canonicalizes a registration ID for storage and lookup.
func NormalizeRegID(regID string) string {
	return strings.ToUpper(strings.TrimSpace(regID))
}
