package models

// TimeEntry is one row of the append-only attendance ledger: a single
// check-in or check-out for a person on a given date within a tenant.
// Entries for a (tenant, reg_id, date) key alternate strictly starting
// with check_in at sequence 1. Rows are never mutated once written.
//
// Person attributes are denormalized at write time so the ledger stays
// stable for audit even if the employee record later changes or is
// deleted. The unique index acts as a second line of defense against
// races that slip past the in-process per-key lock.
type TimeEntry struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionCodeID  uint   `gorm:"not null;index:idx_entry_day;uniqueIndex:uix_entry_slot" json:"session_code_id"`
	RegID          string `gorm:"not null;index:idx_entry_day;uniqueIndex:uix_entry_slot" json:"reg_id"`
	Date           string `gorm:"not null;index:idx_entry_day;uniqueIndex:uix_entry_slot" json:"date"` // YYYY-MM-DD
	EntryType      string `gorm:"not null;uniqueIndex:uix_entry_slot" json:"entry_type"`               // check_in | check_out
	SequenceNumber int    `gorm:"not null;uniqueIndex:uix_entry_slot" json:"sequence_number"`
	Timestamp      int64  `gorm:"not null" json:"timestamp"` // Unix timestamp of the detection

	// person snapshot at write time
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Occupation  string  `json:"occupation"`
	RegularWage float64 `json:"regular_wage"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (TimeEntry) TableName() string {
	return "time_entries"
}
