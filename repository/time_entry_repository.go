package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/attendance"
	"github.com/facekiosk/attendancebackend/models"
)

// TimeEntryRepository handles database operations for the append-only
// attendance ledger. It implements attendance.LedgerSink for the
// recorder and reconciler, plus the listing queries used by handlers.
type TimeEntryRepository struct {
	DB *gorm.DB
}

// NewTimeEntryRepository creates a new instance of TimeEntryRepository
func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{DB: db}
}

// LatestEntry returns the most recent ledger entry for a key, or nil
// when the day's ledger is empty
func (r *TimeEntryRepository) LatestEntry(key attendance.Key) (*attendance.LedgerEntry, error) {
	var entry models.TimeEntry
	err := r.DB.Where("session_code_id = ? AND reg_id = ? AND date = ?",
		key.TenantID, key.RegID, key.Date).
		Order("timestamp DESC").Order("id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest entry for %s on %s: %w", key.RegID, key.Date, err)
	}
	le := toLedgerEntry(entry)
	return &le, nil
}

// HasEntry reports whether a row with this exact slot already exists
func (r *TimeEntryRepository) HasEntry(key attendance.Key, sequence int, action attendance.Action) (bool, error) {
	var count int64
	err := r.DB.Model(&models.TimeEntry{}).
		Where("session_code_id = ? AND reg_id = ? AND date = ? AND sequence_number = ? AND entry_type = ?",
			key.TenantID, key.RegID, key.Date, sequence, string(action)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check entry slot %s(%d) for %s: %w", action, sequence, key.RegID, err)
	}
	return count > 0, nil
}

// Append inserts a new ledger row; the uix_entry_slot unique index
// rejects duplicate slots written by another process
func (r *TimeEntryRepository) Append(key attendance.Key, action attendance.Action, sequence int,
	at time.Time, snapshot attendance.PersonSnapshot) error {

	entry := models.TimeEntry{
		SessionCodeID:  key.TenantID,
		RegID:          key.RegID,
		Date:           key.Date,
		EntryType:      string(action),
		SequenceNumber: sequence,
		Timestamp:      at.Unix(),
		FirstName:      snapshot.FirstName,
		LastName:       snapshot.LastName,
		Occupation:     snapshot.Occupation,
		RegularWage:    snapshot.RegularWage,
		CreatedAt:      time.Now().Unix(),
	}
	if err := r.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append %s(%d) for %s on %s: %w", action, sequence, key.RegID, key.Date, err)
	}
	return nil
}

// EntriesForDay returns all ledger entries for a key ordered by timestamp
func (r *TimeEntryRepository) EntriesForDay(key attendance.Key) ([]attendance.LedgerEntry, error) {
	var rows []models.TimeEntry
	err := r.DB.Where("session_code_id = ? AND reg_id = ? AND date = ?",
		key.TenantID, key.RegID, key.Date).
		Order("timestamp ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for %s on %s: %w", key.RegID, key.Date, err)
	}
	entries := make([]attendance.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toLedgerEntry(row))
	}
	return entries, nil
}

// RegIDsForDay returns the distinct reg IDs with ledger activity on a date
func (r *TimeEntryRepository) RegIDsForDay(tenantID uint, date string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&models.TimeEntry{}).
		Where("session_code_id = ? AND date = ?", tenantID, date).
		Distinct().
		Order("reg_id ASC").
		Pluck("reg_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger reg IDs for %s: %w", date, err)
	}
	return ids, nil
}

// ListByTenantDate returns the full ledger rows for a tenant and date,
// ordered by reg ID then timestamp
func (r *TimeEntryRepository) ListByTenantDate(sessionCodeID uint, date string) ([]models.TimeEntry, error) {
	var rows []models.TimeEntry
	err := r.DB.Where("session_code_id = ? AND date = ?", sessionCodeID, date).
		Order("reg_id ASC").Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries for %s: %w", date, err)
	}
	return rows, nil
}

// ListByEmployee returns one employee's full ledger history, newest day first
func (r *TimeEntryRepository) ListByEmployee(sessionCodeID uint, regID string) ([]models.TimeEntry, error) {
	var rows []models.TimeEntry
	err := r.DB.Where("session_code_id = ? AND reg_id = ?", sessionCodeID, models.NormalizeRegID(regID)).
		Order("date DESC").Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries for %s: %w", regID, err)
	}
	return rows, nil
}

func toLedgerEntry(row models.TimeEntry) attendance.LedgerEntry {
	return attendance.LedgerEntry{
		EntryType: attendance.Action(row.EntryType),
		Sequence:  row.SequenceNumber,
		Timestamp: time.Unix(row.Timestamp, 0),
	}
}
