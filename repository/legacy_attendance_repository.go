package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/facekiosk/attendancebackend/attendance"
	"github.com/facekiosk/attendancebackend/database"
	"github.com/facekiosk/attendancebackend/models"
)

// LegacyAttendanceRepository wraps the raw-SQL legacy attendance store.
// It implements attendance.LegacySink so the recorder can dual-write
// and the reconciler can read the projection's bounds.
type LegacyAttendanceRepository struct {
	DB *sql.DB
}

// NewLegacyAttendanceRepository creates a new instance of LegacyAttendanceRepository
func NewLegacyAttendanceRepository(db *sql.DB) *LegacyAttendanceRepository {
	return &LegacyAttendanceRepository{DB: db}
}

// RecordSighting applies the legacy first-seen/last-seen semantics for
// one detection
func (r *LegacyAttendanceRepository) RecordSighting(key attendance.Key, at time.Time,
	snapshot attendance.PersonSnapshot) error {

	return database.RecordLegacySighting(r.DB, int64(key.TenantID), key.RegID, key.Date,
		at.Format(attendance.TimeOfDayLayout),
		snapshot.FirstName, snapshot.LastName, snapshot.Occupation, snapshot.RegularWage)
}

// DayBounds returns the legacy start/end pair for a key, or nil when no
// row exists for that day
func (r *LegacyAttendanceRepository) DayBounds(key attendance.Key) (*attendance.DayBounds, error) {
	row, err := database.GetLegacyAttendance(r.DB, int64(key.TenantID), key.RegID, key.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	start, err := parseLegacyTime(row.Date, row.StartTime)
	if err != nil {
		return nil, fmt.Errorf("bad legacy start_time for %s on %s: %w", key.RegID, key.Date, err)
	}
	end, err := parseLegacyTime(row.Date, row.EndTime)
	if err != nil {
		return nil, fmt.Errorf("bad legacy end_time for %s on %s: %w", key.RegID, key.Date, err)
	}
	return &attendance.DayBounds{Start: start, End: end}, nil
}

// RegIDsForDay returns the distinct reg IDs present on a date
func (r *LegacyAttendanceRepository) RegIDsForDay(tenantID uint, date string) ([]string, error) {
	return database.RegIDsOnDate(r.DB, int64(tenantID), date)
}

// ListByTenantDate returns all legacy rows for a tenant and date
func (r *LegacyAttendanceRepository) ListByTenantDate(sessionCodeID uint, date string) ([]database.LegacyAttendance, error) {
	return database.ListLegacyByTenantDate(r.DB, int64(sessionCodeID), date)
}

// ListByEmployee returns one employee's legacy history
func (r *LegacyAttendanceRepository) ListByEmployee(sessionCodeID uint, regID string) ([]database.LegacyAttendance, error) {
	return database.ListLegacyByEmployee(r.DB, int64(sessionCodeID), models.NormalizeRegID(regID))
}

// Query runs an allow-listed filter query scoped by tenant
func (r *LegacyAttendanceRepository) Query(sessionCodeID uint, filter database.LegacyFilter) ([]database.LegacyAttendance, error) {
	return database.QueryLegacyAttendance(r.DB, int64(sessionCodeID), filter)
}

func parseLegacyTime(date, timeOfDay string) (time.Time, error) {
	return time.ParseInLocation(attendance.DateLayout+" "+attendance.TimeOfDayLayout,
		date+" "+timeOfDay, time.Local)
}
