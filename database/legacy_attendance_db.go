package database

import (
	"database/sql"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
)

// LegacyAttendance is one row of the legacy single-pair-per-day summary
// table: first detection of the day in StartTime, most recent detection
// in EndTime. Times are stored as HH:MM:SS strings, dates as
// YYYY-MM-DD, matching the historical schema.
type LegacyAttendance struct {
	ID            int64   `json:"id"`
	SessionCodeID int64   `json:"session_code_id"`
	RegID         string  `json:"reg_id"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Occupation    string  `json:"occupation"`
	RegularWage   float64 `json:"regular_wage"`
}

// GetLegacyAttendance retrieves the legacy row for one (tenant, reg_id, date)
func GetLegacyAttendance(db Querier, sessionCodeID int64, regID, date string) (LegacyAttendance, error) {
	queryBuilder := psql.Select("id", "session_code_id", "reg_id", "date", "start_time", "end_time",
		"first_name", "last_name", "occupation", "regular_wage").
		From("attendance").
		Where(sq.Eq{"session_code_id": sessionCodeID, "reg_id": regID, "date": date}).
		Limit(1)
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return LegacyAttendance{}, fmt.Errorf("failed to build SQL for GetLegacyAttendance: %w", err)
	}
	row := db.QueryRow(sqlStr, args...)
	att, err := scanLegacyRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return LegacyAttendance{}, sql.ErrNoRows
		}
		return LegacyAttendance{}, fmt.Errorf("GetLegacyAttendance failed for %s on %s: %w", regID, date, err)
	}
	return att, nil
}

// RecordLegacySighting applies the legacy first-seen/last-seen
// semantics: insert start_time = end_time = timeOfDay on the first
// detection of the day, otherwise only advance end_time
func RecordLegacySighting(db Querier, sessionCodeID int64, regID, date, timeOfDay,
	firstName, lastName, occupation string, regularWage float64) error {

	queryBuilder := psql.Insert("attendance").
		Columns("session_code_id", "reg_id", "date", "start_time", "end_time",
			"first_name", "last_name", "occupation", "regular_wage").
		Values(sessionCodeID, regID, date, timeOfDay, timeOfDay, firstName, lastName, occupation, regularWage).
		Suffix("ON CONFLICT(session_code_id, reg_id, date) DO UPDATE SET").
		Suffix("end_time = excluded.end_time")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for RecordLegacySighting: %w", err)
	}

	_, err = db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to record legacy sighting for %s on %s: %w", regID, date, err)
	}
	return nil
}

// ListLegacyByTenantDate returns all legacy rows for a tenant on one
// date, ordered by reg_id
func ListLegacyByTenantDate(db Querier, sessionCodeID int64, date string) ([]LegacyAttendance, error) {
	queryBuilder := psql.Select("id", "session_code_id", "reg_id", "date", "start_time", "end_time",
		"first_name", "last_name", "occupation", "regular_wage").
		From("attendance").
		Where(sq.Eq{"session_code_id": sessionCodeID, "date": date}).
		OrderBy("reg_id ASC")
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListLegacyByTenantDate: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListLegacyByTenantDate query for %s: %w", date, err)
	}
	defer rows.Close()
	records := []LegacyAttendance{}
	for rows.Next() {
		att, err := scanLegacyRow(rows)
		if err != nil {
			log.Printf("Error scanning legacy attendance row for date %s: %v", date, err)
			continue
		}
		records = append(records, att)
	}
	if err = rows.Err(); err != nil {
		return records, fmt.Errorf("error iterating legacy attendance rows for %s: %w", date, err)
	}
	return records, nil
}

// ListLegacyByEmployee returns every legacy row for one employee,
// newest date first
func ListLegacyByEmployee(db Querier, sessionCodeID int64, regID string) ([]LegacyAttendance, error) {
	queryBuilder := psql.Select("id", "session_code_id", "reg_id", "date", "start_time", "end_time",
		"first_name", "last_name", "occupation", "regular_wage").
		From("attendance").
		Where(sq.Eq{"session_code_id": sessionCodeID, "reg_id": regID}).
		OrderBy("date DESC")
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListLegacyByEmployee: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListLegacyByEmployee query for %s: %w", regID, err)
	}
	defer rows.Close()
	records := []LegacyAttendance{}
	for rows.Next() {
		att, err := scanLegacyRow(rows)
		if err != nil {
			log.Printf("Error scanning legacy attendance row for %s: %v", regID, err)
			continue
		}
		records = append(records, att)
	}
	if err = rows.Err(); err != nil {
		return records, fmt.Errorf("error iterating legacy attendance rows for %s: %w", regID, err)
	}
	return records, nil
}

func scanLegacyRow(scanner interface {
	Scan(dest ...interface{}) error
}) (LegacyAttendance, error) {
	var a LegacyAttendance
	var firstName, lastName, occupation sql.NullString
	var wage sql.NullFloat64
	err := scanner.Scan(
		&a.ID, &a.SessionCodeID, &a.RegID, &a.Date, &a.StartTime, &a.EndTime,
		&firstName, &lastName, &occupation, &wage,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return LegacyAttendance{}, sql.ErrNoRows
		}
		return LegacyAttendance{}, fmt.Errorf("failed to scan legacy attendance row: %w", err)
	}
	a.FirstName = firstName.String
	a.LastName = lastName.String
	a.Occupation = occupation.String
	a.RegularWage = wage.Float64
	return a, nil
}
