package database

import (
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
)

// LegacyFilter is the explicit allow-list of filterable attendance
// fields. Query parameters outside this struct never reach the SQL
// layer; there is deliberately no generic column-name expansion.
type LegacyFilter struct {
	RegID       string
	FirstName   string
	LastName    string
	Occupation  string
	RegularWage *float64
	StartDate   string // YYYY-MM-DD, inclusive
	EndDate     string // YYYY-MM-DD, inclusive
	Date        string // exact date; ignored when a range is set
}

// QueryLegacyAttendance runs an allow-listed filter query over the
// legacy attendance table, always scoped by tenant, ordered by reg_id
func QueryLegacyAttendance(db Querier, sessionCodeID int64, filter LegacyFilter) ([]LegacyAttendance, error) {
	queryBuilder := psql.Select("id", "session_code_id", "reg_id", "date", "start_time", "end_time",
		"first_name", "last_name", "occupation", "regular_wage").
		From("attendance").
		Where(sq.Eq{"session_code_id": sessionCodeID}).
		OrderBy("reg_id ASC", "date ASC")

	if filter.RegID != "" {
		queryBuilder = queryBuilder.Where(sq.Like{"reg_id": "%" + filter.RegID + "%"})
	}
	if filter.FirstName != "" {
		queryBuilder = queryBuilder.Where(sq.Like{"first_name": "%" + filter.FirstName + "%"})
	}
	if filter.LastName != "" {
		queryBuilder = queryBuilder.Where(sq.Like{"last_name": "%" + filter.LastName + "%"})
	}
	if filter.Occupation != "" {
		queryBuilder = queryBuilder.Where(sq.Like{"occupation": "%" + filter.Occupation + "%"})
	}
	if filter.RegularWage != nil {
		queryBuilder = queryBuilder.Where(sq.Eq{"regular_wage": *filter.RegularWage})
	}
	if filter.StartDate != "" && filter.EndDate != "" {
		queryBuilder = queryBuilder.Where(sq.GtOrEq{"date": filter.StartDate}).
			Where(sq.LtOrEq{"date": filter.EndDate})
	} else if filter.Date != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"date": filter.Date})
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for QueryLegacyAttendance: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute QueryLegacyAttendance: %w", err)
	}
	defer rows.Close()

	records := []LegacyAttendance{}
	for rows.Next() {
		att, err := scanLegacyRow(rows)
		if err != nil {
			log.Printf("Error scanning filtered legacy attendance row: %v", err)
			continue
		}
		records = append(records, att)
	}
	if err = rows.Err(); err != nil {
		return records, fmt.Errorf("error iterating filtered legacy attendance rows: %w", err)
	}
	return records, nil
}

// RegIDsOnDate returns the distinct reg IDs present in the legacy table
// for one tenant and date
func RegIDsOnDate(db Querier, sessionCodeID int64, date string) ([]string, error) {
	queryBuilder := psql.Select("DISTINCT reg_id").
		From("attendance").
		Where(sq.Eq{"session_code_id": sessionCodeID, "date": date}).
		OrderBy("reg_id ASC")
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for RegIDsOnDate: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute RegIDsOnDate query: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return ids, fmt.Errorf("failed to scan reg_id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
