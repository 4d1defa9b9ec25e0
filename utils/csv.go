package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/facekiosk/attendancebackend/database"
)

// WriteLegacyCSV writes legacy attendance rows as CSV for payroll export
func WriteLegacyCSV(w io.Writer, rows []database.LegacyAttendance) error {
	cw := csv.NewWriter(w)

	header := []string{"reg_id", "date", "start_time", "end_time", "first_name", "last_name", "occupation", "regular_wage"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.RegID,
			row.Date,
			row.StartTime,
			row.EndTime,
			row.FirstName,
			row.LastName,
			row.Occupation,
			strconv.FormatFloat(row.RegularWage, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record for %s: %w", row.RegID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}
