package utils

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facekiosk/attendancebackend/database"
)

func TestWriteLegacyCSV(t *testing.T) {
	rows := []database.LegacyAttendance{
		{RegID: "EMP001", Date: "2024-03-01", StartTime: "09:00:00", EndTime: "17:00:00",
			FirstName: "Ana", LastName: "Ruiz", Occupation: "Barista", RegularWage: 15.5},
		{RegID: "EMP002", Date: "2024-03-01", StartTime: "10:30:00", EndTime: "18:45:12",
			FirstName: "Ben", LastName: "Cho", Occupation: "Cook", RegularWage: 18},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLegacyCSV(&buf, rows))

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	assert.Equal(t, []string{"reg_id", "date", "start_time", "end_time",
		"first_name", "last_name", "occupation", "regular_wage"}, parsed[0])
	assert.Equal(t, "EMP001", parsed[1][0])
	assert.Equal(t, "17:00:00", parsed[1][3])
	assert.Equal(t, "15.50", parsed[1][7])
}

func TestWriteLegacyCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLegacyCSV(&buf, nil))

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 1, "an empty export still carries the header row")
}
