package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/facekiosk/attendancebackend/attendance"
	"github.com/facekiosk/attendancebackend/database"
	"github.com/facekiosk/attendancebackend/models"
	"github.com/facekiosk/attendancebackend/repository"
	"github.com/facekiosk/attendancebackend/utils"
)

// legacyQueryParams is the allow-list of filter parameters accepted by
// the legacy query endpoints; anything else is rejected outright
var legacyQueryParams = map[string]bool{
	"reg_id":       true,
	"first_name":   true,
	"last_name":    true,
	"occupation":   true,
	"regular_wage": true,
	"date":         true,
	"start_date":   true,
	"end_date":     true,
}

type AttendanceHandler struct {
	Ledger        attendance.LedgerSink
	TimeEntryRepo repository.TimeEntryRepositoryInterface
	LegacyRepo    repository.LegacyAttendanceRepositoryInterface
	Reconciler    *attendance.Reconciler
	Recorder      *attendance.Recorder
}

func NewAttendanceHandler(ledger attendance.LedgerSink, timeEntryRepo repository.TimeEntryRepositoryInterface,
	legacyRepo repository.LegacyAttendanceRepositoryInterface,
	reconciler *attendance.Reconciler, recorder *attendance.Recorder) *AttendanceHandler {
	return &AttendanceHandler{
		Ledger:        ledger,
		TimeEntryRepo: timeEntryRepo,
		LegacyRepo:    legacyRepo,
		Reconciler:    reconciler,
		Recorder:      recorder,
	}
}

// DailySummary returns one employee's session pairs, total hours and
// status for a date
func (ah *AttendanceHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	regID, ok := scopedRegID(w, r, user)
	if !ok {
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	key := attendance.Key{TenantID: user.SessionCodeID, RegID: regID, Date: date}
	entries, err := ah.Ledger.EntriesForDay(key)
	if err != nil {
		log.Printf("Error reading ledger for %s on %s: %v", regID, date, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to read ledger")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reg_id":  regID,
		"date":    date,
		"summary": attendance.Summarize(entries),
	})
}

// EmployeeStatus returns where the state machine currently stands for
// one employee today: their status and the sequence it applies to
func (ah *AttendanceHandler) EmployeeStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	regID, ok := scopedRegID(w, r, user)
	if !ok {
		return
	}

	key := attendance.NewKey(user.SessionCodeID, regID, time.Now())
	latest, err := ah.Ledger.LatestEntry(key)
	if err != nil {
		log.Printf("Error reading latest entry for %s: %v", regID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to read ledger")
		return
	}

	status := attendance.StatusNoEntries
	sequence := 0
	if latest != nil {
		sequence = latest.Sequence
		if latest.EntryType == attendance.ActionCheckIn {
			status = attendance.StatusCheckedIn
		} else {
			status = attendance.StatusCheckedOut
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reg_id":   regID,
		"date":     key.Date,
		"status":   status,
		"sequence": sequence,
	})
}

// LedgerForDay lists the raw ledger rows for the caller's tenant on one date
func (ah *AttendanceHandler) LedgerForDay(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	rows, err := ah.TimeEntryRepo.ListByTenantDate(user.SessionCodeID, date)
	if err != nil {
		log.Printf("Error listing ledger for tenant %d on %s: %v", user.SessionCodeID, date, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to list ledger entries")
		return
	}
	if rows == nil {
		rows = []models.TimeEntry{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// EmployeeHistory lists one employee's full ledger history
func (ah *AttendanceHandler) EmployeeHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	regID, ok := scopedRegID(w, r, user)
	if !ok {
		return
	}

	rows, err := ah.TimeEntryRepo.ListByEmployee(user.SessionCodeID, regID)
	if err != nil {
		log.Printf("Error listing ledger history for %s: %v", regID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to list ledger entries")
		return
	}
	if rows == nil {
		rows = []models.TimeEntry{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// QueryLegacy runs an allow-listed filter query over the legacy
// attendance table
func (ah *AttendanceHandler) QueryLegacy(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	filter, ok := legacyFilterFromQuery(w, r)
	if !ok {
		return
	}

	rows, err := ah.LegacyRepo.Query(user.SessionCodeID, filter)
	if err != nil {
		log.Printf("Error querying legacy attendance for tenant %d: %v", user.SessionCodeID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to query attendance")
		return
	}
	if rows == nil {
		rows = []database.LegacyAttendance{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// ExportLegacyCSV runs the same allow-listed query and streams the
// result as a CSV download
func (ah *AttendanceHandler) ExportLegacyCSV(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	filter, ok := legacyFilterFromQuery(w, r)
	if !ok {
		return
	}

	rows, err := ah.LegacyRepo.Query(user.SessionCodeID, filter)
	if err != nil {
		log.Printf("Error querying legacy attendance for export (tenant %d): %v", user.SessionCodeID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to query attendance")
		return
	}

	filename := fmt.Sprintf("attendance_%s.csv", time.Now().Format(attendance.DateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	if err := utils.WriteLegacyCSV(w, rows); err != nil {
		log.Printf("Error writing attendance CSV: %v", err)
	}
}

// DailyComparison runs the cross-system comparison for every employee
// with activity on the given date
func (ah *AttendanceHandler) DailyComparison(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	report, err := ah.Reconciler.DailyReport(user.SessionCodeID, date)
	if err != nil {
		log.Printf("Error building daily comparison for tenant %d on %s: %v", user.SessionCodeID, date, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to build comparison report")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report":               report,
		"legacy_sync_failures": ah.Recorder.LegacySyncFailures(),
	})
}

// EmployeeComparison compares one employee's day across both systems
func (ah *AttendanceHandler) EmployeeComparison(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	regID := models.NormalizeRegID(r.URL.Query().Get("reg_id"))
	if regID == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Missing required parameter: reg_id")
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	report, err := ah.Reconciler.Compare(attendance.Key{TenantID: user.SessionCodeID, RegID: regID, Date: date})
	if err != nil {
		log.Printf("Error comparing %s on %s: %v", regID, date, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to build comparison report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// scopedRegID resolves the reg_id query parameter. Students only ever
// see their own attendance; their account's reg ID wins over whatever
// the query string says.
func scopedRegID(w http.ResponseWriter, r *http.Request, user *models.User) (string, bool) {
	if user.Role == models.RoleStudent {
		if user.RegID == "" {
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Account is not linked to a registration ID")
			return "", false
		}
		return models.NormalizeRegID(user.RegID), true
	}

	regID := models.NormalizeRegID(r.URL.Query().Get("reg_id"))
	if regID == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Missing required parameter: reg_id")
		return "", false
	}
	return regID, true
}

// dateParam reads the date query parameter, defaulting to today
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return time.Now().Format(attendance.DateLayout), true
	}
	if _, err := time.Parse(attendance.DateLayout, date); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid date format, expected YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// legacyFilterFromQuery builds a LegacyFilter from the request query,
// rejecting any parameter outside the allow-list
func legacyFilterFromQuery(w http.ResponseWriter, r *http.Request) (database.LegacyFilter, bool) {
	var filter database.LegacyFilter

	for param, values := range r.URL.Query() {
		if !legacyQueryParams[param] {
			WriteAPIError(w, http.StatusBadRequest, "bad_request", "Unknown query parameter: "+param)
			return filter, false
		}
		if len(values) == 0 || values[0] == "" {
			continue
		}
		value := values[0]

		switch param {
		case "reg_id":
			filter.RegID = models.NormalizeRegID(value)
		case "first_name":
			filter.FirstName = value
		case "last_name":
			filter.LastName = value
		case "occupation":
			filter.Occupation = value
		case "regular_wage":
			wage, err := strconv.ParseFloat(value, 64)
			if err != nil {
				WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid regular_wage value")
				return filter, false
			}
			filter.RegularWage = &wage
		case "date", "start_date", "end_date":
			if _, err := time.Parse(attendance.DateLayout, value); err != nil {
				WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid "+param+" format, expected YYYY-MM-DD")
				return filter, false
			}
			switch param {
			case "date":
				filter.Date = value
			case "start_date":
				filter.StartDate = value
			case "end_date":
				filter.EndDate = value
			}
		}
	}

	return filter, true
}
