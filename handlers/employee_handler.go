package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/media"
	"github.com/facekiosk/attendancebackend/models"
	"github.com/facekiosk/attendancebackend/repository"
	"github.com/facekiosk/attendancebackend/services"
)

const maxPortraitUploadBytes = 20 << 20 // 20 MiB

type EmployeeHandler struct {
	EmployeeRepo repository.EmployeeRepositoryInterface
	Enrollment   *services.EnrollmentService
	Store        media.Store
}

func NewEmployeeHandler(employeeRepo repository.EmployeeRepositoryInterface,
	enrollment *services.EnrollmentService, store media.Store) *EmployeeHandler {
	return &EmployeeHandler{EmployeeRepo: employeeRepo, Enrollment: enrollment, Store: store}
}

type EmployeePayload struct {
	RegID                string   `json:"reg_id"`
	FirstName            string   `json:"first_name"`
	LastName             string   `json:"last_name"`
	Occupation           string   `json:"occupation"`
	RegularWage          float64 `json:"regular_wage"`
	OvertimeWage         float64 `json:"overtime_wage"`
	RegularHours         int     `json:"regular_hours"`
	MaximumOvertimeHours *int    `json:"maximum_overtime_hours"`
}

func (eh *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	var payload EmployeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(payload.RegID) == "" ||
		strings.TrimSpace(payload.FirstName) == "" || strings.TrimSpace(payload.LastName) == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "reg_id, first_name and last_name are required")
		return
	}

	employee := &models.Employee{
		SessionCodeID:        user.SessionCodeID,
		RegID:                payload.RegID,
		FirstName:            strings.TrimSpace(payload.FirstName),
		LastName:             strings.TrimSpace(payload.LastName),
		Occupation:           strings.TrimSpace(payload.Occupation),
		RegularWage:          payload.RegularWage,
		OvertimeWage:         payload.OvertimeWage,
		RegularHours:         payload.RegularHours,
		MaximumOvertimeHours: payload.MaximumOvertimeHours,
	}

	if err := eh.EmployeeRepo.Create(employee); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			WriteAPIError(w, http.StatusConflict, "conflict", "An employee with that registration ID already exists")
			return
		}
		log.Printf("Error creating employee '%s': %v", payload.RegID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to create employee")
		return
	}

	writeJSON(w, http.StatusCreated, employee)
}

func (eh *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	employees, err := eh.EmployeeRepo.ListByTenant(user.SessionCodeID)
	if err != nil {
		log.Printf("Error listing employees for tenant %d: %v", user.SessionCodeID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve employees")
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

func (eh *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee, ok := eh.loadScopedEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

func (eh *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employee, ok := eh.loadScopedEmployee(w, r)
	if !ok {
		return
	}

	var payload EmployeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(payload.FirstName) == "" || strings.TrimSpace(payload.LastName) == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "first_name and last_name are required")
		return
	}

	// the reg ID is the identity the ledger is keyed by; it never changes
	employee.FirstName = strings.TrimSpace(payload.FirstName)
	employee.LastName = strings.TrimSpace(payload.LastName)
	employee.Occupation = strings.TrimSpace(payload.Occupation)
	employee.RegularWage = payload.RegularWage
	employee.OvertimeWage = payload.OvertimeWage
	employee.RegularHours = payload.RegularHours
	employee.MaximumOvertimeHours = payload.MaximumOvertimeHours

	if err := eh.EmployeeRepo.Update(employee); err != nil {
		log.Printf("Error updating employee %d: %v", employee.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to update employee")
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

func (eh *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	employee, ok := eh.loadScopedEmployee(w, r)
	if !ok {
		return
	}

	if err := eh.Enrollment.RemoveEnrollment(employee.ID); err != nil {
		log.Printf("Error removing enrollment for employee %d: %v", employee.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to remove enrollment")
		return
	}

	if err := eh.EmployeeRepo.Delete(employee.ID); err != nil {
		log.Printf("Error deleting employee %d: %v", employee.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to delete employee")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// UploadPortrait accepts a multipart portrait upload and enrolls the
// employee for recognition
func (eh *EmployeeHandler) UploadPortrait(w http.ResponseWriter, r *http.Request) {
	employee, ok := eh.loadScopedEmployee(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxPortraitUploadBytes); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("portrait")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Missing 'portrait' file field")
		return
	}
	defer file.Close()

	if !media.IsRasterImage(header.Filename) {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Unsupported image type: "+filepath.Ext(header.Filename))
		return
	}

	relPath, err := eh.Enrollment.EnrollPortrait(employee.ID, file)
	if err != nil {
		log.Printf("Error enrolling portrait for employee %d: %v", employee.ID, err)
		if strings.Contains(err.Error(), "no face detected") {
			WriteAPIError(w, http.StatusUnprocessableEntity, "no_face", "No face was detected in the uploaded portrait")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to enroll portrait")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"photo_path": relPath})
}

// GetPortrait serves an employee's stored enrollment portrait
func (eh *EmployeeHandler) GetPortrait(w http.ResponseWriter, r *http.Request) {
	employee, ok := eh.loadScopedEmployee(w, r)
	if !ok {
		return
	}
	if employee.PhotoPath == nil {
		WriteAPIError(w, http.StatusNotFound, "not_found", "Employee has no enrolled portrait")
		return
	}

	reader, info, err := eh.Store.Get(*employee.PhotoPath)
	if err != nil {
		log.Printf("Error opening portrait %s: %v", *employee.PhotoPath, err)
		WriteAPIError(w, http.StatusNotFound, "not_found", "Portrait file not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	if _, err := io.Copy(w, reader); err != nil {
		log.Printf("Error streaming portrait %s: %v", *employee.PhotoPath, err)
	}
}

// RebuildEncoding re-encodes the employee's stored portrait
func (eh *EmployeeHandler) RebuildEncoding(w http.ResponseWriter, r *http.Request) {
	employee, ok := eh.loadScopedEmployee(w, r)
	if !ok {
		return
	}

	if err := eh.Enrollment.RebuildEncoding(employee.ID); err != nil {
		log.Printf("Error rebuilding encoding for employee %d: %v", employee.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to rebuild encoding")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Encoding rebuilt"})
}

// ListPortraits lists the tenant's stored portrait files in natural order
func (eh *EmployeeHandler) ListPortraits(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return
	}

	baseDir, err := eh.Store.EnsureDir(media.AssetTypePortrait)
	if err != nil {
		log.Printf("Error resolving portraits directory: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to list portraits")
		return
	}

	tenantDir := filepath.Join(baseDir, strconv.FormatUint(uint64(user.SessionCodeID), 10))
	entries, err := os.ReadDir(tenantDir)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusOK, []string{})
			return
		}
		log.Printf("Error reading portraits directory %s: %v", tenantDir, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to list portraits")
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && media.IsRasterImage(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	natsort.Sort(names)

	writeJSON(w, http.StatusOK, names)
}

// loadScopedEmployee resolves the employee_id URL param and enforces
// that the record belongs to the caller's tenant
func (eh *EmployeeHandler) loadScopedEmployee(w http.ResponseWriter, r *http.Request) (*models.Employee, bool) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "User not found in context")
		return nil, false
	}

	idStr := chi.URLParam(r, "employee_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid employee ID format")
		return nil, false
	}

	employee, err := eh.EmployeeRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Employee not found")
		} else {
			log.Printf("Error getting employee %d: %v", id, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve employee")
		}
		return nil, false
	}

	if employee.SessionCodeID != user.SessionCodeID {
		// cross-tenant access reads as not-found
		WriteAPIError(w, http.StatusNotFound, "not_found", "Employee not found")
		return nil, false
	}

	return employee, true
}
