package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/attendance"
	"github.com/facekiosk/attendancebackend/models"
	"github.com/facekiosk/attendancebackend/realtime"
	"github.com/facekiosk/attendancebackend/repository"
	"github.com/facekiosk/attendancebackend/services"
)

// ScanHandler serves the kiosk routes. They are scoped by the session
// code in the URL rather than a login: the kiosk is a shared device.
type ScanHandler struct {
	Scan       *services.ScanService
	Results    *attendance.ResultCache
	TenantRepo repository.TenantRepositoryInterface
	Hub        *realtime.Hub
}

func NewScanHandler(scan *services.ScanService, results *attendance.ResultCache,
	tenantRepo repository.TenantRepositoryInterface, hub *realtime.Hub) *ScanHandler {
	return &ScanHandler{Scan: scan, Results: results, TenantRepo: tenantRepo, Hub: hub}
}

// StreamScan runs one duration-bounded scan session and streams
// annotated camera frames back as MJPEG
func (sh *ScanHandler) StreamScan(w http.ResponseWriter, r *http.Request) {
	tenant, ok := sh.resolveTenant(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", services.MJPEGContentType)
	w.Header().Set("Cache-Control", "no-cache")

	if err := sh.Scan.StreamScan(r.Context(), w, tenant.ID); err != nil {
		// headers are already written; all we can do is log and drop
		log.Printf("Error during scan session for tenant %d: %v", tenant.ID, err)
	}
}

// ScanStatus polls the result cache for the latest scan outcome of one
// person; the kiosk UI calls this after the scan stream ends
func (sh *ScanHandler) ScanStatus(w http.ResponseWriter, r *http.Request) {
	tenant, ok := sh.resolveTenant(w, r)
	if !ok {
		return
	}

	regID := models.NormalizeRegID(chi.URLParam(r, "reg_id"))
	if regID == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Missing registration ID")
		return
	}

	writeJSON(w, http.StatusOK, sh.Results.Get(tenant.ID, regID))
}

// Monitor upgrades to a websocket carrying the tenant's live
// attendance events
func (sh *ScanHandler) Monitor(w http.ResponseWriter, r *http.Request) {
	tenant, ok := sh.resolveTenant(w, r)
	if !ok {
		return
	}

	sh.Hub.ServeWS(w, r, tenant.ID)
}

func (sh *ScanHandler) resolveTenant(w http.ResponseWriter, r *http.Request) (*models.Tenant, bool) {
	code := chi.URLParam(r, "session_code")
	if code == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Missing session code")
		return nil, false
	}

	tenant, err := sh.TenantRepo.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Unknown session code")
		} else {
			log.Printf("Error resolving session code '%s': %v", code, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve session code")
		}
		return nil, false
	}

	return tenant, true
}
