package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/models"
	"github.com/facekiosk/attendancebackend/repository"
)

type TenantHandler struct {
	TenantRepo repository.TenantRepositoryInterface
	UserRepo   repository.UserRepositoryInterface
}

func NewTenantHandler(tenantRepo repository.TenantRepositoryInterface, userRepo repository.UserRepositoryInterface) *TenantHandler {
	return &TenantHandler{TenantRepo: tenantRepo, UserRepo: userRepo}
}

type CreateTenantPayload struct {
	BusinessName  string `json:"business_name"`
	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"admin_password"`
}

// CreateTenant onboards a new business: generates its session code and
// seeds the first admin account
func (th *TenantHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var payload CreateTenantPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	payload.BusinessName = strings.TrimSpace(payload.BusinessName)
	if payload.BusinessName == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Missing required field: business_name")
		return
	}
	payload.AdminUsername = strings.TrimSpace(payload.AdminUsername)
	if payload.AdminUsername == "" || payload.AdminPassword == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Admin username and password are required")
		return
	}
	if err := validatePassword(payload.AdminUsername, payload.AdminPassword); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	tenant := &models.Tenant{
		Code:         generateSessionCode(payload.BusinessName),
		BusinessName: payload.BusinessName,
	}
	if err := th.TenantRepo.Create(tenant); err != nil {
		log.Printf("Error creating tenant '%s': %v", payload.BusinessName, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to create tenant")
		return
	}

	admin := &models.User{
		SessionCodeID: tenant.ID,
		Username:      payload.AdminUsername,
		Role:          models.RoleAdmin,
	}
	if err := admin.SetPassword(payload.AdminPassword); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to hash admin password")
		return
	}
	if err := th.UserRepo.Create(admin); err != nil {
		log.Printf("CRITICAL: tenant %s created but admin account failed: %v", tenant.Code, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Tenant created but admin account failed")
		return
	}

	writeJSON(w, http.StatusCreated, tenant)
}

// ListTenants returns all onboarded businesses
func (th *TenantHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := th.TenantRepo.ListAll()
	if err != nil {
		log.Printf("Error listing tenants: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve tenants")
		return
	}
	if tenants == nil {
		tenants = []models.Tenant{}
	}
	writeJSON(w, http.StatusOK, tenants)
}

// GetTenant returns one tenant by ID
func (th *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDParam(w, r)
	if !ok {
		return
	}

	tenant, err := th.TenantRepo.GetByID(tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Tenant not found")
		} else {
			log.Printf("Error getting tenant %d: %v", tenantID, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve tenant")
		}
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

// UpdateTenant changes a tenant's business name
func (th *TenantHandler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDParam(w, r)
	if !ok {
		return
	}

	var payload struct {
		BusinessName string `json:"business_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(payload.BusinessName) == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Missing required field: business_name")
		return
	}

	if err := th.TenantRepo.UpdateBusinessName(tenantID, strings.TrimSpace(payload.BusinessName)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Tenant not found")
		} else {
			log.Printf("Error updating tenant %d: %v", tenantID, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to update tenant")
		}
		return
	}

	tenant, err := th.TenantRepo.GetByID(tenantID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Tenant updated successfully"})
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

// generateSessionCode builds a human-readable code from the business
// name plus a random suffix so two shops with the same name never collide
func generateSessionCode(businessName string) string {
	slug := strings.Builder{}
	for _, r := range strings.ToUpper(businessName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			slug.WriteRune(r)
		}
	}
	prefix := slug.String()
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	if prefix == "" {
		prefix = "SHOP"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return prefix + "-" + suffix
}

func tenantIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "tenant_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid tenant ID format")
		return 0, false
	}
	return uint(id), true
}
