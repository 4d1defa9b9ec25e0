package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/models"
	"github.com/facekiosk/attendancebackend/repository"
)

type AuthHandler struct {
	UserRepo     repository.UserRepositoryInterface
	TenantRepo   repository.TenantRepositoryInterface
	EmployeeRepo repository.EmployeeRepositoryInterface

	JWTSecret     []byte
	TokenLifetime time.Duration
}

func NewAuthHandler(userRepo repository.UserRepositoryInterface, tenantRepo repository.TenantRepositoryInterface,
	employeeRepo repository.EmployeeRepositoryInterface, jwtSecret []byte, tokenLifetime time.Duration) *AuthHandler {
	return &AuthHandler{
		UserRepo:      userRepo,
		TenantRepo:    tenantRepo,
		EmployeeRepo:  employeeRepo,
		JWTSecret:     jwtSecret,
		TokenLifetime: tokenLifetime,
	}
}

type LoginPayload struct {
	SessionCode string `json:"session_code"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request payload")
		return
	}

	tenant, err := h.TenantRepo.GetByCode(strings.TrimSpace(payload.SessionCode))
	if err != nil {
		// same response as a bad password so codes can't be probed
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
		return
	}

	user, err := h.UserRepo.GetByUsername(tenant.ID, payload.Username)
	if err != nil {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
		return
	}

	if !user.CheckPassword(payload.Password) {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
		return
	}

	expirationTime := time.Now().Add(h.TokenLifetime)
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(user.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "attendancebackend",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		log.Printf("auth: failed to sign token for user %d: %v", user.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to generate token")
		return
	}

	response := LoginResponse{
		Token:     tokenString,
		User:      *user,
		ExpiresAt: expirationTime,
	}

	writeJSON(w, http.StatusOK, response)
}

type RegisterPayload struct {
	SessionCode string `json:"session_code"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	RegID       string `json:"reg_id"`
}

// Register creates a dashboard account bound to a tenant via its
// session code. New accounts get the student role; admins are promoted
// by an existing admin.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid request payload: "+err.Error())
		return
	}

	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" || payload.SessionCode == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "Username, password, and session code are required")
		return
	}
	if err := validatePassword(payload.Username, payload.Password); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	tenant, err := h.TenantRepo.GetByCode(strings.TrimSpace(payload.SessionCode))
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "Invalid session code")
		return
	}

	regID := models.NormalizeRegID(payload.RegID)
	if regID != "" {
		// a reg ID ties the account to an employee record; it must exist
		if _, err := h.EmployeeRepo.GetByRegID(tenant.ID, regID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				WriteAPIError(w, http.StatusBadRequest, "bad_request", "No employee with that registration ID")
				return
			}
			log.Printf("auth: error checking employee %s during registration: %v", regID, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to verify registration ID")
			return
		}
	}

	newUser := &models.User{
		SessionCodeID: tenant.ID,
		Username:      payload.Username,
		RegID:         regID,
		Role:          models.RoleStudent,
	}
	if err := newUser.SetPassword(payload.Password); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to hash password")
		return
	}

	if err := h.UserRepo.Create(newUser); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			WriteAPIError(w, http.StatusConflict, "conflict", "Username is already taken")
			return
		}
		log.Printf("auth: failed to create user %s: %v", payload.Username, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully. Please log in."})
}

// CurrentUser retrieves the authenticated user from the request context.
// This handler should be protected by the AuthMiddleware.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Could not retrieve user from context")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func validatePassword(username, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if strings.EqualFold(password, username) {
		return fmt.Errorf("password must not match the username")
	}
	return nil
}
