package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/models"
)

// UserRepository handles database operations for dashboard users
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create creates a new user record
func (r *UserRepository) Create(user *models.User) error {
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = now
	}
	err := r.DB.Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by (tenant, username)
func (r *UserRepository) GetByUsername(sessionCodeID uint, username string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("session_code_id = ? AND username = ?", sessionCodeID, username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user %s in tenant %d: %w", username, sessionCodeID, err)
	}
	return &user, nil
}

// GetByRegID retrieves a user by (tenant, registration ID)
func (r *UserRepository) GetByRegID(sessionCodeID uint, regID string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("session_code_id = ? AND reg_id = ?",
		sessionCodeID, models.NormalizeRegID(regID)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user with reg ID %s in tenant %d: %w", regID, sessionCodeID, err)
	}
	return &user, nil
}

// ListByTenant retrieves all users of one tenant
func (r *UserRepository) ListByTenant(sessionCodeID uint) ([]models.User, error) {
	var users []models.User
	err := r.DB.Where("session_code_id = ?", sessionCodeID).
		Order("username ASC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users for tenant %d: %w", sessionCodeID, err)
	}
	return users, nil
}

// Delete removes a user by ID
func (r *UserRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
