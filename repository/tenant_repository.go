package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/models"
)

// TenantRepository handles database operations for Tenant (session code) entities
type TenantRepository struct {
	DB *gorm.DB
}

// NewTenantRepository creates a new instance of TenantRepository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{DB: db}
}

// Create creates a new tenant record
func (r *TenantRepository) Create(tenant *models.Tenant) error {
	if tenant.CreatedAt == 0 {
		tenant.CreatedAt = time.Now().Unix()
	}
	err := r.DB.Create(tenant).Error
	if err != nil {
		return fmt.Errorf("failed to create tenant %s: %w", tenant.Code, err)
	}
	return nil
}

// GetByID retrieves a tenant by surrogate ID
func (r *TenantRepository) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.DB.First(&tenant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get tenant by ID %d: %w", id, err)
	}
	return &tenant, nil
}

// GetByCode retrieves a tenant by its human-entered session code
func (r *TenantRepository) GetByCode(code string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.DB.Where("code = ?", code).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get tenant by code %s: %w", code, err)
	}
	return &tenant, nil
}

// ListAll retrieves all tenants ordered by creation time
func (r *TenantRepository) ListAll() ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.DB.Order("created_at ASC").Find(&tenants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// UpdateBusinessName changes the display name; the code itself is
// immutable after onboarding
func (r *TenantRepository) UpdateBusinessName(id uint, businessName string) error {
	result := r.DB.Model(&models.Tenant{}).Where("id = ?", id).
		Update("business_name", businessName)
	if result.Error != nil {
		return fmt.Errorf("failed to update tenant ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
