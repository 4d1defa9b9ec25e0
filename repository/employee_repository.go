package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/models"
)

// EmployeeRepository handles database operations for Employee entities.
// All queries are scoped by tenant; reg IDs are normalized so the
// per-tenant uniqueness constraint is case-insensitive.
type EmployeeRepository struct {
	DB *gorm.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

// Create creates a new employee record in the database
func (r *EmployeeRepository) Create(employee *models.Employee) error {
	now := time.Now().Unix()
	if employee.CreatedAt == 0 {
		employee.CreatedAt = now
	}
	if employee.UpdatedAt == 0 {
		employee.UpdatedAt = now
	}
	employee.RegID = models.NormalizeRegID(employee.RegID)

	err := r.DB.Create(employee).Error
	if err != nil {
		return fmt.Errorf("failed to create employee %s: %w", employee.RegID, err)
	}
	return nil
}

// GetByID retrieves an employee by surrogate ID
func (r *EmployeeRepository) GetByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.DB.First(&employee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get employee by ID %d: %w", id, err)
	}
	return &employee, nil
}

// GetByRegID retrieves an employee by (tenant, registration ID)
func (r *EmployeeRepository) GetByRegID(sessionCodeID uint, regID string) (*models.Employee, error) {
	var employee models.Employee
	err := r.DB.Where("session_code_id = ? AND reg_id = ?",
		sessionCodeID, models.NormalizeRegID(regID)).
		First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get employee %s in tenant %d: %w", regID, sessionCodeID, err)
	}
	return &employee, nil
}

// ListByTenant retrieves all employees of one tenant ordered by reg ID
func (r *EmployeeRepository) ListByTenant(sessionCodeID uint) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.DB.Where("session_code_id = ?", sessionCodeID).
		Order("reg_id ASC").Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list employees for tenant %d: %w", sessionCodeID, err)
	}
	return employees, nil
}

// Update updates an existing employee's details
func (r *EmployeeRepository) Update(employee *models.Employee) error {
	employee.UpdatedAt = time.Now().Unix()
	employee.RegID = models.NormalizeRegID(employee.RegID)

	result := r.DB.Model(&models.Employee{ID: employee.ID}).Updates(map[string]interface{}{
		"first_name":             employee.FirstName,
		"last_name":              employee.LastName,
		"occupation":             employee.Occupation,
		"regular_wage":           employee.RegularWage,
		"overtime_wage":          employee.OvertimeWage,
		"regular_hours":          employee.RegularHours,
		"maximum_overtime_hours": employee.MaximumOvertimeHours,
		"updated_at":             employee.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update employee ID %d: %w", employee.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePhotoPath sets or clears the enrollment portrait path
func (r *EmployeeRepository) UpdatePhotoPath(id uint, photoPath *string) error {
	result := r.DB.Model(&models.Employee{ID: id}).Updates(map[string]interface{}{
		"photo_path": photoPath,
		"updated_at": time.Now().Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update photo path for employee ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an employee record. Ledger entries are deliberately
// left in place: historical attendance is retained for audit even after
// the person record is gone.
func (r *EmployeeRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Employee{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete employee ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
