package repository

import (
	"github.com/facekiosk/attendancebackend/database"
	"github.com/facekiosk/attendancebackend/models"
)

// TenantRepositoryInterface defines the methods for tenant (session code) data operations
type TenantRepositoryInterface interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	GetByCode(code string) (*models.Tenant, error)
	ListAll() ([]models.Tenant, error)
	UpdateBusinessName(id uint, businessName string) error
}

// EmployeeRepositoryInterface defines the methods for employee data operations.
// Every method is scoped by tenant ID; reg IDs are normalized before use.
type EmployeeRepositoryInterface interface {
	Create(employee *models.Employee) error
	GetByID(id uint) (*models.Employee, error)
	GetByRegID(sessionCodeID uint, regID string) (*models.Employee, error)
	ListByTenant(sessionCodeID uint) ([]models.Employee, error)
	Update(employee *models.Employee) error
	UpdatePhotoPath(id uint, photoPath *string) error
	Delete(id uint) error
}

// TimeEntryRepositoryInterface defines the ledger query surface used by
// handlers; the attendance core's LedgerSink methods are implemented by
// the same repository.
type TimeEntryRepositoryInterface interface {
	ListByTenantDate(sessionCodeID uint, date string) ([]models.TimeEntry, error)
	ListByEmployee(sessionCodeID uint, regID string) ([]models.TimeEntry, error)
}

// LegacyAttendanceRepositoryInterface defines the query surface of the
// legacy projection; its LegacySink methods feed the reconciler.
type LegacyAttendanceRepositoryInterface interface {
	ListByTenantDate(sessionCodeID uint, date string) ([]database.LegacyAttendance, error)
	ListByEmployee(sessionCodeID uint, regID string) ([]database.LegacyAttendance, error)
	Query(sessionCodeID uint, filter database.LegacyFilter) ([]database.LegacyAttendance, error)
}

// UserRepositoryInterface defines the methods for dashboard user data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(sessionCodeID uint, username string) (*models.User, error)
	GetByRegID(sessionCodeID uint, regID string) (*models.User, error)
	ListByTenant(sessionCodeID uint) ([]models.User, error)
	Delete(id uint) error
}
