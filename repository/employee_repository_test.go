package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/models"
)

func TestEmployeeRepositoryCreateNormalizesRegID(t *testing.T) {
	repo := NewEmployeeRepository(setupGormDB(t))

	emp := &models.Employee{SessionCodeID: 1, RegID: " emp001 ", FirstName: "Ana", LastName: "Ruiz"}
	require.NoError(t, repo.Create(emp))
	assert.Equal(t, "EMP001", emp.RegID)
	assert.NotZero(t, emp.CreatedAt)

	// lookups accept any casing of the same ID
	got, err := repo.GetByRegID(1, "Emp001")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, got.ID)
}

func TestEmployeeRepositoryRegIDUniquePerTenant(t *testing.T) {
	repo := NewEmployeeRepository(setupGormDB(t))

	require.NoError(t, repo.Create(&models.Employee{SessionCodeID: 1, RegID: "EMP001", FirstName: "Ana", LastName: "Ruiz"}))
	err := repo.Create(&models.Employee{SessionCodeID: 1, RegID: "emp001", FirstName: "Dup", LastName: "Licate"})
	assert.Error(t, err, "the same reg ID cannot exist twice within a tenant")

	// a different tenant may reuse the ID
	require.NoError(t, repo.Create(&models.Employee{SessionCodeID: 2, RegID: "EMP001", FirstName: "Ben", LastName: "Cho"}))
}

func TestEmployeeRepositoryUpdate(t *testing.T) {
	repo := NewEmployeeRepository(setupGormDB(t))

	emp := &models.Employee{SessionCodeID: 1, RegID: "EMP001", FirstName: "Ana", LastName: "Ruiz", RegularWage: 15.5}
	require.NoError(t, repo.Create(emp))

	emp.Occupation = "Barista"
	emp.RegularWage = 16.0
	require.NoError(t, repo.Update(emp))

	got, err := repo.GetByID(emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Barista", got.Occupation)
	assert.Equal(t, 16.0, got.RegularWage)

	missing := &models.Employee{ID: 9999, RegID: "EMP999"}
	assert.ErrorIs(t, repo.Update(missing), gorm.ErrRecordNotFound)
}

func TestEmployeeRepositoryPhotoPath(t *testing.T) {
	repo := NewEmployeeRepository(setupGormDB(t))

	emp := &models.Employee{SessionCodeID: 1, RegID: "EMP001", FirstName: "Ana", LastName: "Ruiz"}
	require.NoError(t, repo.Create(emp))

	path := "portraits/1/EMP001.jpg"
	require.NoError(t, repo.UpdatePhotoPath(emp.ID, &path))
	got, err := repo.GetByID(emp.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PhotoPath)
	assert.Equal(t, path, *got.PhotoPath)

	require.NoError(t, repo.UpdatePhotoPath(emp.ID, nil))
	got, err = repo.GetByID(emp.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PhotoPath)
}

func TestEmployeeRepositoryListAndDelete(t *testing.T) {
	repo := NewEmployeeRepository(setupGormDB(t))

	require.NoError(t, repo.Create(&models.Employee{SessionCodeID: 1, RegID: "EMP002", FirstName: "Ben", LastName: "Cho"}))
	require.NoError(t, repo.Create(&models.Employee{SessionCodeID: 1, RegID: "EMP001", FirstName: "Ana", LastName: "Ruiz"}))
	require.NoError(t, repo.Create(&models.Employee{SessionCodeID: 2, RegID: "EMP003", FirstName: "Cruz", LastName: "Diaz"}))

	list, err := repo.ListByTenant(1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "EMP001", list[0].RegID)
	assert.Equal(t, "EMP002", list[1].RegID)

	require.NoError(t, repo.Delete(list[0].ID))
	_, err = repo.GetByID(list[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(9999), gorm.ErrRecordNotFound)
}
