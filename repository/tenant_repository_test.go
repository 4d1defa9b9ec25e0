package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/models"
)

func TestTenantRepositoryCreateAndLookup(t *testing.T) {
	repo := NewTenantRepository(setupGormDB(t))

	tenant := &models.Tenant{Code: "CAFE-abc123", BusinessName: "Cafe Central"}
	require.NoError(t, repo.Create(tenant))
	require.NotZero(t, tenant.ID)

	byCode, err := repo.GetByCode("CAFE-abc123")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, byCode.ID)
	assert.Equal(t, "Cafe Central", byCode.BusinessName)

	_, err = repo.GetByCode("NOPE-000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTenantRepositoryCodeUnique(t *testing.T) {
	repo := NewTenantRepository(setupGormDB(t))

	require.NoError(t, repo.Create(&models.Tenant{Code: "CAFE-abc123", BusinessName: "Cafe Central"}))
	err := repo.Create(&models.Tenant{Code: "CAFE-abc123", BusinessName: "Impostor"})
	assert.Error(t, err)
}

func TestTenantRepositoryUpdateBusinessName(t *testing.T) {
	repo := NewTenantRepository(setupGormDB(t))

	tenant := &models.Tenant{Code: "CAFE-abc123", BusinessName: "Cafe Central"}
	require.NoError(t, repo.Create(tenant))

	require.NoError(t, repo.UpdateBusinessName(tenant.ID, "Cafe Renamed"))
	got, err := repo.GetByID(tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Renamed", got.BusinessName)
	assert.Equal(t, "CAFE-abc123", got.Code, "the session code never changes after onboarding")

	assert.ErrorIs(t, repo.UpdateBusinessName(9999, "Ghost"), gorm.ErrRecordNotFound)
}
