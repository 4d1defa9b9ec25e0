package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/models"
)

func newTestUser(t *testing.T, sessionCodeID uint, username, role string) *models.User {
	t.Helper()
	user := &models.User{SessionCodeID: sessionCodeID, Username: username, Role: role}
	require.NoError(t, user.SetPassword("hunter2hunter2"))
	return user
}

func TestUserRepositoryCreateAndAuthenticate(t *testing.T) {
	repo := NewUserRepository(setupGormDB(t))

	user := newTestUser(t, 1, "admin", models.RoleAdmin)
	require.NoError(t, repo.Create(user))

	got, err := repo.GetByUsername(1, "admin")
	require.NoError(t, err)
	assert.True(t, got.CheckPassword("hunter2hunter2"))
	assert.False(t, got.CheckPassword("wrong"))

	// the same username in another tenant is a different account
	_, err = repo.GetByUsername(2, "admin")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryUsernameUniquePerTenant(t *testing.T) {
	repo := NewUserRepository(setupGormDB(t))

	require.NoError(t, repo.Create(newTestUser(t, 1, "admin", models.RoleAdmin)))
	err := repo.Create(newTestUser(t, 1, "admin", models.RoleStudent))
	assert.Error(t, err)

	require.NoError(t, repo.Create(newTestUser(t, 2, "admin", models.RoleAdmin)))
}

func TestUserRepositoryGetByRegID(t *testing.T) {
	repo := NewUserRepository(setupGormDB(t))

	user := newTestUser(t, 1, "ana", models.RoleStudent)
	user.RegID = "EMP001"
	require.NoError(t, repo.Create(user))

	got, err := repo.GetByRegID(1, "emp001")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserRepositoryListAndDelete(t *testing.T) {
	repo := NewUserRepository(setupGormDB(t))

	require.NoError(t, repo.Create(newTestUser(t, 1, "zoe", models.RoleTeacher)))
	require.NoError(t, repo.Create(newTestUser(t, 1, "ana", models.RoleStudent)))
	require.NoError(t, repo.Create(newTestUser(t, 2, "ben", models.RoleAdmin)))

	users, err := repo.ListByTenant(1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ana", users[0].Username)

	require.NoError(t, repo.Delete(users[0].ID))
	_, err = repo.GetByID(users[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(9999), gorm.ErrRecordNotFound)
}
