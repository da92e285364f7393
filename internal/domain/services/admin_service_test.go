package services

import (
	"testing"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(t *testing.T) InterfaceAdminService {
	t.Helper()
	return NewAdminService(newTestDB(t), newTestConfig(t))
}

func TestCreateAdminHashesPassword(t *testing.T) {
	svc := newTestAdminService(t)

	admin := &models.Admin{Username: "warden", Password: "Secret@123", Name: "Warden"}
	require.NoError(t, svc.CreateAdmin(admin))

	// 明文不落库
	assert.NotEqual(t, "Secret@123", admin.Password)
	assert.True(t, CheckPasswordHash("Secret@123", admin.Password))
	assert.Equal(t, "admin", admin.Role)

	count, err := svc.CountAdmins()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateAdminRejectsDuplicateUsername(t *testing.T) {
	svc := newTestAdminService(t)

	require.NoError(t, svc.CreateAdmin(&models.Admin{Username: "warden", Password: "Secret@123", Name: "Warden"}))

	err := svc.CreateAdmin(&models.Admin{Username: "warden", Password: "Other@456", Name: "Other"})
	assert.ErrorIs(t, err, ErrAdminAlreadyExists)
}

func TestVerifyCredentials(t *testing.T) {
	svc := newTestAdminService(t)

	require.NoError(t, svc.CreateAdmin(&models.Admin{Username: "warden", Password: "Secret@123", Name: "Warden"}))

	admin, err := svc.VerifyCredentials("warden", "Secret@123")
	require.NoError(t, err)
	assert.Equal(t, "warden", admin.Username)

	// 密码错误、用户不存在、用户名大小写不匹配均返回同一错误
	_, err = svc.VerifyCredentials("warden", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.VerifyCredentials("nobody", "Secret@123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.VerifyCredentials("Warden", "Secret@123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetAdminByID(t *testing.T) {
	svc := newTestAdminService(t)

	admin := &models.Admin{Username: "warden", Password: "Secret@123", Name: "Warden"}
	require.NoError(t, svc.CreateAdmin(admin))

	got, err := svc.GetAdminByID(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Username, got.Username)

	_, err = svc.GetAdminByID(999)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestMemoryAdminServiceMatchesPersistentSemantics(t *testing.T) {
	svc := NewMemoryAdminService()

	count, err := svc.CountAdmins()
	require.NoError(t, err)
	assert.Zero(t, count)

	admin := &models.Admin{Username: "warden", Password: "Secret@123", Name: "Warden"}
	require.NoError(t, svc.CreateAdmin(admin))
	assert.NotEqual(t, "Secret@123", admin.Password)

	err = svc.CreateAdmin(&models.Admin{Username: "warden", Password: "x", Name: "Dup"})
	assert.ErrorIs(t, err, ErrAdminAlreadyExists)

	got, err := svc.VerifyCredentials("warden", "Secret@123")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	_, err = svc.VerifyCredentials("warden", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
