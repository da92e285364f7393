package services

import (
	"testing"
	"time"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(t *testing.T) (InterfaceSessionService, *MemorySessionStore) {
	t.Helper()

	admins := NewMemoryAdminService()
	require.NoError(t, admins.CreateAdmin(&models.Admin{
		Username: "warden",
		Password: "Secret@123",
		Name:     "Warden",
	}))

	store := NewMemorySessionStore()
	svc := NewSessionService(admins, store, &config.Config{SessionTTLHours: 24})
	return svc, store
}

func TestSessionLoginAndValidate(t *testing.T) {
	svc, _ := newTestSessionService(t)

	token, session, err := svc.Login("warden", "Secret@123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Warden", session.AdminName)
	assert.Equal(t, "admin", session.AdminRole)

	got, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, session.AdminID, got.AdminID)
}

func TestSessionLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, _, err := svc.Login("warden", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody", "Secret@123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionTokensAreUnique(t *testing.T) {
	svc, _ := newTestSessionService(t)

	first, _, err := svc.Login("warden", "Secret@123")
	require.NoError(t, err)
	second, _, err := svc.Login("warden", "Secret@123")
	require.NoError(t, err)

	// 两次登录签发互不影响的独立会话
	assert.NotEqual(t, first, second)

	require.NoError(t, svc.Logout(first))
	_, err = svc.Validate(second)
	assert.NoError(t, err)
}

func TestSessionLogoutRevokesImmediately(t *testing.T) {
	svc, _ := newTestSessionService(t)

	token, _, err := svc.Login("warden", "Secret@123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(token))

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	// 重复注销不报错
	assert.NoError(t, svc.Logout(token))
}

func TestSessionValidateRejectsUnknownToken(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, err := svc.Validate("")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	_, err = svc.Validate("not-a-real-token")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionExpires(t *testing.T) {
	svc, store := newTestSessionService(t)

	token, _, err := svc.Login("warden", "Secret@123")
	require.NoError(t, err)

	// 把存储的时钟拨快25小时, 超过24小时的会话有效期
	store.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionTTLFallback(t *testing.T) {
	admins := NewMemoryAdminService()
	svc := NewSessionService(admins, NewMemorySessionStore(), &config.Config{})

	// 未配置时回退到24小时
	assert.Equal(t, 24*time.Hour, svc.TTL())
}
