package services

import (
	"errors"
	"time"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"

	"github.com/google/uuid"
)

// 会话键前缀
const sessionKeyPrefix = "session:"

// ErrSessionInvalid 会话不存在、已注销或已过期
var ErrSessionInvalid = errors.New("会话无效或已过期")

// InterfaceSessionService 会话服务接口
type InterfaceSessionService interface {
	Login(username, password string) (string, *models.SessionContext, error)
	Validate(token string) (*models.SessionContext, error)
	Logout(token string) error
	TTL() time.Duration
}

// SessionService 管理服务端会话。
// 登录成功后签发不透明令牌, 会话数据保存在后端存储中,
// 注销后令牌立即失效, 不依赖令牌自身携带任何信息。
type SessionService struct {
	Admins InterfaceAdminService
	Store  SessionStore
	ttl    time.Duration
}

// NewSessionService 创建一个新的会话服务
func NewSessionService(admins InterfaceAdminService, store SessionStore, cfg *config.Config) InterfaceSessionService {
	ttlHours := cfg.SessionTTLHours
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &SessionService{
		Admins: admins,
		Store:  store,
		ttl:    time.Duration(ttlHours) * time.Hour,
	}
}

// 1 Login 校验凭证并签发会话令牌
func (s *SessionService) Login(username, password string) (string, *models.SessionContext, error) {
	admin, err := s.Admins.VerifyCredentials(username, password)
	if err != nil {
		return "", nil, err
	}

	session := &models.SessionContext{
		AdminID:   admin.ID,
		AdminName: admin.Name,
		AdminRole: admin.Role,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	token := uuid.NewString()
	if err := s.Store.Set(sessionKeyPrefix+token, session, s.ttl); err != nil {
		return "", nil, err
	}

	return token, session, nil
}

// 2 Validate 校验会话令牌。任何取不到有效会话的情况都按未认证处理。
func (s *SessionService) Validate(token string) (*models.SessionContext, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	var session models.SessionContext
	if err := s.Store.Get(sessionKeyPrefix+token, &session); err != nil {
		return nil, ErrSessionInvalid
	}

	// 存储层TTL之外再校验一次绝对过期时间
	if session.Expired(time.Now()) {
		_ = s.Store.Delete(sessionKeyPrefix + token)
		return nil, ErrSessionInvalid
	}

	return &session, nil
}

// 3 Logout 立即销毁会话, 之后对同一令牌的Validate一律失败
func (s *SessionService) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.Store.Delete(sessionKeyPrefix + token)
}

// 4 TTL 返回会话有效期
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}
