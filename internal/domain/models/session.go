package models

import "time"

// SessionContext 服务端会话, 一个令牌对应一个管理员身份
type SessionContext struct {
	AdminID   uint      `json:"admin_id"`
	AdminName string    `json:"admin_name"`
	AdminRole string    `json:"admin_role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired 判断会话是否已过期
func (s *SessionContext) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
