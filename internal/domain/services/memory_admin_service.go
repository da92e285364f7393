package services

import (
	"sync"
	"time"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
)

// MemoryAdminService 进程内管理员存储。
// 未配置数据库时使用, 重启后数据丢失, 仅适合本地开发。
type MemoryAdminService struct {
	mu     sync.RWMutex
	nextID uint
	admins []models.Admin
}

// NewMemoryAdminService 创建进程内管理员服务
func NewMemoryAdminService() InterfaceAdminService {
	return &MemoryAdminService{nextID: 1}
}

func (s *MemoryAdminService) CreateAdmin(admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.admins {
		if a.Username == admin.Username {
			return ErrAdminAlreadyExists
		}
	}

	hashedPassword, err := HashPassword(admin.Password)
	if err != nil {
		return err
	}
	admin.Password = hashedPassword

	if admin.Role == "" {
		admin.Role = "admin"
	}

	admin.ID = s.nextID
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	s.nextID++

	s.admins = append(s.admins, *admin)
	return nil
}

func (s *MemoryAdminService) VerifyCredentials(username, password string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.admins {
		if s.admins[i].Username == username {
			if !CheckPasswordHash(password, s.admins[i].Password) {
				return nil, ErrInvalidCredentials
			}
			admin := s.admins[i]
			return &admin, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (s *MemoryAdminService) GetAdminByID(id uint) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.admins {
		if s.admins[i].ID == id {
			admin := s.admins[i]
			return &admin, nil
		}
	}
	return nil, ErrAdminNotFound
}

func (s *MemoryAdminService) CountAdmins() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.admins)), nil
}
