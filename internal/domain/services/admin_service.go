package services

import (
	"errors"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcrypt 哈希成本, 与初始版本保持一致
const BcryptCost = 12

var (
	// ErrAdminNotFound 管理员不存在
	ErrAdminNotFound = errors.New("管理员不存在")
	// ErrAdminAlreadyExists 用户名已被占用
	ErrAdminAlreadyExists = errors.New("管理员已存在")
	// ErrInvalidCredentials 登录凭证无效。
	// 用户不存在和密码错误统一返回此错误, 避免暴露用户名是否存在。
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)

// InterfaceAdminService Admin服务接口
type InterfaceAdminService interface {
	CreateAdmin(admin *models.Admin) error
	VerifyCredentials(username, password string) (*models.Admin, error)
	GetAdminByID(id uint) (*models.Admin, error)
	CountAdmins() (int64, error)
}

// AdminService 提供管理员相关的服务
type AdminService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAdminService 创建一个新的管理员服务
func NewAdminService(db *gorm.DB, cfg *config.Config) InterfaceAdminService {
	return &AdminService{
		DB:     db,
		Config: cfg,
	}
}

// HashPassword 使用 bcrypt 对密码进行哈希处理
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash 比较密码和哈希值
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// 1 CreateAdmin 创建新管理员。密码在写入前完成哈希, 明文不落库。
func (s *AdminService) CreateAdmin(admin *models.Admin) error {
	// 验证用户名唯一性
	var count int64
	if err := s.DB.Model(&models.Admin{}).Where("username = ?", admin.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAdminAlreadyExists
	}

	// 设置密码哈希
	hashedPassword, err := HashPassword(admin.Password)
	if err != nil {
		return err
	}
	admin.Password = hashedPassword

	if admin.Role == "" {
		admin.Role = "admin"
	}

	return s.DB.Create(admin).Error
}

// 2 VerifyCredentials 校验登录凭证, 用户名区分大小写精确匹配
func (s *AdminService) VerifyCredentials(username, password string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// MySQL默认排序规则不区分大小写, 这里再做一次精确比较
	if admin.Username != username {
		return nil, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, admin.Password) {
		return nil, ErrInvalidCredentials
	}

	return &admin, nil
}

// 3 GetAdminByID 根据ID获取管理员
func (s *AdminService) GetAdminByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// 4 CountAdmins 统计管理员数量
func (s *AdminService) CountAdmins() (int64, error) {
	var count int64
	if err := s.DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
