package container

import (
	"sync"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"
	"github.com/iamdanielchali/KMU-maintenance/pkg/logger"

	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入。
// db为nil时使用进程内存储实现, 由启动配置决定, 请求处理路径不做运行时分支。
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	// 基础服务
	redisService   services.InterfaceRedisService
	sessionService services.InterfaceSessionService

	// 业务服务
	adminService      services.InterfaceAdminService
	reportService     services.InterfaceReportService
	attachmentService services.InterfaceAttachmentService
	exportService     services.InterfaceExportService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if cfg == nil {
		panic("配置为空")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化附件服务
	c.attachmentService = services.NewAttachmentService(c.config)

	// 初始化业务存储服务, 按配置选择持久化或进程内实现
	if c.db != nil {
		c.adminService = services.NewAdminService(c.db, c.config)
		c.reportService = services.NewReportService(c.db, c.config, c.attachmentService)
	} else {
		logger.Warning("未配置数据库, 使用进程内存储, 重启后数据将丢失")
		c.adminService = services.NewMemoryAdminService()
		c.reportService = services.NewMemoryReportService(c.attachmentService)
	}

	// 初始化会话存储
	var sessionStore services.SessionStore
	if c.config.UseMemorySessions() {
		logger.Warning("会话使用进程内存储, 多进程部署下认证将不一致")
		sessionStore = services.NewMemorySessionStore()
	} else {
		redisService := services.NewRedisService(c.config)
		if err := redisService.Ping(); err != nil {
			logger.Warning("Redis连接测试失败: %v", err)
		}
		c.redisService = redisService
		sessionStore = redisService
	}
	c.sessionService = services.NewSessionService(c.adminService, sessionStore, c.config)

	// 初始化导出服务
	c.exportService = services.NewExportService()
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "redis":
		return c.redisService
	case "session":
		return c.sessionService
	case "admin":
		return c.adminService
	case "report":
		return c.reportService
	case "attachment":
		return c.attachmentService
	case "export":
		return c.exportService
	default:
		return nil
	}
}
