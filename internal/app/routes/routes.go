package routes

import (
	_ "github.com/iamdanielchali/KMU-maintenance/docs"
	"github.com/iamdanielchali/KMU-maintenance/internal/app/controllers"
	"github.com/iamdanielchali/KMU-maintenance/internal/app/middleware"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services/container"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件, 只允许配置的前端来源并携带凭证Cookie
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.FrontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Setup-Token, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg)
	// 初始化中间件
	middleware.InitAuthMiddleware(serviceContainer)

	// 附件静态文件路由
	r.Static("/uploads", cfg.UploadDir)

	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// SetupRouterWithContainer 使用已构建的服务容器初始化路由, 主要用于测试
func SetupRouterWithContainer(serviceContainer *container.ServiceContainer) *gin.Engine {
	r := gin.New()

	cfg := serviceContainer.GetConfig()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.FrontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitAuthMiddleware(serviceContainer)
	r.Static("/uploads", cfg.UploadDir)
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 健康检查
	healthController := controllers.NewHealthCheckController()
	api.GET("/health", healthController.Health)

	// 管理员认证路由
	api.POST("/admin/login", controllers.HandleAdminFunc(container, "login"))
	api.GET("/admin/status", controllers.HandleAdminFunc(container, "status"))
	// 账户创建自带准入判断: 已登录管理员、安装令牌或首次初始化
	api.POST("/admin/create", controllers.HandleAdminFunc(container, "createAdmin"))

	// 公开报修提交, 按来源IP限流防止刷单
	api.POST("/reports", middleware.IPRateLimiter(5, 20), controllers.HandleReportFunc(container, "submitReport"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.AuthenticateAdmin())

	// 管理员路由
	auth.POST("/admin/logout", controllers.HandleAdminFunc(container, "logout"))

	// 工单路由
	auth.GET("/reports", controllers.HandleReportFunc(container, "getReports"))
	auth.GET("/reports/export", controllers.HandleReportFunc(container, "exportReports"))
	auth.PATCH("/reports/:id/status", controllers.HandleReportFunc(container, "updateReportStatus"))
	auth.DELETE("/reports/:id", controllers.HandleReportFunc(container, "deleteReport"))
}
