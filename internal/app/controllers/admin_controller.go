package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iamdanielchali/KMU-maintenance/internal/app/middleware"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services/container"
	"github.com/iamdanielchali/KMU-maintenance/internal/error/code"
	"github.com/iamdanielchali/KMU-maintenance/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceAdminController 定义管理员控制器接口
type InterfaceAdminController interface {
	Login()
	Logout()
	Status()
	CreateAdmin()
}

// AdminController 处理管理员认证和账户相关的请求
type AdminController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminController 创建一个新的管理员控制器
func NewAdminController(ctx *gin.Context, container *container.ServiceContainer) *AdminController {
	return &AdminController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 表示登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required" example:"warden01"`
	Password string `json:"password" binding:"required" example:"Warden@123"`
	Name     string `json:"name" binding:"required" example:"Hostel Warden"`
	Role     string `json:"role" example:"admin"`
}

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"401"`
	Message string      `json:"message" example:"用户名或密码错误"`
	Data    interface{} `json:"data"`
}

// HandleAdminFunc 返回一个处理管理员请求的Gin处理函数
func HandleAdminFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "logout":
			controller.Logout()
		case "status":
			controller.Status()
		case "createAdmin":
			controller.CreateAdmin()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// sessionService 获取会话服务
func (c *AdminController) sessionService() services.InterfaceSessionService {
	return c.Container.GetService("session").(services.InterfaceSessionService)
}

// adminService 获取管理员服务
func (c *AdminController) adminService() services.InterfaceAdminService {
	return c.Container.GetService("admin").(services.InterfaceAdminService)
}

// 1 Login 管理员登录
// @Summary      管理员登录
// @Description  校验用户名和密码, 成功后签发会话Cookie
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录请求参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/login [post]
func (c *AdminController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "用户名和密码不能为空", nil)
		return
	}

	token, session, err := c.sessionService().Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Fail(c.Ctx, code.ErrInvalidCredentials, nil)
			return
		}
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	cfg := c.Container.GetConfig()
	secure := strings.ToUpper(cfg.EnvType) == "SERVER"
	c.Ctx.SetCookie(middleware.SessionCookieName, token,
		int(c.sessionService().TTL().Seconds()), "/", "", secure, true)

	response.Success(c.Ctx, gin.H{
		"admin": gin.H{
			"id":   session.AdminID,
			"name": session.AdminName,
			"role": session.AdminRole,
		},
	})
}

// 2 Logout 管理员注销
// @Summary      管理员注销
// @Description  销毁当前会话, 同一令牌之后不再有效
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /admin/logout [post]
func (c *AdminController) Logout() {
	token := middleware.TokenFromContext(c.Ctx)
	if err := c.sessionService().Logout(token); err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	// 清除客户端Cookie
	c.Ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	response.Success(c.Ctx, gin.H{"message": "已注销"})
}

// 3 Status 查询当前认证状态
// @Summary      查询认证状态
// @Description  根据会话Cookie返回当前是否已登录及管理员摘要
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/status [get]
func (c *AdminController) Status() {
	token, err := c.Ctx.Cookie(middleware.SessionCookieName)
	if err != nil || token == "" {
		response.Success(c.Ctx, gin.H{"authenticated": false})
		return
	}

	session, err := c.sessionService().Validate(token)
	if err != nil {
		response.Success(c.Ctx, gin.H{"authenticated": false})
		return
	}

	response.Success(c.Ctx, gin.H{
		"authenticated": true,
		"admin": gin.H{
			"id":   session.AdminID,
			"name": session.AdminName,
			"role": session.AdminRole,
		},
	})
}

// setupAllowed 判断当前请求是否允许创建管理员账户。
// 允许三种情况: 已登录管理员、携带正确的一次性安装令牌、系统中还没有任何管理员。
func (c *AdminController) setupAllowed() bool {
	if token, err := c.Ctx.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		if _, err := c.sessionService().Validate(token); err == nil {
			return true
		}
	}

	cfg := c.Container.GetConfig()
	if cfg.AdminSetupToken != "" && c.Ctx.GetHeader("X-Setup-Token") == cfg.AdminSetupToken {
		return true
	}

	count, err := c.adminService().CountAdmins()
	return err == nil && count == 0
}

// 4 CreateAdmin 创建管理员账户
// @Summary      创建管理员账户
// @Description  创建一个新的管理员。仅允许已登录管理员、持有安装令牌的请求, 或系统尚无管理员时的首次初始化。
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body CreateAdminRequest true "管理员信息"
// @Param        X-Setup-Token header string false "一次性安装令牌"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/create [post]
func (c *AdminController) CreateAdmin() {
	if !c.setupAllowed() {
		response.Fail(c.Ctx, code.ErrSetupForbidden, nil)
		return
	}

	var req CreateAdminRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "用户名、密码和姓名不能为空", nil)
		return
	}

	admin := &models.Admin{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password, // 密码哈希在Service层处理
		Name:     strings.TrimSpace(req.Name),
		Role:     req.Role,
	}

	if err := c.adminService().CreateAdmin(admin); err != nil {
		if errors.Is(err, services.ErrAdminAlreadyExists) {
			response.Fail(c.Ctx, code.ErrAdminAlreadyExist, nil)
			return
		}
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"admin": gin.H{
			"id":         admin.ID,
			"username":   admin.Username,
			"name":       admin.Name,
			"role":       admin.Role,
			"created_at": admin.CreatedAt,
		},
	})
}
