package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamdanielchali/KMU-maintenance/internal/error/response"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct{}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController() *HealthCheckController {
	return &HealthCheckController{}
}

// Health 健康检查端点
// @Summary      健康检查
// @Description  返回服务状态和当前时间戳
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthCheckController) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
