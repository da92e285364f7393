package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services/container"
	"github.com/iamdanielchali/KMU-maintenance/internal/error/code"
	"github.com/iamdanielchali/KMU-maintenance/internal/error/response"
	"github.com/iamdanielchali/KMU-maintenance/pkg/logger"

	"github.com/gin-gonic/gin"
)

// xlsx内容类型
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InterfaceReportController 定义工单控制器接口
type InterfaceReportController interface {
	SubmitReport()
	GetReports()
	UpdateReportStatus()
	DeleteReport()
	ExportReports()
}

// ReportController 处理报修工单相关的请求
type ReportController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewReportController 创建一个新的工单控制器
func NewReportController(ctx *gin.Context, container *container.ServiceContainer) *ReportController {
	return &ReportController{
		Ctx:       ctx,
		Container: container,
	}
}

// UpdateStatusRequest 表示状态变更请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"InProgress"`
}

// HandleReportFunc 返回一个处理工单请求的Gin处理函数
func HandleReportFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewReportController(ctx, container)

		switch method {
		case "submitReport":
			controller.SubmitReport()
		case "getReports":
			controller.GetReports()
		case "updateReportStatus":
			controller.UpdateReportStatus()
		case "deleteReport":
			controller.DeleteReport()
		case "exportReports":
			controller.ExportReports()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// reportService 获取工单服务
func (c *ReportController) reportService() services.InterfaceReportService {
	return c.Container.GetService("report").(services.InterfaceReportService)
}

// attachmentService 获取附件服务
func (c *ReportController) attachmentService() services.InterfaceAttachmentService {
	return c.Container.GetService("attachment").(services.InterfaceAttachmentService)
}

// 1 SubmitReport 公开提交报修工单
// @Summary      提交报修工单
// @Description  住宿生提交报修, 支持可选的图片附件, 成功后返回工单编号
// @Tags         Report
// @Accept       multipart/form-data
// @Produce      json
// @Param        hostel formData string true "宿舍楼"
// @Param        room formData string true "房间号"
// @Param        issueType formData string true "问题类型"
// @Param        description formData string true "问题描述"
// @Param        contact formData string true "联系方式"
// @Param        image formData file false "现场照片, 仅限图片, 最大5MB"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reports [post]
func (c *ReportController) SubmitReport() {
	input := services.SubmitReportInput{
		Hostel:      c.Ctx.PostForm("hostel"),
		Room:        c.Ctx.PostForm("room"),
		IssueType:   c.Ctx.PostForm("issueType"),
		Description: c.Ctx.PostForm("description"),
		Contact:     c.Ctx.PostForm("contact"),
	}

	// 先校验必填字段, 再落附件, 避免校验失败留下孤儿文件
	if err := input.Validate(); err != nil {
		response.Fail(c.Ctx, code.ErrReportMissingFields, nil)
		return
	}

	// 附件可选, 取不到文件视为未上传
	if file, err := c.Ctx.FormFile("image"); err == nil && file != nil {
		ref, err := c.attachmentService().StoreImage(file)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnsupportedFileType):
				response.Fail(c.Ctx, code.ErrUploadUnsupportedType, nil)
			case errors.Is(err, services.ErrFileTooLarge):
				response.Fail(c.Ctx, code.ErrUploadTooLarge, nil)
			default:
				logger.Error("保存附件失败: %v", err)
				response.Fail(c.Ctx, code.ErrUploadFailed, nil)
			}
			return
		}
		input.Image = ref
	}

	report, err := c.reportService().SubmitReport(input)
	if err != nil {
		// 创建失败时清理已保存的附件
		if input.Image != "" {
			_ = c.attachmentService().DeleteImage(input.Image)
		}
		if errors.Is(err, services.ErrReportMissingFields) {
			response.Fail(c.Ctx, code.ErrReportMissingFields, nil)
			return
		}
		logger.Error("创建工单失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"ticketNumber": report.TicketNumber,
		"message":      "报修提交成功",
	})
}

// 2 GetReports 获取工单列表
// @Summary      获取工单列表
// @Description  按创建时间倒序返回工单, 可按状态过滤
// @Tags         Report
// @Produce      json
// @Param        status query string false "状态过滤: Pending/InProgress/Resolved/all"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reports [get]
func (c *ReportController) GetReports() {
	status := c.Ctx.Query("status")

	reports, err := c.reportService().ListReports(status)
	if err != nil {
		logger.Error("查询工单列表失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, reports)
}

// 3 UpdateReportStatus 变更工单状态
// @Summary      变更工单状态
// @Description  将工单状态设置为 Pending/InProgress/Resolved 之一
// @Tags         Report
// @Accept       json
// @Produce      json
// @Param        id path int true "工单ID"
// @Param        request body UpdateStatusRequest true "目标状态"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /reports/{id}/status [patch]
func (c *ReportController) UpdateReportStatus() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的工单ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "状态不能为空", nil)
		return
	}

	report, err := c.reportService().UpdateReportStatus(uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportInvalidStatus):
			response.Fail(c.Ctx, code.ErrReportInvalidStatus, nil)
		case errors.Is(err, services.ErrReportNotFound):
			response.Fail(c.Ctx, code.ErrReportNotFound, nil)
		default:
			logger.Error("变更工单状态失败: %v", err)
			response.Fail(c.Ctx, code.ErrDatabase, nil)
		}
		return
	}

	response.Success(c.Ctx, report)
}

// 4 DeleteReport 删除工单
// @Summary      删除工单
// @Description  删除指定工单, 关联的附件一并删除
// @Tags         Report
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /reports/{id} [delete]
func (c *ReportController) DeleteReport() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的工单ID")
		return
	}

	if err := c.reportService().DeleteReport(uint(id)); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			response.Fail(c.Ctx, code.ErrReportNotFound, nil)
			return
		}
		logger.Error("删除工单失败: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"message": "工单已删除"})
}

// 5 ExportReports 导出工单表格
// @Summary      导出工单
// @Description  将全部工单导出为xlsx表格下载
// @Tags         Report
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reports/export [get]
func (c *ReportController) ExportReports() {
	rows, err := c.reportService().ExportRows()
	if err != nil {
		logger.Error("查询导出数据失败: %v", err)
		response.Fail(c.Ctx, code.ErrReportExportFailed, nil)
		return
	}

	exportService := c.Container.GetService("export").(services.InterfaceExportService)
	data, err := exportService.ExportReportsXLSX(rows)
	if err != nil {
		logger.Error("生成导出文件失败: %v", err)
		response.Fail(c.Ctx, code.ErrReportExportFailed, nil)
		return
	}

	c.Ctx.Header("Content-Disposition", `attachment; filename="`+exportService.ExportFileName()+`"`)
	c.Ctx.Data(http.StatusOK, xlsxContentType, data)
}
