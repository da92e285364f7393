package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"
	"github.com/iamdanielchali/KMU-maintenance/pkg/logger"

	"gorm.io/gorm"
)

// 工单编号规则: KMU-前缀, 四位零填充, 从1001开始
const (
	ticketCounterName = "report"
	ticketNumberSeed  = 1000
	ticketNumberFmt   = "KMU-%04d"
)

var (
	// ErrReportNotFound 工单不存在
	ErrReportNotFound = errors.New("报修工单不存在")
	// ErrReportInvalidStatus 状态不在枚举范围内
	ErrReportInvalidStatus = errors.New("无效的工单状态")
	// ErrReportMissingFields 必填字段缺失
	ErrReportMissingFields = errors.New("缺少必填字段")
)

// SubmitReportInput 公开提交的工单内容
type SubmitReportInput struct {
	Hostel      string
	Room        string
	IssueType   string
	Description string
	Contact     string
	Image       string // 附件引用, 可为空
}

// Validate 校验必填字段均非空
func (in *SubmitReportInput) Validate() error {
	if strings.TrimSpace(in.Hostel) == "" ||
		strings.TrimSpace(in.Room) == "" ||
		strings.TrimSpace(in.IssueType) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Contact) == "" {
		return ErrReportMissingFields
	}
	return nil
}

// ReportExportRow 导出表格的一行
type ReportExportRow struct {
	TicketNumber string
	Hostel       string
	Room         string
	IssueType    string
	Description  string
	Contact      string
	Status       string
	Date         string
	Image        string
}

// InterfaceReportService 工单服务接口
type InterfaceReportService interface {
	SubmitReport(input SubmitReportInput) (*models.Report, error)
	ListReports(status string) ([]models.Report, error)
	GetReportByID(id uint) (*models.Report, error)
	UpdateReportStatus(id uint, status string) (*models.Report, error)
	DeleteReport(id uint) error
	ExportRows() ([]ReportExportRow, error)
}

// ReportService 提供报修工单相关的服务
type ReportService struct {
	DB          *gorm.DB
	Config      *config.Config
	Attachments InterfaceAttachmentService
}

// NewReportService 创建一个新的工单服务
func NewReportService(db *gorm.DB, cfg *config.Config, attachments InterfaceAttachmentService) InterfaceReportService {
	return &ReportService{
		DB:          db,
		Config:      cfg,
		Attachments: attachments,
	}
}

// EnsureTicketCounter 确保计数器行存在, 在迁移后调用一次
func EnsureTicketCounter(db *gorm.DB) error {
	var counter models.TicketCounter
	err := db.Where("name = ?", ticketCounterName).First(&counter).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(&models.TicketCounter{Name: ticketCounterName, Value: ticketNumberSeed}).Error
}

// FormatTicketNumber 按规则格式化工单编号
func FormatTicketNumber(value int64) string {
	return fmt.Sprintf(ticketNumberFmt, value)
}

// 1 SubmitReport 创建工单。
// 编号在创建事务内通过对计数器行的原子自增分配,
// 并发提交由行锁串行化, 不会产生重复编号。编号分配后不再变更。
func (s *ReportService) SubmitReport(input SubmitReportInput) (*models.Report, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	report := &models.Report{
		Hostel:      strings.TrimSpace(input.Hostel),
		Room:        strings.TrimSpace(input.Room),
		IssueType:   strings.TrimSpace(input.IssueType),
		Description: strings.TrimSpace(input.Description),
		Contact:     strings.TrimSpace(input.Contact),
		Image:       input.Image,
		Status:      models.ReportStatusPending,
		Comments:    []string{},
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TicketCounter{}).
			Where("name = ?", ticketCounterName).
			Update("value", gorm.Expr("value + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 计数器行缺失时补建, 正常情况下由迁移阶段创建
			if err := tx.Create(&models.TicketCounter{Name: ticketCounterName, Value: ticketNumberSeed + 1}).Error; err != nil {
				return err
			}
		}

		var counter models.TicketCounter
		if err := tx.Where("name = ?", ticketCounterName).First(&counter).Error; err != nil {
			return err
		}

		report.TicketNumber = FormatTicketNumber(counter.Value)
		return tx.Create(report).Error
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// 2 ListReports 按创建时间倒序列出工单, status为空或"all"时不过滤
func (s *ReportService) ListReports(status string) ([]models.Report, error) {
	var reports []models.Report

	query := s.DB.Model(&models.Report{}).Order("created_at DESC, id DESC")
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// 3 GetReportByID 根据ID获取工单
func (s *ReportService) GetReportByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := s.DB.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// 4 UpdateReportStatus 变更工单状态。
// 先校验状态值, 非法状态不会触碰任何记录。
func (s *ReportService) UpdateReportStatus(id uint, status string) (*models.Report, error) {
	if !models.IsValidReportStatus(status) {
		return nil, ErrReportInvalidStatus
	}

	report, err := s.GetReportByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(report).Update("status", status).Error; err != nil {
		return nil, err
	}

	report.Status = models.ReportStatus(status)
	return report, nil
}

// 5 DeleteReport 删除工单。附件先于记录删除, 文件缺失不视为错误。
func (s *ReportService) DeleteReport(id uint) error {
	report, err := s.GetReportByID(id)
	if err != nil {
		return err
	}

	if report.Image != "" {
		if err := s.Attachments.DeleteImage(report.Image); err != nil {
			// 附件删除失败不阻塞记录删除, 记录日志即可
			logger.Warning("删除工单附件失败: %v", err)
		}
	}

	return s.DB.Delete(report).Error
}

// 6 ExportRows 生成导出表格行, 按创建时间倒序
func (s *ReportService) ExportRows() ([]ReportExportRow, error) {
	reports, err := s.ListReports("")
	if err != nil {
		return nil, err
	}

	rows := make([]ReportExportRow, 0, len(reports))
	for _, r := range reports {
		image := "N/A"
		if r.Image != "" {
			image = r.Image
		}
		rows = append(rows, ReportExportRow{
			TicketNumber: r.TicketNumber,
			Hostel:       r.Hostel,
			Room:         r.Room,
			IssueType:    r.IssueType,
			Description:  r.Description,
			Contact:      r.Contact,
			Status:       string(r.Status),
			Date:         r.CreatedAt.Format("2006-01-02 15:04:05"),
			Image:        image,
		})
	}
	return rows, nil
}
