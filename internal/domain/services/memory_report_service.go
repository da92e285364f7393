package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/pkg/logger"
)

// MemoryReportService 进程内工单存储。
// 未配置数据库时使用, 编号计数器与记录同锁, 并发提交不会产生重复编号。
type MemoryReportService struct {
	mu          sync.RWMutex
	nextID      uint
	counter     int64
	reports     []models.Report
	attachments InterfaceAttachmentService
}

// NewMemoryReportService 创建进程内工单服务
func NewMemoryReportService(attachments InterfaceAttachmentService) InterfaceReportService {
	return &MemoryReportService{
		nextID:      1,
		counter:     ticketNumberSeed,
		attachments: attachments,
	}
}

func (s *MemoryReportService) SubmitReport(input SubmitReportInput) (*models.Report, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	now := time.Now()
	report := models.Report{
		BaseModel: models.BaseModel{
			ID:        s.nextID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Hostel:       strings.TrimSpace(input.Hostel),
		Room:         strings.TrimSpace(input.Room),
		IssueType:    strings.TrimSpace(input.IssueType),
		Description:  strings.TrimSpace(input.Description),
		Contact:      strings.TrimSpace(input.Contact),
		Image:        input.Image,
		TicketNumber: FormatTicketNumber(s.counter),
		Status:       models.ReportStatusPending,
		Comments:     []string{},
	}
	s.nextID++
	s.reports = append(s.reports, report)

	result := report
	return &result, nil
}

func (s *MemoryReportService) ListReports(status string) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if status != "" && status != "all" && string(r.Status) != status {
			continue
		}
		reports = append(reports, r)
	}

	// 创建时间倒序, 同一时间按ID倒序
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID > reports[j].ID
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	return reports, nil
}

func (s *MemoryReportService) GetReportByID(id uint) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.reports {
		if s.reports[i].ID == id {
			report := s.reports[i]
			return &report, nil
		}
	}
	return nil, ErrReportNotFound
}

func (s *MemoryReportService) UpdateReportStatus(id uint, status string) (*models.Report, error) {
	if !models.IsValidReportStatus(status) {
		return nil, ErrReportInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reports {
		if s.reports[i].ID == id {
			s.reports[i].Status = models.ReportStatus(status)
			s.reports[i].UpdatedAt = time.Now()
			report := s.reports[i]
			return &report, nil
		}
	}
	return nil, ErrReportNotFound
}

func (s *MemoryReportService) DeleteReport(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reports {
		if s.reports[i].ID == id {
			if s.reports[i].Image != "" {
				if err := s.attachments.DeleteImage(s.reports[i].Image); err != nil {
					logger.Warning("删除工单附件失败: %v", err)
				}
			}
			s.reports = append(s.reports[:i], s.reports[i+1:]...)
			return nil
		}
	}
	return ErrReportNotFound
}

func (s *MemoryReportService) ExportRows() ([]ReportExportRow, error) {
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
