package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// 导出工作表名称
const exportSheetName = "Maintenance Reports"

// 导出表头, 列顺序与ReportExportRow一致
var exportHeaders = []string{
	"Ticket Number", "Hostel", "Room", "Issue Type",
	"Description", "Contact", "Status", "Date", "Image",
}

// InterfaceExportService 导出服务接口
type InterfaceExportService interface {
	ExportReportsXLSX(rows []ReportExportRow) ([]byte, error)
	ExportFileName() string
}

// ExportService 将工单序列编码为xlsx字节流
type ExportService struct{}

// NewExportService 创建一个新的导出服务
func NewExportService() InterfaceExportService {
	return &ExportService{}
}

// 1 ExportReportsXLSX 生成xlsx文件内容。
// 零条工单时仍输出仅含表头的合法表格。
func (s *ExportService) ExportReportsXLSX(rows []ReportExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	// 表头行
	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	// 数据行
	for i, row := range rows {
		values := []string{
			row.TicketNumber, row.Hostel, row.Room, row.IssueType,
			row.Description, row.Contact, row.Status, row.Date, row.Image,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// 2 ExportFileName 生成带日期的下载文件名
func (s *ExportService) ExportFileName() string {
	return fmt.Sprintf("maintenance-reports-%s.xlsx", time.Now().Format("2006-01-02"))
}
