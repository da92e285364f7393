package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// newTestDB 创建一个基于文件的sqlite测试数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Admin{}, &models.Report{}, &models.TicketCounter{}))
	require.NoError(t, EnsureTicketCounter(db))
	return db
}

// newTestConfig 创建测试配置, 附件目录指向临时目录
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		UploadDir:       t.TempDir(),
		MaxUploadSize:   5 * 1024 * 1024,
		SessionTTLHours: 24,
	}
}

func newTestReportService(t *testing.T) (InterfaceReportService, *config.Config) {
	t.Helper()
	cfg := newTestConfig(t)
	db := newTestDB(t)
	return NewReportService(db, cfg, NewAttachmentService(cfg)), cfg
}

func validInput() SubmitReportInput {
	return SubmitReportInput{
		Hostel:      "Hostel A",
		Room:        "A-101",
		IssueType:   "Plumbing",
		Description: "洗手台漏水",
		Contact:     "0912345678",
	}
}

func TestSubmitReportAssignsSequentialTicketNumbers(t *testing.T) {
	svc, _ := newTestReportService(t)

	first, err := svc.SubmitReport(validInput())
	require.NoError(t, err)
	assert.Equal(t, "KMU-1001", first.TicketNumber)
	assert.Equal(t, models.ReportStatusPending, first.Status)

	second, err := svc.SubmitReport(validInput())
	require.NoError(t, err)
	assert.Equal(t, "KMU-1002", second.TicketNumber)

	third, err := svc.SubmitReport(validInput())
	require.NoError(t, err)
	assert.Equal(t, "KMU-1003", third.TicketNumber)
}

func TestSubmitReportRejectsMissingFields(t *testing.T) {
	svc, _ := newTestReportService(t)

	for _, mutate := range []func(*SubmitReportInput){
		func(in *SubmitReportInput) { in.Hostel = "" },
		func(in *SubmitReportInput) { in.Room = "  " },
		func(in *SubmitReportInput) { in.IssueType = "" },
		func(in *SubmitReportInput) { in.Description = "" },
		func(in *SubmitReportInput) { in.Contact = "" },
	} {
		in := validInput()
		mutate(&in)
		_, err := svc.SubmitReport(in)
		assert.ErrorIs(t, err, ErrReportMissingFields)
	}

	// 校验失败的提交不消耗编号
	report, err := svc.SubmitReport(validInput())
	require.NoError(t, err)
	assert.Equal(t, "KMU-1001", report.TicketNumber)
}

func TestSubmitReportTrimsFields(t *testing.T) {
	svc, _ := newTestReportService(t)

	in := validInput()
	in.Hostel = "  Hostel A  "
	in.Room = " A-101 "

	report, err := svc.SubmitReport(in)
	require.NoError(t, err)
	assert.Equal(t, "Hostel A", report.Hostel)
	assert.Equal(t, "A-101", report.Room)
}

func TestUpdateReportStatus(t *testing.T) {
	svc, _ := newTestReportService(t)

	report, err := svc.SubmitReport(validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateReportStatus(report.ID, string(models.ReportStatusInProgress))
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusInProgress, updated.Status)

	updated, err = svc.UpdateReportStatus(report.ID, string(models.ReportStatusResolved))
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, updated.Status)

	// 编号在状态变更后保持不变
	assert.Equal(t, report.TicketNumber, updated.TicketNumber)
}

func TestUpdateReportStatusRejectsInvalidStatus(t *testing.T) {
	svc, _ := newTestReportService(t)

	report, err := svc.SubmitReport(validInput())
	require.NoError(t, err)

	_, err = svc.UpdateReportStatus(report.ID, "Done")
	assert.ErrorIs(t, err, ErrReportInvalidStatus)

	// 非法状态不触碰记录
	got, err := svc.GetReportByID(report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, got.Status)
}

func TestUpdateReportStatusNotFound(t *testing.T) {
	svc, _ := newTestReportService(t)

	_, err := svc.UpdateReportStatus(9999, string(models.ReportStatusResolved))
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestListReportsFilterAndOrder(t *testing.T) {
	svc, _ := newTestReportService(t)

	var ids []uint
	for i := 0; i < 3; i++ {
		in := validInput()
		in.Room = fmt.Sprintf("A-%d", 101+i)
		report, err := svc.SubmitReport(in)
		require.NoError(t, err)
		ids = append(ids, report.ID)
	}

	_, err := svc.UpdateReportStatus(ids[1], string(models.ReportStatusResolved))
	require.NoError(t, err)

	all, err := svc.ListReports("")
	require.NoError(t, err)
	require.Len(t, all, 3)

	// 最新的排在最前面
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	// "all" 与空串等价
	allAgain, err := svc.ListReports("all")
	require.NoError(t, err)
	assert.Len(t, allAgain, 3)

	pending, err := svc.ListReports(string(models.ReportStatusPending))
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	resolved, err := svc.ListReports(string(models.ReportStatusResolved))
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, ids[1], resolved[0].ID)
}

func TestDeleteReportRemovesAttachment(t *testing.T) {
	cfg := newTestConfig(t)
	db := newTestDB(t)
	svc := NewReportService(db, cfg, NewAttachmentService(cfg))

	// 预置一个附件文件, 模拟提交时保存的图片
	fileName := "1700000000000-12345.jpg"
	filePath := filepath.Join(cfg.UploadDir, fileName)
	require.NoError(t, os.WriteFile(filePath, []byte("fake image"), 0644))

	in := validInput()
	in.Image = UploadURLPrefix + "/" + fileName
	report, err := svc.SubmitReport(in)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReport(report.ID))

	_, err = svc.GetReportByID(report.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = os.Stat(filePath)
	assert.True(t, os.IsNotExist(err), "附件文件应随工单一并删除")
}

func TestDeleteReportNotFound(t *testing.T) {
	svc, _ := newTestReportService(t)
	assert.ErrorIs(t, svc.DeleteReport(42), ErrReportNotFound)
}

func TestExportRows(t *testing.T) {
	svc, _ := newTestReportService(t)

	noImage, err := svc.SubmitReport(validInput())
	require.NoError(t, err)

	withImage := validInput()
	withImage.Image = UploadURLPrefix + "/photo.jpg"
	_, err = svc.SubmitReport(withImage)
	require.NoError(t, err)

	rows, err := svc.ExportRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// 倒序: 带图片的工单在前
	assert.Equal(t, UploadURLPrefix+"/photo.jpg", rows[0].Image)
	assert.Equal(t, noImage.TicketNumber, rows[1].TicketNumber)
	assert.Equal(t, "N/A", rows[1].Image)
	assert.Equal(t, string(models.ReportStatusPending), rows[0].Status)
	assert.NotEmpty(t, rows[0].Date)
}

// 并发提交使用进程内实现验证, 避免sqlite单写锁干扰
func TestTicketNumbersUniqueUnderConcurrency(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewMemoryReportService(NewAttachmentService(cfg))

	const n = 50
	var wg sync.WaitGroup
	numbers := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := svc.SubmitReport(validInput())
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- report.TicketNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "重复的工单编号: %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestMemoryReportServiceMatchesPersistentSemantics(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewMemoryReportService(NewAttachmentService(cfg))

	first, err := svc.SubmitReport(validInput())
	require.NoError(t, err)
	assert.Equal(t, "KMU-1001", first.TicketNumber)

	_, err = svc.SubmitReport(SubmitReportInput{})
	assert.ErrorIs(t, err, ErrReportMissingFields)

	_, err = svc.UpdateReportStatus(first.ID, "Broken")
	assert.ErrorIs(t, err, ErrReportInvalidStatus)

	updated, err := svc.UpdateReportStatus(first.ID, string(models.ReportStatusInProgress))
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusInProgress, updated.Status)

	require.NoError(t, svc.DeleteReport(first.ID))
	assert.ErrorIs(t, svc.DeleteReport(first.ID), ErrReportNotFound)
}
