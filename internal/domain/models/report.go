package models

// 工单状态
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "Pending"
	ReportStatusInProgress ReportStatus = "InProgress"
	ReportStatusResolved   ReportStatus = "Resolved"
)

// IsValidReportStatus 校验状态是否属于三个枚举值之一
func IsValidReportStatus(s string) bool {
	switch ReportStatus(s) {
	case ReportStatusPending, ReportStatusInProgress, ReportStatusResolved:
		return true
	}
	return false
}

// Report 住宿楼报修工单
type Report struct {
	BaseModel
	Hostel       string       `gorm:"type:varchar(100);not null" json:"hostel"`
	Room         string       `gorm:"type:varchar(50);not null" json:"room"`
	IssueType    string       `gorm:"type:varchar(100);not null" json:"issueType"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	Contact      string       `gorm:"type:varchar(100);not null" json:"contact"`
	Image        string       `gorm:"type:varchar(255)" json:"image"` // 附件相对路径, 例如 /uploads/xxx.jpg, 可为空
	TicketNumber string       `gorm:"type:varchar(20);unique;not null" json:"ticketNumber"` // 创建时分配一次, 之后不可修改
	Status       ReportStatus `gorm:"type:varchar(20);default:'Pending'" json:"status"`
	Comments     []string     `gorm:"serializer:json" json:"comments"` // 只追加的处理记录
}

// TicketCounter 工单编号计数器, 作为持久化的单调计数器使用
type TicketCounter struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(50);unique;not null" json:"name"`
	Value int64  `gorm:"not null" json:"value"`
}
