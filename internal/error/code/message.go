package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrSessionInvalid:  "会话无效或已过期",
	ErrTooManyRequests: "请求过于频繁",

	// 管理员相关错误码
	ErrAdminNotFound:      "管理员不存在",
	ErrAdminAlreadyExist:  "管理员已存在",
	ErrInvalidCredentials: "用户名或密码错误",
	ErrSetupForbidden:     "无权创建管理员账户",

	// 报修工单相关错误码
	ErrReportNotFound:      "报修工单不存在",
	ErrReportMissingFields: "缺少必填字段",
	ErrReportInvalidStatus: "无效的工单状态",
	ErrReportExportFailed:  "工单导出失败",

	// 附件上传相关错误码
	ErrUploadUnsupportedType: "仅支持上传图片文件",
	ErrUploadTooLarge:        "文件超过大小限制",
	ErrUploadFailed:          "文件保存失败",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrSessionInvalid:  StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	// 管理员相关错误码
	ErrAdminNotFound:      StatusNotFound,
	ErrAdminAlreadyExist:  StatusBadRequest,
	ErrInvalidCredentials: StatusUnauthorized,
	ErrSetupForbidden:     StatusForbidden,

	// 报修工单相关错误码
	ErrReportNotFound:      StatusNotFound,
	ErrReportMissingFields: StatusBadRequest,
	ErrReportInvalidStatus: StatusBadRequest,
	ErrReportExportFailed:  StatusInternalServerError,

	// 附件上传相关错误码
	ErrUploadUnsupportedType: StatusBadRequest,
	ErrUploadTooLarge:        StatusBadRequest,
	ErrUploadFailed:          StatusInternalServerError,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
