package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusRequestEntityTooLarge - 413: 请求体过大.
	StatusRequestEntityTooLarge = 413
	// StatusTooManyRequests - 429: 请求过于频繁.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrSessionInvalid - 401: 会话无效.
	ErrSessionInvalid
	// ErrTooManyRequests - 429: 请求过于频繁.
	ErrTooManyRequests
)

// 管理员相关错误码 (101xxx).
const (
	// ErrAdminNotFound - 404: 管理员不存在.
	ErrAdminNotFound int = iota + 101000
	// ErrAdminAlreadyExist - 400: 管理员已存在.
	ErrAdminAlreadyExist
	// ErrInvalidCredentials - 401: 用户名或密码错误.
	ErrInvalidCredentials
	// ErrSetupForbidden - 403: 无权创建管理员账户.
	ErrSetupForbidden
)

// 报修工单相关错误码 (102xxx).
const (
	// ErrReportNotFound - 404: 报修工单不存在.
	ErrReportNotFound int = iota + 102000
	// ErrReportMissingFields - 400: 报修工单缺少必填字段.
	ErrReportMissingFields
	// ErrReportInvalidStatus - 400: 无效的工单状态.
	ErrReportInvalidStatus
	// ErrReportExportFailed - 500: 工单导出失败.
	ErrReportExportFailed
)

// 附件上传相关错误码 (103xxx).
const (
	// ErrUploadUnsupportedType - 400: 不支持的文件类型.
	ErrUploadUnsupportedType int = iota + 103000
	// ErrUploadTooLarge - 400: 文件超过大小限制.
	ErrUploadTooLarge
	// ErrUploadFailed - 500: 文件保存失败.
	ErrUploadFailed
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)
