package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services/container"
	"github.com/iamdanielchali/KMU-maintenance/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// apiResponse 统一响应格式
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestRouter 构建一个使用进程内存储的测试路由
func newTestRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		StorageMode:     "memory",
		SessionStore:    "memory",
		SessionTTLHours: 24,
		UploadDir:       t.TempDir(),
		MaxUploadSize:   5 * 1024 * 1024,
		FrontendURL:     "http://localhost:3000",
	}
	serviceContainer := container.NewServiceContainer(nil, cfg)
	return SetupRouterWithContainer(serviceContainer), cfg
}

func doJSON(r *gin.Engine, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "响应体: %s", w.Body.String())
	return resp
}

// createAdminAndLogin 创建首个管理员并登录, 返回会话Cookie
func createAdminAndLogin(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()

	w := doJSON(r, http.MethodPost, "/api/admin/create", gin.H{
		"username": "warden",
		"password": "Secret@123",
		"name":     "Warden",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/admin/login", gin.H{
		"username": "warden",
		"password": "Secret@123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == "kmu_session" {
			require.NotEmpty(t, c.Value)
			return c
		}
	}
	t.Fatal("登录响应中没有会话Cookie")
	return nil
}

func reportForm(room string) url.Values {
	return url.Values{
		"hostel":      {"Hostel A"},
		"room":        {room},
		"issueType":   {"Plumbing"},
		"description": {"洗手台漏水"},
		"contact":     {"0912345678"},
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	var data struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "OK", data.Status)
	assert.NotEmpty(t, data.Timestamp)
}

func TestSubmitReportReturnsTicketNumber(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doForm(r, "/api/reports", reportForm("A-101"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := parseResponse(t, w)
	var data struct {
		TicketNumber string `json:"ticketNumber"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "KMU-1001", data.TicketNumber)

	w = doForm(r, "/api/reports", reportForm("A-102"))
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "KMU-1002", data.TicketNumber)
}

func TestSubmitReportRejectsMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	form := reportForm("A-101")
	form.Del("description")

	w := doForm(r, "/api/reports", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminEndpointsRequireSession(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/reports"},
		{http.MethodGet, "/api/reports/export"},
		{http.MethodPatch, "/api/reports/1/status"},
		{http.MethodDelete, "/api/reports/1"},
		{http.MethodPost, "/api/admin/logout"},
	} {
		w := doJSON(r, tc.method, tc.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAdminCreateGating(t *testing.T) {
	r, _ := newTestRouter(t)

	// 系统中没有管理员时允许首次创建
	w := doJSON(r, http.MethodPost, "/api/admin/create", gin.H{
		"username": "warden",
		"password": "Secret@123",
		"name":     "Warden",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 已有管理员后, 未认证请求被拒绝
	w = doJSON(r, http.MethodPost, "/api/admin/create", gin.H{
		"username": "second",
		"password": "Secret@123",
		"name":     "Second",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 已登录管理员可以继续创建
	w = doJSON(r, http.MethodPost, "/api/admin/login", gin.H{
		"username": "warden",
		"password": "Secret@123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "kmu_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	w = doJSON(r, http.MethodPost, "/api/admin/create", gin.H{
		"username": "second",
		"password": "Secret@123",
		"name":     "Second",
	}, cookie)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 重复用户名被拒绝
	w = doJSON(r, http.MethodPost, "/api/admin/create", gin.H{
		"username": "second",
		"password": "Other@456",
		"name":     "Dup",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminCreateWithSetupToken(t *testing.T) {
	cfg := &config.Config{
		StorageMode:     "memory",
		SessionStore:    "memory",
		SessionTTLHours: 24,
		UploadDir:       t.TempDir(),
		MaxUploadSize:   5 * 1024 * 1024,
		AdminSetupToken: "bootstrap-token",
	}
	serviceContainer := container.NewServiceContainer(nil, cfg)
	r := SetupRouterWithContainer(serviceContainer)

	// 占掉首次初始化名额
	w := doJSON(r, http.MethodPost, "/api/admin/create", gin.H{
		"username": "warden", "password": "Secret@123", "name": "Warden",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 错误令牌被拒绝
	payload, _ := json.Marshal(gin.H{"username": "second", "password": "Secret@123", "name": "Second"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Setup-Token", "wrong")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 正确令牌放行
	req = httptest.NewRequest(http.MethodPost, "/api/admin/create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Setup-Token", "bootstrap-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAdminStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	// 未登录
	w := doJSON(r, http.MethodGet, "/api/admin/status", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	var status struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.False(t, status.Authenticated)

	// 登录后
	cookie := createAdminAndLogin(t, r)
	w = doJSON(r, http.MethodGet, "/api/admin/status", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.True(t, status.Authenticated)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := newTestRouter(t)
	createAdminAndLogin(t, r)

	w := doJSON(r, http.MethodPost, "/api/admin/login", gin.H{
		"username": "warden",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/login", gin.H{"username": "warden"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := createAdminAndLogin(t, r)

	w := doForm(r, "/api/reports", reportForm("A-101"))
	require.Equal(t, http.StatusOK, w.Code)

	// 列表
	w = doJSON(r, http.MethodGet, "/api/reports", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	var reports []struct {
		ID           uint   `json:"id"`
		TicketNumber string `json:"ticketNumber"`
		Status       string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "KMU-1001", reports[0].TicketNumber)
	assert.Equal(t, "Pending", reports[0].Status)
	id := reports[0].ID

	// 状态变更
	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/reports/%d/status", id), gin.H{"status": "InProgress"}, cookie)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 非法状态
	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/reports/%d/status", id), gin.H{"status": "Done"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 状态过滤
	w = doJSON(r, http.MethodGet, "/api/reports?status=InProgress", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &reports))
	assert.Len(t, reports, 1)

	w = doJSON(r, http.MethodGet, "/api/reports?status=Resolved", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &reports))
	assert.Empty(t, reports)

	// 导出
	w = doJSON(r, http.MethodGet, "/api/reports/export", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "maintenance-reports-")
	assert.NotEmpty(t, w.Body.Bytes())

	// 删除
	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/reports/%d", id), nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/reports/%d", id), nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/reports", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	require.NoError(t, json.Unmarshal(resp.Data, &reports))
	assert.Empty(t, reports)
}

func TestLogoutRevokesSession(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := createAdminAndLogin(t, r)

	w := doJSON(r, http.MethodPost, "/api/admin/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// 同一令牌注销后立即失效
	w = doJSON(r, http.MethodGet, "/api/reports", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitReportWithImage(t *testing.T) {
	r, cfg := newTestRouter(t)
	cookie := createAdminAndLogin(t, r)

	// 带图片的multipart提交
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range map[string]string{
		"hostel": "Hostel A", "room": "A-101", "issueType": "Plumbing",
		"description": "洗手台漏水", "contact": "0912345678",
	} {
		require.NoError(t, mw.WriteField(key, value))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="sink.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 附件落盘
	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// 附件可通过静态路由访问
	getReq := httptest.NewRequest(http.MethodGet, "/uploads/"+entries[0].Name(), nil)
	getRec := httptest.NewRecorder()
	r.ServeHTTP(getRec, getReq)
	assert.Equal(t, http.StatusOK, getRec.Code)
	assert.Equal(t, "jpeg bytes", getRec.Body.String())

	// 删除工单后附件一并删除
	listRec := doJSON(r, http.MethodGet, "/api/reports", nil, cookie)
	require.Equal(t, http.StatusOK, listRec.Code)
	resp := parseResponse(t, listRec)
	var reports []struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &reports))
	require.Len(t, reports, 1)

	delRec := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/reports/%d", reports[0].ID), nil, cookie)
	require.Equal(t, http.StatusOK, delRec.Code)

	entries, err = os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadRejectsNonImage(t *testing.T) {
	r, cfg := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range map[string]string{
		"hostel": "Hostel A", "room": "A-101", "issueType": "Plumbing",
		"description": "洗手台漏水", "contact": "0912345678",
	} {
		require.NoError(t, mw.WriteField(key, value))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="malware.exe"`)
	header.Set("Content-Type", "application/octet-stream")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 被拒绝的提交不落盘也不创建工单
	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
