package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/internal/service"
	pkgerrors "irufoodflow/backend/pkg/errors"
	"irufoodflow/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetCaller 同时提取 user_id 与 role
func MustGetCaller(c *gin.Context) (string, string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", "", false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", "", false
	}
	return userID, role, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "未认证")
		return "", false
	}
	return s, true
}

// ── 文件上传 / 下载 ──

// readUpload 读取 multipart 字段 file 的全部内容，超过 maxBytes 返回 ErrUploadTooLarge
func readUpload(c *gin.Context, maxBytes int64) (io.Reader, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeMissingFile, "请上传文件（字段名 file）")
		return nil, false
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		handleCommonError(c, pkgerrors.ErrUploadTooLarge)
		return nil, false
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, response.CodeMissingFile, "无法读取上传文件")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, response.CodeMissingFile, "无法读取上传文件")
		return nil, false
	}
	return bytes.NewReader(data), true
}

func sendXLSX(c *gin.Context, data []byte, filename string) {
	response.File(c, filename, service.XLSXContentType, data)
}

// ── 通用错误 ──

// handleCommonError 处理跨模块共享的错误，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, response.CodeForbidden, "无权限访问")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeOptimisticLock, "数据已被其他操作修改，请刷新后重试")
	case errors.Is(err, pkgerrors.ErrUploadTooLarge):
		response.TooLarge(c, response.CodeUploadTooLarge, "上传文件过大")
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 10101, "无法解析 Excel 文件")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 10102, "Excel 文件无数据行")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10103, "数据行数超过上限", err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10104, "Excel 表头缺少必要列", err.Error())
	default:
		return false
	}
	return true
}
