package response

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// 通用业务码，各模块自有码段见 handler 中的 handleXxxError
const (
	CodeSuccess         = 0
	CodeInvalidParams   = 10001
	CodeUnauthenticated = 10002
	CodeForbidden       = 10003
	CodeRateLimited     = 10004
	CodeBodyTooLarge    = 10005
	CodeUploadTooLarge  = 10006
	CodeMissingFile     = 10007
	CodeOptimisticLock  = 10009
	CodeInternal        = 50000
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       any        `json:"list"`
	Pagination Pagination `json:"pagination"`
}

func write(c *gin.Context, status int, body Response) {
	c.JSON(status, body)
}

// ── 成功响应 ──

// OK 200
func OK(c *gin.Context, data any) {
	write(c, http.StatusOK, Response{Code: CodeSuccess, Message: "success", Data: data})
}

// Created 201
func Created(c *gin.Context, data any) {
	write(c, http.StatusCreated, Response{Code: CodeSuccess, Message: "success", Data: data})
}

// OKPage 分页列表，total_pages 向上取整
func OKPage(c *gin.Context, list any, total int64, page, pageSize int) {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	OK(c, PageData{List: list, Pagination: p})
}

// File 以附件形式返回生成的 xlsx / ics 文件
// 文件名常含土耳其语字符，同时给出 ASCII 回退名与 RFC 5987 编码名
func File(c *gin.Context, filename, contentType string, data []byte) {
	disposition := `attachment; filename="` + asciiFilename(filename) + `"; filename*=UTF-8''` + url.PathEscape(filename)
	c.Header("Content-Disposition", disposition)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}

var turkishFold = strings.NewReplacer(
	"ç", "c", "Ç", "C", "ğ", "g", "Ğ", "G", "ı", "i", "İ", "I",
	"ö", "o", "Ö", "O", "ş", "s", "Ş", "S", "ü", "u", "Ü", "U",
)

func asciiFilename(name string) string {
	folded := turkishFold.Replace(name)
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('_')
		case r < 0x20 || r > 0x7e:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	write(c, httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 附带校验细节，如缺失的表头列名或越界的行号
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	write(c, httpStatus, Response{Code: code, Message: message, Details: details})
}

func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// TooLarge 413，请求体或上传文件超限
func TooLarge(c *gin.Context, code int, message string) {
	Error(c, http.StatusRequestEntityTooLarge, code, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, CodeRateLimited, message)
}

// InternalError 500，细节只写日志不回显
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}
