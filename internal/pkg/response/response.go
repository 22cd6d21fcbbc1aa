package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误键对应的默认文案
var defaultMessages = map[string]string{
	"missing_data":      "Case study ID is required",
	"not_found":         "Case study not found",
	"missing_summary":   "Final summary is required for media generation",
	"already_generated": "Media has already been generated for this case study",
	"server_error":      "An unexpected error occurred",
}

// ErrorBody 所有错误响应都是带 error 字段的扁平 JSON
type ErrorBody struct {
	Error string `json:"error"`
}

// Error 按 HTTP 状态码返回错误响应
func Error(c *gin.Context, status int, message string) {
	if message == "" {
		message = defaultMessages["server_error"]
	}
	c.JSON(status, ErrorBody{Error: message})
}

// ParamError 参数错误（400）
func ParamError(c *gin.Context, message string) {
	if message == "" {
		message = defaultMessages["missing_data"]
	}
	Error(c, http.StatusBadRequest, message)
}

// NotFoundError 资源不存在（404）
func NotFoundError(c *gin.Context, message string) {
	if message == "" {
		message = defaultMessages["not_found"]
	}
	Error(c, http.StatusNotFound, message)
}

// ConflictError 任务已在进行中（400，与原始接口保持一致）
func ConflictError(c *gin.Context, message string) {
	if message == "" {
		message = defaultMessages["already_generated"]
	}
	Error(c, http.StatusBadRequest, message)
}

// AuthError 认证失败（401）
func AuthError(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	Error(c, http.StatusUnauthorized, message)
}

// PermissionError 无权访问（403）
func PermissionError(c *gin.Context, message string) {
	if message == "" {
		message = "Permission denied"
	}
	Error(c, http.StatusForbidden, message)
}

// UpstreamError 供应商错误，状态码原样透传
func UpstreamError(c *gin.Context, status int, message string) {
	if status < 400 {
		status = http.StatusBadGateway
	}
	Error(c, status, message)
}

// ServerError 服务器内部错误（500）
func ServerError(c *gin.Context, message string) {
	if message == "" {
		message = defaultMessages["server_error"]
	}
	Error(c, http.StatusInternalServerError, message)
}
