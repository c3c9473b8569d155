package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"
)

// TimestampLayout 错误响应与 DTO 中使用的本地时间格式
const TimestampLayout = "2006-01-02T15:04:05"

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// MessageResponse 仅包含提示消息的响应
type MessageResponse struct {
	Message string `json:"message"`
}

// now 可在测试中替换
var now = time.Now

// Success 成功响应（200），直接输出 DTO
func Success(c *gin.Context, data any) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, data)
}

// Created 创建资源成功（201）
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK 200 且无响应体
func OK(c *gin.Context) {
	c.Status(http.StatusOK)
}

// NoContent 204
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Message 200 并返回 {"message": ...}
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorResponse{
		Status:    httpStatus,
		Message:   message,
		Timestamp: now().Format(TimestampLayout),
	})
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403 错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404 错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// TooManyRequests 429 错误
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError 统一错误处理（使用AppError）
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		InternalError(c, apperrors.GetMessage(apperrors.ErrInternalServer))
		return
	}

	message := appErr.UserMessage()
	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		message = appErr.Message
	}
	Error(c, appErr.HTTPStatus(), message)
}

// FormatTime 按 TimestampLayout 输出本地时间，零值返回空串
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimestampLayout)
}
