/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 12:16:18
 * @LastEditTime: 2025-09-14 11:20:41
 * @LastEditors: 安知鱼
 */
package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/anzhiyu-c/blog-admin/pkg/constant"

	"github.com/gin-gonic/gin"
)

// Response 是统一的API返回结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// FailWithData 失败响应，附带额外数据（例如字段级的校验错误）
func FailWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// SuccessWithStatus 成功响应，但允许自定义 HTTP 状态码。
// 这对于返回 201 Created 或 202 Accepted 等状态非常有用。
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// StatusFromError 将业务错误映射为 HTTP 状态码，未识别的错误一律视为 500。
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, constant.ErrBadRequest),
		errors.Is(err, constant.ErrInvalidFileType),
		errors.Is(err, constant.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, constant.ErrUnauthorized),
		errors.Is(err, constant.ErrInvalidToken),
		errors.Is(err, constant.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, constant.ErrForbidden),
		errors.Is(err, constant.ErrUserDisabled):
		return http.StatusForbidden
	case errors.Is(err, constant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, constant.ErrConflict),
		errors.Is(err, constant.ErrUsernameExists),
		errors.Is(err, constant.ErrEmailExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FailWithError 根据错误类型返回对应的状态码。
// 500 错误不会把内部细节暴露给客户端，只记录到日志中。
func FailWithError(c *gin.Context, err error) {
	code := StatusFromError(err)
	if code == http.StatusInternalServerError {
		log.Printf("[%s %s] 内部错误: %v", c.Request.Method, c.Request.URL.Path, err)
		Fail(c, code, "服务器内部错误，请稍后重试")
		return
	}
	Fail(c, code, err.Error())
}
