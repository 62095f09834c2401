/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-27 12:08:15
 * @LastEditTime: 2025-09-14 11:02:30
 * @LastEditors: 安知鱼
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误，Handler 通过 errors.Is 将其转换为 HTTP 状态码
var (
	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrForbidden 表示无权访问，可以由 Handler 转换为 403
	ErrForbidden = errors.New("操作禁止")

	// ErrConflict 表示资源冲突，可以由 Handler 转换为 409
	ErrConflict = errors.New("资源冲突")

	// ErrInternalServer 表示服务器内部错误，可以由 Handler 转换为 500
	ErrInternalServer = errors.New("内部服务器错误")

	// ErrBadRequest 表示请求参数错误，可以由 Handler 转换为 400
	ErrBadRequest = errors.New("错误的请求")

	// ErrUnauthorized 表示未授权，可以由 Handler 转换为 401
	ErrUnauthorized = errors.New("未经授权的访问")

	// ErrInvalidToken 表示无效的令牌，可以由 Handler 转换为 401
	ErrInvalidToken = errors.New("无效令牌")

	// ErrBadCredentials 用户名或密码错误，401
	ErrBadCredentials = errors.New("用户名或密码错误")

	// ErrUserDisabled 账号被禁用，403
	ErrUserDisabled = errors.New("账号已被禁用")

	// ErrUsernameExists 用户名已被占用，409
	ErrUsernameExists = errors.New("用户名已存在")

	// ErrEmailExists 邮箱已被占用，409
	ErrEmailExists = errors.New("邮箱已存在")

	// ErrInvalidFileType 不允许的上传文件类型，400
	ErrInvalidFileType = errors.New("不支持的文件类型")

	// ErrFileTooLarge 上传文件超过大小限制，400
	ErrFileTooLarge = errors.New("文件大小超过限制")
)
