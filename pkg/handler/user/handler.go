/*
 * @Description: 用户管理控制器
 * @Author: 安知鱼
 * @Date: 2025-06-15 13:03:21
 * @LastEditTime: 2025-11-13 13:49:32
 * @LastEditors: 安知鱼
 */
package user_handler

import (
	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/utils"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/response"
	"github.com/anzhiyu-c/blog-admin/pkg/service/user"
)

// UserHandler 封装用户相关的控制器方法
type UserHandler struct {
	userSvc user.UserService
}

// NewUserHandler 是 UserHandler 的构造函数
func NewUserHandler(userSvc user.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List 获取全部用户
// @Summary      用户列表
// @Tags         用户管理
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.UserResponse}  "获取成功"
// @Failure      401  {object}  response.Response  "未登录"
// @Failure      403  {object}  response.Response  "需要管理员权限"
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, users, "获取成功")
}

// Get 获取指定用户，仅本人或管理员
// @Summary      用户详情
// @Tags         用户管理
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "用户ID"
// @Success      200  {object}  response.Response{data=model.UserResponse}  "获取成功"
// @Failure      403  {object}  response.Response  "无权访问"
// @Failure      404  {object}  response.Response  "用户不存在"
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	resp, err := h.userSvc.Get(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "获取成功")
}

// Update 更新用户资料，角色和状态只有管理员可以修改
// @Summary      更新用户
// @Tags         用户管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int                      true  "用户ID"
// @Param        body  body      model.UpdateUserRequest  true  "用户资料"
// @Success      200   {object}  response.Response{data=model.UserResponse}  "更新成功"
// @Failure      400   {object}  response.Response  "请求参数错误"
// @Failure      403   {object}  response.Response  "无权修改"
// @Failure      409   {object}  response.Response  "邮箱已被使用"
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	resp, err := h.userSvc.Update(c.Request.Context(), auth.CurrentUser(c), id, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "更新成功")
}

// Delete 删除用户，管理员不能删除自己
// @Summary      删除用户
// @Tags         用户管理
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "用户ID"
// @Success      200  {object}  response.Response  "删除成功"
// @Failure      403  {object}  response.Response  "无权删除"
// @Failure      404  {object}  response.Response  "用户不存在"
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), auth.CurrentUser(c), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "删除成功")
}

// ChangePassword 修改本人密码
// @Summary      修改密码
// @Tags         用户管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int                          true  "用户ID"
// @Param        body  body      model.ChangePasswordRequest  true  "新旧密码"
// @Success      200   {object}  response.Response  "修改成功"
// @Failure      400   {object}  response.Response  "原密码错误"
// @Failure      403   {object}  response.Response  "只能修改自己的密码"
// @Router       /users/{id}/change-password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	if err := h.userSvc.ChangePassword(c.Request.Context(), auth.CurrentUser(c), id, &req); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "密码修改成功")
}
