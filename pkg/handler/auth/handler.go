package auth_handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/response"
	auth_service "github.com/anzhiyu-c/blog-admin/pkg/service/auth"
)

// AuthHandler 封装了所有认证相关的控制器方法
type AuthHandler struct {
	authSvc auth_service.AuthService
}

// NewAuthHandler 是 AuthHandler 的构造函数，用于依赖注入
func NewAuthHandler(authSvc auth_service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 处理用户登录请求
// @Summary      用户登录
// @Description  用户通过用户名和密码登录，返回访问令牌和刷新令牌
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      model.LoginRequest  true  "登录信息"
// @Success      200   {object}  response.Response{data=model.LoginResponse}  "登录成功"
// @Failure      400   {object}  response.Response  "请求参数错误"
// @Failure      401   {object}  response.Response  "用户名或密码错误"
// @Failure      403   {object}  response.Response  "账号已被禁用"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "登录成功")
}

// Register 处理用户注册请求
// @Summary      用户注册
// @Description  注册新用户，新用户角色固定为 USER
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      model.RegisterRequest  true  "注册信息"
// @Success      201   {object}  response.Response{data=model.UserResponse}  "注册成功"
// @Failure      400   {object}  response.Response  "请求参数错误"
// @Failure      409   {object}  response.Response  "用户名或邮箱已存在"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, model.NewUserResponse(user), "注册成功")
}

// RefreshToken 使用刷新令牌换取新的访问令牌
// @Summary      刷新访问令牌
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      model.RefreshTokenRequest  true  "刷新令牌"
// @Success      200   {object}  response.Response{data=model.RefreshTokenResponse}  "刷新成功"
// @Failure      400   {object}  response.Response  "请求参数错误"
// @Failure      401   {object}  response.Response  "刷新令牌无效或已过期"
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, resp, "刷新成功")
}

// Logout 吊销刷新令牌
// @Summary      退出登录
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      model.RefreshTokenRequest  true  "刷新令牌"
// @Success      200   {object}  response.Response  "退出成功"
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "退出成功")
}

// Me 返回当前登录用户的信息
// @Summary      获取当前用户
// @Tags         用户认证
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  response.Response{data=model.UserResponse}  "获取成功"
// @Failure      401   {object}  response.Response  "未登录"
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	response.Success(c, model.NewUserResponse(user), "获取成功")
}
