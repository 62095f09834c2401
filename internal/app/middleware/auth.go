// internal/app/middleware/auth.go
package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
	"github.com/anzhiyu-c/blog-admin/pkg/response"
	service_auth "github.com/anzhiyu-c/blog-admin/pkg/service/auth"

	"github.com/gin-gonic/gin"
)

type Middleware struct {
	tokenSvc service_auth.TokenService
	userRepo repository.UserRepository
}

func NewMiddleware(tokenSvc service_auth.TokenService, userRepo repository.UserRepository) *Middleware {
	return &Middleware{tokenSvc: tokenSvc, userRepo: userRepo}
}

// bearerToken 从 Authorization 头中取出 Bearer Token
func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate 是全局的认证中间件。
// Token 有效时把当前用户放入上下文，否则以游客身份继续，由后续的 RequireLogin/RequireAdmin 决定是否放行。
// 角色以数据库中的最新值为准，被禁用或删除的用户视为游客。
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := m.tokenSvc.ParseAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			log.Printf("[Authenticate] Token解析失败: %v", err)
			c.Next()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Printf("[Authenticate] 加载用户 %d 失败: %v", claims.UserID, err)
			c.Next()
			return
		}
		if user == nil || !user.IsActive() {
			c.Next()
			return
		}

		c.Set(auth.UserKey, user)
		c.Next()
	}
}

// RequireLogin 要求请求已登录
func (m *Middleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.CurrentUser(c) == nil {
			response.Fail(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin 要求当前用户为管理员，未登录返回 401，非管理员返回 403
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			response.Fail(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			log.Printf("[RequireAdmin] 用户 %d 尝试访问管理接口: %s %s", user.ID, c.Request.Method, c.Request.URL.Path)
			response.Fail(c, http.StatusForbidden, "权限不足：此操作需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}
