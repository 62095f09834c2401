/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-11 18:38:27
 * @LastEditTime: 2025-09-15 14:20:08
 * @LastEditors: 安知鱼
 */
package auth

import "github.com/golang-jwt/jwt/v5"

// UserKey 存放已从数据库加载的当前用户
const UserKey = "current_user"

// Token 类型，防止 refresh token 被当作 access token 使用
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const Issuer = "blog-admin"

// CustomClaims 定义了 JWT 的自定义 Claims 结构体，角色以声明的形式下发
type CustomClaims struct {
	UserID    uint   `json:"uid"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}
