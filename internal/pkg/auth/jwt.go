/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-09-15 14:26:41
 * @LastEditors: 安知鱼
 */
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errEmptySecret = errors.New("JWT Secret 不能为空")

// newToken 签发令牌，subject 为用户名，uid 声明供中间件查询用户
func newToken(username string, claims CustomClaims, ttl time.Duration, secretKey []byte) (string, time.Time, error) {
	if len(secretKey) == 0 {
		return "", time.Time{}, errEmptySecret
	}
	issuedAt := time.Now()
	expiresAt := issuedAt.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		Issuer:    Issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("签名token失败: %w", err)
	}
	return signed, expiresAt, nil
}

// GenerateAccessToken 生成携带角色声明的 Access Token，返回 token 及其过期时间
func GenerateAccessToken(userID uint, username, role string, ttl time.Duration, secretKey []byte) (string, time.Time, error) {
	return newToken(username, CustomClaims{UserID: userID, Role: role, TokenType: TokenTypeAccess}, ttl, secretKey)
}

// GenerateRefreshToken 生成 Refresh Token，不携带角色，刷新时以数据库中的角色为准
func GenerateRefreshToken(userID uint, username string, ttl time.Duration, secretKey []byte) (string, time.Time, error) {
	return newToken(username, CustomClaims{UserID: userID, TokenType: TokenTypeRefresh}, ttl, secretKey)
}

// ParseToken 解析 JWT Token
func ParseToken(tokenStr string, secretKey []byte) (*CustomClaims, error) {
	if len(secretKey) == 0 {
		return nil, errEmptySecret
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	}, jwt.WithIssuer(Issuer))

	if err != nil {
		return nil, fmt.Errorf("解析token失败: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("无效或过期Token")
	}

	return claims, nil
}
