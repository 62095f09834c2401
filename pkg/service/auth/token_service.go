package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/utils"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
	"github.com/anzhiyu-c/blog-admin/pkg/service/utility"
)

const revokedTokenKeyPrefix = "blog:auth:revoked:"

type TokenService interface {
	GenerateSessionTokens(ctx context.Context, user *model.User) (accessToken, refreshToken string, expiresAt int64, err error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (accessToken string, expiresAt int64, err error)
	ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

type tokenService struct {
	userRepo   repository.UserRepository
	cacheSvc   utility.CacheService
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService 构造函数。未配置 JWT.Secret 时生成随机密钥，重启后旧令牌全部失效。
func NewTokenService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	cacheSvc utility.CacheService,
) (TokenService, error) {
	secret := cfg.GetString(config.KeyJWTSecret)
	if secret == "" {
		random, err := utils.GenerateRandomString(48)
		if err != nil {
			return nil, fmt.Errorf("生成 JWT 密钥失败: %w", err)
		}
		log.Println("⚠️  未配置 JWT.Secret，已生成临时随机密钥，重启后所有登录状态将失效")
		secret = random
	}

	accessTTL := cfg.GetDuration(config.KeyJWTAccessExpire)
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	refreshTTL := cfg.GetDuration(config.KeyJWTRefreshExpire)
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &tokenService{
		userRepo:   userRepo,
		cacheSvc:   cacheSvc,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// --- JWT 会话令牌实现 ---

func (s *tokenService) GenerateSessionTokens(ctx context.Context, user *model.User) (string, string, int64, error) {
	accessToken, expiresAt, err := auth.GenerateAccessToken(user.ID, user.Username, user.Role, s.accessTTL, s.secret)
	if err != nil {
		return "", "", 0, err
	}
	refreshToken, _, err := auth.GenerateRefreshToken(user.ID, user.Username, s.refreshTTL, s.secret)
	if err != nil {
		return "", "", 0, err
	}
	return accessToken, refreshToken, expiresAt.UnixMilli(), nil
}

func (s *tokenService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := s.parseRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", 0, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", 0, err
	}
	if user == nil || !user.IsActive() {
		return "", 0, fmt.Errorf("用户不存在或状态异常: %w", constant.ErrInvalidToken)
	}

	// 角色以数据库为准，降级后的用户刷新得到的是新角色
	accessToken, expiresAt, err := auth.GenerateAccessToken(user.ID, user.Username, user.Role, s.accessTTL, s.secret)
	if err != nil {
		return "", 0, err
	}
	return accessToken, expiresAt.UnixMilli(), nil
}

// ParseAccessToken 负责解析和验证 access token，refresh token 不能用于访问接口
func (s *tokenService) ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error) {
	claims, err := auth.ParseToken(accessToken, s.secret)
	if err != nil {
		return nil, fmt.Errorf("无效或过期的令牌: %w", constant.ErrInvalidToken)
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, fmt.Errorf("令牌类型错误: %w", constant.ErrInvalidToken)
	}
	return claims, nil
}

// RevokeRefreshToken 将 refresh token 的 jti 加入黑名单，直到其自然过期
func (s *tokenService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.cacheSvc.Set(ctx, revokedTokenKeyPrefix+claims.ID, 1, ttl)
}

func (s *tokenService) parseRefreshToken(ctx context.Context, refreshToken string) (*auth.CustomClaims, error) {
	claims, err := auth.ParseToken(refreshToken, s.secret)
	if err != nil {
		return nil, fmt.Errorf("无效或过期的刷新令牌: %w", constant.ErrInvalidToken)
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, fmt.Errorf("令牌类型错误: %w", constant.ErrInvalidToken)
	}
	revoked, err := s.cacheSvc.Get(ctx, revokedTokenKeyPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("检查令牌状态失败: %w", err)
	}
	if revoked != "" {
		return nil, fmt.Errorf("刷新令牌已注销: %w", constant.ErrInvalidToken)
	}
	return claims, nil
}
