/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-22 12:41:16
 * @LastEditTime: 2025-09-17 16:05:22
 * @LastEditors: 安知鱼
 */
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/security"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

// AuthService 定义了所有认证授权相关的业务逻辑接口
type AuthService interface {
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*model.RefreshTokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo repository.UserRepository
	tokenSvc TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokenSvc TokenService) AuthService {
	return &authService{
		userRepo: userRepo,
		tokenSvc: tokenSvc,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	// 用户不存在与密码错误返回同一个错误，避免枚举用户名
	if user == nil || !security.CheckPasswordHash(password, user.PasswordHash) {
		return nil, constant.ErrBadCredentials
	}
	if !user.IsActive() {
		return nil, constant.ErrUserDisabled
	}

	accessToken, refreshToken, expires, err := s.tokenSvc.GenerateSessionTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("生成令牌失败: %w", err)
	}

	loginAt := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		log.Printf("[Auth] 更新用户 %d 最后登录时间失败: %v", user.ID, err)
	} else {
		user.LastLoginAt = &loginAt
	}

	return &model.LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		Type:         "Bearer",
		Expires:      expires,
		User:         model.NewUserResponse(user),
	}, nil
}

// Register 注册的用户一律为普通用户
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, constant.ErrUsernameExists
	}
	existing, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, constant.ErrEmailExists
	}

	hash, err := security.HashPassword(req.Password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return nil, fmt.Errorf("密码过长: %w", constant.ErrBadRequest)
	}
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Nickname:     strings.TrimSpace(req.Nickname),
		Email:        email,
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("[Auth] 新用户注册: %s (ID: %d)", user.Username, user.ID)
	return user, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.RefreshTokenResponse, error) {
	token, expires, err := s.tokenSvc.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &model.RefreshTokenResponse{Token: token, Expires: expires}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenSvc.RevokeRefreshToken(ctx, refreshToken)
}
