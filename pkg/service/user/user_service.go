/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-20 13:27:06
 * @LastEditTime: 2025-09-17 17:20:45
 * @LastEditors: 安知鱼
 */
package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/security"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

// UserService 定义了用户相关的业务逻辑接口，actor 为当前登录用户
type UserService interface {
	List(ctx context.Context) ([]*model.UserResponse, error)
	Get(ctx context.Context, actor *model.User, id uint) (*model.UserResponse, error)
	Update(ctx context.Context, actor *model.User, id uint, req *model.UpdateUserRequest) (*model.UserResponse, error)
	Delete(ctx context.Context, actor *model.User, id uint) error
	ChangePassword(ctx context.Context, actor *model.User, id uint, req *model.ChangePasswordRequest) error
	// EnsureAdmin 在配置了初始管理员且该用户名不存在时创建管理员账号
	EnsureAdmin(ctx context.Context, cfg *config.Config) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context) ([]*model.UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]*model.UserResponse, 0, len(users))
	for _, u := range users {
		list = append(list, model.NewUserResponse(u))
	}
	return list, nil
}

func (s *userService) find(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("用户不存在: %w", constant.ErrNotFound)
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, actor *model.User, id uint) (*model.UserResponse, error) {
	if !auth.CanModify(actor, id) {
		return nil, fmt.Errorf("无权查看该用户: %w", constant.ErrForbidden)
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.NewUserResponse(u), nil
}

// Update 逐字段从请求复制白名单字段，用户名、密码不在此处修改
func (s *userService) Update(ctx context.Context, actor *model.User, id uint, req *model.UpdateUserRequest) (*model.UserResponse, error) {
	if !auth.CanModify(actor, id) {
		return nil, fmt.Errorf("无权修改该用户: %w", constant.ErrForbidden)
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		u.Nickname = strings.TrimSpace(*req.Nickname)
	}
	if req.Avatar != nil {
		u.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != u.Email {
			existing, err := s.userRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != u.ID {
				return nil, constant.ErrEmailExists
			}
			u.Email = email
		}
	}

	// 角色和状态只有管理员修改他人时生效，管理员不能借此降级或禁用自己
	if actor.IsAdmin() && actor.ID != u.ID {
		if req.Role != nil {
			if *req.Role != model.RoleUser && *req.Role != model.RoleAdmin {
				return nil, fmt.Errorf("无效的角色 %q: %w", *req.Role, constant.ErrBadRequest)
			}
			u.Role = *req.Role
		}
		if req.Status != nil {
			if *req.Status != model.UserStatusActive && *req.Status != model.UserStatusDisabled {
				return nil, fmt.Errorf("无效的状态 %d: %w", *req.Status, constant.ErrBadRequest)
			}
			u.Status = *req.Status
		}
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		if errors.Is(err, constant.ErrConflict) {
			return nil, constant.ErrEmailExists
		}
		return nil, err
	}
	return model.NewUserResponse(u), nil
}

func (s *userService) Delete(ctx context.Context, actor *model.User, id uint) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("只有管理员可以删除用户: %w", constant.ErrForbidden)
	}
	if actor.ID == id {
		return fmt.Errorf("不能删除自己: %w", constant.ErrForbidden)
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[User] 管理员 %d 删除了用户 %d", actor.ID, id)
	return nil
}

// ChangePassword 只能修改自己的密码，管理员也不例外
func (s *userService) ChangePassword(ctx context.Context, actor *model.User, id uint, req *model.ChangePasswordRequest) error {
	if actor == nil || actor.ID != id {
		return fmt.Errorf("只能修改自己的密码: %w", constant.ErrForbidden)
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !security.CheckPasswordHash(req.OldPassword, u.PasswordHash) {
		return fmt.Errorf("原密码错误: %w", constant.ErrBadRequest)
	}
	hash, err := security.HashPassword(req.NewPassword)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return fmt.Errorf("新密码过长: %w", constant.ErrBadRequest)
	}
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, id, hash)
}

func (s *userService) EnsureAdmin(ctx context.Context, cfg *config.Config) error {
	username := strings.TrimSpace(cfg.GetString(config.KeyAdminUsername))
	password := cfg.GetString(config.KeyAdminPassword)
	if username == "" || password == "" {
		return nil
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.GetString(config.KeyAdminEmail)))
	if email == "" {
		email = username + "@localhost"
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("初始化管理员密码失败: %w", err)
	}
	admin := &model.User{
		Username:     username,
		PasswordHash: hash,
		Nickname:     username,
		Email:        email,
		Role:         model.RoleAdmin,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("创建初始管理员失败: %w", err)
	}
	log.Printf("[User] 已创建初始管理员账号: %s", username)
	return nil
}
