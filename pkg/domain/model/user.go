// in internal/domain/model/user.go
package model

import "time"

// ========= 业务常量 (与数据库实现无关) =========

// 用户角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// 用户状态常量
const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// ========= 领域模型定义 =========

type User struct {
	ID           uint       `json:"id"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Nickname     string     `json:"nickname"`
	Email        string     `json:"email"`
	Avatar       string     `json:"avatar"`
	Role         string     `json:"role"`
	Status       int        `json:"status"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// ========= DTO =========

// UserResponse 对外暴露的用户信息，不包含密码
type UserResponse struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname"`
	Email       string     `json:"email"`
	Avatar      string     `json:"avatar"`
	Role        string     `json:"role"`
	Status      int        `json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func NewUserResponse(u *User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Nickname:    u.Nickname,
		Email:       u.Email,
		Avatar:      u.Avatar,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// UserBrief 嵌入在文章、评论中的作者信息
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

func NewUserBrief(u *User) *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{ID: u.ID, Username: u.Username, Nickname: u.Nickname, Avatar: u.Avatar}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Nickname string `json:"nickname" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LoginResponse 登录成功后返回的令牌信息，Expires 为 access token 过期时间（毫秒时间戳）
type LoginResponse struct {
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken"`
	Type         string        `json:"type"`
	Expires      int64         `json:"expires"`
	User         *UserResponse `json:"user,omitempty"`
}

type RefreshTokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// UpdateUserRequest 只有出现在这里的字段可以被修改；Role/Status 仅管理员修改他人时生效
type UpdateUserRequest struct {
	Nickname *string `json:"nickname" binding:"omitempty,max=50"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=500"`
	Role     *string `json:"role"`
	Status   *int    `json:"status"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72"`
}
