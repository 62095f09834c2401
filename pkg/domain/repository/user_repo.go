package repository

import (
	"context"
	"time"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

// UserRepository 用户仓储接口。查询不到记录时返回 (nil, nil)。
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}
