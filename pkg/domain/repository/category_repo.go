package repository

import (
	"context"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

type CategoryRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Category, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	// ExistsByName 检查名称是否被占用，excludeID 为 0 时不排除任何记录
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uint) error
}
