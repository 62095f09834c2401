package repository

import (
	"context"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

type TagRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Tag, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.Tag, error)
	List(ctx context.Context) ([]*model.Tag, error)
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, tag *model.Tag) error
	Update(ctx context.Context, tag *model.Tag) error
	Delete(ctx context.Context, id uint) error
}
