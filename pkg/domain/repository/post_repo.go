package repository

import (
	"context"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

// PostRepository 文章仓储接口，所有查询默认排除已软删除的文章
type PostRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	List(ctx context.Context, opts *model.ListPostsOptions) ([]*model.Post, int64, error)
	Create(ctx context.Context, post *model.Post) error
	// Update 只写入可编辑的列，计数器与作者不在其中
	Update(ctx context.Context, post *model.Post) error
	SoftDelete(ctx context.Context, id uint) error
	SetTop(ctx context.Context, id uint, isTop bool) error
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)

	// 计数器只能通过原子增量修改
	IncrementViewCount(ctx context.Context, id uint, delta int64) error
	IncrementLikeCount(ctx context.Context, id uint, delta int64) error
	IncrementCommentCount(ctx context.Context, id uint, delta int64) error
	UpdateViewCounts(ctx context.Context, updates map[uint]int64) error
}

// PostTagRepository 维护文章与标签的多对多关联
type PostTagRepository interface {
	// ReplaceTags 先删除文章的全部关联再重新插入
	ReplaceTags(ctx context.Context, postID uint, tagIDs []uint) error
	TagIDsByPost(ctx context.Context, postID uint) ([]uint, error)
	TagIDsByPosts(ctx context.Context, postIDs []uint) (map[uint][]uint, error)
	DeleteByTag(ctx context.Context, tagID uint) error
}
