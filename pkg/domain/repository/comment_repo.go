package repository

import (
	"context"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

// CommentRepository 评论仓储接口，查询默认排除已软删除的评论
type CommentRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Comment, error)
	// ListByPost 返回文章下指定状态的全部评论（按时间正序），status 为 nil 时不过滤
	ListByPost(ctx context.Context, postID uint, status *int) ([]*model.Comment, error)
	List(ctx context.Context, opts *model.ListCommentsOptions) ([]*model.Comment, int64, error)
	Create(ctx context.Context, comment *model.Comment) error
	UpdateContent(ctx context.Context, id uint, content string) error
	// UpdateStatus 仅当评论未删除且当前状态为 from 时改为 to，返回是否实际更新
	UpdateStatus(ctx context.Context, id uint, from, to int) (bool, error)
	// SoftDeleteTree 软删除评论及其所有后代，返回本次删除的评论中已审核通过的数量
	SoftDeleteTree(ctx context.Context, id uint) (approvedRemoved int64, err error)
}
