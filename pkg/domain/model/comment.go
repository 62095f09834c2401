package model

import "time"

// 评论审核状态
const (
	CommentStatusPending  = 0
	CommentStatusApproved = 1
	CommentStatusRejected = 2
)

// Comment 评论领域模型，ParentID 为 nil 表示顶级评论
type Comment struct {
	ID        uint
	PostID    uint
	UserID    uint
	ParentID  *uint
	Content   string
	Status    int
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateCommentRequest struct {
	PostID   uint   `json:"postId" binding:"required"`
	ParentID *uint  `json:"parentId"`
	Content  string `json:"content" binding:"required,max=2000"`
}

// UpdateCommentRequest 只允许修改内容，用户与审核状态不可通过此接口变更
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

type ListCommentsOptions struct {
	Page     int
	PageSize int
	Status   *int
	PostID   uint
}

type CommentResponse struct {
	ID        uint               `json:"id"`
	PostID    uint               `json:"postId"`
	UserID    uint               `json:"userId"`
	ParentID  *uint              `json:"parentId"`
	Content   string             `json:"content"`
	Status    int                `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	User      *UserBrief         `json:"user"`
	Replies   []*CommentResponse `json:"replies,omitempty"`
}
