package model

import "time"

// 文章状态
const (
	PostStatusDraft       = 0
	PostStatusPublished   = 1
	PostStatusUnpublished = 2
)

func IsValidPostStatus(status int) bool {
	return status == PostStatusDraft || status == PostStatusPublished || status == PostStatusUnpublished
}

type Post struct {
	ID           uint
	Title        string
	Summary      string
	Content      string
	CoverImage   string
	AuthorID     uint
	CategoryID   uint
	Status       int
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	IsTop        bool
	IsDeleted    bool
	PublishedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished && !p.IsDeleted
}

// PostRequest 创建/更新文章的请求体。
// TagIDs 为 nil 时保持原有标签不变，传空数组则清空标签。
type PostRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=200"`
	Summary    string `json:"summary" binding:"max=500"`
	Content    string `json:"content" binding:"required"`
	CoverImage string `json:"coverImage" binding:"max=500"`
	CategoryID uint   `json:"categoryId" binding:"required"`
	Status     *int   `json:"status"`
	TagIDs     []uint `json:"tagIds"`
}

type SetTopRequest struct {
	IsTop bool `json:"isTop"`
}

// PostResponse 文章详情/列表项
type PostResponse struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Summary      string            `json:"summary"`
	Content      string            `json:"content,omitempty"`
	CoverImage   string            `json:"coverImage"`
	AuthorID     uint              `json:"authorId"`
	CategoryID   uint              `json:"categoryId"`
	Status       int               `json:"status"`
	ViewCount    int64             `json:"viewCount"`
	LikeCount    int64             `json:"likeCount"`
	CommentCount int64             `json:"commentCount"`
	IsTop        bool              `json:"isTop"`
	PublishedAt  *time.Time        `json:"publishedAt"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Author       *UserBrief        `json:"author"`
	Category     *CategoryResponse `json:"category"`
	Tags         []*TagResponse    `json:"tags"`
}

// ListPostsOptions 文章列表查询条件
type ListPostsOptions struct {
	Page       int
	PageSize   int
	Keyword    string
	Status     *int
	CategoryID uint
	TagID      uint
	AuthorID   uint
}
