// blog-admin/pkg/service/comment/service.go
package comment

import (
	"context"
	"fmt"
	"log"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/parser"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

// Service 评论服务的核心业务逻辑。
type Service struct {
	repo        repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	txManager   repository.TransactionManager
	autoApprove bool
}

const maxStatusRetries = 5

func NewService(repos repository.Repositories, txManager repository.TransactionManager, cfg *config.Config) *Service {
	return &Service{
		repo:        repos.Comment,
		postRepo:    repos.Post,
		userRepo:    repos.User,
		txManager:   txManager,
		autoApprove: cfg.GetBool(config.KeyCommentAutoApprove),
	}
}

func (s *Service) find(ctx context.Context, id uint) (*model.Comment, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("评论不存在: %w", constant.ErrNotFound)
	}
	return c, nil
}

func (s *Service) findPost(ctx context.Context, postID uint) (*model.Post, error) {
	p, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("文章不存在: %w", constant.ErrNotFound)
	}
	return p, nil
}

// ListByPost 返回文章下已审核通过的评论树。
// 父评论不可见（待审核或被拒绝）时，它下面的回复也不展示。
func (s *Service) ListByPost(ctx context.Context, postID uint) ([]*model.CommentResponse, error) {
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}
	approved := model.CommentStatusApproved
	comments, err := s.repo.ListByPost(ctx, postID, &approved)
	if err != nil {
		return nil, err
	}
	responses, err := s.toResponses(ctx, comments)
	if err != nil {
		return nil, err
	}

	// 评论按 id 正序返回，父评论总是先于回复出现
	byID := make(map[uint]*model.CommentResponse, len(responses))
	roots := make([]*model.CommentResponse, 0)
	for _, resp := range responses {
		byID[resp.ID] = resp
		if resp.ParentID == nil {
			roots = append(roots, resp)
			continue
		}
		if parent, ok := byID[*resp.ParentID]; ok {
			parent.Replies = append(parent.Replies, resp)
		}
	}
	return roots, nil
}

// Get 未通过审核的评论只有评论者本人和管理员可见
func (s *Service) Get(ctx context.Context, viewer *model.User, id uint) (*model.CommentResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CommentStatusApproved && !auth.CanModify(viewer, c.UserID) {
		return nil, fmt.Errorf("评论尚未通过审核: %w", constant.ErrForbidden)
	}
	return s.toResponse(ctx, c)
}

// AdminList 后台评论列表，按时间倒序
func (s *Service) AdminList(ctx context.Context, page, size int, status *int) (*model.PageResult[*model.CommentResponse], error) {
	if status != nil && !isValidStatus(*status) {
		return nil, fmt.Errorf("无效的评论状态 %d: %w", *status, constant.ErrBadRequest)
	}
	page, size = model.NormalizePage(page, size)
	comments, total, err := s.repo.List(ctx, &model.ListCommentsOptions{Page: page, PageSize: size, Status: status})
	if err != nil {
		return nil, err
	}
	records, err := s.toResponses(ctx, comments)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(records, total, page, size), nil
}

func (s *Service) Create(ctx context.Context, actor *model.User, req *model.CreateCommentRequest) (*model.CommentResponse, error) {
	if actor == nil {
		return nil, constant.ErrUnauthorized
	}
	post, err := s.findPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, fmt.Errorf("文章未发布，无法评论: %w", constant.ErrForbidden)
	}

	var parentID *uint
	if req.ParentID != nil && *req.ParentID != 0 {
		parent, err := s.repo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("父评论 %d 不存在: %w", *req.ParentID, constant.ErrBadRequest)
		}
		if parent.PostID != req.PostID {
			return nil, fmt.Errorf("父评论不属于该文章: %w", constant.ErrBadRequest)
		}
		parentID = &parent.ID
	}

	content := parser.SanitizeComment(req.Content)
	if content == "" {
		return nil, fmt.Errorf("评论内容不能为空: %w", constant.ErrBadRequest)
	}

	c := &model.Comment{
		PostID:   req.PostID,
		UserID:   actor.ID,
		ParentID: parentID,
		Content:  content,
		Status:   model.CommentStatusPending,
	}
	if s.autoApprove {
		c.Status = model.CommentStatusApproved
	}

	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.Comment.Create(ctx, c); err != nil {
			return err
		}
		if c.Status == model.CommentStatusApproved {
			return repos.Post.IncrementCommentCount(ctx, c.PostID, 1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Comment] 用户 %d 在文章 %d 下发表了评论 %d (status=%d)", actor.ID, c.PostID, c.ID, c.Status)
	return s.toResponse(ctx, c)
}

// Update 只允许修改评论内容
func (s *Service) Update(ctx context.Context, actor *model.User, id uint, req *model.UpdateCommentRequest) (*model.CommentResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, c.UserID) {
		return nil, fmt.Errorf("只有评论者或管理员可以修改评论: %w", constant.ErrForbidden)
	}
	content := parser.SanitizeComment(req.Content)
	if content == "" {
		return nil, fmt.Errorf("评论内容不能为空: %w", constant.ErrBadRequest)
	}
	if err := s.repo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, updated)
}

// Delete 软删除评论及其全部回复，并扣减文章的评论数
func (s *Service) Delete(ctx context.Context, actor *model.User, id uint) error {
	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanModify(actor, c.UserID) {
		return fmt.Errorf("只有评论者或管理员可以删除评论: %w", constant.ErrForbidden)
	}
	return s.txManager.Do(ctx, func(repos repository.Repositories) error {
		removed, err := repos.Comment.SoftDeleteTree(ctx, id)
		if err != nil {
			return err
		}
		return repos.Post.IncrementCommentCount(ctx, c.PostID, -removed)
	})
}

func (s *Service) Approve(ctx context.Context, id uint) (*model.CommentResponse, error) {
	return s.setStatus(ctx, id, model.CommentStatusApproved)
}

func (s *Service) Reject(ctx context.Context, id uint) (*model.CommentResponse, error) {
	return s.setStatus(ctx, id, model.CommentStatusRejected)
}

// setStatus 状态进出"已通过"时同步调整文章评论数。
// 状态更新以读到的旧状态为条件，并发修改时重新读取，保证评论数只调整一次。
func (s *Service) setStatus(ctx context.Context, id uint, status int) (*model.CommentResponse, error) {
	for attempt := 0; attempt < maxStatusRetries; attempt++ {
		c, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.Status == status {
			return s.toResponse(ctx, c)
		}

		var delta int64
		switch {
		case status == model.CommentStatusApproved:
			delta = 1
		case c.Status == model.CommentStatusApproved:
			delta = -1
		}

		updated := false
		err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
			ok, err := repos.Comment.UpdateStatus(ctx, id, c.Status, status)
			if err != nil || !ok {
				return err
			}
			updated = true
			return repos.Post.IncrementCommentCount(ctx, c.PostID, delta)
		})
		if err != nil {
			return nil, err
		}
		if updated {
			c.Status = status
			return s.toResponse(ctx, c)
		}
	}
	return nil, fmt.Errorf("评论状态已被修改，请重试: %w", constant.ErrConflict)
}

func isValidStatus(status int) bool {
	return status == model.CommentStatusPending ||
		status == model.CommentStatusApproved ||
		status == model.CommentStatusRejected
}

func (s *Service) toResponse(ctx context.Context, c *model.Comment) (*model.CommentResponse, error) {
	list, err := s.toResponses(ctx, []*model.Comment{c})
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

// toResponses 批量加载评论者信息
func (s *Service) toResponses(ctx context.Context, comments []*model.Comment) ([]*model.CommentResponse, error) {
	userIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]*model.CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, &model.CommentResponse{
			ID:        c.ID,
			PostID:    c.PostID,
			UserID:    c.UserID,
			ParentID:  c.ParentID,
			Content:   c.Content,
			Status:    c.Status,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			User:      model.NewUserBrief(users[c.UserID]),
		})
	}
	return responses, nil
}
