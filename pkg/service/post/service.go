// blog-admin/pkg/service/post/service.go
package post

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/parser"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

// 自动生成摘要的最大字符数
const autoSummaryLength = 200

type Service interface {
	ListPublished(ctx context.Context, page, size int, keyword string) (*model.PageResult[*model.PostResponse], error)
	// ListAll 后台列表，status 为 nil 时返回全部状态
	ListAll(ctx context.Context, page, size int, keyword string, status *int) (*model.PageResult[*model.PostResponse], error)
	ListByCategory(ctx context.Context, categoryID uint, page, size int) (*model.PageResult[*model.PostResponse], error)
	ListByTag(ctx context.Context, tagID uint, page, size int) (*model.PageResult[*model.PostResponse], error)
	ListByAuthor(ctx context.Context, authorID uint, page, size int) (*model.PageResult[*model.PostResponse], error)
	// Get 未发布的文章只有作者和管理员可见，viewer 可以为 nil
	Get(ctx context.Context, viewer *model.User, id uint) (*model.PostResponse, error)
	Create(ctx context.Context, actor *model.User, req *model.PostRequest) (*model.PostResponse, error)
	Update(ctx context.Context, actor *model.User, id uint, req *model.PostRequest) (*model.PostResponse, error)
	Delete(ctx context.Context, actor *model.User, id uint) error
	Like(ctx context.Context, id uint) (int64, error)
	SetTop(ctx context.Context, id uint, isTop bool) error
}

type serviceImpl struct {
	repo         repository.PostRepository
	postTagRepo  repository.PostTagRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	userRepo     repository.UserRepository
	txManager    repository.TransactionManager
	views        *ViewCounter
}

func NewService(
	repos repository.Repositories,
	txManager repository.TransactionManager,
	views *ViewCounter,
) Service {
	return &serviceImpl{
		repo:         repos.Post,
		postTagRepo:  repos.PostTag,
		categoryRepo: repos.Category,
		tagRepo:      repos.Tag,
		userRepo:     repos.User,
		txManager:    txManager,
		views:        views,
	}
}

// --- 查询 ---

func (s *serviceImpl) list(ctx context.Context, opts *model.ListPostsOptions) (*model.PageResult[*model.PostResponse], error) {
	opts.Page, opts.PageSize = model.NormalizePage(opts.Page, opts.PageSize)
	posts, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	records, err := s.toResponses(ctx, posts, false)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(records, total, opts.Page, opts.PageSize), nil
}

func publishedStatus() *int {
	status := model.PostStatusPublished
	return &status
}

func (s *serviceImpl) ListPublished(ctx context.Context, page, size int, keyword string) (*model.PageResult[*model.PostResponse], error) {
	return s.list(ctx, &model.ListPostsOptions{Page: page, PageSize: size, Keyword: keyword, Status: publishedStatus()})
}

func (s *serviceImpl) ListAll(ctx context.Context, page, size int, keyword string, status *int) (*model.PageResult[*model.PostResponse], error) {
	if status != nil && !model.IsValidPostStatus(*status) {
		return nil, fmt.Errorf("无效的文章状态 %d: %w", *status, constant.ErrBadRequest)
	}
	return s.list(ctx, &model.ListPostsOptions{Page: page, PageSize: size, Keyword: keyword, Status: status})
}

func (s *serviceImpl) ListByCategory(ctx context.Context, categoryID uint, page, size int) (*model.PageResult[*model.PostResponse], error) {
	c, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("分类不存在: %w", constant.ErrNotFound)
	}
	return s.list(ctx, &model.ListPostsOptions{Page: page, PageSize: size, CategoryID: categoryID, Status: publishedStatus()})
}

func (s *serviceImpl) ListByTag(ctx context.Context, tagID uint, page, size int) (*model.PageResult[*model.PostResponse], error) {
	t, err := s.tagRepo.FindByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("标签不存在: %w", constant.ErrNotFound)
	}
	return s.list(ctx, &model.ListPostsOptions{Page: page, PageSize: size, TagID: tagID, Status: publishedStatus()})
}

// ListByAuthor 作者查看自己的文章，包含草稿和下线的文章
func (s *serviceImpl) ListByAuthor(ctx context.Context, authorID uint, page, size int) (*model.PageResult[*model.PostResponse], error) {
	return s.list(ctx, &model.ListPostsOptions{Page: page, PageSize: size, AuthorID: authorID})
}

func (s *serviceImpl) find(ctx context.Context, id uint) (*model.Post, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("文章不存在: %w", constant.ErrNotFound)
	}
	return p, nil
}

func (s *serviceImpl) Get(ctx context.Context, viewer *model.User, id uint) (*model.PostResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished() && !auth.CanModify(viewer, p.AuthorID) {
		return nil, fmt.Errorf("文章未发布: %w", constant.ErrForbidden)
	}

	if p.IsPublished() && s.views != nil {
		pending, err := s.views.Record(ctx, p.ID)
		if err != nil {
			log.Printf("[Post] 记录文章 %d 浏览量失败: %v", p.ID, err)
		} else {
			// 缓冲中尚未落库的浏览量一并返回
			p.ViewCount += pending
		}
	}

	list, err := s.toResponses(ctx, []*model.Post{p}, true)
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

// --- 写入 ---

// validateRefs 校验分类与标签是否存在
func (s *serviceImpl) validateRefs(ctx context.Context, categoryID uint, tagIDs []uint) error {
	c, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("分类 %d 不存在: %w", categoryID, constant.ErrBadRequest)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	found, err := s.tagRepo.FindByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	for _, id := range tagIDs {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("标签 %d 不存在: %w", id, constant.ErrBadRequest)
		}
	}
	return nil
}

func summaryOf(req *model.PostRequest) string {
	if summary := strings.TrimSpace(req.Summary); summary != "" {
		return summary
	}
	return parser.Summarize(req.Content, autoSummaryLength)
}

func (s *serviceImpl) Create(ctx context.Context, actor *model.User, req *model.PostRequest) (*model.PostResponse, error) {
	if actor == nil {
		return nil, constant.ErrUnauthorized
	}
	status := model.PostStatusPublished
	if req.Status != nil {
		status = *req.Status
	}
	if !model.IsValidPostStatus(status) {
		return nil, fmt.Errorf("无效的文章状态 %d: %w", status, constant.ErrBadRequest)
	}
	if err := s.validateRefs(ctx, req.CategoryID, req.TagIDs); err != nil {
		return nil, err
	}

	p := &model.Post{
		Title:      strings.TrimSpace(req.Title),
		Summary:    summaryOf(req),
		Content:    req.Content,
		CoverImage: strings.TrimSpace(req.CoverImage),
		AuthorID:   actor.ID,
		CategoryID: req.CategoryID,
		Status:     status,
	}
	if status == model.PostStatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}

	err := s.txManager.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.Post.Create(ctx, p); err != nil {
			return err
		}
		return repos.PostTag.ReplaceTags(ctx, p.ID, req.TagIDs)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Post] 用户 %d 创建了文章 %d", actor.ID, p.ID)

	created, err := s.find(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	list, err := s.toResponses(ctx, []*model.Post{created}, true)
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

// Update 只复制请求中允许编辑的字段，作者、计数器、置顶不会被请求覆盖
func (s *serviceImpl) Update(ctx context.Context, actor *model.User, id uint, req *model.PostRequest) (*model.PostResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, p.AuthorID) {
		return nil, fmt.Errorf("只有作者或管理员可以修改文章: %w", constant.ErrForbidden)
	}
	if req.Status != nil && !model.IsValidPostStatus(*req.Status) {
		return nil, fmt.Errorf("无效的文章状态 %d: %w", *req.Status, constant.ErrBadRequest)
	}
	if err := s.validateRefs(ctx, req.CategoryID, req.TagIDs); err != nil {
		return nil, err
	}

	p.Title = strings.TrimSpace(req.Title)
	p.Summary = summaryOf(req)
	p.Content = req.Content
	p.CoverImage = strings.TrimSpace(req.CoverImage)
	p.CategoryID = req.CategoryID
	if req.Status != nil {
		p.Status = *req.Status
	}
	if p.Status == model.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.Post.Update(ctx, p); err != nil {
			return err
		}
		// tagIds 缺省时保持原有标签
		if req.TagIDs == nil {
			return nil
		}
		return repos.PostTag.ReplaceTags(ctx, p.ID, req.TagIDs)
	})
	if err != nil {
		return nil, err
	}

	list, err := s.toResponses(ctx, []*model.Post{p}, true)
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor *model.User, id uint) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanModify(actor, p.AuthorID) {
		return fmt.Errorf("只有作者或管理员可以删除文章: %w", constant.ErrForbidden)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	log.Printf("[Post] 用户 %d 删除了文章 %d", actor.ID, id)
	return nil
}

// Like 点赞数原子加一，返回最新的点赞数
func (s *serviceImpl) Like(ctx context.Context, id uint) (int64, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return 0, err
	}
	if !p.IsPublished() {
		return 0, fmt.Errorf("文章未发布: %w", constant.ErrForbidden)
	}
	if err := s.repo.IncrementLikeCount(ctx, id, 1); err != nil {
		return 0, err
	}
	updated, err := s.find(ctx, id)
	if err != nil {
		return 0, err
	}
	return updated.LikeCount, nil
}

func (s *serviceImpl) SetTop(ctx context.Context, id uint, isTop bool) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.SetTop(ctx, id, isTop)
}

// --- 响应组装 ---

// toResponses 批量加载作者、分类和标签，避免逐条查询
func (s *serviceImpl) toResponses(ctx context.Context, posts []*model.Post, includeContent bool) ([]*model.PostResponse, error) {
	if len(posts) == 0 {
		return []*model.PostResponse{}, nil
	}

	postIDs := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	categoryIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
		categoryIDs = append(categoryIDs, p.CategoryID)
	}

	authors, err := s.userRepo.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.FindByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	tagIDsByPost, err := s.postTagRepo.TagIDsByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	var allTagIDs []uint
	for _, ids := range tagIDsByPost {
		allTagIDs = append(allTagIDs, ids...)
	}
	tags, err := s.tagRepo.FindByIDs(ctx, allTagIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]*model.PostResponse, 0, len(posts))
	for _, p := range posts {
		resp := &model.PostResponse{
			ID:           p.ID,
			Title:        p.Title,
			Summary:      p.Summary,
			CoverImage:   p.CoverImage,
			AuthorID:     p.AuthorID,
			CategoryID:   p.CategoryID,
			Status:       p.Status,
			ViewCount:    p.ViewCount,
			LikeCount:    p.LikeCount,
			CommentCount: p.CommentCount,
			IsTop:        p.IsTop,
			PublishedAt:  p.PublishedAt,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
			Author:       model.NewUserBrief(authors[p.AuthorID]),
			Category:     model.NewCategoryResponse(categories[p.CategoryID]),
			Tags:         []*model.TagResponse{},
		}
		if includeContent {
			resp.Content = p.Content
		}
		for _, tagID := range tagIDsByPost[p.ID] {
			if t, ok := tags[tagID]; ok {
				resp.Tags = append(resp.Tags, model.NewTagResponse(t))
			}
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
