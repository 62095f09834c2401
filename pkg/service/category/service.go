/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-25 11:50:43
 * @LastEditTime: 2025-09-18 10:12:09
 * @LastEditors: 安知鱼
 */
package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

// Service 封装了文章分类的业务逻辑。
type Service struct {
	repo     repository.CategoryRepository
	postRepo repository.PostRepository
}

// NewService 是 Category Service 的构造函数。
func NewService(repo repository.CategoryRepository, postRepo repository.PostRepository) *Service {
	return &Service{repo: repo, postRepo: postRepo}
}

func (s *Service) List(ctx context.Context) ([]*model.CategoryResponse, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]*model.CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = model.NewCategoryResponse(c)
	}
	return responses, nil
}

func (s *Service) find(ctx context.Context, id uint) (*model.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("分类不存在: %w", constant.ErrNotFound)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*model.CategoryResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.NewCategoryResponse(c), nil
}

// checkName 检查分类名称是否已被其他分类占用
func (s *Service) checkName(ctx context.Context, name string, excludeID uint) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("分类名称 '%s' 已存在: %w", name, constant.ErrConflict)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req *model.CategoryRequest) (*model.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("分类名称不能为空: %w", constant.ErrBadRequest)
	}
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}

	c := &model.Category{Name: name, Description: strings.TrimSpace(req.Description), SortOrder: req.SortOrder}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, nameConflict(err, name)
	}
	return model.NewCategoryResponse(c), nil
}

func (s *Service) Update(ctx context.Context, id uint, req *model.CategoryRequest) (*model.CategoryResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("分类名称不能为空: %w", constant.ErrBadRequest)
	}
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}

	c.Name = name
	c.Description = strings.TrimSpace(req.Description)
	c.SortOrder = req.SortOrder
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, nameConflict(err, name)
	}
	return model.NewCategoryResponse(c), nil
}

// Delete 仍有未删除文章引用该分类时拒绝删除
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	count, err := s.postRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("该分类下还有 %d 篇文章，无法删除: %w", count, constant.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}

// nameConflict 处理检查与写入之间并发插入同名分类的情况
func nameConflict(err error, name string) error {
	if errors.Is(err, constant.ErrConflict) {
		return fmt.Errorf("分类名称 '%s' 已存在: %w", name, constant.ErrConflict)
	}
	return err
}
