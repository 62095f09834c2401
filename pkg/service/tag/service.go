/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-25 11:51:02
 * @LastEditTime: 2025-09-18 10:30:44
 * @LastEditors: 安知鱼
 */
package tag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

// Service 封装了标签的业务逻辑。
type Service struct {
	repo      repository.TagRepository
	postRepo  repository.PostRepository
	txManager repository.TransactionManager
	postTag   repository.PostTagRepository
}

func NewService(
	repo repository.TagRepository,
	postRepo repository.PostRepository,
	postTag repository.PostTagRepository,
	txManager repository.TransactionManager,
) *Service {
	return &Service{repo: repo, postRepo: postRepo, postTag: postTag, txManager: txManager}
}

func toResponses(tags []*model.Tag) []*model.TagResponse {
	responses := make([]*model.TagResponse, len(tags))
	for i, t := range tags {
		responses[i] = model.NewTagResponse(t)
	}
	return responses
}

func (s *Service) List(ctx context.Context) ([]*model.TagResponse, error) {
	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(tags), nil
}

func (s *Service) find(ctx context.Context, id uint) (*model.Tag, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("标签不存在: %w", constant.ErrNotFound)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*model.TagResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.NewTagResponse(t), nil
}

// ListByPost 返回文章的全部标签，文章不存在或已删除时返回 404
func (s *Service) ListByPost(ctx context.Context, postID uint) ([]*model.TagResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("文章不存在: %w", constant.ErrNotFound)
	}
	ids, err := s.postTag.TagIDsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	byID, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	tags := make([]*model.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tags = append(tags, t)
		}
	}
	return toResponses(tags), nil
}

func (s *Service) checkName(ctx context.Context, name string, excludeID uint) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("标签名称 '%s' 已存在: %w", name, constant.ErrConflict)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req *model.TagRequest) (*model.TagResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("标签名称不能为空: %w", constant.ErrBadRequest)
	}
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}
	t := &model.Tag{Name: name}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, nameConflict(err, name)
	}
	return model.NewTagResponse(t), nil
}

func (s *Service) Update(ctx context.Context, id uint, req *model.TagRequest) (*model.TagResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("标签名称不能为空: %w", constant.ErrBadRequest)
	}
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}
	t.Name = name
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, nameConflict(err, name)
	}
	return model.NewTagResponse(t), nil
}

// Delete 在同一事务中删除标签及其文章关联
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.txManager.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.PostTag.DeleteByTag(ctx, id); err != nil {
			return err
		}
		return repos.Tag.Delete(ctx, id)
	})
}

func nameConflict(err error, name string) error {
	if errors.Is(err, constant.ErrConflict) {
		return fmt.Errorf("标签名称 '%s' 已存在: %w", name, constant.ErrConflict)
	}
	return err
}
