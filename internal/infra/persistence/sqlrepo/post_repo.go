/*
 * @Description: 文章仓储
 * @Author: 安知鱼
 * @Date: 2025-09-14 16:40:27
 * @LastEditTime: 2025-09-16 11:02:19
 * @LastEditors: 安知鱼
 */
package sqlrepo

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

const (
	tablePosts    = "posts"
	tablePostTags = "post_tags"
)

var postColumns = []string{
	"id", "title", "summary", "content", "cover_image", "author_id", "category_id", "status",
	"view_count", "like_count", "comment_count", "is_top", "is_deleted",
	"published_at", "created_at", "updated_at",
}

type postRepo struct {
	base
}

func NewPostRepo(q Querier, dialect string) repository.PostRepository {
	return &postRepo{base{q: q, dialect: dialect}}
}

func scanPost(s rowScanner) (*model.Post, error) {
	var (
		p                    model.Post
		isTop, isDeleted     int
		publishedAt          nullTime
		createdAt, updatedAt nullTime
	)
	err := s.Scan(&p.ID, &p.Title, &p.Summary, &p.Content, &p.CoverImage, &p.AuthorID, &p.CategoryID, &p.Status,
		&p.ViewCount, &p.LikeCount, &p.CommentCount, &isTop, &isDeleted,
		&publishedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.IsTop = isTop == 1
	p.IsDeleted = isDeleted == 1
	p.PublishedAt = publishedAt.Ptr()
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

func (r *postRepo) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	query, args := r.builder().Select(postColumns...).From(entsql.Table(tablePosts)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_deleted", 0))).Limit(1).Query()
	p, err := scanPost(r.q.QueryRowContext(ctx, query, args...))
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return p, nil
}

// listPredicate 构建列表查询条件，计数和分页查询各调用一次，避免共用同一个谓词实例
func (r *postRepo) listPredicate(opts *model.ListPostsOptions) *entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ("is_deleted", 0)}
	if opts.Status != nil {
		preds = append(preds, entsql.EQ("status", *opts.Status))
	}
	if opts.CategoryID > 0 {
		preds = append(preds, entsql.EQ("category_id", opts.CategoryID))
	}
	if opts.AuthorID > 0 {
		preds = append(preds, entsql.EQ("author_id", opts.AuthorID))
	}
	if opts.TagID > 0 {
		sub := r.builder().Select("post_id").From(entsql.Table(tablePostTags)).
			Where(entsql.EQ("tag_id", opts.TagID))
		preds = append(preds, entsql.In("id", sub))
	}
	if kw := strings.TrimSpace(opts.Keyword); kw != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold("title", kw),
			entsql.ContainsFold("summary", kw),
		))
	}
	return entsql.And(preds...)
}

func (r *postRepo) List(ctx context.Context, opts *model.ListPostsOptions) ([]*model.Post, int64, error) {
	page, size := model.NormalizePage(opts.Page, opts.PageSize)

	total, err := r.count(ctx, tablePosts, r.listPredicate(opts))
	if err != nil {
		return nil, 0, fmt.Errorf("统计文章数量失败: %w", err)
	}
	if total == 0 {
		return []*model.Post{}, 0, nil
	}

	query, args := r.builder().Select(postColumns...).From(entsql.Table(tablePosts)).
		Where(r.listPredicate(opts)).
		// 置顶优先，其次按发布时间，草稿没有发布时间时使用创建时间
		OrderBy(entsql.Desc("is_top"), entsql.Desc("COALESCE(published_at, created_at)"), entsql.Desc("id")).
		Limit(size).Offset(model.Offset(page, size)).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询文章列表失败: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0, size)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("读取文章数据失败: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepo) Create(ctx context.Context, p *model.Post) error {
	ts := now()
	id, err := r.insert(ctx, r.builder().Insert(tablePosts).
		Columns("title", "summary", "content", "cover_image", "author_id", "category_id", "status",
			"view_count", "like_count", "comment_count", "is_top", "is_deleted",
			"published_at", "created_at", "updated_at").
		Values(p.Title, p.Summary, p.Content, p.CoverImage, p.AuthorID, p.CategoryID, p.Status,
			0, 0, 0, boolToInt(p.IsTop), 0,
			timeArg(p.PublishedAt), ts, ts))
	if err != nil {
		return wrapWriteErr(err, "创建文章")
	}
	p.ID = id
	p.ViewCount, p.LikeCount, p.CommentCount = 0, 0, 0
	p.IsDeleted = false
	p.CreatedAt = ts
	p.UpdatedAt = ts
	return nil
}

func (r *postRepo) Update(ctx context.Context, p *model.Post) error {
	ts := now()
	query, args := r.builder().Update(tablePosts).
		Set("title", p.Title).
		Set("summary", p.Summary).
		Set("content", p.Content).
		Set("cover_image", p.CoverImage).
		Set("category_id", p.CategoryID).
		Set("status", p.Status).
		Set("published_at", timeArg(p.PublishedAt)).
		Set("updated_at", ts).
		Where(entsql.And(entsql.EQ("id", p.ID), entsql.EQ("is_deleted", 0))).Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return wrapWriteErr(err, "更新文章")
	}
	p.UpdatedAt = ts
	return nil
}

func (r *postRepo) SoftDelete(ctx context.Context, id uint) error {
	query, args := r.builder().Update(tablePosts).
		Set("is_deleted", 1).
		Set("updated_at", now()).
		Where(entsql.EQ("id", id)).Query()
	_, err := r.exec(ctx, query, args)
	return wrapWriteErr(err, "删除文章")
}

func (r *postRepo) SetTop(ctx context.Context, id uint, isTop bool) error {
	query, args := r.builder().Update(tablePosts).
		Set("is_top", boolToInt(isTop)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_deleted", 0))).Query()
	_, err := r.exec(ctx, query, args)
	return wrapWriteErr(err, "设置置顶")
}

func (r *postRepo) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	n, err := r.count(ctx, tablePosts, entsql.And(entsql.EQ("category_id", categoryID), entsql.EQ("is_deleted", 0)))
	if err != nil {
		return 0, fmt.Errorf("统计分类文章数失败: %w", err)
	}
	return n, nil
}

// increment 使用 col = COALESCE(col, 0) + delta 的原子更新，不经过读改写
func (r *postRepo) increment(ctx context.Context, column string, id uint, delta int64) error {
	if delta == 0 {
		return nil
	}
	query, args := r.builder().Update(tablePosts).
		Add(column, delta).
		Where(entsql.EQ("id", id)).Query()
	_, err := r.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("更新文章 %s 失败: %w", column, err)
	}
	return nil
}

func (r *postRepo) IncrementViewCount(ctx context.Context, id uint, delta int64) error {
	return r.increment(ctx, "view_count", id, delta)
}

func (r *postRepo) IncrementLikeCount(ctx context.Context, id uint, delta int64) error {
	return r.increment(ctx, "like_count", id, delta)
}

func (r *postRepo) IncrementCommentCount(ctx context.Context, id uint, delta int64) error {
	return r.increment(ctx, "comment_count", id, delta)
}

// UpdateViewCounts 批量累加浏览量，由定时任务在事务中调用
func (r *postRepo) UpdateViewCounts(ctx context.Context, updates map[uint]int64) error {
	for id, delta := range updates {
		if err := r.increment(ctx, "view_count", id, delta); err != nil {
			return err
		}
	}
	return nil
}
