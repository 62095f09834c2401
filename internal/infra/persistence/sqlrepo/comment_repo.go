package sqlrepo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

const tableComments = "comments"

var commentColumns = []string{
	"id", "post_id", "user_id", "parent_id", "content", "status", "is_deleted", "created_at", "updated_at",
}

type commentRepo struct {
	base
}

func NewCommentRepo(q Querier, dialect string) repository.CommentRepository {
	return &commentRepo{base{q: q, dialect: dialect}}
}

func scanComment(s rowScanner) (*model.Comment, error) {
	var (
		c                    model.Comment
		parentID             *int64
		isDeleted            int
		createdAt, updatedAt nullTime
	)
	err := s.Scan(&c.ID, &c.PostID, &c.UserID, &parentID, &c.Content, &c.Status, &isDeleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		pid := uint(*parentID)
		c.ParentID = &pid
	}
	c.IsDeleted = isDeleted == 1
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func (r *commentRepo) queryAll(ctx context.Context, query string, args []interface{}) ([]*model.Comment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询评论列表失败: %w", err)
	}
	defer rows.Close()

	var list []*model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("读取评论数据失败: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *commentRepo) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	query, args := r.builder().Select(commentColumns...).From(entsql.Table(tableComments)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_deleted", 0))).Limit(1).Query()
	c, err := scanComment(r.q.QueryRowContext(ctx, query, args...))
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	return c, nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID uint, status *int) ([]*model.Comment, error) {
	where := entsql.And(entsql.EQ("post_id", postID), entsql.EQ("is_deleted", 0))
	if status != nil {
		where = entsql.And(where, entsql.EQ("status", *status))
	}
	query, args := r.builder().Select(commentColumns...).From(entsql.Table(tableComments)).
		Where(where).OrderBy("id").Query()
	return r.queryAll(ctx, query, args)
}

func (r *commentRepo) listPredicate(opts *model.ListCommentsOptions) *entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ("is_deleted", 0)}
	if opts.Status != nil {
		preds = append(preds, entsql.EQ("status", *opts.Status))
	}
	if opts.PostID > 0 {
		preds = append(preds, entsql.EQ("post_id", opts.PostID))
	}
	return entsql.And(preds...)
}

// List 后台审核列表，最新的在前
func (r *commentRepo) List(ctx context.Context, opts *model.ListCommentsOptions) ([]*model.Comment, int64, error) {
	page, size := model.NormalizePage(opts.Page, opts.PageSize)

	total, err := r.count(ctx, tableComments, r.listPredicate(opts))
	if err != nil {
		return nil, 0, fmt.Errorf("统计评论数量失败: %w", err)
	}
	if total == 0 {
		return []*model.Comment{}, 0, nil
	}

	query, args := r.builder().Select(commentColumns...).From(entsql.Table(tableComments)).
		Where(r.listPredicate(opts)).
		OrderBy(entsql.Desc("id")).
		Limit(size).Offset(model.Offset(page, size)).
		Query()
	list, err := r.queryAll(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	ts := now()
	var parentID interface{}
	if c.ParentID != nil {
		parentID = *c.ParentID
	}
	id, err := r.insert(ctx, r.builder().Insert(tableComments).
		Columns("post_id", "user_id", "parent_id", "content", "status", "is_deleted", "created_at", "updated_at").
		Values(c.PostID, c.UserID, parentID, c.Content, c.Status, 0, ts, ts))
	if err != nil {
		return wrapWriteErr(err, "创建评论")
	}
	c.ID = id
	c.IsDeleted = false
	c.CreatedAt = ts
	c.UpdatedAt = ts
	return nil
}

func (r *commentRepo) UpdateContent(ctx context.Context, id uint, content string) error {
	query, args := r.builder().Update(tableComments).
		Set("content", content).
		Set("updated_at", now()).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_deleted", 0))).Query()
	_, err := r.exec(ctx, query, args)
	return wrapWriteErr(err, "更新评论")
}

func (r *commentRepo) UpdateStatus(ctx context.Context, id uint, from, to int) (bool, error) {
	query, args := r.builder().Update(tableComments).
		Set("status", to).
		Set("updated_at", now()).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("status", from), entsql.EQ("is_deleted", 0))).Query()
	n, err := r.execAffected(ctx, query, args)
	if err != nil {
		return false, wrapWriteErr(err, "更新评论状态")
	}
	return n == 1, nil
}

// SoftDeleteTree 逐层向下查找子评论，再逐条删除
func (r *commentRepo) SoftDeleteTree(ctx context.Context, id uint) (int64, error) {
	ids := []uint{id}
	frontier := []uint{id}
	for len(frontier) > 0 {
		children, err := r.childIDs(ctx, frontier)
		if err != nil {
			return 0, err
		}
		ids = append(ids, children...)
		frontier = children
	}

	var approved int64
	for _, cid := range ids {
		wasApproved, err := r.softDeleteOne(ctx, cid)
		if err != nil {
			return 0, err
		}
		if wasApproved {
			approved++
		}
	}
	return approved, nil
}

const maxStatusRetries = 5

// softDeleteOne 以读到的状态为条件删除单条评论，只有真正由本次调用删除的已通过评论才计入。
// 状态被并发修改时重新读取；评论已被删除时返回 false。
func (r *commentRepo) softDeleteOne(ctx context.Context, id uint) (bool, error) {
	for attempt := 0; attempt < maxStatusRetries; attempt++ {
		c, err := r.FindByID(ctx, id)
		if err != nil || c == nil {
			return false, err
		}
		query, args := r.builder().Update(tableComments).
			Set("is_deleted", 1).
			Set("updated_at", now()).
			Where(entsql.And(entsql.EQ("id", id), entsql.EQ("status", c.Status), entsql.EQ("is_deleted", 0))).Query()
		n, err := r.execAffected(ctx, query, args)
		if err != nil {
			return false, fmt.Errorf("删除评论失败: %w", err)
		}
		if n == 1 {
			return c.Status == model.CommentStatusApproved, nil
		}
	}
	return false, fmt.Errorf("评论 %d 状态频繁变化，删除失败: %w", id, constant.ErrConflict)
}

func (r *commentRepo) childIDs(ctx context.Context, parentIDs []uint) ([]uint, error) {
	query, args := r.builder().Select("id").From(entsql.Table(tableComments)).
		Where(entsql.And(entsql.In("parent_id", uintArgs(parentIDs)...), entsql.EQ("is_deleted", 0))).Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询子评论失败: %w", err)
	}
	defer rows.Close()

	var ids []uint
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
