package sqlrepo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

const tableTags = "tags"

var tagColumns = []string{"id", "name", "created_at", "updated_at"}

type tagRepo struct {
	base
}

func NewTagRepo(q Querier, dialect string) repository.TagRepository {
	return &tagRepo{base{q: q, dialect: dialect}}
}

func scanTag(s rowScanner) (*model.Tag, error) {
	var (
		t                    model.Tag
		createdAt, updatedAt nullTime
	)
	if err := s.Scan(&t.ID, &t.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	return &t, nil
}

func (r *tagRepo) FindByID(ctx context.Context, id uint) (*model.Tag, error) {
	query, args := r.builder().Select(tagColumns...).From(entsql.Table(tableTags)).
		Where(entsql.EQ("id", id)).Limit(1).Query()
	t, err := scanTag(r.q.QueryRowContext(ctx, query, args...))
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}
	return t, nil
}

func (r *tagRepo) FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.Tag, error) {
	result := make(map[uint]*model.Tag, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args := r.builder().Select(tagColumns...).From(entsql.Table(tableTags)).
		Where(entsql.In("id", uintArgs(ids)...)).Query()
	list, err := r.queryAll(ctx, query, args)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		result[t.ID] = t
	}
	return result, nil
}

func (r *tagRepo) List(ctx context.Context) ([]*model.Tag, error) {
	query, args := r.builder().Select(tagColumns...).From(entsql.Table(tableTags)).OrderBy("id").Query()
	return r.queryAll(ctx, query, args)
}

func (r *tagRepo) queryAll(ctx context.Context, query string, args []interface{}) ([]*model.Tag, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询标签列表失败: %w", err)
	}
	defer rows.Close()

	var list []*model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("读取标签数据失败: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *tagRepo) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	where := entsql.EQ("name", name)
	if excludeID > 0 {
		where = entsql.And(where, entsql.NEQ("id", excludeID))
	}
	n, err := r.count(ctx, tableTags, where)
	if err != nil {
		return false, fmt.Errorf("检查标签名称失败: %w", err)
	}
	return n > 0, nil
}

func (r *tagRepo) Create(ctx context.Context, t *model.Tag) error {
	ts := now()
	id, err := r.insert(ctx, r.builder().Insert(tableTags).
		Columns("name", "created_at", "updated_at").
		Values(t.Name, ts, ts))
	if err != nil {
		return wrapWriteErr(err, "创建标签")
	}
	t.ID = id
	t.CreatedAt = ts
	t.UpdatedAt = ts
	return nil
}

func (r *tagRepo) Update(ctx context.Context, t *model.Tag) error {
	ts := now()
	query, args := r.builder().Update(tableTags).
		Set("name", t.Name).
		Set("updated_at", ts).
		Where(entsql.EQ("id", t.ID)).Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return wrapWriteErr(err, "更新标签")
	}
	t.UpdatedAt = ts
	return nil
}

func (r *tagRepo) Delete(ctx context.Context, id uint) error {
	query, args := r.builder().Delete(tableTags).Where(entsql.EQ("id", id)).Query()
	_, err := r.exec(ctx, query, args)
	return wrapWriteErr(err, "删除标签")
}
