package sqlrepo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

const tableCategories = "categories"

var categoryColumns = []string{"id", "name", "description", "sort_order", "created_at", "updated_at"}

type categoryRepo struct {
	base
}

func NewCategoryRepo(q Querier, dialect string) repository.CategoryRepository {
	return &categoryRepo{base{q: q, dialect: dialect}}
}

func scanCategory(s rowScanner) (*model.Category, error) {
	var (
		c                    model.Category
		createdAt, updatedAt nullTime
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func (r *categoryRepo) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	query, args := r.builder().Select(categoryColumns...).From(entsql.Table(tableCategories)).
		Where(entsql.EQ("id", id)).Limit(1).Query()
	c, err := scanCategory(r.q.QueryRowContext(ctx, query, args...))
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.Category, error) {
	result := make(map[uint]*model.Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args := r.builder().Select(categoryColumns...).From(entsql.Table(tableCategories)).
		Where(entsql.In("id", uintArgs(ids)...)).Query()
	list, err := r.queryAll(ctx, query, args)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		result[c.ID] = c
	}
	return result, nil
}

// List 按 sort_order 升序，相同时按 ID 升序
func (r *categoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	query, args := r.builder().Select(categoryColumns...).From(entsql.Table(tableCategories)).
		OrderBy("sort_order", "id").Query()
	return r.queryAll(ctx, query, args)
}

func (r *categoryRepo) queryAll(ctx context.Context, query string, args []interface{}) ([]*model.Category, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询分类列表失败: %w", err)
	}
	defer rows.Close()

	var list []*model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("读取分类数据失败: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *categoryRepo) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	where := entsql.EQ("name", name)
	if excludeID > 0 {
		where = entsql.And(where, entsql.NEQ("id", excludeID))
	}
	n, err := r.count(ctx, tableCategories, where)
	if err != nil {
		return false, fmt.Errorf("检查分类名称失败: %w", err)
	}
	return n > 0, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	ts := now()
	id, err := r.insert(ctx, r.builder().Insert(tableCategories).
		Columns("name", "description", "sort_order", "created_at", "updated_at").
		Values(c.Name, c.Description, c.SortOrder, ts, ts))
	if err != nil {
		return wrapWriteErr(err, "创建分类")
	}
	c.ID = id
	c.CreatedAt = ts
	c.UpdatedAt = ts
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	ts := now()
	query, args := r.builder().Update(tableCategories).
		Set("name", c.Name).
		Set("description", c.Description).
		Set("sort_order", c.SortOrder).
		Set("updated_at", ts).
		Where(entsql.EQ("id", c.ID)).Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return wrapWriteErr(err, "更新分类")
	}
	c.UpdatedAt = ts
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id uint) error {
	query, args := r.builder().Delete(tableCategories).Where(entsql.EQ("id", id)).Query()
	_, err := r.exec(ctx, query, args)
	return wrapWriteErr(err, "删除分类")
}
