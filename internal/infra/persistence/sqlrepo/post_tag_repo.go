package sqlrepo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

type postTagRepo struct {
	base
}

func NewPostTagRepo(q Querier, dialect string) repository.PostTagRepository {
	return &postTagRepo{base{q: q, dialect: dialect}}
}

// ReplaceTags 应在事务内调用，否则删除与插入之间的失败会让文章丢失标签
func (r *postTagRepo) ReplaceTags(ctx context.Context, postID uint, tagIDs []uint) error {
	query, args := r.builder().Delete(tablePostTags).Where(entsql.EQ("post_id", postID)).Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return fmt.Errorf("清除文章标签失败: %w", err)
	}

	ids := dedupe(tagIDs)
	if len(ids) == 0 {
		return nil
	}
	ib := r.builder().Insert(tablePostTags).Columns("post_id", "tag_id")
	for _, tagID := range ids {
		ib.Values(postID, tagID)
	}
	query, args = ib.Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return wrapWriteErr(err, "写入文章标签")
	}
	return nil
}

func (r *postTagRepo) TagIDsByPost(ctx context.Context, postID uint) ([]uint, error) {
	m, err := r.TagIDsByPosts(ctx, []uint{postID})
	if err != nil {
		return nil, err
	}
	return m[postID], nil
}

func (r *postTagRepo) TagIDsByPosts(ctx context.Context, postIDs []uint) (map[uint][]uint, error) {
	result := make(map[uint][]uint, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	query, args := r.builder().Select("post_id", "tag_id").From(entsql.Table(tablePostTags)).
		Where(entsql.In("post_id", uintArgs(postIDs)...)).
		OrderBy("post_id", "tag_id").Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询文章标签失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID, tagID uint
		if err := rows.Scan(&postID, &tagID); err != nil {
			return nil, fmt.Errorf("读取文章标签失败: %w", err)
		}
		result[postID] = append(result[postID], tagID)
	}
	return result, rows.Err()
}

func (r *postTagRepo) DeleteByTag(ctx context.Context, tagID uint) error {
	query, args := r.builder().Delete(tablePostTags).Where(entsql.EQ("tag_id", tagID)).Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return fmt.Errorf("删除标签关联失败: %w", err)
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
