/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-13 23:40:12
 * @LastEditTime: 2025-09-15 09:12:40
 * @LastEditors: 安知鱼
 */
package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

// NewRepositories 基于同一个 Querier 构建全部仓储，*sql.DB 与 *sql.Tx 均可
func NewRepositories(q Querier, dialect string) repository.Repositories {
	return repository.Repositories{
		User:     NewUserRepo(q, dialect),
		Post:     NewPostRepo(q, dialect),
		PostTag:  NewPostTagRepo(q, dialect),
		Category: NewCategoryRepo(q, dialect),
		Tag:      NewTagRepo(q, dialect),
		Comment:  NewCommentRepo(q, dialect),
	}
}

type sqlTransactionManager struct {
	db      *sql.DB
	dialect string
}

func NewTransactionManager(db *sql.DB, dialect string) repository.TransactionManager {
	return &sqlTransactionManager{db: db, dialect: dialect}
}

// Do 开启事务并把事务内的仓储交给 fn。
// SQLite 只有一个连接，fn 内部只能使用传入的 repos，不能再访问外部仓储。
func (tm *sqlTransactionManager) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}

	defer func() {
		if v := recover(); v != nil {
			tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(NewRepositories(tx, tm.dialect)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("事务执行失败: %w, 回滚事务也失败: %v", err, rerr)
		}
		return err
	}

	return tx.Commit()
}
