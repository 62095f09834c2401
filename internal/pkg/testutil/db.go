// Package testutil 提供测试使用的临时 SQLite 数据库
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"entgo.io/ent/dialect"

	"github.com/anzhiyu-c/blog-admin/internal/infra/persistence/database"
	"github.com/anzhiyu-c/blog-admin/internal/infra/persistence/sqlrepo"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

// Store 是一个完成迁移的临时数据库及其仓储
type Store struct {
	DB    *sql.DB
	Repos repository.Repositories
	Tx    repository.TransactionManager
}

func NewStore(t testing.TB) *Store {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.NewMigrationService(db, dialect.SQLite).RunMigrations(context.Background()); err != nil {
		t.Fatalf("测试数据库迁移失败: %v", err)
	}
	return &Store{
		DB:    db,
		Repos: sqlrepo.NewRepositories(db, dialect.SQLite),
		Tx:    sqlrepo.NewTransactionManager(db, dialect.SQLite),
	}
}
