// internal/app/bootstrap/bootstrap.go
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/anzhiyu-c/blog-admin/internal/infra/persistence/database"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
	"github.com/anzhiyu-c/blog-admin/pkg/service/user"
)

// Bootstrapper 负责启动时的数据库初始化：建表迁移、初始管理员和基础检查
type Bootstrapper struct {
	db          *sql.DB
	dialectName string
	cfg         *config.Config
	userRepo    repository.UserRepository
	userSvc     user.UserService
}

func NewBootstrapper(
	db *sql.DB,
	dialectName string,
	cfg *config.Config,
	userRepo repository.UserRepository,
	userSvc user.UserService,
) *Bootstrapper {
	return &Bootstrapper{
		db:          db,
		dialectName: dialectName,
		cfg:         cfg,
		userRepo:    userRepo,
		userSvc:     userSvc,
	}
}

func (b *Bootstrapper) InitializeDatabase(ctx context.Context) error {
	log.Println("--- 开始执行数据库初始化引导程序 ---")

	if err := database.NewMigrationService(b.db, b.dialectName).RunMigrations(ctx); err != nil {
		return fmt.Errorf("数据库 schema 创建/更新失败: %w", err)
	}
	log.Println("--- 数据库 Schema 同步成功 ---")

	if err := b.userSvc.EnsureAdmin(ctx, b.cfg); err != nil {
		return fmt.Errorf("初始化管理员账号失败: %w", err)
	}
	b.checkUserTable(ctx)

	log.Println("--- 数据库初始化引导程序执行完成 ---")
	return nil
}

// checkUserTable 用户表为空时提示如何创建管理员
func (b *Bootstrapper) checkUserTable(ctx context.Context) {
	count, err := b.userRepo.Count(ctx)
	if err != nil {
		log.Printf("⚠️ 失败: 查询用户数量失败: %v", err)
		return
	}
	if count == 0 {
		log.Println("⚠️ 用户表为空，可通过 Admin.Username / Admin.Password 配置初始管理员，或先注册普通用户后手动提升角色")
		return
	}
	log.Printf("--- 当前共有 %d 个用户 ---", count)
}
