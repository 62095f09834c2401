/*
 * @Description: 数据库迁移服务（按方言创建表结构和索引）
 * @Author: 安知鱼
 * @Date: 2025-12-08
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"entgo.io/ent/dialect"
)

// MigrationService 数据库迁移服务
type MigrationService struct {
	db      *sql.DB
	dialect string
}

// NewMigrationService 创建迁移服务，dialectName 取值为 ent 的方言名称
func NewMigrationService(db *sql.DB, dialectName string) *MigrationService {
	return &MigrationService{
		db:      db,
		dialect: dialectName,
	}
}

// RunMigrations 执行所有迁移，所有语句均可重复执行
func (m *MigrationService) RunMigrations(ctx context.Context) error {
	log.Println("📋 开始执行数据库迁移...")

	var statements []string
	switch m.dialect {
	case dialect.MySQL:
		statements = mysqlSchema
	case dialect.Postgres:
		statements = postgresSchema
	case dialect.SQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("不支持的迁移方言: %s", m.dialect)
	}

	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("执行迁移语句失败: %w\nSQL: %s", err, firstLine(stmt))
		}
	}

	if err := m.migrateCommentCount(ctx); err != nil {
		return fmt.Errorf("comment_count 字段迁移失败: %w", err)
	}

	log.Println("✅ 数据库迁移完成")
	return nil
}

// migrateCommentCount 为旧版本创建的 posts 表补充 comment_count 字段并回填数据
func (m *MigrationService) migrateCommentCount(ctx context.Context) error {
	exists, err := m.columnExists(ctx, "posts", "comment_count")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	log.Println("  → 添加 comment_count 字段...")
	if _, err := m.db.ExecContext(ctx, `ALTER TABLE posts ADD COLUMN comment_count BIGINT NOT NULL DEFAULT 0`); err != nil {
		return fmt.Errorf("添加 comment_count 字段失败: %w", err)
	}
	_, err = m.db.ExecContext(ctx, `
		UPDATE posts SET comment_count = (
			SELECT COUNT(*) FROM comments
			WHERE comments.post_id = posts.id AND comments.status = 1 AND comments.is_deleted = 0
		)`)
	if err != nil {
		return fmt.Errorf("回填 comment_count 失败: %w", err)
	}
	log.Println("  ✓ comment_count 字段迁移完成")
	return nil
}

// columnExists 检查表中是否存在指定列
func (m *MigrationService) columnExists(ctx context.Context, table, column string) (bool, error) {
	var query string
	var args []interface{}

	switch m.dialect {
	case dialect.MySQL:
		query = `SELECT COUNT(*) FROM information_schema.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`
		args = []interface{}{table, column}
	case dialect.Postgres:
		query = `SELECT COUNT(*) FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2`
		args = []interface{}{table, column}
	case dialect.SQLite:
		query = `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`
		args = []interface{}{table, column}
	default:
		return false, fmt.Errorf("不支持的数据库类型: %s", m.dialect)
	}

	var count int
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("检查字段 %s.%s 是否存在失败: %w", table, column, err)
	}
	return count > 0, nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i > 0 {
		return stmt[:i]
	}
	return stmt
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username VARCHAR(50) NOT NULL UNIQUE,
		password VARCHAR(100) NOT NULL,
		nickname VARCHAR(50) NOT NULL DEFAULT '',
		email VARCHAR(100) NOT NULL UNIQUE,
		avatar VARCHAR(500) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'USER',
		status INTEGER NOT NULL DEFAULT 1,
		last_login_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(50) NOT NULL UNIQUE,
		description VARCHAR(200) NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(50) NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(200) NOT NULL,
		summary VARCHAR(500) NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		cover_image VARCHAR(500) NOT NULL DEFAULT '',
		author_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		status INTEGER NOT NULL DEFAULT 1,
		view_count BIGINT NOT NULL DEFAULT 0,
		like_count BIGINT NOT NULL DEFAULT 0,
		comment_count BIGINT NOT NULL DEFAULT 0,
		is_top INTEGER NOT NULL DEFAULT 0,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		published_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_status_deleted ON posts(status, is_deleted)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_category_id ON posts(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id)`,
	`CREATE TABLE IF NOT EXISTS post_tags (
		post_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		PRIMARY KEY (post_id, tag_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_post_tags_tag_id ON post_tags(tag_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		parent_id INTEGER NULL,
		content TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments(parent_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(50) NOT NULL,
		password VARCHAR(100) NOT NULL,
		nickname VARCHAR(50) NOT NULL DEFAULT '',
		email VARCHAR(100) NOT NULL,
		avatar VARCHAR(500) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'USER',
		status TINYINT NOT NULL DEFAULT 1,
		last_login_at DATETIME(3) NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		UNIQUE KEY uk_users_username (username),
		UNIQUE KEY uk_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		description VARCHAR(200) NOT NULL DEFAULT '',
		sort_order INT NOT NULL DEFAULT 0,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		UNIQUE KEY uk_categories_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		UNIQUE KEY uk_tags_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		summary VARCHAR(500) NOT NULL DEFAULT '',
		content LONGTEXT NOT NULL,
		cover_image VARCHAR(500) NOT NULL DEFAULT '',
		author_id BIGINT UNSIGNED NOT NULL,
		category_id BIGINT UNSIGNED NOT NULL,
		status TINYINT NOT NULL DEFAULT 1,
		view_count BIGINT NOT NULL DEFAULT 0,
		like_count BIGINT NOT NULL DEFAULT 0,
		comment_count BIGINT NOT NULL DEFAULT 0,
		is_top TINYINT NOT NULL DEFAULT 0,
		is_deleted TINYINT NOT NULL DEFAULT 0,
		published_at DATETIME(3) NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		KEY idx_posts_status_deleted (status, is_deleted),
		KEY idx_posts_category_id (category_id),
		KEY idx_posts_author_id (author_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS post_tags (
		post_id BIGINT UNSIGNED NOT NULL,
		tag_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (post_id, tag_id),
		KEY idx_post_tags_tag_id (tag_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		post_id BIGINT UNSIGNED NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		parent_id BIGINT UNSIGNED NULL,
		content TEXT NOT NULL,
		status TINYINT NOT NULL DEFAULT 0,
		is_deleted TINYINT NOT NULL DEFAULT 0,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		KEY idx_comments_post_id (post_id),
		KEY idx_comments_parent_id (parent_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		password VARCHAR(100) NOT NULL,
		nickname VARCHAR(50) NOT NULL DEFAULT '',
		email VARCHAR(100) NOT NULL UNIQUE,
		avatar VARCHAR(500) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'USER',
		status SMALLINT NOT NULL DEFAULT 1,
		last_login_at TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(50) NOT NULL UNIQUE,
		description VARCHAR(200) NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(50) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		summary VARCHAR(500) NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		cover_image VARCHAR(500) NOT NULL DEFAULT '',
		author_id BIGINT NOT NULL,
		category_id BIGINT NOT NULL,
		status SMALLINT NOT NULL DEFAULT 1,
		view_count BIGINT NOT NULL DEFAULT 0,
		like_count BIGINT NOT NULL DEFAULT 0,
		comment_count BIGINT NOT NULL DEFAULT 0,
		is_top SMALLINT NOT NULL DEFAULT 0,
		is_deleted SMALLINT NOT NULL DEFAULT 0,
		published_at TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_status_deleted ON posts(status, is_deleted)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_category_id ON posts(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id)`,
	`CREATE TABLE IF NOT EXISTS post_tags (
		post_id BIGINT NOT NULL,
		tag_id BIGINT NOT NULL,
		PRIMARY KEY (post_id, tag_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_post_tags_tag_id ON post_tags(tag_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		parent_id BIGINT NULL,
		content TEXT NOT NULL,
		status SMALLINT NOT NULL DEFAULT 0,
		is_deleted SMALLINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments(parent_id)`,
}
