/*
 * @Description: 数据库连接管理 (支持多种数据库)
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2025-09-14 15:30:27
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anzhiyu-c/blog-admin/pkg/config"

	"entgo.io/ent/dialect"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Dialect 将配置中的数据库类型归一化为 ent 的方言名称
func Dialect(dbType string) (string, error) {
	switch dbType {
	case "mysql", "mariadb":
		return dialect.MySQL, nil
	case "postgres", "postgresql":
		return dialect.Postgres, nil
	case "", "sqlite", "sqlite3":
		return dialect.SQLite, nil
	default:
		return "", fmt.Errorf("不支持的数据库驱动: %s (支持: mysql/mariadb, postgres, sqlite)", dbType)
	}
}

// NewSQLDB 创建并返回一个标准的 *sql.DB 连接池，以及对应的方言名称。
func NewSQLDB(cfg *config.Config) (*sql.DB, string, error) {
	driver := cfg.GetString(config.KeyDBType)
	if driver == "" {
		log.Println("提示: 配置文件中未指定 'Database.Type'，将默认使用 'sqlite'")
	}
	dialectName, err := Dialect(driver)
	if err != nil {
		return nil, "", err
	}

	dbUser := cfg.GetString(config.KeyDBUser)
	dbPass := cfg.GetString(config.KeyDBPassword)
	dbHost := cfg.GetString(config.KeyDBHost)
	dbPort := cfg.GetString(config.KeyDBPort)
	dbName := cfg.GetString(config.KeyDBName)

	var dsn string
	switch dialectName {
	case dialect.MySQL:
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, "", fmt.Errorf("MySQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbUser, dbPass, dbHost, dbPort, dbName)
	case dialect.Postgres:
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, "", fmt.Errorf("PostgreSQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPass, dbName)
	case dialect.SQLite:
		dataDir := "./data"
		if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
			return nil, "", fmt.Errorf("无法创建 data 目录: %w", err)
		}
		if dbName == "" {
			dbName = "blog.db"
		}
		finalPath := filepath.Join(dataDir, dbName)
		log.Printf("【提示】SQLite 数据库路径: %s\n", finalPath)

		db, err := OpenSQLite(finalPath)
		if err != nil {
			return nil, "", err
		}
		log.Println("✅ Sqlite 数据库连接池创建成功！")
		return db, dialectName, nil
	}

	// ent 的方言名称与驱动注册名一致: mysql / postgres
	db, err := sql.Open(dialectName, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("打开 sql.DB 连接失败 (驱动: %s): %w", dialectName, err)
	}

	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("无法 Ping 通数据库 (%s@%s:%s/%s): %w", dbUser, dbHost, dbPort, dbName, err)
	}

	log.Printf("✅ %s 数据库连接池创建成功！\n", dialectName)
	return db, dialectName, nil
}

// OpenSQLite 打开一个 SQLite 数据库文件，开启外键与忙等待。
// SQLite 同一时刻只允许一个写入者，这里限制为单连接以避免 SQLITE_BUSY。
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", path)
	db, err := sql.Open(dialect.SQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 数据库失败: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法 Ping 通 SQLite 数据库 (%s): %w", path, err)
	}
	return db, nil
}
