/*
 * @Description: 基于 ent SQL 构建器的仓储公共工具
 * @Author: 安知鱼
 * @Date: 2025-09-14 16:02:11
 * @LastEditTime: 2025-09-15 10:20:35
 * @LastEditors: 安知鱼
 */
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/ncruces/go-sqlite3"

	"github.com/anzhiyu-c/blog-admin/pkg/constant"
)

// Querier 是 *sql.DB 与 *sql.Tx 的公共子集，仓储不关心自己是否处于事务中
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type base struct {
	q       Querier
	dialect string
}

func (b base) builder() *entsql.DialectBuilder {
	return entsql.Dialect(b.dialect)
}

func (b base) exec(ctx context.Context, query string, args []interface{}) (sql.Result, error) {
	return b.q.ExecContext(ctx, query, args...)
}

// execAffected 执行语句并返回受影响行数
func (b base) execAffected(ctx context.Context, query string, args []interface{}) (int64, error) {
	res, err := b.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insert 执行插入并返回自增主键。PostgreSQL 驱动不支持 LastInsertId，改用 RETURNING。
func (b base) insert(ctx context.Context, ib *entsql.InsertBuilder) (uint, error) {
	if b.dialect == dialect.Postgres {
		ib.Returning("id")
		query, args := ib.Query()
		var id int64
		if err := b.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return uint(id), nil
	}

	query, args := ib.Query()
	res, err := b.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("获取自增ID失败: %w", err)
	}
	return uint(id), nil
}

func (b base) count(ctx context.Context, table string, where *entsql.Predicate) (int64, error) {
	s := b.builder().Select(entsql.Count("*")).From(entsql.Table(table))
	if where != nil {
		s.Where(where)
	}
	query, args := s.Query()
	var total int64
	if err := b.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// now 统一截断到毫秒，避免不同数据库精度不一致
func now() time.Time {
	return time.Now().Truncate(time.Millisecond)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// timeArg 把空指针转换为 NULL，避免各驱动对 *time.Time 的处理差异
func timeArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func uintArgs(ids []uint) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// isUniqueViolation 识别三种数据库的唯一约束冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) || errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// wrapWriteErr 将唯一约束冲突转换为 ErrConflict，其余错误附加上下文后原样返回
func wrapWriteErr(err error, action string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", action, constant.ErrConflict)
	}
	return fmt.Errorf("%s失败: %w", action, err)
}

// nullTime 兼容各驱动返回的时间类型：time.Time、文本或 Unix 时间戳
type nullTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (nt *nullTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		nt.Time, nt.Valid = time.Time{}, false
		return nil
	case time.Time:
		nt.Time, nt.Valid = v, true
		return nil
	case int64:
		nt.Time, nt.Valid = time.Unix(v, 0), true
		return nil
	case []byte:
		return nt.parse(string(v))
	case string:
		return nt.parse(v)
	default:
		return fmt.Errorf("无法将 %T 转换为时间", value)
	}
}

func (nt *nullTime) parse(s string) error {
	if s == "" {
		nt.Time, nt.Valid = time.Time{}, false
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			nt.Time, nt.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("无法解析时间字符串: %q", s)
}

func (nt nullTime) Ptr() *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// notFound 把 sql.ErrNoRows 转为 (nil, nil) 语义
func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
