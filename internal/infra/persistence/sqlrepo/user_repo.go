package sqlrepo

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

const tableUsers = "users"

var userColumns = []string{
	"id", "username", "password", "nickname", "email", "avatar",
	"role", "status", "last_login_at", "created_at", "updated_at",
}

type userRepo struct {
	base
}

func NewUserRepo(q Querier, dialect string) repository.UserRepository {
	return &userRepo{base{q: q, dialect: dialect}}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u                    model.User
		lastLogin            nullTime
		createdAt, updatedAt nullTime
	)
	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Nickname, &u.Email, &u.Avatar,
		&u.Role, &u.Status, &lastLogin, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.LastLoginAt = lastLogin.Ptr()
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}

func (r *userRepo) findOne(ctx context.Context, where *entsql.Predicate) (*model.User, error) {
	query, args := r.builder().Select(userColumns...).From(entsql.Table(tableUsers)).Where(where).Limit(1).Query()
	u, err := scanUser(r.q.QueryRowContext(ctx, query, args...))
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return r.findOne(ctx, entsql.EQ("id", id))
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, entsql.EQ("username", username))
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, entsql.EQ("email", email))
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error) {
	result := make(map[uint]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args := r.builder().Select(userColumns...).From(entsql.Table(tableUsers)).
		Where(entsql.In("id", uintArgs(ids)...)).Query()
	users, err := r.queryAll(ctx, query, args)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *userRepo) List(ctx context.Context) ([]*model.User, error) {
	query, args := r.builder().Select(userColumns...).From(entsql.Table(tableUsers)).
		OrderBy("id").Query()
	return r.queryAll(ctx, query, args)
}

func (r *userRepo) queryAll(ctx context.Context, query string, args []interface{}) ([]*model.User, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询用户列表失败: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("读取用户数据失败: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	ts := now()
	id, err := r.insert(ctx, r.builder().Insert(tableUsers).
		Columns("username", "password", "nickname", "email", "avatar", "role", "status", "created_at", "updated_at").
		Values(u.Username, u.PasswordHash, u.Nickname, u.Email, u.Avatar, u.Role, u.Status, ts, ts))
	if err != nil {
		return wrapWriteErr(err, "创建用户")
	}
	u.ID = id
	u.CreatedAt = ts
	u.UpdatedAt = ts
	return nil
}

// Update 只更新资料类字段，用户名与密码不在其中
func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	ts := now()
	query, args := r.builder().Update(tableUsers).
		Set("nickname", u.Nickname).
		Set("email", u.Email).
		Set("avatar", u.Avatar).
		Set("role", u.Role).
		Set("status", u.Status).
		Set("updated_at", ts).
		Where(entsql.EQ("id", u.ID)).Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		return wrapWriteErr(err, "更新用户")
	}
	u.UpdatedAt = ts
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	query, args := r.builder().Update(tableUsers).
		Set("password", passwordHash).
		Set("updated_at", now()).
		Where(entsql.EQ("id", id)).Query()
	_, err := r.exec(ctx, query, args)
	return wrapWriteErr(err, "更新密码")
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	query, args := r.builder().Update(tableUsers).
		Set("last_login_at", at).
		Where(entsql.EQ("id", id)).Query()
	_, err := r.exec(ctx, query, args)
	return wrapWriteErr(err, "更新登录时间")
}

func (r *userRepo) Delete(ctx context.Context, id uint) error {
	query, args := r.builder().Delete(tableUsers).Where(entsql.EQ("id", id)).Query()
	_, err := r.exec(ctx, query, args)
	return wrapWriteErr(err, "删除用户")
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, tableUsers, nil)
}
