package user

import (
	"context"
	"errors"
	"testing"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/security"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/testutil"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

func createUser(t *testing.T, repo repository.UserRepository, username, role string) *model.User {
	t.Helper()
	hash, err := security.HashPassword("password1")
	if err != nil {
		t.Fatal(err)
	}
	u := &model.User{Username: username, PasswordHash: hash, Nickname: username, Email: username + "@example.com", Role: role, Status: model.UserStatusActive}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestUpdate_Whitelist(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewUserService(store.Repos.User)

	admin := createUser(t, store.Repos.User, "admin", model.RoleAdmin)
	alice := createUser(t, store.Repos.User, "alice", model.RoleUser)
	bob := createUser(t, store.Repos.User, "bob", model.RoleUser)

	// 普通用户修改自己时，角色和状态字段被忽略
	resp, err := svc.Update(ctx, alice, alice.ID, &model.UpdateUserRequest{
		Nickname: strPtr("爱丽丝"),
		Role:     strPtr(model.RoleAdmin),
		Status:   intPtr(model.UserStatusDisabled),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if resp.Nickname != "爱丽丝" || resp.Role != model.RoleUser || resp.Status != model.UserStatusActive {
		t.Errorf("自我更新结果 = %+v", resp)
	}

	// 管理员修改他人可以设置角色
	resp, err = svc.Update(ctx, admin, bob.ID, &model.UpdateUserRequest{Role: strPtr(model.RoleAdmin)})
	if err != nil || resp.Role != model.RoleAdmin {
		t.Errorf("管理员设置角色 = %+v, %v", resp, err)
	}

	tests := []struct {
		name    string
		actor   *model.User
		id      uint
		req     model.UpdateUserRequest
		wantErr error
	}{
		{name: "修改他人", actor: alice, id: bob.ID, req: model.UpdateUserRequest{Nickname: strPtr("x")}, wantErr: constant.ErrForbidden},
		{name: "邮箱被占用", actor: alice, id: alice.ID, req: model.UpdateUserRequest{Email: strPtr("bob@example.com")}, wantErr: constant.ErrEmailExists},
		{name: "无效角色", actor: admin, id: alice.ID, req: model.UpdateUserRequest{Role: strPtr("ROOT")}, wantErr: constant.ErrBadRequest},
		{name: "用户不存在", actor: admin, id: 999, req: model.UpdateUserRequest{}, wantErr: constant.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.Update(ctx, tt.actor, tt.id, &req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Update() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewUserService(store.Repos.User)

	admin := createUser(t, store.Repos.User, "admin", model.RoleAdmin)
	alice := createUser(t, store.Repos.User, "alice", model.RoleUser)
	bob := createUser(t, store.Repos.User, "bob", model.RoleUser)

	if _, err := svc.Get(ctx, alice, bob.ID); !errors.Is(err, constant.ErrForbidden) {
		t.Errorf("查看他人 error = %v", err)
	}
	if got, err := svc.Get(ctx, admin, bob.ID); err != nil || got.Username != "bob" {
		t.Errorf("管理员查看 = %+v, %v", got, err)
	}

	if err := svc.Delete(ctx, admin, admin.ID); !errors.Is(err, constant.ErrForbidden) {
		t.Errorf("删除自己 error = %v", err)
	}
	if err := svc.Delete(ctx, alice, bob.ID); !errors.Is(err, constant.ErrForbidden) {
		t.Errorf("普通用户删除 error = %v", err)
	}
	if err := svc.Delete(ctx, admin, bob.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, admin, bob.ID); !errors.Is(err, constant.ErrNotFound) {
		t.Errorf("重复删除 error = %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 2 {
		t.Errorf("List() = %d, %v", len(list), err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewUserService(store.Repos.User)

	admin := createUser(t, store.Repos.User, "admin", model.RoleAdmin)
	alice := createUser(t, store.Repos.User, "alice", model.RoleUser)

	if err := svc.ChangePassword(ctx, admin, alice.ID, &model.ChangePasswordRequest{OldPassword: "password1", NewPassword: "newpass1"}); !errors.Is(err, constant.ErrForbidden) {
		t.Errorf("管理员修改他人密码 error = %v", err)
	}
	if err := svc.ChangePassword(ctx, alice, alice.ID, &model.ChangePasswordRequest{OldPassword: "bad", NewPassword: "newpass1"}); !errors.Is(err, constant.ErrBadRequest) {
		t.Errorf("原密码错误 error = %v", err)
	}
	if err := svc.ChangePassword(ctx, alice, alice.ID, &model.ChangePasswordRequest{OldPassword: "password1", NewPassword: "newpass1"}); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	reloaded, _ := store.Repos.User.FindByID(ctx, alice.ID)
	if !security.CheckPasswordHash("newpass1", reloaded.PasswordHash) {
		t.Error("新密码未生效")
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewUserService(store.Repos.User)

	if err := svc.EnsureAdmin(ctx, config.NewFromMap(nil)); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Repos.User.Count(ctx); n != 0 {
		t.Fatalf("未配置时不应创建管理员, Count() = %d", n)
	}

	cfg := config.NewFromMap(map[string]interface{}{
		config.KeyAdminUsername: "root",
		config.KeyAdminPassword: "rootpass",
	})
	for i := 0; i < 2; i++ {
		if err := svc.EnsureAdmin(ctx, cfg); err != nil {
			t.Fatalf("第 %d 次 EnsureAdmin() error = %v", i+1, err)
		}
	}
	u, _ := store.Repos.User.FindByUsername(ctx, "root")
	if u == nil || !u.IsAdmin() || u.Email != "root@localhost" {
		t.Errorf("初始管理员 = %+v", u)
	}
	if n, _ := store.Repos.User.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}
