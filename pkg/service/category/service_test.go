package category

import (
	"context"
	"errors"
	"testing"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/testutil"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewService(store.Repos.Category, store.Repos.Post)

	golang, err := svc.Create(ctx, &model.CategoryRequest{Name: " Go ", SortOrder: 2})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if golang.Name != "Go" {
		t.Errorf("名称应去除首尾空格, got %q", golang.Name)
	}
	vue, err := svc.Create(ctx, &model.CategoryRequest{Name: "Vue", SortOrder: 1})
	if err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 2 || list[0].ID != vue.ID {
		t.Errorf("List() 应按 sortOrder 升序, got %+v, %v", list, err)
	}

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{name: "创建重名", run: func() error { _, err := svc.Create(ctx, &model.CategoryRequest{Name: "Go"}); return err }, wantErr: constant.ErrConflict},
		{name: "改名为已有名称", run: func() error { _, err := svc.Update(ctx, vue.ID, &model.CategoryRequest{Name: "Go"}); return err }, wantErr: constant.ErrConflict},
		{name: "保持原名更新", run: func() error { _, err := svc.Update(ctx, vue.ID, &model.CategoryRequest{Name: "Vue", Description: "前端"}); return err }, wantErr: nil},
		{name: "更新不存在的分类", run: func() error { _, err := svc.Update(ctx, 999, &model.CategoryRequest{Name: "X"}); return err }, wantErr: constant.ErrNotFound},
		{name: "获取不存在的分类", run: func() error { _, err := svc.Get(ctx, 999); return err }, wantErr: constant.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if tt.wantErr == nil && err != nil {
				t.Errorf("error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewService(store.Repos.Category, store.Repos.Post)

	c, err := svc.Create(ctx, &model.CategoryRequest{Name: "Go"})
	if err != nil {
		t.Fatal(err)
	}
	post := &model.Post{Title: "t", Content: "c", AuthorID: 1, CategoryID: c.ID, Status: model.PostStatusPublished}
	if err := store.Repos.Post.Create(ctx, post); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, c.ID); !errors.Is(err, constant.ErrConflict) {
		t.Errorf("有文章时 Delete() error = %v, want ErrConflict", err)
	}

	if err := store.Repos.Post.SoftDelete(ctx, post.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Errorf("文章删除后 Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, constant.ErrNotFound) {
		t.Errorf("删除后 Get() error = %v", err)
	}
}
