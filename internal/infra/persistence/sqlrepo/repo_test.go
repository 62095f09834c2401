package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"entgo.io/ent/dialect"

	"github.com/anzhiyu-c/blog-admin/internal/infra/persistence/database"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.NewMigrationService(db, dialect.SQLite).RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func mustCreateUser(t *testing.T, repos repository.Repositories, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		PasswordHash: "hash",
		Nickname:     username,
		Email:        username + "@example.com",
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
	}
	if err := repos.User.Create(context.Background(), u); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return u
}

func mustCreatePost(t *testing.T, repos repository.Repositories, p *model.Post) *model.Post {
	t.Helper()
	if p.Content == "" {
		p.Content = "content"
	}
	if err := repos.Post.Create(context.Background(), p); err != nil {
		t.Fatalf("创建文章失败: %v", err)
	}
	return p
}

func TestUserRepo_CRUDAndConflict(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t), dialect.SQLite)

	u := mustCreateUser(t, repos, "alice")
	if u.ID == 0 {
		t.Fatal("创建后 ID 应大于 0")
	}

	got, err := repos.User.FindByUsername(ctx, "alice")
	if err != nil || got == nil {
		t.Fatalf("FindByUsername() = %v, %v", got, err)
	}
	if got.Email != "alice@example.com" || got.Role != model.RoleUser || got.LastLoginAt != nil {
		t.Errorf("FindByUsername() 返回了错误的数据: %+v", got)
	}

	missing, err := repos.User.FindByID(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("FindByID(不存在) = %v, %v, want nil, nil", missing, err)
	}

	dup := &model.User{Username: "alice", PasswordHash: "x", Email: "other@example.com", Role: model.RoleUser, Status: 1}
	if err := repos.User.Create(ctx, dup); !errors.Is(err, constant.ErrConflict) {
		t.Errorf("重复用户名 Create() error = %v, want ErrConflict", err)
	}

	got.Nickname = "Alice"
	if err := repos.User.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := repos.User.UpdateLastLogin(ctx, got.ID, now()); err != nil {
		t.Fatalf("UpdateLastLogin() error = %v", err)
	}
	reloaded, _ := repos.User.FindByID(ctx, got.ID)
	if reloaded.Nickname != "Alice" || reloaded.LastLoginAt == nil {
		t.Errorf("更新后数据不正确: %+v", reloaded)
	}

	byIDs, err := repos.User.FindByIDs(ctx, []uint{got.ID, 9999})
	if err != nil || len(byIDs) != 1 {
		t.Errorf("FindByIDs() = %v, %v", byIDs, err)
	}

	if err := repos.User.Delete(ctx, got.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n, _ := repos.User.Count(ctx); n != 0 {
		t.Errorf("删除后 Count() = %d, want 0", n)
	}
}

func TestCategoryRepo_ExistsByNameAndOrder(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t), dialect.SQLite)

	b := &model.Category{Name: "后端", SortOrder: 2}
	a := &model.Category{Name: "前端", SortOrder: 1}
	for _, c := range []*model.Category{b, a} {
		if err := repos.Category.Create(ctx, c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, err := repos.Category.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List() = %v, %v", list, err)
	}
	if list[0].Name != "前端" {
		t.Errorf("List() 首项 = %q, want 前端", list[0].Name)
	}

	tests := []struct {
		name      string
		catName   string
		excludeID uint
		want      bool
	}{
		{name: "已存在", catName: "后端", want: true},
		{name: "排除自身", catName: "后端", excludeID: b.ID, want: false},
		{name: "不存在", catName: "运维", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repos.Category.ExistsByName(ctx, tt.catName, tt.excludeID)
			if err != nil || got != tt.want {
				t.Errorf("ExistsByName() = %v, %v, want %v", got, err, tt.want)
			}
		})
	}

	a.Name = "后端"
	if err := repos.Category.Update(ctx, a); !errors.Is(err, constant.ErrConflict) {
		t.Errorf("重名 Update() error = %v, want ErrConflict", err)
	}
}

func TestPostRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t), dialect.SQLite)
	author := mustCreateUser(t, repos, "writer")

	published := model.PostStatusPublished
	draft := model.PostStatusDraft

	p1 := mustCreatePost(t, repos, &model.Post{Title: "Go 并发", Summary: "goroutine", AuthorID: author.ID, CategoryID: 1, Status: published})
	p2 := mustCreatePost(t, repos, &model.Post{Title: "Vue 组件", AuthorID: author.ID, CategoryID: 2, Status: published})
	mustCreatePost(t, repos, &model.Post{Title: "草稿", AuthorID: author.ID, CategoryID: 1, Status: draft})
	deleted := mustCreatePost(t, repos, &model.Post{Title: "已删除", AuthorID: author.ID, CategoryID: 1, Status: published})
	if err := repos.Post.SoftDelete(ctx, deleted.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if err := repos.Post.SetTop(ctx, p2.ID, true); err != nil {
		t.Fatalf("SetTop() error = %v", err)
	}
	if err := repos.PostTag.ReplaceTags(ctx, p1.ID, []uint{7, 8, 7}); err != nil {
		t.Fatalf("ReplaceTags() error = %v", err)
	}

	tests := []struct {
		name      string
		opts      model.ListPostsOptions
		wantTotal int64
		wantFirst uint
	}{
		{name: "已发布", opts: model.ListPostsOptions{Status: &published}, wantTotal: 2, wantFirst: p2.ID},
		{name: "全部未删除", opts: model.ListPostsOptions{}, wantTotal: 3, wantFirst: p2.ID},
		{name: "按分类", opts: model.ListPostsOptions{Status: &published, CategoryID: 1}, wantTotal: 1, wantFirst: p1.ID},
		{name: "按标签", opts: model.ListPostsOptions{TagID: 8}, wantTotal: 1, wantFirst: p1.ID},
		{name: "关键字匹配摘要", opts: model.ListPostsOptions{Keyword: "GOROUTINE"}, wantTotal: 1, wantFirst: p1.ID},
		{name: "无结果", opts: model.ListPostsOptions{Keyword: "rust"}, wantTotal: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			posts, total, err := repos.Post.List(ctx, &opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.wantTotal || int64(len(posts)) != tt.wantTotal {
				t.Fatalf("List() total = %d, len = %d, want %d", total, len(posts), tt.wantTotal)
			}
			if tt.wantTotal > 0 && posts[0].ID != tt.wantFirst {
				t.Errorf("List() 首项 = %d, want %d", posts[0].ID, tt.wantFirst)
			}
		})
	}

	got, err := repos.Post.FindByID(ctx, deleted.ID)
	if err != nil || got != nil {
		t.Errorf("FindByID(已删除) = %v, %v, want nil", got, err)
	}

	n, err := repos.Post.CountByCategory(ctx, 1)
	if err != nil || n != 2 {
		t.Errorf("CountByCategory(1) = %d, %v, want 2", n, err)
	}
}

func TestPostRepo_ListOrderByPublishedAt(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t), dialect.SQLite)

	later := time.Now().Add(24 * time.Hour)
	earlier := time.Now().Add(-24 * time.Hour)
	// 先创建但发布时间更晚的文章应排在前面
	scheduled := mustCreatePost(t, repos, &model.Post{Title: "定时发布", AuthorID: 1, CategoryID: 1, Status: model.PostStatusPublished, PublishedAt: &later})
	backdated := mustCreatePost(t, repos, &model.Post{Title: "补录旧文", AuthorID: 1, CategoryID: 1, Status: model.PostStatusPublished, PublishedAt: &earlier})
	draft := mustCreatePost(t, repos, &model.Post{Title: "草稿", AuthorID: 1, CategoryID: 1, Status: model.PostStatusDraft})

	posts, _, err := repos.Post.List(ctx, &model.ListPostsOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []uint{scheduled.ID, draft.ID, backdated.ID}
	if len(posts) != len(want) {
		t.Fatalf("List() len = %d, want %d", len(posts), len(want))
	}
	for i, id := range want {
		if posts[i].ID != id {
			t.Errorf("第 %d 项 = %d (%s), want %d", i, posts[i].ID, posts[i].Title, id)
		}
	}
}

func TestPostRepo_PaginationAndCounters(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t), dialect.SQLite)

	var first *model.Post
	for i := 0; i < 5; i++ {
		p := mustCreatePost(t, repos, &model.Post{Title: "post", AuthorID: 1, CategoryID: 1, Status: model.PostStatusPublished})
		if first == nil {
			first = p
		}
	}

	posts, total, err := repos.Post.List(ctx, &model.ListPostsOptions{Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 5 || len(posts) != 1 {
		t.Errorf("第三页 total = %d, len = %d, want 5, 1", total, len(posts))
	}

	if err := repos.Post.IncrementLikeCount(ctx, first.ID, 1); err != nil {
		t.Fatal(err)
	}
	if err := repos.Post.IncrementLikeCount(ctx, first.ID, 1); err != nil {
		t.Fatal(err)
	}
	if err := repos.Post.IncrementCommentCount(ctx, first.ID, 3); err != nil {
		t.Fatal(err)
	}
	if err := repos.Post.UpdateViewCounts(ctx, map[uint]int64{first.ID: 10}); err != nil {
		t.Fatal(err)
	}

	got, _ := repos.Post.FindByID(ctx, first.ID)
	if got.LikeCount != 2 || got.CommentCount != 3 || got.ViewCount != 10 {
		t.Errorf("计数器 = like %d comment %d view %d, want 2 3 10", got.LikeCount, got.CommentCount, got.ViewCount)
	}
}

func TestPostTagRepo_ReplaceTags(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t), dialect.SQLite)

	if err := repos.PostTag.ReplaceTags(ctx, 1, []uint{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := repos.PostTag.ReplaceTags(ctx, 1, []uint{3}); err != nil {
		t.Fatal(err)
	}
	if err := repos.PostTag.ReplaceTags(ctx, 2, []uint{3, 4}); err != nil {
		t.Fatal(err)
	}

	ids, err := repos.PostTag.TagIDsByPost(ctx, 1)
	if err != nil || len(ids) != 1 || ids[0] != 3 {
		t.Errorf("TagIDsByPost(1) = %v, %v, want [3]", ids, err)
	}

	if err := repos.PostTag.DeleteByTag(ctx, 3); err != nil {
		t.Fatal(err)
	}
	m, err := repos.PostTag.TagIDsByPosts(ctx, []uint{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(m[1]) != 0 || len(m[2]) != 1 || m[2][0] != 4 {
		t.Errorf("TagIDsByPosts() = %v", m)
	}

	if err := repos.PostTag.ReplaceTags(ctx, 2, nil); err != nil {
		t.Fatal(err)
	}
	if ids, _ := repos.PostTag.TagIDsByPost(ctx, 2); len(ids) != 0 {
		t.Errorf("清空后 TagIDsByPost(2) = %v", ids)
	}
}

func TestCommentRepo_SoftDeleteTree(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t), dialect.SQLite)

	create := func(parent *uint, status int) *model.Comment {
		c := &model.Comment{PostID: 1, UserID: 1, ParentID: parent, Content: "c", Status: status}
		if err := repos.Comment.Create(ctx, c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		return c
	}

	root := create(nil, model.CommentStatusApproved)
	child := create(&root.ID, model.CommentStatusApproved)
	create(&child.ID, model.CommentStatusPending)
	other := create(nil, model.CommentStatusApproved)

	approved := model.CommentStatusApproved
	list, err := repos.Comment.ListByPost(ctx, 1, &approved)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListByPost() = %d, %v, want 3", len(list), err)
	}
	if list[1].ParentID == nil || *list[1].ParentID != root.ID {
		t.Errorf("子评论的 ParentID = %v, want %d", list[1].ParentID, root.ID)
	}

	removed, err := repos.Comment.SoftDeleteTree(ctx, root.ID)
	if err != nil {
		t.Fatalf("SoftDeleteTree() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("SoftDeleteTree() approvedRemoved = %d, want 2", removed)
	}
	if again, err := repos.Comment.SoftDeleteTree(ctx, root.ID); err != nil || again != 0 {
		t.Errorf("重复 SoftDeleteTree() = %d, %v, want 0", again, err)
	}

	all, err := repos.Comment.ListByPost(ctx, 1, nil)
	if err != nil || len(all) != 1 || all[0].ID != other.ID {
		t.Errorf("删除后 ListByPost() = %v, %v, want 仅剩 %d", all, err, other.ID)
	}

	pending := model.CommentStatusPending
	_, total, err := repos.Comment.List(ctx, &model.ListCommentsOptions{Status: &pending})
	if err != nil || total != 0 {
		t.Errorf("List(pending) total = %d, %v, want 0", total, err)
	}
}

func TestCommentRepo_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(newTestDB(t), dialect.SQLite)

	c := &model.Comment{PostID: 1, UserID: 1, Content: "c", Status: model.CommentStatusPending}
	if err := repos.Comment.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	ok, err := repos.Comment.UpdateStatus(ctx, c.ID, model.CommentStatusPending, model.CommentStatusApproved)
	if err != nil || !ok {
		t.Fatalf("UpdateStatus(pending->approved) = %v, %v", ok, err)
	}
	// 旧状态不匹配时不更新
	ok, err = repos.Comment.UpdateStatus(ctx, c.ID, model.CommentStatusPending, model.CommentStatusRejected)
	if err != nil || ok {
		t.Errorf("旧状态不匹配 UpdateStatus() = %v, %v, want false", ok, err)
	}
	if got, _ := repos.Comment.FindByID(ctx, c.ID); got.Status != model.CommentStatusApproved {
		t.Errorf("status = %d, want approved", got.Status)
	}

	if _, err := repos.Comment.SoftDeleteTree(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	ok, err = repos.Comment.UpdateStatus(ctx, c.ID, model.CommentStatusApproved, model.CommentStatusRejected)
	if err != nil || ok {
		t.Errorf("已删除评论 UpdateStatus() = %v, %v, want false", ok, err)
	}
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tm := NewTransactionManager(db, dialect.SQLite)

	boom := errors.New("boom")
	err := tm.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.Tag.Create(ctx, &model.Tag{Name: "go"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Do() error = %v, want boom", err)
	}

	tags, err := NewTagRepo(db, dialect.SQLite).List(ctx)
	if err != nil || len(tags) != 0 {
		t.Errorf("回滚后 List() = %v, %v, want 空", tags, err)
	}

	err = tm.Do(ctx, func(repos repository.Repositories) error {
		return repos.Tag.Create(ctx, &model.Tag{Name: "go"})
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	tags, _ = NewTagRepo(db, dialect.SQLite).List(ctx)
	if len(tags) != 1 {
		t.Errorf("提交后 List() 数量 = %d, want 1", len(tags))
	}
}
