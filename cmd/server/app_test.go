package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"

	"entgo.io/ent/dialect"

	"github.com/anzhiyu-c/blog-admin/internal/infra/persistence/database"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	t   *testing.T
	app *App
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewFromMap(map[string]interface{}{
		config.KeyJWTSecret:          "integration-secret",
		config.KeyAdminUsername:      "admin",
		config.KeyAdminPassword:      "admin123",
		config.KeyCommentAutoApprove: true,
		config.KeyUploadDir:          filepath.Join(dir, "uploads"),
	})
	db, err := database.OpenSQLite(filepath.Join(dir, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	app, err := newApp(cfg, db, dialect.SQLite, nil)
	if err != nil {
		db.Close()
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() {
		app.Stop()
		db.Close()
	})
	return &testEnv{t: t, app: app}
}

func (e *testEnv) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.app.Engine().ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			e.t.Fatalf("%s %s: 响应不是合法的 JSON: %s", req.Method, req.URL.Path, w.Body.String())
		}
	}
	return w, env
}

func (e *testEnv) call(method, path, token string, body interface{}) envelope {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w, env := e.do(req, token)
	if env.Code != w.Code {
		e.t.Errorf("%s %s: 信封 code = %d, HTTP 状态 = %d", method, path, env.Code, w.Code)
	}
	return env
}

// expect 断言状态码并把 data 解析到 out（out 可为 nil）
func (e *testEnv) expect(method, path, token string, body interface{}, want int, out interface{}) {
	e.t.Helper()
	env := e.call(method, path, token, body)
	if env.Code != want {
		e.t.Fatalf("%s %s: code = %d (%s), want %d", method, path, env.Code, env.Message, want)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			e.t.Fatalf("%s %s: 解析 data 失败: %v", method, path, err)
		}
	}
}

func (e *testEnv) login(username, password string) *model.LoginResponse {
	e.t.Helper()
	var resp model.LoginResponse
	e.expect(http.MethodPost, "/api/auth/login", "", jsonBody{"username": username, "password": password}, http.StatusOK, &resp)
	return &resp
}

type jsonBody map[string]interface{}

func TestHealthAndNoRoute(t *testing.T) {
	e := newTestEnv(t)
	var health struct {
		Status string `json:"status"`
		Cache  string `json:"cache"`
	}
	e.expect(http.MethodGet, "/health", "", nil, http.StatusOK, &health)
	if health.Status != "ok" || health.Cache != "memory" {
		t.Errorf("health = %+v, want status ok 且未配置 Redis 时使用内存缓存", health)
	}
	e.expect(http.MethodGet, "/api/not-exist", "", nil, http.StatusNotFound, nil)
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)

	register := jsonBody{"username": "alice", "password": "secret1", "nickname": "Alice", "email": "alice@example.com"}
	var created model.UserResponse
	e.expect(http.MethodPost, "/api/auth/register", "", register, http.StatusCreated, &created)
	if created.Role != model.RoleUser {
		t.Errorf("注册用户角色 = %s, want %s", created.Role, model.RoleUser)
	}

	e.expect(http.MethodPost, "/api/auth/register", "", register, http.StatusConflict, nil)
	e.expect(http.MethodPost, "/api/auth/register", "",
		jsonBody{"username": "bob", "password": "secret1", "nickname": "Bob", "email": "not-an-email"}, http.StatusBadRequest, nil)

	e.expect(http.MethodPost, "/api/auth/login", "", jsonBody{"username": "alice", "password": "wrong"}, http.StatusUnauthorized, nil)
	session := e.login("alice", "secret1")
	if session.Type != "Bearer" || session.Token == "" || session.RefreshToken == "" {
		t.Fatalf("登录响应不完整: %+v", session)
	}

	e.expect(http.MethodGet, "/api/auth/me", "", nil, http.StatusUnauthorized, nil)
	var me model.UserResponse
	e.expect(http.MethodGet, "/api/auth/me", session.Token, nil, http.StatusOK, &me)
	if me.Username != "alice" {
		t.Errorf("me.Username = %s", me.Username)
	}

	// refresh token 不能当作 access token 使用
	e.expect(http.MethodGet, "/api/auth/me", session.RefreshToken, nil, http.StatusUnauthorized, nil)

	var refreshed model.RefreshTokenResponse
	e.expect(http.MethodPost, "/api/auth/refresh", "", jsonBody{"refreshToken": session.RefreshToken}, http.StatusOK, &refreshed)
	if refreshed.Token == "" {
		t.Fatal("刷新后没有返回新的 token")
	}
	e.expect(http.MethodGet, "/api/auth/me", refreshed.Token, nil, http.StatusOK, nil)

	e.expect(http.MethodPost, "/api/auth/logout", "", jsonBody{"refreshToken": session.RefreshToken}, http.StatusOK, nil)
	e.expect(http.MethodPost, "/api/auth/refresh", "", jsonBody{"refreshToken": session.RefreshToken}, http.StatusUnauthorized, nil)
}

func TestBlogFlow(t *testing.T) {
	e := newTestEnv(t)
	e.expect(http.MethodPost, "/api/auth/register", "",
		jsonBody{"username": "alice", "password": "secret1", "nickname": "Alice", "email": "alice@example.com"}, http.StatusCreated, nil)
	alice := e.login("alice", "secret1").Token
	admin := e.login("admin", "admin123").Token

	// --- 分类与标签只有管理员可以维护 ---
	e.expect(http.MethodPost, "/api/categories", alice, jsonBody{"name": "Go"}, http.StatusForbidden, nil)
	e.expect(http.MethodPost, "/api/categories", "", jsonBody{"name": "Go"}, http.StatusUnauthorized, nil)
	var category model.CategoryResponse
	e.expect(http.MethodPost, "/api/categories", admin, jsonBody{"name": "Go"}, http.StatusCreated, &category)
	e.expect(http.MethodPost, "/api/categories", admin, jsonBody{"name": "Go"}, http.StatusConflict, nil)

	var tag model.TagResponse
	e.expect(http.MethodPost, "/api/tags", admin, jsonBody{"name": "gin"}, http.StatusCreated, &tag)

	// --- 文章 ---
	e.expect(http.MethodPost, "/api/posts", alice, jsonBody{"content": "no title", "categoryId": category.ID}, http.StatusBadRequest, nil)
	e.expect(http.MethodPost, "/api/posts", alice,
		jsonBody{"title": "Hello", "content": "body", "categoryId": category.ID, "tagIds": []uint{999}}, http.StatusBadRequest, nil)

	var post model.PostResponse
	e.expect(http.MethodPost, "/api/posts", alice,
		jsonBody{"title": "Hello", "content": "# Hi\n\nfirst post", "categoryId": category.ID, "tagIds": []uint{tag.ID}},
		http.StatusCreated, &post)
	if post.Status != model.PostStatusPublished || len(post.Tags) != 1 || post.Author == nil || post.Author.Username != "alice" {
		t.Fatalf("创建的文章不符合预期: %+v", post)
	}
	postPath := fmt.Sprintf("/api/posts/%d", post.ID)

	var page model.PageResult[*model.PostResponse]
	e.expect(http.MethodGet, "/api/posts?page=1&size=10", "", nil, http.StatusOK, &page)
	if page.Total != 1 || page.Pages != 1 || len(page.Records) != 1 {
		t.Errorf("文章列表 = total %d pages %d records %d", page.Total, page.Pages, len(page.Records))
	}
	e.expect(http.MethodGet, fmt.Sprintf("/api/posts/category/%d", category.ID), "", nil, http.StatusOK, &page)
	if page.Total != 1 {
		t.Errorf("分类文章数 = %d", page.Total)
	}
	e.expect(http.MethodGet, fmt.Sprintf("/api/posts/tag/%d", tag.ID), "", nil, http.StatusOK, &page)
	if page.Total != 1 {
		t.Errorf("标签文章数 = %d", page.Total)
	}
	e.expect(http.MethodGet, "/api/posts/category/999", "", nil, http.StatusNotFound, nil)

	var detail model.PostResponse
	e.expect(http.MethodGet, postPath, "", nil, http.StatusOK, &detail)
	if detail.Content == "" {
		t.Error("详情应包含正文")
	}
	e.expect(http.MethodGet, "/api/posts/abc", "", nil, http.StatusBadRequest, nil)
	e.expect(http.MethodGet, "/api/posts/999", "", nil, http.StatusNotFound, nil)

	e.expect(http.MethodGet, "/api/posts/mine", alice, nil, http.StatusOK, &page)
	if page.Total != 1 {
		t.Errorf("我的文章数 = %d", page.Total)
	}
	e.expect(http.MethodGet, "/api/posts/admin", alice, nil, http.StatusForbidden, nil)
	e.expect(http.MethodGet, "/api/posts/admin?status=1", admin, nil, http.StatusOK, nil)

	e.expect(http.MethodPut, postPath+"/top", alice, jsonBody{"isTop": true}, http.StatusForbidden, nil)
	e.expect(http.MethodPut, postPath+"/top", admin, jsonBody{"isTop": true}, http.StatusOK, nil)

	var liked struct {
		LikeCount int64 `json:"likeCount"`
	}
	e.expect(http.MethodPost, postPath+"/like", "", nil, http.StatusOK, &liked)
	if liked.LikeCount != 1 {
		t.Errorf("likeCount = %d", liked.LikeCount)
	}

	var tags []*model.TagResponse
	e.expect(http.MethodGet, fmt.Sprintf("/api/tags/post/%d", post.ID), "", nil, http.StatusOK, &tags)
	if len(tags) != 1 {
		t.Errorf("文章标签数 = %d", len(tags))
	}

	// --- 评论 ---
	e.expect(http.MethodPost, "/api/comments", "", jsonBody{"postId": post.ID, "content": "hi"}, http.StatusUnauthorized, nil)
	var root model.CommentResponse
	e.expect(http.MethodPost, "/api/comments", alice, jsonBody{"postId": post.ID, "content": "nice"}, http.StatusCreated, &root)
	if root.Status != model.CommentStatusApproved {
		t.Errorf("自动审核开启时评论状态 = %d", root.Status)
	}
	e.expect(http.MethodPost, "/api/comments", admin,
		jsonBody{"postId": post.ID, "parentId": root.ID, "content": "thanks"}, http.StatusCreated, nil)

	var thread []*model.CommentResponse
	e.expect(http.MethodGet, fmt.Sprintf("/api/comments/post/%d", post.ID), "", nil, http.StatusOK, &thread)
	if len(thread) != 1 || len(thread[0].Replies) != 1 {
		t.Fatalf("评论树不符合预期: %+v", thread)
	}

	e.expect(http.MethodGet, "/api/comments/admin", alice, nil, http.StatusForbidden, nil)
	var comments model.PageResult[*model.CommentResponse]
	e.expect(http.MethodGet, "/api/comments/admin", admin, nil, http.StatusOK, &comments)
	if comments.Total != 2 {
		t.Errorf("评论总数 = %d", comments.Total)
	}
	e.expect(http.MethodPost, fmt.Sprintf("/api/comments/%d/reject", root.ID), admin, nil, http.StatusOK, nil)
	e.expect(http.MethodGet, fmt.Sprintf("/api/comments/%d", root.ID), "", nil, http.StatusForbidden, nil)

	e.expect(http.MethodGet, postPath, "", nil, http.StatusOK, &detail)
	if detail.CommentCount != 1 {
		t.Errorf("驳回后 commentCount = %d, want 1", detail.CommentCount)
	}

	// --- 用户管理 ---
	e.expect(http.MethodGet, "/api/users", alice, nil, http.StatusForbidden, nil)
	var users []*model.UserResponse
	e.expect(http.MethodGet, "/api/users", admin, nil, http.StatusOK, &users)
	if len(users) != 2 {
		t.Errorf("用户数 = %d", len(users))
	}

	// --- 删除文章后不再可见 ---
	e.expect(http.MethodDelete, postPath, admin, nil, http.StatusOK, nil)
	e.expect(http.MethodGet, postPath, "", nil, http.StatusNotFound, nil)
	e.expect(http.MethodGet, "/api/posts", "", nil, http.StatusOK, &page)
	if page.Total != 0 {
		t.Errorf("删除后文章总数 = %d", page.Total)
	}
}

func TestUploadAndServe(t *testing.T) {
	e := newTestEnv(t)
	admin := e.login("admin", "admin123").Token

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "cover.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(png)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_, env := e.do(req, "")
	if env.Code != http.StatusUnauthorized {
		t.Fatalf("未登录上传 code = %d", env.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_, env = e.do(req, admin)
	if env.Code != http.StatusOK {
		t.Fatalf("上传 code = %d (%s)", env.Code, env.Message)
	}
	var uploaded model.UploadResponse
	if err := json.Unmarshal(env.Data, &uploaded); err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^/uploads/[0-9a-f-]{36}\.png$`).MatchString(uploaded.URL) {
		t.Fatalf("URL = %s", uploaded.URL)
	}

	w, _ := e.do(httptest.NewRequest(http.MethodGet, uploaded.URL, nil), "")
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), png) {
		t.Errorf("访问上传文件: status %d, body %q", w.Code, w.Body.Bytes())
	}

	// 缺少 file 字段
	e.expect(http.MethodPost, "/api/upload", admin, nil, http.StatusBadRequest, nil)
}
