package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/testutil"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/response"
	service_auth "github.com/anzhiyu-c/blog-admin/pkg/service/auth"
	"github.com/anzhiyu-c/blog-admin/pkg/service/utility"

	"github.com/gin-gonic/gin"
)

type authEnv struct {
	router   *gin.Engine
	tokenSvc service_auth.TokenService
	store    *testutil.Store
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := testutil.NewStore(t)
	cfg := config.NewFromMap(map[string]interface{}{config.KeyJWTSecret: "test-secret"})
	tokenSvc, err := service_auth.NewTokenService(cfg, store.Repos.User, utility.NewMemoryCacheService())
	if err != nil {
		t.Fatal(err)
	}
	m := NewMiddleware(tokenSvc, store.Repos.User)

	r := gin.New()
	r.Use(Recovery(), m.Authenticate())
	r.GET("/public", func(c *gin.Context) {
		username := ""
		if u := auth.CurrentUser(c); u != nil {
			username = u.Username
		}
		response.Success(c, username, "ok")
	})
	r.GET("/login", m.RequireLogin(), func(c *gin.Context) { response.Success(c, nil, "ok") })
	r.GET("/admin", m.RequireAdmin(), func(c *gin.Context) { response.Success(c, nil, "ok") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return &authEnv{router: r, tokenSvc: tokenSvc, store: store}
}

func (e *authEnv) createUser(t *testing.T, username, role string, status int) (*model.User, string, string) {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "hash", Nickname: username, Email: username + "@example.com", Role: role, Status: status}
	if err := e.store.Repos.User.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	access, refresh, _, err := e.tokenSvc.GenerateSessionTokens(context.Background(), u)
	if err != nil {
		t.Fatal(err)
	}
	return u, access, refresh
}

func (e *authEnv) do(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	env := newAuthEnv(t)
	_, userToken, refreshToken := env.createUser(t, "alice", model.RoleUser, model.UserStatusActive)
	_, adminToken, _ := env.createUser(t, "root", model.RoleAdmin, model.UserStatusActive)
	_, disabledToken, _ := env.createUser(t, "banned", model.RoleUser, model.UserStatusDisabled)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{name: "匿名访问公开接口", path: "/public", wantCode: http.StatusOK},
		{name: "无效Token按游客处理", path: "/public", token: "garbage", wantCode: http.StatusOK},
		{name: "匿名访问登录接口", path: "/login", wantCode: http.StatusUnauthorized},
		{name: "refresh token 不能当作 access token", path: "/login", token: refreshToken, wantCode: http.StatusUnauthorized},
		{name: "被禁用的用户", path: "/login", token: disabledToken, wantCode: http.StatusUnauthorized},
		{name: "普通用户访问登录接口", path: "/login", token: userToken, wantCode: http.StatusOK},
		{name: "匿名访问管理接口", path: "/admin", wantCode: http.StatusUnauthorized},
		{name: "普通用户访问管理接口", path: "/admin", token: userToken, wantCode: http.StatusForbidden},
		{name: "管理员访问管理接口", path: "/admin", token: adminToken, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.path, tt.token)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.wantCode, w.Body.String())
			}
			var body response.Response
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Code != tt.wantCode {
				t.Errorf("响应体 code 应与 HTTP 状态一致, body = %s", w.Body.String())
			}
		})
	}

	var body response.Response
	_ = json.Unmarshal(env.do("/public", userToken).Body.Bytes(), &body)
	if body.Data != "alice" {
		t.Errorf("当前用户 = %v, want alice", body.Data)
	}
}

func TestAuthMiddleware_RoleFromDatabase(t *testing.T) {
	env := newAuthEnv(t)
	u, token, _ := env.createUser(t, "promoted", model.RoleUser, model.UserStatusActive)

	u.Role = model.RoleAdmin
	if err := env.store.Repos.User.Update(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	// Token 中的角色仍是 USER，但数据库已提升为管理员
	if w := env.do("/admin", token); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	env := newAuthEnv(t)
	w := env.do("/panic", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Code != http.StatusInternalServerError {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, 2)
	defer limiter.Stop()

	r := gin.New()
	r.POST("/auth/login", limiter.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// 其他 IP 不受影响
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("其他 IP status = %d", w.Code)
	}
}

func TestCorsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Cors())
	r.GET("/api/posts", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求 status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
