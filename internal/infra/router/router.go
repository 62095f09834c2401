/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2026-01-17 18:26:37
 * @LastEditors: 安知鱼
 */
// blog-admin/internal/infra/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/internal/app/middleware"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/version"
	auth_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/auth"
	category_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/category"
	comment_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/comment"
	post_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/post"
	tag_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/tag"
	upload_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/upload"
	user_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/user"
	"github.com/anzhiyu-c/blog-admin/pkg/response"
	"github.com/anzhiyu-c/blog-admin/pkg/service/utility"
)

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	authHandler     *auth_handler.AuthHandler
	userHandler     *user_handler.UserHandler
	postHandler     *post_handler.Handler
	categoryHandler *category_handler.Handler
	tagHandler      *tag_handler.Handler
	commentHandler  *comment_handler.Handler
	uploadHandler   *upload_handler.Handler
	mw              *middleware.Middleware
	authLimiter     *middleware.RateLimiter

	// 本地存储时对外提供 /uploads 静态文件的目录，为空表示不挂载
	uploadDir string
	// 当前使用的缓存类型，在健康检查中输出
	cacheType utility.CacheServiceType
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	authHandler *auth_handler.AuthHandler,
	userHandler *user_handler.UserHandler,
	postHandler *post_handler.Handler,
	categoryHandler *category_handler.Handler,
	tagHandler *tag_handler.Handler,
	commentHandler *comment_handler.Handler,
	uploadHandler *upload_handler.Handler,
	mw *middleware.Middleware,
	authLimiter *middleware.RateLimiter,
	uploadDir string,
	cacheType utility.CacheServiceType,
) *Router {
	return &Router{
		authHandler:     authHandler,
		userHandler:     userHandler,
		postHandler:     postHandler,
		categoryHandler: categoryHandler,
		tagHandler:      tagHandler,
		commentHandler:  commentHandler,
		uploadHandler:   uploadHandler,
		mw:              mw,
		authLimiter:     authLimiter,
		uploadDir:       uploadDir,
		cacheType:       cacheType,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
// 这是在 app.go 中将被调用的唯一入口点。
func (r *Router) Setup(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{
			"status":  "ok",
			"version": version.GetVersion(),
			"cache":   r.cacheType,
		}, "ok")
	})

	if r.uploadDir != "" {
		engine.Static("/uploads", r.uploadDir)
	}

	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "接口不存在: "+c.Request.URL.Path)
	})

	// 创建 /api 分组
	apiGroup := engine.Group("/api")
	// 应用全局反缓存中间件，并尝试识别当前用户
	apiGroup.Use(middleware.NoCache(), r.mw.Authenticate())

	r.registerAuthRoutes(apiGroup)
	r.registerUserRoutes(apiGroup)
	r.registerPostRoutes(apiGroup)
	r.registerCategoryRoutes(apiGroup)
	r.registerTagRoutes(apiGroup)
	r.registerCommentRoutes(apiGroup)

	apiGroup.POST("/upload", r.mw.RequireLogin(), r.uploadHandler.UploadImage)
}

// registerAuthRoutes 注册认证相关的路由
func (r *Router) registerAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", r.authLimiter.Handler(), r.authHandler.Login)
		auth.POST("/register", r.authLimiter.Handler(), r.authHandler.Register)
		auth.POST("/refresh", r.authHandler.RefreshToken)
		auth.POST("/logout", r.authHandler.Logout)
		auth.GET("/me", r.mw.RequireLogin(), r.authHandler.Me)
	}
}

// registerUserRoutes 注册用户相关的路由
func (r *Router) registerUserRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.GET("", r.mw.RequireAdmin(), r.userHandler.List)
		// 本人或管理员，具体权限在 service 中判断
		users.GET("/:id", r.mw.RequireLogin(), r.userHandler.Get)
		users.PUT("/:id", r.mw.RequireLogin(), r.userHandler.Update)
		users.DELETE("/:id", r.mw.RequireAdmin(), r.userHandler.Delete)
		users.POST("/:id/change-password", r.mw.RequireLogin(), r.userHandler.ChangePassword)
	}
}

// registerPostRoutes 注册文章相关的路由
func (r *Router) registerPostRoutes(api *gin.RouterGroup) {
	posts := api.Group("/posts")
	{
		// --- 前台公开接口 ---
		posts.GET("", r.postHandler.ListPublished)
		posts.GET("/:id", r.postHandler.Get)
		posts.GET("/category/:categoryId", r.postHandler.ListByCategory)
		posts.GET("/tag/:tagId", r.postHandler.ListByTag)
		posts.POST("/:id/like", r.postHandler.Like)

		// --- 登录用户 ---
		posts.GET("/mine", r.mw.RequireLogin(), r.postHandler.ListMine)
		posts.POST("", r.mw.RequireLogin(), r.postHandler.Create)
		posts.PUT("/:id", r.mw.RequireLogin(), r.postHandler.Update)
		posts.DELETE("/:id", r.mw.RequireLogin(), r.postHandler.Delete)

		// --- 管理员 ---
		posts.GET("/admin", r.mw.RequireAdmin(), r.postHandler.ListAll)
		posts.PUT("/:id/top", r.mw.RequireAdmin(), r.postHandler.SetTop)
	}
}

// registerCategoryRoutes 注册文章分类相关的路由
func (r *Router) registerCategoryRoutes(api *gin.RouterGroup) {
	categories := api.Group("/categories")
	{
		categories.GET("", r.categoryHandler.List)
		categories.GET("/:id", r.categoryHandler.Get)

		categories.POST("", r.mw.RequireAdmin(), r.categoryHandler.Create)
		categories.PUT("/:id", r.mw.RequireAdmin(), r.categoryHandler.Update)
		categories.DELETE("/:id", r.mw.RequireAdmin(), r.categoryHandler.Delete)
	}
}

// registerTagRoutes 注册文章标签相关的路由
func (r *Router) registerTagRoutes(api *gin.RouterGroup) {
	tags := api.Group("/tags")
	{
		tags.GET("", r.tagHandler.List)
		tags.GET("/:id", r.tagHandler.Get)
		tags.GET("/post/:postId", r.tagHandler.ListByPost)

		tags.POST("", r.mw.RequireAdmin(), r.tagHandler.Create)
		tags.PUT("/:id", r.mw.RequireAdmin(), r.tagHandler.Update)
		tags.DELETE("/:id", r.mw.RequireAdmin(), r.tagHandler.Delete)
	}
}

// registerCommentRoutes 注册评论相关的路由
func (r *Router) registerCommentRoutes(api *gin.RouterGroup) {
	comments := api.Group("/comments")
	{
		// 公开的评论接口
		comments.GET("/post/:postId", r.commentHandler.ListByPost)
		comments.GET("/:id", r.commentHandler.Get)

		// 登录用户，修改和删除限本人或管理员
		comments.POST("", r.mw.RequireLogin(), r.commentHandler.Create)
		comments.PUT("/:id", r.mw.RequireLogin(), r.commentHandler.Update)
		comments.DELETE("/:id", r.mw.RequireLogin(), r.commentHandler.Delete)

		// 管理员专属的评论接口
		comments.GET("/admin", r.mw.RequireAdmin(), r.commentHandler.AdminList)
		comments.POST("/:id/approve", r.mw.RequireAdmin(), r.commentHandler.Approve)
		comments.POST("/:id/reject", r.mw.RequireAdmin(), r.commentHandler.Reject)
	}
}
