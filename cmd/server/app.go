/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-10-17 10:35:28
 * @LastEditTime: 2026-01-22 16:15:28
 * @LastEditors: 安知鱼
 */
// blog-admin/cmd/server/app.go
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/anzhiyu-c/blog-admin/internal/app/bootstrap"
	"github.com/anzhiyu-c/blog-admin/internal/app/middleware"
	"github.com/anzhiyu-c/blog-admin/internal/app/task"
	"github.com/anzhiyu-c/blog-admin/internal/infra/persistence/database"
	"github.com/anzhiyu-c/blog-admin/internal/infra/persistence/sqlrepo"
	"github.com/anzhiyu-c/blog-admin/internal/infra/router"
	"github.com/anzhiyu-c/blog-admin/internal/infra/storage"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/version"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	auth_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/auth"
	category_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/category"
	comment_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/comment"
	post_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/post"
	tag_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/tag"
	upload_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/upload"
	user_handler "github.com/anzhiyu-c/blog-admin/pkg/handler/user"
	"github.com/anzhiyu-c/blog-admin/pkg/service/auth"
	category_service "github.com/anzhiyu-c/blog-admin/pkg/service/category"
	comment_service "github.com/anzhiyu-c/blog-admin/pkg/service/comment"
	post_service "github.com/anzhiyu-c/blog-admin/pkg/service/post"
	tag_service "github.com/anzhiyu-c/blog-admin/pkg/service/tag"
	upload_service "github.com/anzhiyu-c/blog-admin/pkg/service/upload"
	"github.com/anzhiyu-c/blog-admin/pkg/service/user"
	"github.com/anzhiyu-c/blog-admin/pkg/service/utility"
)

const (
	shutdownTimeout = 10 * time.Second

	// 登录、注册接口的限流：每个 IP 每分钟 30 次，突发 10 次
	authRequestsPerMinute = 30
	authBurst             = 10
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg         *config.Config
	engine      *gin.Engine
	scheduler   *task.Scheduler
	authLimiter *middleware.RateLimiter
	views       *post_service.ViewCounter
}

func (a *App) PrintBanner() {
	banner := `
   ____  _                  _       _           _
  | __ )| | ___   __ _     / \   __| |_ __ ___ (_)_ __
  |  _ \| |/ _ \ / _' |   / _ \ / _' | '_ ' _ \| | '_ \
  | |_) | | (_) | (_| |  / ___ \ (_| | | | | | | | | | |
  |____/|_|\___/ \__, | /_/   \_\__,_|_| |_| |_|_|_| |_|
                 |___/
`
	color.Cyan(banner)
	log.Println("--------------------------------------------------------")
	log.Printf(" Blog Admin API - Version: %s", version.GetVersionString())
	log.Printf(" 监听端口: %s", color.GreenString(a.port()))
	log.Printf(" 数据库: %s  上传驱动: %s",
		color.YellowString(a.cfg.GetString(config.KeyDBType)),
		color.YellowString(a.cfg.GetString(config.KeyUploadDriver)))
	log.Println("--------------------------------------------------------")
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, func(), error) {
	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施 ---
	sqlDB, dialectName, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}

	// 尝试连接 Redis（如果失败，将自动降级到内存缓存）
	redisClient, err := database.NewRedisClient(context.Background(), cfg)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("redis 初始化失败: %w", err)
	}

	cleanup := func() {
		log.Println("执行清理操作：关闭数据库连接...")
		sqlDB.Close()
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}

	app, err := newApp(cfg, sqlDB, dialectName, redisClient)
	if err != nil {
		return nil, cleanup, err
	}
	return app, cleanup, nil
}

// newApp 在已建立的数据库和 Redis 连接之上完成依赖注入，redisClient 为 nil 时使用内存缓存
func newApp(cfg *config.Config, sqlDB *sql.DB, dialectName string, redisClient *redis.Client) (*App, error) {
	ctx := context.Background()

	// --- Phase 3: 初始化数据仓库层 ---
	repos := sqlrepo.NewRepositories(sqlDB, dialectName)
	txManager := sqlrepo.NewTransactionManager(sqlDB, dialectName)

	// --- Phase 4: 初始化业务逻辑层 ---
	cacheSvc := utility.NewCacheServiceWithFallback(redisClient)
	tokenSvc, err := auth.NewTokenService(cfg, repos.User, cacheSvc)
	if err != nil {
		return nil, err
	}
	authSvc := auth.NewAuthService(repos.User, tokenSvc)
	userSvc := user.NewUserService(repos.User)

	// --- Phase 5: 初始化应用引导程序 ---
	bootstrapper := bootstrap.NewBootstrapper(sqlDB, dialectName, cfg, repos.User, userSvc)
	if err := bootstrapper.InitializeDatabase(ctx); err != nil {
		return nil, fmt.Errorf("数据库初始化失败: %w", err)
	}

	views := post_service.NewViewCounter(txManager, cacheSvc)
	postSvc := post_service.NewService(repos, txManager, views)
	categorySvc := category_service.NewService(repos.Category, repos.Post)
	tagSvc := tag_service.NewService(repos.Tag, repos.Post, repos.PostTag, txManager)
	commentSvc := comment_service.NewService(repos, txManager, cfg)

	storageProvider, err := storage.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化存储驱动失败: %w", err)
	}
	uploadSvc := upload_service.NewService(storageProvider, cfg)
	uploadDir := ""
	if local, ok := storageProvider.(*storage.LocalProvider); ok {
		uploadDir = local.Dir()
	}

	// --- Phase 6: 初始化后台任务 ---
	scheduler := task.NewScheduler(views)

	// --- Phase 7: 初始化表现层 (Handlers) ---
	mw := middleware.NewMiddleware(tokenSvc, repos.User)
	authLimiter := middleware.NewRateLimiter(authRequestsPerMinute, authBurst)
	appRouter := router.NewRouter(
		auth_handler.NewAuthHandler(authSvc),
		user_handler.NewUserHandler(userSvc),
		post_handler.NewHandler(postSvc),
		category_handler.NewHandler(categorySvc),
		tag_handler.NewHandler(tagSvc),
		comment_handler.NewHandler(commentSvc),
		upload_handler.NewHandler(uploadSvc),
		mw,
		authLimiter,
		uploadDir,
		utility.GetCacheServiceType(cacheSvc),
	)

	// --- Phase 8: 配置 Gin 引擎 ---
	if cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.DebugMode)
		log.Println("运行模式: Debug (Gin 将打印详细路由日志)")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}); err != nil {
		return nil, fmt.Errorf("设置可信代理失败: %w", err)
	}
	engine.ForwardedByClientIP = true
	engine.Use(gin.Logger(), middleware.Recovery(), middleware.Cors())
	appRouter.Setup(engine)

	return &App{
		cfg:         cfg,
		engine:      engine,
		scheduler:   scheduler,
		authLimiter: authLimiter,
		views:       views,
	}, nil
}

// Engine 返回配置完成的 gin 引擎
func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) port() string {
	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	return port
}

// Run 启动定时任务和 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出
func (a *App) Run() error {
	if err := a.scheduler.RegisterJobs(); err != nil {
		return err
	}
	a.scheduler.Start()

	srv := &http.Server{
		Addr:    ":" + a.port(),
		Handler: a.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("应用程序启动成功，正在监听端口: %s\n", a.port())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP 服务异常退出: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Printf("收到信号 %s，开始优雅关闭...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP 服务关闭失败: %w", err)
	}
	log.Println("HTTP 服务已关闭。")
	return nil
}

// Stop 停止后台任务，并把缓存中尚未落库的浏览量写回数据库
func (a *App) Stop() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		log.Println("任务调度器已停止。")
	}
	if a.authLimiter != nil {
		a.authLimiter.Stop()
	}
	if a.views != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if n, err := a.views.Flush(ctx); err != nil {
			log.Printf("退出前同步浏览量失败: %v", err)
		} else if n > 0 {
			log.Printf("退出前已同步 %d 篇文章的浏览量", n)
		}
	}
}
