package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/cache"
	"github.com/SlpAus/polls-backend/internal/platform/config"
	"github.com/SlpAus/polls-backend/internal/platform/database"
	"github.com/SlpAus/polls-backend/internal/platform/ratelimit"
	"github.com/SlpAus/polls-backend/internal/platform/shutdown"
	"github.com/SlpAus/polls-backend/internal/poll"
	"github.com/SlpAus/polls-backend/internal/user"
	"github.com/SlpAus/polls-backend/internal/vote"
	"github.com/SlpAus/polls-backend/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. 加载.env与配置文件
	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// 2. 初始化数据库并迁移表结构
	db, err := database.NewDB(cfg.Database)
	if err != nil {
		panic(fmt.Sprintf("数据库初始化失败: %v", err))
	}
	if err := poll.SetupDatabase(db); err != nil {
		panic(fmt.Sprintf("poll模块数据库迁移失败: %v", err))
	}
	if err := user.SetupDatabase(db); err != nil {
		panic(fmt.Sprintf("user模块数据库迁移失败: %v", err))
	}

	// 3. 初始化Redis与后台健康检查器
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		panic(fmt.Sprintf("Redis初始化失败: %v", err))
	}
	checker := database.NewRedisHealthChecker(rdb)
	backgroundCtx, cancelBackground := context.WithCancel(context.Background())
	go checker.Run(backgroundCtx)

	// 4. 显式构建各组件并注入依赖
	cacheLayer := cache.New(cache.NewRedisStore(rdb, checker))
	limiter := ratelimit.NewLimiter(ratelimit.NewRedisCounterStore(rdb, checker))
	pollRepo := poll.NewRepository(db)
	userSvc := user.NewService(db)
	pollSvc := poll.NewService(pollRepo, cacheLayer, limiter, cfg)
	voteSvc := vote.NewService(pollRepo, cacheLayer, limiter, cfg)
	pollHandler := poll.NewHandler(pollSvc)
	voteHandler := vote.NewHandler(voteSvc)

	// 5. 创建Gin引擎并配置CORS中间件
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 6. 注册API路由
	routes.SetupRoutes(r, pollHandler, voteHandler, userSvc, checker)

	// 7. 启动服务器并等待停机信号
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}
	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	shutdown.ListenForSignalsAndShutdown(server, cancelBackground)
}
