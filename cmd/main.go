package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/controller"
	"momcafe_saas_v1_202608/internal/middleware"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/internal/router"
	"momcafe_saas_v1_202608/internal/service"
	"momcafe_saas_v1_202608/internal/task"
	"momcafe_saas_v1_202608/pkg/database"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 写入渠道种子数据
	if err := deps.Services.Catalog.SeedIfEmpty(context.Background()); err != nil {
		log.Fatalf("初始化渠道目录失败: %v", err)
	}

	// 4. 启动定时任务
	initTasks(deps)

	// 5. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.JWT,
		deps.Controllers.Auth,
		deps.Controllers.Channel,
		deps.Controllers.Analysis,
		deps.Controllers.Cart,
		deps.Controllers.Order,
		deps.Controllers.Content,
		deps.Controllers.Game,
		deps.Controllers.Admin,
	)

	// 6. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	JWT         *middleware.JWTConfig
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Channel   repository.ChannelRepository
	Analysis  repository.AnalysisRepository
	Order     repository.OrderRepository
	OrderItem repository.OrderItemRepository
	Content   repository.ContentRepository
	Member    repository.MemberRepository
	Game      repository.GameRepository
	AiCallLog repository.AICallLogRepository
}

// Services 服务集合
type Services struct {
	Catalog  *service.CatalogService
	Scraper  *service.ScraperService
	AI       *service.AIService
	Analysis *service.AnalysisService
	Cart     *service.CartService
	Order    *service.OrderService
	Content  *service.ContentService
	Storage  service.StorageService
	Auth     *service.AuthService
	Game     *service.GameService
}

// Controllers 控制器集合
type Controllers struct {
	Auth     *controller.AuthController
	Channel  *controller.ChannelController
	Analysis *controller.AnalysisController
	Cart     *controller.CartController
	Order    *controller.OrderController
	Content  *controller.ContentController
	Game     *controller.GameController
	Admin    *controller.AdminController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN", "")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Seoul",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "momcafe"),
			getEnv("DB_PORT", "5432"),
		)
	}
	return database.InitDB(dsn, getEnv("DB_DEBUG", "") == "true",
		// 会员
		&model.Member{}, &model.GameProfile{},
		// 渠道与分析
		&model.Channel{}, &model.AnalysisResult{},
		// 订单
		&model.Order{}, &model.OrderItem{}, &model.GeneratedContent{},
		// AI 调用日志
		&model.AICallLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Channel:   repository.NewChannelRepository(db),
		Analysis:  repository.NewAnalysisRepository(db),
		Order:     repository.NewOrderRepository(db),
		OrderItem: repository.NewOrderItemRepository(db),
		Content:   repository.NewContentRepository(db),
		Member:    repository.NewMemberRepository(db),
		Game:      repository.NewGameRepository(db),
		AiCallLog: repository.NewAICallLogRepository(db),
	}

	jwtCfg := &middleware.JWTConfig{
		Secret:    getEnv("JWT_SECRET", "momcafe-dev-secret"),
		Issuer:    "momcafe",
		ExpiresIn: 7 * 24 * time.Hour,
	}

	// -------- 基础服务 --------
	storageSvc := initStorageService()
	scraperSvc := service.NewScraperService(&service.ScraperConfig{})
	aiSvc, err := service.NewAIService(&service.AIConfig{
		APIKey:    getEnv("GEMINI_API_KEY", ""),
		ModelName: getEnv("GEMINI_MODEL", ""),
	}, repos.AiCallLog)
	if err != nil {
		log.Fatalf("初始化 AI 服务失败: %v", err)
	}

	// -------- 业务服务 --------
	services := &Services{
		Scraper: scraperSvc,
		AI:      aiSvc,
		Storage: storageSvc,
	}
	services.Catalog = service.NewCatalogService(repos.Channel)
	services.Analysis = service.NewAnalysisService(repos.Analysis, scraperSvc, aiSvc, services.Catalog)
	services.Cart = service.NewCartService(repos.Analysis, services.Catalog)
	services.Order = service.NewOrderService(repos.Order, repos.OrderItem, repos.Content, repos.Analysis, services.Cart, aiSvc)
	services.Content = service.NewContentService(repos.Content, storageSvc)
	services.Game = service.NewGameService(repos.Game, repos.Member)
	services.Auth = service.NewAuthService(repos.Member, services.Game, jwtCfg, &service.GoogleOAuthConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
	})

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth:     controller.NewAuthController(services.Auth),
		Channel:  controller.NewChannelController(services.Catalog),
		Analysis: controller.NewAnalysisController(services.Analysis),
		Cart:     controller.NewCartController(services.Cart),
		Order:    controller.NewOrderController(services.Order),
		Content:  controller.NewContentController(services.Content),
		Game:     controller.NewGameController(services.Game),
		Admin:    controller.NewAdminController(services.Order, services.Content, repos.AiCallLog),
	}

	return &Dependencies{
		DB:          db,
		JWT:         jwtCfg,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorageService 初始化存储服务
func initStorageService() service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:        getEnv("STORAGE_PROVIDER", "local"),
		Region:          getEnv("AWS_REGION", "ap-northeast-2"),
		Bucket:          getEnv("AWS_BUCKET", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		LocalDir:        getEnv("EXPORT_DIR", "./exports"),
		BaseURL:         getEnv("EXPORT_BASE_URL", ""),
	})
	if err != nil {
		log.Fatalf("初始化存储服务失败: %v", err)
	}
	return storageSvc
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	digestTask := task.NewContentDigestTask(deps.Services.Content)
	digestTask.Start()

	cleanupTask := task.NewCleanupTask(deps.Repos.Analysis, deps.Services.Cart)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
