package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"

	"otoada_api_v1_202609/internal/controller"
	"otoada_api_v1_202609/internal/middleware"
	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/internal/repository"
	"otoada_api_v1_202609/internal/router"
	"otoada_api_v1_202609/internal/service"
	"otoada_api_v1_202609/internal/task"
	"otoada_api_v1_202609/pkg/database"
	"otoada_api_v1_202609/pkg/kv"
	"otoada_api_v1_202609/pkg/utils"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Car      repository.CarRepository
	User     repository.UserRepository
	AdminLog repository.AdminLogRepository
}

// Services 服务集合
type Services struct {
	Currency   *service.CurrencyService
	Catalog    *service.CatalogService
	Moderation *service.ModerationService
	UserAdmin  *service.UserAdminService
	Listing    *service.ListingService
	Favorites  *service.FavoritesService
	User       *service.UserService
	Storage    service.StorageProvider
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=otoada password=otoada dbname=otoada port=5432 sslmode=disable")

	db := database.InitDB(dsn,
		// Manager
		&model.SysUser{},
		// Catalog
		&model.Car{}, &model.CarImage{},
		// Audit
		&model.AdminActionLog{},
	)

	// 审计回调：自动填 CreatedBy/UpdatedBy
	middleware.RegisterAuditCallbacks(db)
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Car:      repository.NewCarRepository(db),
		User:     repository.NewUserRepository(db),
		AdminLog: repository.NewAdminLogRepository(db),
	}

	// -------- 键值存储 (收藏夹 / 汇率快照) --------
	store := initKVStore()

	// -------- 图床 --------
	httpClient := utils.NewHTTPClient()
	storageSvc := initStorageProvider(httpClient)

	// -------- 业务服务 --------
	services := &Services{Storage: storageSvc}
	services.Currency = service.NewCurrencyService(store, httpClient)
	services.Catalog = service.NewCatalogService(services.Currency)
	services.Moderation = service.NewModerationService(repos.Car, repos.AdminLog)
	services.UserAdmin = service.NewUserAdminService(repos.User, repos.AdminLog)
	services.Listing = service.NewListingService(repos.Car, storageSvc, services.Catalog)
	services.Favorites = service.NewFavoritesService(store, repos.Car, services.Catalog)
	services.User = service.NewUserService(repos.User)

	// 首次启动确保存在管理员账号
	if err := services.User.EnsureAdmin(context.Background(),
		getEnv("ADMIN_EMAIL", "admin@otoada.local"),
		getEnv("ADMIN_PASSWORD", "change-me"),
	); err != nil {
		log.Printf("警告: 管理员账号初始化失败: %v", err)
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Car:      controller.NewCarController(repos.Car, services.Catalog, services.Currency),
		Favorite: controller.NewFavoriteController(services.Favorites),
		Upload:   controller.NewUploadController(services.Listing),
		Admin:    controller.NewAdminController(repos.Car, repos.AdminLog, services.Catalog, services.Moderation, services.UserAdmin),
		User:     controller.NewUserController(services.User),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initKVStore 初始化键值存储
// Redis 连不上时退化到进程内存储，收藏夹在重启后会丢，但服务照常可用
func initKVStore() kv.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisURL := getEnv("REDIS_URL", "redis://localhost:6379/0")
	store, err := kv.NewRedisStore(ctx, redisURL)
	if err != nil {
		log.Printf("警告: Redis 不可用，收藏夹退化为内存存储: %v", err)
		return kv.NewMemoryStore()
	}
	return store
}

// initStorageProvider 初始化图床
func initStorageProvider(client *resty.Client) service.StorageProvider {
	provider, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "imgbb"),
		ImgBBKey:  getEnv("IMGBB_API_KEY", ""),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "uploads"),
		BaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}, client)
	if err != nil {
		log.Fatalf("存储服务初始化失败: %v", err)
	}
	return provider
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	// 汇率刷新 (启动先拉一次，失败走兜底)
	rateTask := task.NewRateSyncTask(deps.Services.Currency)
	if err := rateTask.Start(); err != nil {
		log.Printf("警告: 汇率任务启动失败: %v", err)
	}

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

	// 优雅关闭
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
