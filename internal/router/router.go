package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"otoada_api_v1_202609/internal/controller"
	"otoada_api_v1_202609/internal/middleware"
	"otoada_api_v1_202609/internal/model"

	_ "otoada_api_v1_202609/docs"
)

// Controllers 控制器集合
type Controllers struct {
	Car      *controller.CarController
	Favorite *controller.FavoriteController
	Upload   *controller.UploadController
	Admin    *controller.AdminController
	User     *controller.UserController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// 公开目录：无需登录
		cars := api.Group("/cars")
		{
			// GET /api/cars
			cars.GET("", ctls.Car.GetCars)
			cars.GET("/:id", ctls.Car.GetCarDetail)
			cars.GET("/:id/similar", ctls.Car.GetSimilarCars)

			// POST /api/cars 刊登提交需要登录，且有冷却
			cars.POST("",
				middleware.JWTAuth(),
				middleware.AuditContext(),
				middleware.SubmitCooldown(30*time.Second),
				ctls.Upload.SubmitCar)
		}

		// 汇率行情
		api.GET("/rates", ctls.Car.GetRates)

		// 收藏夹：设备级，无需登录
		favorites := api.Group("/favorites")
		{
			favorites.GET("", ctls.Favorite.ListFavorites)
			favorites.GET("/ids", ctls.Favorite.ListFavoriteIDs)
			favorites.POST("/:id/toggle", ctls.Favorite.ToggleFavorite)
		}

		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/login", ctls.User.Login)
			auth.POST("/refresh", ctls.User.RefreshToken)
			auth.POST("/logout", ctls.User.Logout)
			auth.GET("/profile", middleware.JWTAuth(), ctls.User.Profile)
		}

		// 审核后台：仅管理员
		admin := api.Group("/admin",
			middleware.JWTAuth(),
			middleware.RequireRole(model.RoleAdmin),
			middleware.AuditContext())
		{
			admin.GET("/cars", ctls.Admin.ListCars)
			admin.POST("/cars/:id/transition", ctls.Admin.RequestTransition)
			admin.POST("/transitions/confirm", ctls.Admin.ConfirmTransition)
			admin.PUT("/cars/:id", ctls.Admin.EditCar)
			admin.GET("/audit-logs", ctls.Admin.ListAuditLogs)

			// 用户管理
			admin.GET("/users", ctls.Admin.ListUsers)
			admin.PUT("/users/:id/role", ctls.Admin.UpdateUserRole)
			admin.DELETE("/users/:id", ctls.Admin.DeleteUser)
			admin.POST("/users/confirm", ctls.Admin.ConfirmUserAction)
		}
	}
}
