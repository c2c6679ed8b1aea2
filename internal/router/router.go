package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"momcafe_saas_v1_202608/internal/controller"
	"momcafe_saas_v1_202608/internal/middleware"

	_ "momcafe_saas_v1_202608/docs"
)

// InitRoutes 注册所有路由
// 除鉴权入口和渠道目录外，/api 下全部需要登录
func InitRoutes(r *gin.Engine,
	jwtCfg *middleware.JWTConfig,
	authCtl *controller.AuthController,
	channelCtl *controller.ChannelController,
	analysisCtl *controller.AnalysisController,
	cartCtl *controller.CartController,
	orderCtl *controller.OrderController,
	contentCtl *controller.ContentController,
	gameCtl *controller.GameController,
	adminCtl *controller.AdminController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 开放路由（免登录）
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authCtl.Register)
			auth.POST("/login", authCtl.Login)
			auth.GET("/google", authCtl.GoogleLogin)
			auth.GET("/google/callback", authCtl.GoogleCallback)
		}
		// 渠道目录是落地页内容，无需登录
		api.GET("/channels", channelCtl.ListChannels)
	}

	// 3. 登录后路由
	authed := r.Group("/api", middleware.JWTAuth(jwtCfg))
	{
		authed.GET("/me", authCtl.GetProfile)

		// 商品分析
		analyses := authed.Group("/analyses")
		{
			analyses.POST("", analysisCtl.Analyze)
			analyses.GET("", analysisCtl.ListAnalyses)
			analyses.GET("/:id", analysisCtl.GetAnalysis)
		}

		// 购物车会话
		cart := authed.Group("/cart")
		{
			cart.POST("", cartCtl.CreateCart)
			cart.GET("/:token", cartCtl.GetCart)
			cart.POST("/:token/select", cartCtl.ToggleSelect)
			cart.PUT("/:token/post-count", cartCtl.SetPostCount)
			cart.PUT("/:token/content-type", cartCtl.SetContentType)
			cart.POST("/:token/add", cartCtl.AddToCart)
			cart.POST("/:token/remove", cartCtl.RemoveLine)
		}

		// 订单
		orders := authed.Group("/orders")
		{
			orders.POST("", orderCtl.Checkout)
			orders.GET("", orderCtl.ListOrders)
			orders.GET("/:id", orderCtl.GetOrder)
			orders.GET("/no/:orderNo", orderCtl.GetOrderByNo)
			orders.POST("/:id/cancel", orderCtl.CancelOrder)
		}

		// 生成稿管理
		contents := authed.Group("/contents")
		{
			contents.GET("", contentCtl.ListContents)
			contents.PUT("/:id", contentCtl.UpdateContent)
			contents.POST("/:id/schedule", contentCtl.ScheduleContent)
			contents.POST("/:id/posted", contentCtl.MarkPosted)
			contents.DELETE("/:id", contentCtl.DeleteContent)
			contents.POST("/:id/duplicate", contentCtl.DuplicateContent)
		}

		// 小游戏
		game := authed.Group("/game")
		{
			game.GET("/profile", gameCtl.GetProfile)
			game.POST("/tap", gameCtl.Tap)
			game.POST("/check-in", gameCtl.CheckIn)
			game.POST("/referral", gameCtl.ApplyReferral)
			game.POST("/convert", gameCtl.ConvertPoints)
		}

		// 运营后台
		admin := authed.Group("/admin", middleware.AdminOnly())
		{
			admin.GET("/orders", adminCtl.ListAllOrders)
			admin.GET("/dashboard", adminCtl.GetDashboard)
			admin.GET("/ai-usage", adminCtl.GetAIUsage)
			admin.POST("/contents/export", adminCtl.ExportContents)
		}
	}
}
