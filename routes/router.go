package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/config"
	"github.com/pulsefeed/pulse/controllers"
	"github.com/pulsefeed/pulse/middleware"
	"github.com/pulsefeed/pulse/utils"
)

// SetupRouter wires middleware and all API routes onto a fresh engine.
func SetupRouter(db *gorm.DB, logger *zap.Logger) *gin.Engine {
	cfg := config.Get()
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(utils.Ginzap(logger, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(logger, true))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	feedController := controllers.NewFeedController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	userController := controllers.NewUserController(db)
	templateController := controllers.NewTemplateController(db)
	uploadController := controllers.NewUploadController()
	adminController := controllers.NewAdminController(db)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware())
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.GET("/me", middleware.AuthRequired(), authController.Me)
	}

	feed := api.Group("/feed")
	feed.Use(middleware.OptionalAuth())
	{
		feed.GET("/recent", feedController.ListRecent)
		feed.GET("/trending", feedController.ListTrending)
		feed.GET("/hashtag/:name", feedController.ListByHashtag)
		feed.GET("/followed", middleware.AuthRequired(), feedController.ListFollowed)
	}

	posts := api.Group("/posts")
	{
		posts.GET("/:id", middleware.OptionalAuth(), postController.GetPost)

		authed := posts.Group("")
		authed.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
		{
			authed.POST("", postController.CreatePost)
			authed.GET("/:id/edit", postController.GetPostForEdit)
			authed.PUT("/:id", postController.UpdatePost)
			authed.DELETE("/:id", postController.DeletePost)
			authed.POST("/:id/like", postController.LikePost)
			authed.DELETE("/:id/like", postController.UnlikePost)
			authed.POST("/:id/report", postController.ReportPost)
			authed.POST("/:id/comments", commentController.CreateComment)
		}
	}

	comments := api.Group("/comments")
	comments.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	{
		comments.DELETE("/:id", commentController.DeleteComment)
		comments.POST("/:id/like", commentController.LikeComment)
		comments.DELETE("/:id/like", commentController.UnlikeComment)
	}

	users := api.Group("/users")
	{
		users.GET("/:username", middleware.OptionalAuth(), userController.GetProfile)

		authed := users.Group("")
		authed.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
		{
			authed.POST("/:username/follow", userController.Follow)
			authed.DELETE("/:username/follow", userController.Unfollow)
		}
	}

	settings := api.Group("/settings")
	settings.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	{
		settings.GET("", userController.GetSettings)
		settings.PUT("", userController.UpdateSettings)
		settings.PUT("/avatar", userController.UpdateAvatar)
	}

	templates := api.Group("/templates")
	templates.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	{
		templates.GET("", templateController.ListTemplates)
		templates.POST("", templateController.CreateTemplate)
		templates.GET("/:id", templateController.GetTemplate)
		templates.PUT("/:id", templateController.UpdateTemplate)
		templates.DELETE("/:id", templateController.DeleteTemplate)
	}

	api.POST("/upload", middleware.AuthRequired(), middleware.RateLimitMiddleware(), uploadController.Upload)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/reports", adminController.ListReports)
		admin.GET("/reports/:id", adminController.GetReport)
		admin.POST("/reports/:id/review", adminController.ReviewReport)
		admin.GET("/users", adminController.ListUsers)
		admin.GET("/users/:id", adminController.GetUserData)
		admin.DELETE("/users/:id", adminController.RemoveUser)
		admin.PUT("/users/:id/ban", adminController.UpdateBanTime)
		admin.PUT("/users/:id/role", adminController.UpdateRole)
		admin.POST("/users/:id/reset", adminController.ResetUserData)
	}

	return r
}
