package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/preloved-backend/internal/config"
	"github.com/ignatzorin/preloved-backend/internal/http/handlers"
	"github.com/ignatzorin/preloved-backend/internal/http/middleware"
)

// Handlers все HTTP обработчики приложения.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Category     *handlers.CategoryHandler
	Product      *handlers.ProductHandler
	Cart         *handlers.CartHandler
	Purchase     *handlers.PurchaseHandler
	Review       *handlers.ReviewHandler
	Chat         *handlers.ChatHandler
	Report       *handlers.ReportHandler
	Notification *handlers.NotificationHandler
	Admin        *handlers.AdminHandler
	Health       *handlers.HealthHandler
	WS           *handlers.WSHandler
}

// Auth зависимости auth middleware.
type Auth struct {
	Tokens middleware.TokenParser
	Users  middleware.UserLoader
}

// SetupRouter собирает gin.Engine. mediaRoot каталог, который отдаётся по /media.
func SetupRouter(cfg *config.Config, h Handlers, auth Auth, mediaRoot string) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
	}
	r.Use(gin.Logger())
	r.Use(middleware.ErrorHandler(cfg.IsDevelopment()))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.StaticFS("/media", http.Dir(mediaRoot))

	required := middleware.AuthRequired(auth.Tokens, auth.Users)
	optional := middleware.AuthOptional(auth.Tokens, auth.Users)
	adminOnly := middleware.AdminOnly()
	limited := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	id := middleware.UUIDValidator("id")

	api := r.Group("/api")
	api.GET("/ws", required, h.WS.Connect)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limited, h.Auth.Register)
		authGroup.POST("/login", limited, h.Auth.Login)
		authGroup.POST("/refresh", limited, h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.PUT("/password", required, limited, h.Auth.ChangePassword)
	}

	users := api.Group("/users")
	{
		users.GET("/me", required, h.User.Me)
		users.PUT("/me", required, h.User.UpdateMe)
		users.GET("/:id", id, optional, h.User.Profile)
		users.GET("/:id/products", id, h.User.Listings)
		users.GET("/:id/reviews", id, h.Review.ListBySeller)
		users.GET("/:id/followers", id, h.User.Followers)
		users.GET("/:id/following", id, h.User.Following)
		users.POST("/:id/follow", id, required, h.User.Follow)
		users.DELETE("/:id/follow", id, required, h.User.Unfollow)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", optional, h.Category.List)
		categories.GET("/:slug", h.Category.Get)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/mine", required, h.Product.Mine)
		products.GET("/favorites", required, h.Product.Favorites)
		products.GET("/:id", id, optional, h.Product.Get)
		products.GET("/:id/reviews", id, h.Review.ListByProduct)
		products.POST("", required, h.Product.Create)
		products.PUT("/:id", id, required, h.Product.Update)
		products.DELETE("/:id", id, required, h.Product.Delete)
		products.POST("/:id/favorite", id, required, h.Product.ToggleFavorite)
		products.POST("/:id/images", id, required, h.Product.UploadImage)
		products.PUT("/:id/images/:imageId/primary", middleware.UUIDValidator("id", "imageId"), required, h.Product.SetPrimaryImage)
		products.DELETE("/:id/images/:imageId", middleware.UUIDValidator("id", "imageId"), required, h.Product.DeleteImage)
	}

	cart := api.Group("/cart", required)
	{
		cart.GET("", h.Cart.Get)
		cart.GET("/count", h.Cart.Count)
		cart.GET("/check/:productId", middleware.UUIDValidator("productId"), h.Cart.Check)
		cart.POST("", h.Cart.Add)
		cart.PUT("/:productId", middleware.UUIDValidator("productId"), h.Cart.Update)
		cart.DELETE("/:productId", middleware.UUIDValidator("productId"), h.Cart.Remove)
		cart.DELETE("", h.Cart.Clear)
	}

	purchases := api.Group("/purchases", required)
	{
		purchases.POST("", h.Purchase.Create)
		purchases.GET("", h.Purchase.List)
		purchases.GET("/:id", id, h.Purchase.Get)
		purchases.PATCH("/:id/status", id, h.Purchase.UpdateStatus)
	}

	api.POST("/reviews", required, h.Review.Create)

	chat := api.Group("/chat", required)
	{
		chat.POST("/rooms", h.Chat.StartRoom)
		chat.GET("/rooms", h.Chat.ListRooms)
		chat.GET("/unread-count", h.Chat.UnreadCount)
		chat.GET("/rooms/:id/messages", id, h.Chat.Messages)
		chat.POST("/rooms/:id/messages", id, limited, h.Chat.Send)
		chat.PUT("/rooms/:id/read", id, h.Chat.MarkRead)
	}

	reports := api.Group("/reports", required)
	{
		reports.POST("", h.Report.CreateReport)
		reports.GET("", h.Report.ListMyReports)
	}

	notifications := api.Group("/notifications", required)
	{
		notifications.GET("", h.Notification.ListNotifications)
		notifications.GET("/unread-count", h.Notification.UnreadCount)
		notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
		notifications.PUT("/:id/read", id, h.Notification.MarkAsRead)
		notifications.DELETE("/:id", id, h.Notification.DeleteNotification)
	}

	admin := api.Group("/admin", required, adminOnly)
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/analytics", h.Admin.Analytics)
		admin.GET("/top-sellers", h.Admin.TopSellers)

		admin.GET("/users", h.Admin.ListUsers)
		admin.PUT("/users/:id/active", id, h.Admin.SetUserActive)
		admin.PUT("/users/:id/verified", id, h.Admin.SetUserVerified)

		admin.GET("/products/pending", h.Admin.PendingProducts)
		admin.PUT("/products/:id/approve", id, h.Admin.ApproveProduct)
		admin.PUT("/products/:id/reject", id, h.Admin.RejectProduct)

		admin.POST("/categories", h.Category.Create)
		admin.PUT("/categories/:id", id, h.Category.Update)
		admin.DELETE("/categories/:id", id, h.Category.Delete)

		admin.GET("/reports", h.Admin.ListReports)
		admin.PUT("/reports/:id", id, h.Admin.UpdateReport)

		admin.GET("/purchases", h.Purchase.ListAll)
	}

	return r
}
