package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/validation"
)

// NewEngine builds the gin engine with middleware and every route mounted.
func NewEngine(cfg global.Config, h *Handler) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.RegisterBindingTags(); err != nil {
		log.Error().Err(err).Msg("custom validation tags not registered")
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(Recovery(), RequestID(), RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", csrfHeader, adminKeyHeader, requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Rota não encontrada", nil))
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, global.ErrorResponse("Método não permitido", nil))
	})

	InitializeRoutes(router, h)
	return router
}

func InitializeRoutes(router *gin.Engine, h *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/csrf", h.IssueCSRFToken)
		api.POST("/enviar-orcamento", RateLimit(h.QuoteLimiter, "quote"), h.CSRFCheck(), h.SubmitQuote)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/reset-password", h.ResetPassword)
			auth.POST("/logout", h.Auth(), h.Logout)
			auth.GET("/status", h.Auth(), h.GetStatus)
			auth.PUT("/profile", h.Auth(), h.UpdateProfile)
		}

		listings := api.Group("/listings")
		{
			listings.GET("", h.ListListings)
			listings.GET("/:id", h.GetListing)
			listings.POST("", h.Auth(), MusicianOnly(), h.CreateListing)
			listings.DELETE("/:id", h.Auth(), h.DeactivateListing)
		}

		cart := api.Group("/cart", h.Auth())
		{
			cart.GET("", h.GetCart)
			cart.DELETE("", h.ClearCart)
			cart.POST("/items", h.AddToCart)
			cart.PUT("/items/:id", h.UpdateCartItem)
			cart.DELETE("/items/:id", h.RemoveFromCart)
		}

		orders := api.Group("/orders", h.Auth())
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", h.GetUserOrders)
			orders.GET("/:id", h.GetOrderStatus)
			orders.POST("/:id/proof", h.UploadProof)
		}

		api.GET("/proofs/:ref", h.AdminKey(), h.DownloadProof)

		admin := api.Group("/admin", h.AdminKey())
		{
			admin.GET("/orders/pending", h.ListPendingOrders)
			admin.GET("/orders/summary", h.OrderSummary)
			admin.GET("/orders/:id", h.GetOrder)
			admin.GET("/orders/:id/history", h.OrderHistory)
			admin.POST("/orders/:id/confirm-payment", h.ConfirmPayment)
			admin.POST("/orders/:id/confirm", h.ConfirmOrder)
		}
	}
}
