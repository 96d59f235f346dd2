package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"lotellar.backend/internal/interfaces/http/handlers"
	"lotellar.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	healthHandler           *handlers.HealthHandler
	configHandler           *handlers.ConfigHandler
	lotteryHandler          *handlers.LotteryHandler
	communityLotteryHandler *handlers.CommunityLotteryHandler
	formHandler             *handlers.FormHandler
	walletHandler           *handlers.WalletHandler
	userHandler             *handlers.UserHandler
	walletAuthMiddleware    gin.HandlerFunc
	idempotencyMiddleware   gin.HandlerFunc
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r, d.healthHandler)
	registerAPIV1Routes(r, d)
	registerCompanionRoutes(r, d)
	return r
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine, h *handlers.HealthHandler) {
	r.GET("/health", h.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/config", d.configHandler.GetConfig)

		// Lottery routes (public read, wallet-signed write)
		lotteries := v1.Group("/lotteries")
		{
			lotteries.GET("", d.lotteryHandler.ListLotteries)
			lotteries.GET("/completed", d.lotteryHandler.ListCompletedLotteries)
			lotteries.GET("/:id", d.lotteryHandler.GetLottery)
			lotteries.POST("", d.walletAuthMiddleware, d.idempotencyMiddleware, d.lotteryHandler.CreateLottery)
			lotteries.POST("/:id/enter", d.walletAuthMiddleware, d.idempotencyMiddleware, d.lotteryHandler.EnterLottery)
		}

		community := v1.Group("/community-lotteries")
		{
			community.GET("", d.communityLotteryHandler.ListCommunityLotteries)
			community.GET("/:id", d.communityLotteryHandler.GetCommunityLottery)
			community.POST("", d.walletAuthMiddleware, d.idempotencyMiddleware, d.communityLotteryHandler.CreateCommunityLottery)
			community.POST("/:id/enter", d.walletAuthMiddleware, d.idempotencyMiddleware, d.communityLotteryHandler.EnterCommunityLottery)
		}

		// Wallet routes
		wallet := v1.Group("/wallet")
		{
			wallet.POST("/connect", d.walletHandler.ConnectWallet)
			wallet.GET("/session", d.walletAuthMiddleware, d.walletHandler.GetSession)
			wallet.POST("/disconnect", d.walletAuthMiddleware, d.walletHandler.DisconnectWallet)
		}

		// Creation wizards (stateless)
		forms := v1.Group("/forms")
		{
			forms.POST("/lottery/next", d.formHandler.NextLottery)
			forms.POST("/lottery/back", d.formHandler.Back)
			forms.POST("/lottery/validate", d.formHandler.ValidateLottery)
			forms.POST("/community/next", d.formHandler.NextCommunity)
			forms.POST("/community/back", d.formHandler.Back)
			forms.POST("/community/validate", d.formHandler.ValidateCommunity)
		}
	}
}

// registerCompanionRoutes mounts the passkey wallet endpoints outside /api/v1;
// their paths are fixed by existing wallet clients.
func registerCompanionRoutes(r *gin.Engine, d routeDeps) {
	user := r.Group("/api/user")
	{
		user.POST("/sign-up", d.userHandler.SignUp)
		user.GET("/:contract", d.userHandler.GetPublicKey)
	}
}
