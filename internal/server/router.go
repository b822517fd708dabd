package server

import (
	"net/http"

	"auction-site/internal/metrics"
	handler "auction-site/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService handler.AuctionServiceInterface, identityService handler.IdentityServiceInterface, auth Authenticator) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(metrics.Middleware)      // request counters and latency
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService)
	identityHandler := handler.NewIdentityHandler(identityService)
	requireAuth := AuthRequired(auth)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", identityHandler.RegisterHandler)
		authRoutes.POST("/login", identityHandler.LoginHandler)
	}

	listings := router.Group("/listings")
	{
		listings.GET("", auctionHandler.ListOpenListingsHandler)
		listings.POST("", requireAuth, auctionHandler.CreateListingHandler)
		listings.GET("/:listing_id", OptionalAuth(auth), auctionHandler.GetListingHandler)
		listings.POST("/:listing_id/bids", requireAuth, auctionHandler.PlaceBidHandler)
		listings.POST("/:listing_id/comments", requireAuth, auctionHandler.AddCommentHandler)
		listings.POST("/:listing_id/close", requireAuth, auctionHandler.CloseListingHandler)
		listings.POST("/:listing_id/watch", requireAuth, auctionHandler.WatchHandler)
		listings.DELETE("/:listing_id/watch", requireAuth, auctionHandler.UnwatchHandler)
	}

	router.GET("/watchlist", requireAuth, auctionHandler.GetWatchlistHandler)

	categories := router.Group("/categories")
	{
		categories.GET("", auctionHandler.ListCategoriesHandler)
		categories.GET("/:name/listings", auctionHandler.ListByCategoryHandler)
	}

	return router
}
