package routes

import (
	"github.com/Kevinjiang991217/stock-dashboard/controllers"
	"github.com/Kevinjiang991217/stock-dashboard/services"
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, refresher *services.RefreshService, hub *services.StreamHub) {
	marketController := controllers.NewMarketController(refresher, hub)

	api := router.Group("/api")
	{
		api.GET("/stocks", marketController.GetStocks)
		api.GET("/gold", marketController.GetGold)
		api.GET("/news", marketController.GetNews)
		api.GET("/analysis", marketController.GetAnalysis)
		api.GET("/exchange-rate", marketController.GetExchangeRate)
		api.GET("/history/:symbol", marketController.GetHistory)
		api.GET("/all", marketController.GetAll)
		api.POST("/generate-analysis", marketController.GenerateAnalysis)
	}

	router.GET("/ws", marketController.StreamSnapshots)
}
