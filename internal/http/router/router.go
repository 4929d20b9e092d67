package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/bugrelay/internal/http/handler"
	"basegraph.app/bugrelay/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	bugHandler := handler.NewBugReportHandler(services.Pipeline())
	settingsHandler := handler.NewSettingsHandler(services.Settings())

	v1 := router.Group("/api/v1")
	{
		BugReportRouter(v1.Group("/bugs"), bugHandler)
		SettingsRouter(v1.Group("/settings"), settingsHandler)
	}

	WidgetRouter(router.Group("/api"), bugHandler, settingsHandler)
}
