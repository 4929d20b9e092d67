package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/bugrelay/internal/http/handler"
)

// WidgetRouter keeps the paths the Crisp plugin widget calls.
func WidgetRouter(router *gin.RouterGroup, bugs *handler.BugReportHandler, settings *handler.SettingsHandler) {
	router.POST("/create-bug", bugs.Create)
	router.GET("/get-settings", settings.GetByQuery)
	router.POST("/save-settings", settings.Save)
}
