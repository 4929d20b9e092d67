package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/bugrelay/internal/http/handler"
)

func SettingsRouter(router *gin.RouterGroup, handler *handler.SettingsHandler) {
	router.GET("/:website_id", handler.Get)
	router.PUT("/:website_id", handler.Update)
}
