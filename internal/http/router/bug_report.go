package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/bugrelay/internal/http/handler"
)

func BugReportRouter(router *gin.RouterGroup, handler *handler.BugReportHandler) {
	router.POST("", handler.Create)
	router.POST("/transcript", handler.CreateFromTranscript)
}
