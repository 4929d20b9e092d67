package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/bugrelay/internal/service"
)

func statusFor(err error) int {
	if service.IsClientError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": msg}. Upstream wording is passed through.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
