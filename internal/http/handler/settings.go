package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/bugrelay/internal/http/dto"
	"basegraph.app/bugrelay/internal/service"
)

type SettingsHandler struct {
	settings service.SettingsService
}

func NewSettingsHandler(settings service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	h.get(c, c.Param("website_id"))
}

// GetByQuery serves the widget's ?website_id= form.
func (h *SettingsHandler) GetByQuery(c *gin.Context) {
	h.get(c, c.Query("website_id"))
}

func (h *SettingsHandler) get(c *gin.Context, websiteID string) {
	ctx := c.Request.Context()

	if websiteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing website_id"})
		return
	}

	settings, err := h.settings.Get(ctx, websiteID)
	if err != nil {
		// Unconfigured workspaces answer with empty settings.
		slog.WarnContext(ctx, "failed to load workspace settings",
			"website_id", websiteID,
			"error", err)
		settings = map[string]any{}
	}

	c.JSON(http.StatusOK, dto.SettingsResponse{Settings: settings})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	h.save(c, c.Param("website_id"), req.GitHubRepo)
}

// Save serves the widget's body-only form.
func (h *SettingsHandler) Save(c *gin.Context) {
	var req dto.SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	h.save(c, req.WebsiteID, req.Settings.GitHubRepo)
}

func (h *SettingsHandler) save(c *gin.Context, websiteID, githubRepo string) {
	if err := h.settings.Save(c.Request.Context(), websiteID, githubRepo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SaveSettingsResponse{Success: true})
}
