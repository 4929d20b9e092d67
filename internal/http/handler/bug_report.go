package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/bugrelay/internal/http/dto"
	"basegraph.app/bugrelay/internal/service"
)

type BugFiler interface {
	FileFromConversation(ctx context.Context, params service.FileFromConversationParams) (*service.PipelineResult, error)
	FileFromTranscript(ctx context.Context, params service.FileFromTranscriptParams) (*service.PipelineResult, error)
}

type BugReportHandler struct {
	filer BugFiler
}

func NewBugReportHandler(filer BugFiler) *BugReportHandler {
	return &BugReportHandler{filer: filer}
}

// Create files a bug for a conversation fetched from Crisp.
func (h *BugReportHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.filer.FileFromConversation(ctx, service.FileFromConversationParams{
		WebsiteID:  req.WebsiteID,
		SessionID:  req.SessionID,
		GitHubRepo: req.GitHubRepo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCreateBugResponse(result))
}

// CreateFromTranscript files a bug for a transcript embedded in the body.
func (h *BugReportHandler) CreateFromTranscript(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TranscriptBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.filer.FileFromTranscript(ctx, service.FileFromTranscriptParams{
		WebsiteID:  req.WebsiteID,
		SessionID:  req.SessionID,
		GitHubRepo: req.GitHubRepo,
		Messages:   req.ToMessages(),
		Meta:       req.ToMeta(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCreateBugResponse(result))
}

func toCreateBugResponse(result *service.PipelineResult) dto.CreateBugResponse {
	return dto.CreateBugResponse{
		IssueNumber: result.Issue.Number,
		IssueURL:    result.Issue.URL,
		Title:       result.Issue.Title,
	}
}
