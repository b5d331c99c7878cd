package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ainote/internal/ai"
	"github.com/xxxsen/ainote/internal/model"
	"github.com/xxxsen/ainote/internal/pkg/errcode"
	"github.com/xxxsen/ainote/internal/pkg/response"
	"github.com/xxxsen/ainote/internal/service"
)

type AIHandler struct {
	ai            *service.AIService
	rag           *service.RagService
	conversations *service.ConversationService
}

func NewAIHandler(aiSvc *service.AIService, rag *service.RagService, conversations *service.ConversationService) *AIHandler {
	return &AIHandler{ai: aiSvc, rag: rag, conversations: conversations}
}

type embedRequest struct {
	Content string `json:"content"`
}

type searchRequest struct {
	Query       string `json:"query"`
	WorkspaceID string `json:"workspace_id"`
	Limit       int    `json:"limit"`
}

type ragRequest struct {
	Query          string `json:"query"`
	WorkspaceID    string `json:"workspace_id"`
	ConversationID string `json:"conversation_id"`
}

// Embed (re)indexes one note. Idempotent and fire-and-forget safe: a user
// without an embedding credential still gets a success response.
func (h *AIHandler) Embed(c *gin.Context) {
	noteID := c.Param("id")
	var req embedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := h.ai.IndexNote(c.Request.Context(), getUserID(c), noteID, req.Content); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{})
}

// Unembed drops a note's vectors without touching the note itself.
func (h *AIHandler) Unembed(c *gin.Context) {
	if err := h.ai.DropNoteIndex(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{})
}

func (h *AIHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Query) == "" || req.WorkspaceID == "" {
		response.Error(c, errcode.ErrInvalid, "query and workspace_id required")
		return
	}
	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	results, err := h.ai.Search(c.Request.Context(), getUserID(c), req.WorkspaceID, req.Query, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	if results == nil {
		results = []model.SimilarityResult{}
	}
	response.Success(c, gin.H{"items": results})
}

// Rag is the single retrieval+generation entry point. It streams plain text
// fragments as the model emits them; once streaming starts, errors can only
// terminate the stream, not change the response.
func (h *AIHandler) Rag(c *gin.Context) {
	var req ragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Query) == "" || req.WorkspaceID == "" {
		response.Error(c, errcode.ErrInvalid, "query and workspace_id required")
		return
	}
	ctx := c.Request.Context()
	userID := getUserID(c)

	var history []ai.Message
	if req.ConversationID != "" {
		var err error
		history, err = h.conversations.History(ctx, userID, req.ConversationID)
		if err != nil {
			handleError(c, err)
			return
		}
	}

	stream, err := h.rag.Query(ctx, userID, req.WorkspaceID, req.Query, history)
	if err != nil {
		handleError(c, err)
		return
	}

	if req.ConversationID != "" {
		if err := h.conversations.Append(ctx, userID, req.ConversationID, model.MessageRoleUser, req.Query); err != nil {
			handleError(c, err)
			return
		}
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(200)

	var full strings.Builder
	for fragment := range stream.Fragments() {
		full.WriteString(fragment)
		_, _ = c.Writer.WriteString(fragment)
		c.Writer.Flush()
	}
	if err := stream.Err(); err != nil {
		// Emitted text already reached the client and is not retracted;
		// the assistant turn is not persisted for a failed stream.
		if !errors.Is(err, ctx.Err()) {
			logutil.GetLogger(ctx).Error("generation stream failed",
				zap.String("user_id", userID),
				zap.String("conversation_id", req.ConversationID),
				zap.Error(err),
			)
		}
		return
	}
	if req.ConversationID != "" && full.Len() > 0 {
		if err := h.conversations.Append(ctx, userID, req.ConversationID, model.MessageRoleAssistant, full.String()); err != nil {
			logutil.GetLogger(ctx).Error("persist assistant message failed",
				zap.String("conversation_id", req.ConversationID), zap.Error(err))
		}
	}
}

func (h *AIHandler) Providers(c *gin.Context) {
	response.Success(c, gin.H{"providers": ai.Catalog()})
}
