package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/ainote/internal/model"
	"github.com/xxxsen/ainote/internal/pkg/errcode"
	"github.com/xxxsen/ainote/internal/pkg/response"
	"github.com/xxxsen/ainote/internal/service"
)

type ConversationHandler struct {
	conversations *service.ConversationService
}

func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

type createConversationRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Title       string `json:"title"`
}

func (h *ConversationHandler) Create(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.WorkspaceID == "" {
		response.Error(c, errcode.ErrInvalid, "workspace_id required")
		return
	}
	conv, err := h.conversations.Create(c.Request.Context(), getUserID(c), req.WorkspaceID, req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, conv)
}

func (h *ConversationHandler) List(c *gin.Context) {
	items, err := h.conversations.List(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if items == nil {
		items = []model.Conversation{}
	}
	response.Success(c, gin.H{"items": items})
}

func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.conversations.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, conv)
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.conversations.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{})
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	items, err := h.conversations.Messages(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if items == nil {
		items = []model.Message{}
	}
	response.Success(c, gin.H{"items": items})
}
