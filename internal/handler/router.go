package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/ainote/internal/middleware"
)

type RouterDeps struct {
	AI            *AIHandler
	Settings      *SettingsHandler
	Conversations *ConversationHandler
	JWTSecret     []byte
	AIWindow      time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.GET("/ai/providers", deps.AI.Providers)
	authGroup.GET("/ai/settings", deps.Settings.Get)
	authGroup.PUT("/ai/settings", deps.Settings.Update)

	authGroup.POST("/ai/conversations", deps.Conversations.Create)
	authGroup.GET("/ai/conversations", deps.Conversations.List)
	authGroup.GET("/ai/conversations/:id", deps.Conversations.Get)
	authGroup.DELETE("/ai/conversations/:id", deps.Conversations.Delete)
	authGroup.GET("/ai/conversations/:id/messages", deps.Conversations.Messages)

	// Generation and embedding calls hit paid provider APIs, so they get
	// an extra per-user throttle.
	aiGroup := authGroup.Group("")
	aiGroup.Use(middleware.RateLimit(deps.AIWindow))
	aiGroup.POST("/ai/notes/:id/embed", deps.AI.Embed)
	authGroup.DELETE("/ai/notes/:id/embed", deps.AI.Unembed)
	aiGroup.POST("/ai/search", deps.AI.Search)
	aiGroup.POST("/ai/rag", deps.AI.Rag)
}
