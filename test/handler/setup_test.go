package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/ainote/internal/handler"
	"github.com/xxxsen/ainote/internal/middleware"
	"github.com/xxxsen/ainote/internal/pkg/jwt"
	"github.com/xxxsen/ainote/internal/repo"
	"github.com/xxxsen/ainote/internal/service"
	"github.com/xxxsen/ainote/internal/vault"
	"github.com/xxxsen/ainote/test/testutil"
)

const testVaultKey = "3fb57f74deacb8836f92a6d2d3a54e16a4bfdb917ca29eedfb35c2ea2e7f27d0"

var testJWTSecret = []byte("test-secret")

type testEnv struct {
	router     http.Handler
	workspaces *repo.WorkspaceRepo
}

func setupRouter(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	v, err := vault.New(testVaultKey)
	require.NoError(t, err)

	embeddingRepo := repo.NewEmbeddingRepo(db)
	workspaceRepo := repo.NewWorkspaceRepo(db)

	settingsService := service.NewSettingsService(repo.NewSettingsRepo(db), v)
	aiService := service.NewAIService(settingsService, embeddingRepo)
	ragService := service.NewRagService(settingsService, aiService, workspaceRepo, 10)
	conversationService := service.NewConversationService(repo.NewConversationRepo(db), workspaceRepo)

	deps := handler.RouterDeps{
		AI:            handler.NewAIHandler(aiService, ragService, conversationService),
		Settings:      handler.NewSettingsHandler(settingsService),
		Conversations: handler.NewConversationHandler(conversationService),
		JWTSecret:     testJWTSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return &testEnv{router: engine, workspaces: workspaceRepo}, cleanup
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.GenerateToken(userID, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}
