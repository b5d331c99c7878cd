package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/ainote/internal/model"
	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
	"github.com/xxxsen/ainote/internal/repo"
	"github.com/xxxsen/ainote/internal/service"
	"github.com/xxxsen/ainote/test/testutil"
)

func TestConversationServiceCreate(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	workspaces := repo.NewWorkspaceRepo(db)
	conversations := service.NewConversationService(repo.NewConversationRepo(db), workspaces)
	ctx := context.Background()
	require.NoError(t, workspaces.AddMember(ctx, "ws-1", "user-1"))

	_, err := conversations.Create(ctx, "outsider", "ws-1", "hello")
	require.ErrorIs(t, err, appErr.ErrForbidden)

	longTitle := strings.Repeat("标题", 50)
	conv, err := conversations.Create(ctx, "user-1", "ws-1", longTitle)
	require.NoError(t, err)
	require.Equal(t, 60, len([]rune(conv.Title)))
	require.NotEmpty(t, conv.ID)
}

func TestConversationServiceHistory(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	workspaces := repo.NewWorkspaceRepo(db)
	conversations := service.NewConversationService(repo.NewConversationRepo(db), workspaces)
	ctx := context.Background()
	require.NoError(t, workspaces.AddMember(ctx, "ws-1", "user-1"))

	conv, err := conversations.Create(ctx, "user-1", "ws-1", "chat")
	require.NoError(t, err)
	require.NoError(t, conversations.Append(ctx, "user-1", conv.ID, model.MessageRoleUser, "question"))
	require.NoError(t, conversations.Append(ctx, "user-1", conv.ID, model.MessageRoleAssistant, "answer"))

	// History is owner-scoped.
	_, err = conversations.History(ctx, "other", conv.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	history, err := conversations.History(ctx, "user-1", conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "question", history[0].Content)
	require.Equal(t, "answer", history[1].Content)
}

func TestAIServiceIndexWithoutProvider(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	v := newTestVault(t)
	settings := service.NewSettingsService(repo.NewSettingsRepo(db), v)
	embeddings := repo.NewEmbeddingRepo(db)
	aiService := service.NewAIService(settings, embeddings)
	ctx := context.Background()

	// Indexing rides on every note save; a user who never configured a
	// key gets a silent no-op, not an error.
	require.NoError(t, aiService.IndexNote(ctx, "user-1", "note-1", "some note content."))
	count, err := embeddings.CountByNote(ctx, "note-1")
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// Same for search: no provider means no results, not a failure.
	results, err := aiService.Search(ctx, "user-1", "ws-1", "query", 10)
	require.NoError(t, err)
	require.Empty(t, results)
}
