package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/ainote/internal/pkg/errcode"
)

func TestRagEndpointValidation(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	token := tokenFor(t, "user-1")
	require.NoError(t, env.workspaces.AddMember(context.Background(), "ws-1", "user-1"))

	_, result := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/rag", token, map[string]string{
		"workspace_id": "ws-1",
	})
	require.Equal(t, errcode.ErrInvalid, result.Code)

	// Member of no workspace named ws-2.
	_, result = doJSON(t, env.router, http.MethodPost, "/api/v1/ai/rag", token, map[string]string{
		"query": "what is in my notes?", "workspace_id": "ws-2",
	})
	require.Equal(t, errcode.ErrForbidden, result.Code)

	// Member, but no chat credential configured yet.
	_, result = doJSON(t, env.router, http.MethodPost, "/api/v1/ai/rag", token, map[string]string{
		"query": "what is in my notes?", "workspace_id": "ws-1",
	})
	require.Equal(t, errcode.ErrAIUnavailable, result.Code)
}

func TestSearchEndpointWithoutProvider(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	token := tokenFor(t, "user-1")

	_, result := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/search", token, map[string]string{
		"query": "anything",
	})
	require.Equal(t, errcode.ErrInvalid, result.Code)

	// No embedding credential yields an empty result set, not an error.
	_, result = doJSON(t, env.router, http.MethodPost, "/api/v1/ai/search", token, map[string]interface{}{
		"query": "anything", "workspace_id": "ws-1",
	})
	require.Equal(t, 0, result.Code)
	items, ok := result.Data["items"].([]interface{})
	require.True(t, ok)
	require.Empty(t, items)
}

func TestEmbedEndpointWithoutProvider(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	token := tokenFor(t, "user-1")
	_, result := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/notes/note-1/embed", token, map[string]string{
		"content": "some note content.",
	})
	require.Equal(t, 0, result.Code)
}
