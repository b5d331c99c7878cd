package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/ainote/internal/pkg/errcode"
)

type apiResult struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg"`
	Data map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResult) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var result apiResult
	_ = json.Unmarshal(resp.Body.Bytes(), &result)
	return resp, result
}

func TestSettingsEndpoints(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	// Unauthenticated requests are rejected.
	_, result := doJSON(t, env.router, http.MethodGet, "/api/v1/ai/settings", "", nil)
	require.Equal(t, errcode.ErrUnauthorized, result.Code)

	token := tokenFor(t, "user-1")
	resp, result := doJSON(t, env.router, http.MethodGet, "/api/v1/ai/settings", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 0, result.Code)
	require.Equal(t, "openai", result.Data["default_provider"])
	require.Equal(t, false, result.Data["has_openai_key"])

	_, result = doJSON(t, env.router, http.MethodPut, "/api/v1/ai/settings", token, map[string]interface{}{
		"openai_api_key": "sk-test-abc",
	})
	require.Equal(t, 0, result.Code)
	require.Equal(t, true, result.Data["has_openai_key"])

	// Key material never appears in any response.
	_, result = doJSON(t, env.router, http.MethodGet, "/api/v1/ai/settings", token, nil)
	raw, err := json.Marshal(result.Data)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "sk-test-abc")

	_, result = doJSON(t, env.router, http.MethodPut, "/api/v1/ai/settings", token, map[string]interface{}{
		"default_provider": "nonexistent",
	})
	require.Equal(t, errcode.ErrInvalid, result.Code)
}

func TestProvidersEndpoint(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	token := tokenFor(t, "user-1")
	resp, result := doJSON(t, env.router, http.MethodGet, "/api/v1/ai/providers", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	providers, ok := result.Data["providers"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, providers, "openai")
	require.Contains(t, providers, "anthropic")
	require.Contains(t, providers, "google")
}

func TestConversationEndpoints(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	token := tokenFor(t, "user-1")
	require.NoError(t, env.workspaces.AddMember(context.Background(), "ws-1", "user-1"))

	// Not a member of this workspace.
	_, result := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/conversations", token, map[string]string{
		"workspace_id": "ws-other", "title": "chat",
	})
	require.Equal(t, errcode.ErrForbidden, result.Code)

	_, result = doJSON(t, env.router, http.MethodPost, "/api/v1/ai/conversations", token, map[string]string{
		"workspace_id": "ws-1", "title": "my chat",
	})
	require.Equal(t, 0, result.Code)
	convID, _ := result.Data["id"].(string)
	require.NotEmpty(t, convID)

	_, result = doJSON(t, env.router, http.MethodGet, "/api/v1/ai/conversations", token, nil)
	require.Equal(t, 0, result.Code)
	items, ok := result.Data["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	// Another user cannot see or delete it.
	otherToken := tokenFor(t, "user-2")
	_, result = doJSON(t, env.router, http.MethodGet, "/api/v1/ai/conversations/"+convID, otherToken, nil)
	require.Equal(t, errcode.ErrNotFound, result.Code)
	_, result = doJSON(t, env.router, http.MethodDelete, "/api/v1/ai/conversations/"+convID, otherToken, nil)
	require.Equal(t, errcode.ErrNotFound, result.Code)

	_, result = doJSON(t, env.router, http.MethodDelete, "/api/v1/ai/conversations/"+convID, token, nil)
	require.Equal(t, 0, result.Code)
}
