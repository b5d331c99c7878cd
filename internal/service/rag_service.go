package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ainote/internal/ai"
	"github.com/xxxsen/ainote/internal/model"
	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
	"github.com/xxxsen/ainote/internal/repo"
)

const contextSeparator = "\n\n---\n\n"

const emptyContextNotice = "No relevant note content was found."

const systemPromptTemplate = `You are the AI assistant of a note-taking workspace. You answer questions based on the user's own notes.

Below is content retrieved from the user's notes, most relevant first:

%s

Answer using only the content above. Do not guess about things the notes do not cover; if the notes lack an answer, say so.`

type RagService struct {
	settings   *SettingsService
	ai         *AIService
	workspaces *repo.WorkspaceRepo
	topK       int
}

func NewRagService(settings *SettingsService, aiSvc *AIService, workspaces *repo.WorkspaceRepo, topK int) *RagService {
	if topK <= 0 {
		topK = 10
	}
	return &RagService{settings: settings, ai: aiSvc, workspaces: workspaces, topK: topK}
}

// buildContext formats retrieved chunks in rank order. An empty retrieval
// still produces an explicit notice so the model knows nothing was found.
func buildContext(results []model.SimilarityResult) string {
	if len(results) == 0 {
		return emptyContextNotice
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[Note: %s] (similarity: %.1f%%)\n%s", r.NoteTitle, r.Similarity*100, r.Content))
	}
	return strings.Join(blocks, contextSeparator)
}

// assemble builds the grounding prompt: system prompt with retrieved
// context, then conversation history in stored order, then the query as the
// final user turn.
func assemble(results []model.SimilarityResult, history []ai.Message, query string) (string, []ai.Message) {
	system := fmt.Sprintf(systemPromptTemplate, buildContext(results))
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: query})
	return system, messages
}

// Query retrieves relevant chunks and starts a streamed, grounded
// completion. Workspace membership is re-checked here even though the
// caller is expected to have verified it.
func (s *RagService) Query(ctx context.Context, userID, workspaceID, query string, history []ai.Message) (*ai.Stream, error) {
	member, err := s.workspaces.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, appErr.ErrForbidden
	}
	provider, chatModel, err := s.settings.ResolveChat(ctx, userID)
	if err != nil {
		return nil, err
	}
	results, err := s.ai.Search(ctx, userID, workspaceID, query, s.topK)
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("rag query",
		zap.String("user_id", userID),
		zap.String("workspace_id", workspaceID),
		zap.Int("retrieved", len(results)),
		zap.String("chat_model", chatModel),
	)
	system, messages := assemble(results, history, query)
	stream, err := provider.ChatStream(ctx, chatModel, system, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrProvider, err)
	}
	return stream, nil
}
