package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/xxxsen/ainote/internal/ai"
	"github.com/xxxsen/ainote/internal/model"
	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
	"github.com/xxxsen/ainote/internal/repo"
)

const conversationTitleMax = 60

type ConversationService struct {
	conversations *repo.ConversationRepo
	workspaces    *repo.WorkspaceRepo
}

func NewConversationService(conversations *repo.ConversationRepo, workspaces *repo.WorkspaceRepo) *ConversationService {
	return &ConversationService{conversations: conversations, workspaces: workspaces}
}

func (s *ConversationService) Create(ctx context.Context, userID, workspaceID, title string) (*model.Conversation, error) {
	member, err := s.workspaces.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, appErr.ErrForbidden
	}
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > conversationTitleMax {
		title = string([]rune(title)[:conversationTitleMax])
	}
	conv := &model.Conversation{
		ID:          uuid.NewString(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Title:       title,
		Ctime:       time.Now().UnixMilli(),
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) List(ctx context.Context, userID string) ([]model.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID)
}

func (s *ConversationService) Get(ctx context.Context, userID, convID string) (*model.Conversation, error) {
	return s.conversations.Get(ctx, userID, convID)
}

func (s *ConversationService) Delete(ctx context.Context, userID, convID string) error {
	return s.conversations.Delete(ctx, userID, convID)
}

func (s *ConversationService) Messages(ctx context.Context, userID, convID string) ([]model.Message, error) {
	if _, err := s.conversations.Get(ctx, userID, convID); err != nil {
		return nil, err
	}
	return s.conversations.ListMessages(ctx, convID)
}

// History returns the conversation as read-only chat context in stored
// order.
func (s *ConversationService) History(ctx context.Context, userID, convID string) ([]ai.Message, error) {
	messages, err := s.Messages(ctx, userID, convID)
	if err != nil {
		return nil, err
	}
	history := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		history = append(history, ai.Message{Role: m.Role, Content: m.Content})
	}
	return history, nil
}

func (s *ConversationService) Append(ctx context.Context, userID, convID, role, content string) error {
	if _, err := s.conversations.Get(ctx, userID, convID); err != nil {
		return err
	}
	return s.conversations.AppendMessage(ctx, &model.Message{
		ID:             uuid.NewString(),
		ConversationID: convID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UnixMilli(),
	})
}
