package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/ainote/internal/model"
	"github.com/xxxsen/ainote/internal/pkg/dbutil"
	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func (r *ConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	data := map[string]interface{}{
		"id":           conv.ID,
		"user_id":      conv.UserID,
		"workspace_id": conv.WorkspaceID,
		"title":        conv.Title,
		"ctime":        conv.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("ai_conversations", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *ConversationRepo) Get(ctx context.Context, userID, convID string) (*model.Conversation, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT id, user_id, workspace_id, title, ctime FROM ai_conversations WHERE id = ? AND user_id = ?",
		[]interface{}{convID, userID},
	)
	var conv model.Conversation
	err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&conv.ID, &conv.UserID, &conv.WorkspaceID, &conv.Title, &conv.Ctime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepo) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT id, user_id, workspace_id, title, ctime FROM ai_conversations WHERE user_id = ? ORDER BY ctime DESC",
		[]interface{}{userID},
	)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Conversation
	for rows.Next() {
		var conv model.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.WorkspaceID, &conv.Title, &conv.Ctime); err != nil {
			return nil, err
		}
		items = append(items, conv)
	}
	return items, rows.Err()
}

// Delete cascades to ai_messages through the foreign key.
func (r *ConversationRepo) Delete(ctx context.Context, userID, convID string) error {
	sqlStr, args := dbutil.Finalize(
		"DELETE FROM ai_conversations WHERE id = ? AND user_id = ?",
		[]interface{}{convID, userID},
	)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, msg *model.Message) error {
	data := map[string]interface{}{
		"id":              msg.ID,
		"conversation_id": msg.ConversationID,
		"role":            msg.Role,
		"content":         msg.Content,
		"created_at":      msg.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("ai_messages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ConversationRepo) ListMessages(ctx context.Context, convID string) ([]model.Message, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT id, conversation_id, role, content, created_at FROM ai_messages WHERE conversation_id = ? ORDER BY created_at ASC, id ASC",
		[]interface{}{convID},
	)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, msg)
	}
	return items, rows.Err()
}
