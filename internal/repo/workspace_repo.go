package repo

import (
	"context"
	"database/sql"

	"github.com/xxxsen/ainote/internal/pkg/dbutil"
)

type WorkspaceRepo struct {
	db *sql.DB
}

func NewWorkspaceRepo(db *sql.DB) *WorkspaceRepo {
	return &WorkspaceRepo{db: db}
}

func (r *WorkspaceRepo) AddMember(ctx context.Context, workspaceID, userID string) error {
	const q = `
		INSERT INTO workspace_members (workspace_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, workspaceID, userID)
	return err
}

func (r *WorkspaceRepo) IsMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT COUNT(*) FROM workspace_members WHERE workspace_id = ? AND user_id = ?",
		[]interface{}{workspaceID, userID},
	)
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
