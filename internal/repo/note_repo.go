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

const noteColumns = "id, workspace_id, created_by, title, content, is_archived, ctime, mtime"

type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

func (r *NoteRepo) Create(ctx context.Context, note *model.Note) error {
	data := map[string]interface{}{
		"id":           note.ID,
		"workspace_id": note.WorkspaceID,
		"created_by":   note.CreatedBy,
		"title":        note.Title,
		"content":      note.Content,
		"is_archived":  note.IsArchived,
		"ctime":        note.Ctime,
		"mtime":        note.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("notes", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *NoteRepo) GetByID(ctx context.Context, noteID string) (*model.Note, error) {
	sqlStr, args := dbutil.Finalize("SELECT "+noteColumns+" FROM notes WHERE id = ?", []interface{}{noteID})
	var note model.Note
	err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&note.ID, &note.WorkspaceID, &note.CreatedBy, &note.Title, &note.Content,
		&note.IsArchived, &note.Ctime, &note.Mtime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepo) UpdateContent(ctx context.Context, noteID, title, content string, mtime int64) error {
	where := map[string]interface{}{"id": noteID}
	update := map[string]interface{}{"title": title, "content": content, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("notes", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *NoteRepo) SetArchived(ctx context.Context, noteID string, archived bool) error {
	sqlStr, args := dbutil.Finalize("UPDATE notes SET is_archived = ? WHERE id = ?", []interface{}{archived, noteID})
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Delete cascades to note_embeddings through the foreign key.
func (r *NoteRepo) Delete(ctx context.Context, noteID string) error {
	sqlStr, args := dbutil.Finalize("DELETE FROM notes WHERE id = ?", []interface{}{noteID})
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListStale returns unarchived notes whose vectors are missing or older
// than the note content. Whitespace-only notes are excluded: they chunk to
// nothing, so reindexing them never writes and they would be re-listed on
// every pass.
func (r *NoteRepo) ListStale(ctx context.Context, limit int) ([]model.Note, error) {
	const q = `
		SELECT n.id, n.workspace_id, n.created_by, n.title, n.content, n.is_archived, n.ctime, n.mtime
		FROM notes n
		LEFT JOIN (
			SELECT note_id, MAX(created_at) AS built_at
			FROM note_embeddings
			GROUP BY note_id
		) e ON e.note_id = n.id
		WHERE n.is_archived = FALSE
		  AND btrim(n.content, E' \t\r\n') <> ''
		  AND (e.note_id IS NULL OR n.mtime > e.built_at)
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []model.Note
	for rows.Next() {
		var note model.Note
		if err := rows.Scan(
			&note.ID, &note.WorkspaceID, &note.CreatedBy, &note.Title, &note.Content,
			&note.IsArchived, &note.Ctime, &note.Mtime,
		); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
