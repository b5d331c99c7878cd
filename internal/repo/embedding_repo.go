package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/xxxsen/ainote/internal/model"
	"github.com/xxxsen/ainote/internal/pkg/dbutil"
)

type EmbeddingRepo struct {
	db *sql.DB
}

func NewEmbeddingRepo(db *sql.DB) *EmbeddingRepo {
	return &EmbeddingRepo{db: db}
}

// ReplaceForNote atomically swaps a note's chunk vectors: a concurrent
// reader sees the complete old set or the complete new set, never a mix.
// An advisory lock on the note id serializes racing re-index passes so the
// later commit wins wholesale.
func (r *EmbeddingRepo) ReplaceForNote(ctx context.Context, noteID string, embModel string, chunks []model.NoteEmbedding) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1)::bigint)", noteID); err != nil {
		return fmt.Errorf("lock note %s: %w", noteID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM note_embeddings WHERE note_id = $1", noteID); err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	rows := make([]map[string]interface{}, 0, len(chunks))
	for _, chunk := range chunks {
		rows = append(rows, map[string]interface{}{
			"id":              uuid.NewString(),
			"note_id":         noteID,
			"chunk_index":     chunk.ChunkIndex,
			"content":         chunk.Content,
			"embedding":       pgvector.NewVector(chunk.Embedding),
			"embedding_model": embModel,
			"created_at":      now,
		})
	}
	sqlStr, args, err := builder.BuildInsert("note_embeddings", rows)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// Search ranks stored chunks by cosine distance to the query vector, scoped
// to unarchived notes of one workspace and to vectors built with the same
// embedding model as the query.
func (r *EmbeddingRepo) Search(ctx context.Context, workspaceID string, embModel string, query []float32, limit int) ([]model.SimilarityResult, error) {
	const q = `
		SELECT ne.content, ne.note_id, n.title,
		       1 - (ne.embedding <=> $1::vector) AS similarity
		FROM note_embeddings ne
		JOIN notes n ON n.id = ne.note_id
		WHERE n.workspace_id = $2 AND n.is_archived = FALSE AND ne.embedding_model = $3
		ORDER BY ne.embedding <=> $1::vector
		LIMIT $4
	`
	rows, err := r.db.QueryContext(ctx, q, pgvector.NewVector(query), workspaceID, embModel, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.SimilarityResult
	for rows.Next() {
		var item model.SimilarityResult
		if err := rows.Scan(&item.Content, &item.NoteID, &item.NoteTitle, &item.Similarity); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (r *EmbeddingRepo) DeleteByNote(ctx context.Context, noteID string) error {
	sqlStr, args := dbutil.Finalize("DELETE FROM note_embeddings WHERE note_id = ?", []interface{}{noteID})
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *EmbeddingRepo) CountByNote(ctx context.Context, noteID string) (int, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(*) FROM note_embeddings WHERE note_id = ?", []interface{}{noteID})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EmbeddingRepo) ListByNote(ctx context.Context, noteID string) ([]model.NoteEmbedding, error) {
	const q = `
		SELECT id, note_id, chunk_index, content, embedding_model, created_at
		FROM note_embeddings
		WHERE note_id = $1
		ORDER BY chunk_index
	`
	rows, err := r.db.QueryContext(ctx, q, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.NoteEmbedding
	for rows.Next() {
		var item model.NoteEmbedding
		if err := rows.Scan(&item.ID, &item.NoteID, &item.ChunkIndex, &item.Content, &item.EmbeddingModel, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NoteModel pairs a note with the embedding model its stored vectors were
// built with, for mismatch detection by the resync job.
type NoteModel struct {
	NoteID         string
	Owner          string
	EmbeddingModel string
}

func (r *EmbeddingRepo) ListNoteModels(ctx context.Context, limit int) ([]NoteModel, error) {
	const q = `
		SELECT ne.note_id, n.created_by, MIN(ne.embedding_model)
		FROM note_embeddings ne
		JOIN notes n ON n.id = ne.note_id
		WHERE n.is_archived = FALSE
		GROUP BY ne.note_id, n.created_by
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NoteModel
	for rows.Next() {
		var item NoteModel
		if err := rows.Scan(&item.NoteID, &item.Owner, &item.EmbeddingModel); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
