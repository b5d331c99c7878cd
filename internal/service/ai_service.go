package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ainote/internal/ai"
	"github.com/xxxsen/ainote/internal/model"
	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
	"github.com/xxxsen/ainote/internal/repo"
)

type AIService struct {
	settings   *SettingsService
	embeddings *repo.EmbeddingRepo
	queryCache *expirable.LRU[string, []float32]
}

func NewAIService(settings *SettingsService, embeddings *repo.EmbeddingRepo) *AIService {
	cache := expirable.NewLRU[string, []float32](2048, nil, time.Hour)
	return &AIService{
		settings:   settings,
		embeddings: embeddings,
		queryCache: cache,
	}
}

// IndexNote rebuilds a note's chunk vectors from content. Users without an
// embedding-capable credential are a silent no-op: many notes are never
// queried and indexing rides on every content change. All other failures
// propagate.
func (s *AIService) IndexNote(ctx context.Context, userID, noteID, content string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID), zap.String("note_id", noteID))
	provider, embModel, err := s.settings.ResolveEmbedder(ctx, userID)
	if appErr.IsNoProvider(err) {
		logger.Debug("no embedding provider configured, skipping index")
		return nil
	}
	if err != nil {
		return err
	}

	chunks := ai.ChunkText(ai.PlainText(content))
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := provider.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Error("embedding batch failed", zap.Error(err))
		return fmt.Errorf("%w: %v", appErr.ErrProvider, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed batch returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	records := make([]model.NoteEmbedding, len(chunks))
	for i, chunk := range chunks {
		records[i] = model.NoteEmbedding{
			NoteID:     noteID,
			ChunkIndex: chunk.Index,
			Content:    chunk.Content,
			Embedding:  vectors[i],
		}
	}
	if err := s.embeddings.ReplaceForNote(ctx, noteID, embModel, records); err != nil {
		logger.Error("replace embeddings failed", zap.Error(err))
		return err
	}
	logger.Info("note indexed", zap.Int("chunks", len(chunks)), zap.String("embedding_model", embModel))
	return nil
}

// DropNoteIndex removes a note's vectors. Called when the surrounding
// application deletes or archives a note without going through a content
// change. Idempotent.
func (s *AIService) DropNoteIndex(ctx context.Context, noteID string) error {
	if err := s.embeddings.DeleteByNote(ctx, noteID); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("note index dropped", zap.String("note_id", noteID))
	return nil
}

// Search ranks stored chunks by similarity to the query within one
// workspace. A user without an embedding credential gets an empty result,
// not an error, so chat stays usable in degraded mode.
func (s *AIService) Search(ctx context.Context, userID, workspaceID, query string, limit int) ([]model.SimilarityResult, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}
	provider, embModel, err := s.settings.ResolveEmbedder(ctx, userID)
	if appErr.IsNoProvider(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	vector, err := s.embedQuery(ctx, provider, embModel, query)
	if err != nil {
		return nil, err
	}
	return s.embeddings.Search(ctx, workspaceID, embModel, vector, limit)
}

func (s *AIService) embedQuery(ctx context.Context, provider ai.IProvider, embModel, query string) ([]float32, error) {
	cacheKey := queryCacheKey(embModel, query)
	if cached, ok := s.queryCache.Get(cacheKey); ok {
		return cached, nil
	}
	vectors, err := provider.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrProvider, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query returned %d vectors", len(vectors))
	}
	s.queryCache.Add(cacheKey, vectors[0])
	return vectors[0], nil
}

func queryCacheKey(embModel, query string) string {
	hash := sha256.Sum256([]byte(query))
	return embModel + ":" + hex.EncodeToString(hash[:])
}
