package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
	"github.com/xxxsen/ainote/internal/repo"
	"github.com/xxxsen/ainote/internal/service"
)

// EmbeddingResyncJob repairs the vector index in the background. It catches
// notes whose content changed without a reindex going through, and notes
// whose stored vectors were built with a model the owner no longer resolves
// to.
type EmbeddingResyncJob struct {
	notes      *repo.NoteRepo
	embeddings *repo.EmbeddingRepo
	settings   *service.SettingsService
	ai         *service.AIService
	batch      int
}

func NewEmbeddingResyncJob(notes *repo.NoteRepo, embeddings *repo.EmbeddingRepo, settings *service.SettingsService, ai *service.AIService, batch int) *EmbeddingResyncJob {
	return &EmbeddingResyncJob{
		notes:      notes,
		embeddings: embeddings,
		settings:   settings,
		ai:         ai,
		batch:      batch,
	}
}

func (j *EmbeddingResyncJob) Name() string {
	return "embedding_resync"
}

func (j *EmbeddingResyncJob) Run(ctx context.Context) error {
	if err := j.resyncStale(ctx); err != nil {
		return err
	}
	return j.resyncMismatched(ctx)
}

func (j *EmbeddingResyncJob) resyncStale(ctx context.Context) error {
	notes, err := j.notes.ListStale(ctx, j.batch)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	for _, note := range notes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := j.ai.IndexNote(ctx, note.CreatedBy, note.ID, note.Content); err != nil {
			// One broken note must not wedge the whole batch.
			logger.Error("resync index failed",
				zap.String("note_id", note.ID), zap.Error(err))
		}
	}
	if len(notes) > 0 {
		logger.Info("stale notes resynced", zap.Int("count", len(notes)))
	}
	return nil
}

// resyncMismatched reindexes notes whose stored embedding model differs
// from what the owner's settings resolve to now. Search filters on the
// stored model, so a provider switch silently empties results until the
// index is rebuilt.
func (j *EmbeddingResyncJob) resyncMismatched(ctx context.Context) error {
	items, err := j.embeddings.ListNoteModels(ctx, j.batch)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	resolved := make(map[string]string)
	count := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		want, ok := resolved[item.Owner]
		if !ok {
			_, model, err := j.settings.ResolveEmbedder(ctx, item.Owner)
			if appErr.IsNoProvider(err) {
				model = ""
			} else if err != nil {
				logger.Error("resolve embedder failed",
					zap.String("user_id", item.Owner), zap.Error(err))
				continue
			}
			resolved[item.Owner] = model
			want = model
		}
		if want == "" || want == item.EmbeddingModel {
			continue
		}
		note, err := j.notes.GetByID(ctx, item.NoteID)
		if appErr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if err := j.ai.IndexNote(ctx, note.CreatedBy, note.ID, note.Content); err != nil {
			logger.Error("resync index failed",
				zap.String("note_id", note.ID), zap.Error(err))
			continue
		}
		count++
	}
	if count > 0 {
		logger.Info("model-mismatched notes resynced", zap.Int("count", count))
	}
	return nil
}
