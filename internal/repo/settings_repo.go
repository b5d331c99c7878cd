package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xxxsen/ainote/internal/model"
	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
)

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Get(ctx context.Context, userID string) (*model.AISettings, error) {
	const q = `
		SELECT user_id, default_provider, default_model,
		       openai_api_key, anthropic_api_key, google_api_key, mtime
		FROM user_ai_settings
		WHERE user_id = $1
	`
	var s model.AISettings
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&s.UserID, &s.DefaultProvider, &s.DefaultModel,
		&s.OpenAIKey, &s.AnthropicKey, &s.GoogleKey, &s.Mtime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, s *model.AISettings) error {
	const q = `
		INSERT INTO user_ai_settings
			(user_id, default_provider, default_model, openai_api_key, anthropic_api_key, google_api_key, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			default_provider = EXCLUDED.default_provider,
			default_model = EXCLUDED.default_model,
			openai_api_key = EXCLUDED.openai_api_key,
			anthropic_api_key = EXCLUDED.anthropic_api_key,
			google_api_key = EXCLUDED.google_api_key,
			mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, q,
		s.UserID, s.DefaultProvider, s.DefaultModel,
		s.OpenAIKey, s.AnthropicKey, s.GoogleKey, s.Mtime,
	)
	return err
}
