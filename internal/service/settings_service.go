package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ainote/internal/ai"
	"github.com/xxxsen/ainote/internal/model"
	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
	"github.com/xxxsen/ainote/internal/repo"
	"github.com/xxxsen/ainote/internal/vault"
)

const (
	defaultProvider  = "openai"
	defaultChatModel = "gpt-4o-mini"
)

// embedFallbackOrder is tried after the user's default provider when that
// provider cannot embed (anthropic) or has no key. Indexing and search share
// this resolution so queries stay in the embedding space the index was
// built with.
var embedFallbackOrder = []string{"openai", "google"}

type SettingsService struct {
	settings *repo.SettingsRepo
	vault    *vault.Vault
}

func NewSettingsService(settings *repo.SettingsRepo, v *vault.Vault) *SettingsService {
	return &SettingsService{settings: settings, vault: v}
}

// SettingsView never carries key material, only presence flags.
type SettingsView struct {
	DefaultProvider string `json:"default_provider"`
	DefaultModel    string `json:"default_model"`
	HasOpenAIKey    bool   `json:"has_openai_key"`
	HasAnthropicKey bool   `json:"has_anthropic_key"`
	HasGoogleKey    bool   `json:"has_google_key"`
}

// SettingsUpdate fields are tri-state: nil keeps the stored value, empty
// string clears it.
type SettingsUpdate struct {
	DefaultProvider *string `json:"default_provider"`
	DefaultModel    *string `json:"default_model"`
	OpenAIKey       *string `json:"openai_api_key"`
	AnthropicKey    *string `json:"anthropic_api_key"`
	GoogleKey       *string `json:"google_api_key"`
}

func viewOf(s *model.AISettings) *SettingsView {
	return &SettingsView{
		DefaultProvider: s.DefaultProvider,
		DefaultModel:    s.DefaultModel,
		HasOpenAIKey:    s.OpenAIKey != "",
		HasAnthropicKey: s.AnthropicKey != "",
		HasGoogleKey:    s.GoogleKey != "",
	}
}

func (s *SettingsService) Get(ctx context.Context, userID string) (*SettingsView, error) {
	stored, err := s.settings.Get(ctx, userID)
	if appErr.IsNotFound(err) {
		return &SettingsView{DefaultProvider: defaultProvider, DefaultModel: defaultChatModel}, nil
	}
	if err != nil {
		return nil, err
	}
	return viewOf(stored), nil
}

func (s *SettingsService) Update(ctx context.Context, userID string, upd SettingsUpdate) (*SettingsView, error) {
	stored, err := s.settings.Get(ctx, userID)
	if appErr.IsNotFound(err) {
		stored = &model.AISettings{
			UserID:          userID,
			DefaultProvider: defaultProvider,
			DefaultModel:    defaultChatModel,
		}
	} else if err != nil {
		return nil, err
	}

	if upd.DefaultProvider != nil {
		if len(ai.ChatModelsFor(*upd.DefaultProvider)) == 0 {
			return nil, appErr.ErrInvalid
		}
		stored.DefaultProvider = *upd.DefaultProvider
	}
	if upd.DefaultModel != nil {
		stored.DefaultModel = *upd.DefaultModel
	}
	if !ai.SupportsChatModel(stored.DefaultProvider, stored.DefaultModel) {
		return nil, appErr.ErrInvalid
	}
	if err := s.applyKey(&stored.OpenAIKey, upd.OpenAIKey); err != nil {
		return nil, err
	}
	if err := s.applyKey(&stored.AnthropicKey, upd.AnthropicKey); err != nil {
		return nil, err
	}
	if err := s.applyKey(&stored.GoogleKey, upd.GoogleKey); err != nil {
		return nil, err
	}
	stored.UserID = userID
	stored.Mtime = time.Now().UnixMilli()
	if err := s.settings.Upsert(ctx, stored); err != nil {
		return nil, err
	}
	return viewOf(stored), nil
}

func (s *SettingsService) applyKey(dst *string, plaintext *string) error {
	if plaintext == nil {
		return nil
	}
	if *plaintext == "" {
		*dst = ""
		return nil
	}
	token, err := s.vault.Encrypt(*plaintext)
	if err != nil {
		return err
	}
	*dst = token
	return nil
}

// ResolveChat builds a chat client for the user's default provider and
// returns it with the chat model to use. No configured key yields
// ErrNoProvider; a corrupted key yields ErrIntegrity, never ErrNoProvider.
func (s *SettingsService) ResolveChat(ctx context.Context, userID string) (ai.IProvider, string, error) {
	stored, err := s.settings.Get(ctx, userID)
	if appErr.IsNotFound(err) {
		return nil, "", appErr.ErrNoProvider
	}
	if err != nil {
		return nil, "", err
	}
	token := keyTokenFor(stored, stored.DefaultProvider)
	if token == "" {
		return nil, "", appErr.ErrNoProvider
	}
	apiKey, err := s.vault.Decrypt(token)
	if err != nil {
		logutil.GetLogger(ctx).Error("provider credential failed integrity check",
			zap.String("user_id", userID), zap.String("provider", stored.DefaultProvider), zap.Error(err))
		return nil, "", err
	}
	provider, err := ai.NewProvider(stored.DefaultProvider, apiKey)
	if err != nil {
		return nil, "", err
	}
	chatModel := stored.DefaultModel
	if chatModel == "" {
		models := ai.ChatModelsFor(stored.DefaultProvider)
		if len(models) == 0 {
			return nil, "", fmt.Errorf("provider %s has no chat models: %w", stored.DefaultProvider, appErr.ErrInvalid)
		}
		chatModel = models[0]
	}
	if !ai.SupportsChatModel(stored.DefaultProvider, chatModel) {
		return nil, "", fmt.Errorf("model %s is not in the %s catalog: %w", chatModel, stored.DefaultProvider, appErr.ErrInvalid)
	}
	return provider, chatModel, nil
}

// ResolveEmbedder returns an embedding-capable client plus the embedding
// model name it uses. The default provider is preferred; configured
// fallbacks keep indexing alive when the default cannot embed.
func (s *SettingsService) ResolveEmbedder(ctx context.Context, userID string) (ai.IProvider, string, error) {
	stored, err := s.settings.Get(ctx, userID)
	if appErr.IsNotFound(err) {
		return nil, "", appErr.ErrNoProvider
	}
	if err != nil {
		return nil, "", err
	}
	order := make([]string, 0, 1+len(embedFallbackOrder))
	order = append(order, stored.DefaultProvider)
	for _, name := range embedFallbackOrder {
		if name != stored.DefaultProvider {
			order = append(order, name)
		}
	}
	for _, name := range order {
		embModel := ai.EmbeddingModelFor(name)
		if embModel == "" {
			continue
		}
		token := keyTokenFor(stored, name)
		if token == "" {
			continue
		}
		apiKey, err := s.vault.Decrypt(token)
		if err != nil {
			logutil.GetLogger(ctx).Error("provider credential failed integrity check",
				zap.String("user_id", userID), zap.String("provider", name), zap.Error(err))
			return nil, "", err
		}
		provider, err := ai.NewProvider(name, apiKey)
		if err != nil {
			return nil, "", err
		}
		return provider, embModel, nil
	}
	return nil, "", appErr.ErrNoProvider
}

func keyTokenFor(s *model.AISettings, provider string) string {
	switch provider {
	case "openai":
		return s.OpenAIKey
	case "anthropic":
		return s.AnthropicKey
	case "google":
		return s.GoogleKey
	}
	return ""
}
