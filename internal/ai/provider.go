package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmbeddingUnsupported is returned by providers that have no embedding
// endpoint (anthropic). Callers treat it like a missing embedder, not a
// request failure.
var ErrEmbeddingUnsupported = errors.New("provider does not support embeddings")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IProvider is a per-request client built from a decrypted API key. It holds
// no persistent state.
type IProvider interface {
	Name() string
	// EmbedBatch embeds texts with the provider's fixed embedding model and
	// returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// ChatStream starts a streamed completion. Fragments arrive on the
	// returned Stream; provider failures terminate it with an error.
	ChatStream(ctx context.Context, model string, system string, messages []Message) (*Stream, error)
}

type ProviderFactory func(apiKey string) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, apiKey string) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(apiKey)
}

// Fixed model catalogs per provider. Model choice is constrained to these;
// embedding models are not user-selectable at all.
var chatModelCatalog = map[string][]string{
	"openai":    {"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"},
	"anthropic": {"claude-sonnet-4-20250514", "claude-haiku-4-20250414", "claude-3-5-sonnet-20241022"},
	"google":    {"gemini-2.0-flash", "gemini-1.5-pro", "gemini-1.5-flash"},
}

var embeddingModelCatalog = map[string]string{
	"openai": "text-embedding-3-small",
	"google": "text-embedding-004",
}

func ChatModelsFor(name string) []string {
	return chatModelCatalog[strings.ToLower(strings.TrimSpace(name))]
}

// EmbeddingModelFor returns "" for providers without an embedding endpoint.
func EmbeddingModelFor(name string) string {
	return embeddingModelCatalog[strings.ToLower(strings.TrimSpace(name))]
}

func SupportsChatModel(name, model string) bool {
	for _, m := range ChatModelsFor(name) {
		if m == model {
			return true
		}
	}
	return false
}

// Catalog returns the selectable chat models keyed by provider name.
func Catalog() map[string][]string {
	out := make(map[string][]string, len(chatModelCatalog))
	for name, models := range chatModelCatalog {
		out[name] = append([]string(nil), models...)
	}
	return out
}
