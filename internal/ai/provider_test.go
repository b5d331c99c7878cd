package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProviderUnknownName(t *testing.T) {
	_, err := NewProvider("petals", "key")
	require.Error(t, err)
	_, err = NewProvider("", "key")
	require.Error(t, err)
}

func TestNewProviderRequiresKey(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "google"} {
		_, err := NewProvider(name, "")
		require.Error(t, err, name)
	}
}

func TestNewProviderKnownNames(t *testing.T) {
	for _, name := range []string{"openai", "ANTHROPIC", " google "} {
		p, err := NewProvider(name, "test-key")
		require.NoError(t, err, name)
		require.NotNil(t, p)
	}
}

func TestCatalogShapes(t *testing.T) {
	require.NotEmpty(t, ChatModelsFor("openai"))
	require.NotEmpty(t, ChatModelsFor("anthropic"))
	require.NotEmpty(t, ChatModelsFor("google"))
	require.Empty(t, ChatModelsFor("petals"))

	require.Equal(t, "text-embedding-3-small", EmbeddingModelFor("openai"))
	require.Equal(t, "text-embedding-004", EmbeddingModelFor("google"))
	require.Equal(t, "", EmbeddingModelFor("anthropic"))

	require.True(t, SupportsChatModel("openai", "gpt-4o-mini"))
	require.False(t, SupportsChatModel("openai", "gpt-2"))
}

func TestCatalogIsACopy(t *testing.T) {
	c := Catalog()
	c["openai"][0] = "mutated"
	require.NotEqual(t, "mutated", ChatModelsFor("openai")[0])
}
