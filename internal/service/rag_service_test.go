package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/ainote/internal/ai"
	"github.com/xxxsen/ainote/internal/model"
)

func TestBuildContextKeepsRankOrder(t *testing.T) {
	results := []model.SimilarityResult{
		{NoteTitle: "First", Content: "alpha", Similarity: 0.91},
		{NoteTitle: "Second", Content: "beta", Similarity: 0.72},
		{NoteTitle: "Third", Content: "gamma", Similarity: 0.55},
	}
	out := buildContext(results)
	require.Less(t, strings.Index(out, "alpha"), strings.Index(out, "beta"))
	require.Less(t, strings.Index(out, "beta"), strings.Index(out, "gamma"))
	require.Contains(t, out, "[Note: First] (similarity: 91.0%)")
	require.Equal(t, 3, strings.Count(out, "[Note:"))
	require.Equal(t, 2, strings.Count(out, contextSeparator))
}

func TestBuildContextEmptyRetrieval(t *testing.T) {
	require.Equal(t, emptyContextNotice, buildContext(nil))
	require.Equal(t, emptyContextNotice, buildContext([]model.SimilarityResult{}))
}

func TestAssembleOrdering(t *testing.T) {
	history := []ai.Message{
		{Role: ai.RoleUser, Content: "earlier question"},
		{Role: ai.RoleAssistant, Content: "earlier answer"},
	}
	system, messages := assemble(nil, history, "current question")

	require.Contains(t, system, emptyContextNotice)
	require.Len(t, messages, 3)
	require.Equal(t, "earlier question", messages[0].Content)
	require.Equal(t, "earlier answer", messages[1].Content)
	require.Equal(t, ai.RoleUser, messages[2].Role)
	require.Equal(t, "current question", messages[2].Content)
}

func TestAssembleInjectsRetrievedContent(t *testing.T) {
	results := []model.SimilarityResult{
		{NoteTitle: "Plan", Content: "ship in March", Similarity: 0.8},
	}
	system, messages := assemble(results, nil, "when do we ship?")
	require.Contains(t, system, "ship in March")
	require.NotContains(t, system, "when do we ship?")
	require.Len(t, messages, 1)
}
