package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type googleProvider struct {
	apiKey string
}

func (p *googleProvider) Name() string {
	return "google"
}

func (p *googleProvider) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func (p *googleProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	client, err := p.newClient(ctx)
	if err != nil {
		return nil, err
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: t}}})
	}
	resp, err := client.Models.EmbedContent(ctx, EmbeddingModelFor("google"), contents, nil)
	if err != nil {
		return nil, fmt.Errorf("google embeddings: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("google embeddings: got %d vectors for %d inputs", len(resp.Embeddings), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("google embeddings: empty vector at index %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (p *googleProvider) ChatStream(ctx context.Context, model string, system string, messages []Message) (*Stream, error) {
	client, err := p.newClient(ctx)
	if err != nil {
		return nil, err
	}
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}
	s := newStream()
	go func() {
		for resp, err := range client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				s.finish(fmt.Errorf("google chat stream: %w", err))
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !s.emit(ctx, text) {
				s.finish(ctx.Err())
				return
			}
		}
		s.finish(nil)
	}()
	return s, nil
}

func createGoogleFactory(apiKey string) (IProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required")
	}
	return &googleProvider{apiKey: apiKey}, nil
}

func init() {
	Register("google", createGoogleFactory)
}
