package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
)

type anthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type anthropicChatRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

func (p *anthropicProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, ErrEmbeddingUnsupported
}

func (p *anthropicProvider) ChatStream(ctx context.Context, model string, system string, messages []Message) (*Stream, error) {
	reqBody := anthropicChatRequest{
		Model:     model,
		MaxTokens: anthropicMaxTokens,
		System:    system,
		Messages:  messages,
		Stream:    true,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	s := newStream()
	go func() {
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" {
				continue
			}
			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				continue
			}
			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text == "" {
					continue
				}
				if !s.emit(ctx, event.Delta.Text) {
					s.finish(ctx.Err())
					return
				}
			case "error":
				s.finish(fmt.Errorf("anthropic stream error: %s: %s", event.Error.Type, event.Error.Message))
				return
			case "message_stop":
				s.finish(nil)
				return
			}
		}
		// Cancelled reads surface as scanner errors; prefer the context
		// error so callers see cancellation, not a transport detail.
		if ctx.Err() != nil {
			s.finish(ctx.Err())
			return
		}
		if err := scanner.Err(); err != nil {
			s.finish(err)
			return
		}
		// A clean connection close without message_stop means the reply
		// was cut short; a truncated stream must not read as success.
		s.finish(fmt.Errorf("anthropic stream ended before message_stop"))
	}()
	return s, nil
}

func createAnthropicFactory(apiKey string) (IProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &anthropicProvider{
		apiKey:  apiKey,
		baseURL: defaultAnthropicBaseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func init() {
	Register("anthropic", createAnthropicFactory)
}
