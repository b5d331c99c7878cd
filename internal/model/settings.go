package model

// AISettings holds a user's provider choice and encrypted API keys. Key
// fields carry vault tokens, never plaintext; at most one active key per
// provider per user.
type AISettings struct {
	UserID          string `json:"user_id"`
	DefaultProvider string `json:"default_provider"`
	DefaultModel    string `json:"default_model"`
	OpenAIKey       string `json:"-"`
	AnthropicKey    string `json:"-"`
	GoogleKey       string `json:"-"`
	Mtime           int64  `json:"mtime"`
}
