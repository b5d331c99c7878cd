package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port         int              `json:"port"`
	JWTSecret    string           `json:"jwt_secret"`
	Database     DatabaseConfig   `json:"database"`
	Encryption   EncryptionConfig `json:"encryption"`
	LogConfig    logger.LogConfig `json:"log_config"`
	CORSOrigins  []string         `json:"cors_origins"`
	ResyncCron   string           `json:"resync_cron"`
	ResyncBatch  int              `json:"resync_batch"`
	SearchTopK   int              `json:"search_top_k"`
	AIWindowMS   int              `json:"ai_window_ms"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// EncryptionConfig feeds the credential vault. Either a raw 256-bit hex key
// or a passphrase+salt pair must be present; absence is fatal at startup.
type EncryptionConfig struct {
	Key        string `json:"key"`
	Passphrase string `json:"passphrase"`
	Salt       string `json:"salt"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Encryption.Key == "" && cfg.Encryption.Passphrase == "" {
		return nil, fmt.Errorf("encryption.key or encryption.passphrase is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.ResyncCron == "" {
		cfg.ResyncCron = "*/10 * * * *"
	}
	if cfg.ResyncBatch <= 0 {
		cfg.ResyncBatch = 50
	}
	if cfg.SearchTopK <= 0 {
		cfg.SearchTopK = 10
	}
	if cfg.AIWindowMS <= 0 {
		cfg.AIWindowMS = 500
	}
	return &cfg, nil
}
