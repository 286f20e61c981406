package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for M82.
// It merges file defaults and environment overrides to support both local
// and deployed runs. The two encryption keys and the card-service consumer
// pair have no defaults: their absence aborts startup.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	RedisURL     string
	KafkaBrokers []string

	ServerBaseURL string
	ProxyAddress  string

	CardAPIBaseURL     string
	CardConsumerKey    string
	CardConsumerSecret string

	AppEncryptionKey   string
	ProxyEncryptionKey string

	MaxFileSizeBytes      int64
	ProxySecretTTL        time.Duration
	CallbackRatePerSecond int
	CallbackBurst         int
	HTTPClientTimeout     time.Duration
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		RedisURL       string   `yaml:"redis_url"`
		KafkaBrokers   []string `yaml:"kafka_brokers"`
		CardAPIBaseURL string   `yaml:"card_api_base_url"`
		ProxyAddress   string   `yaml:"proxy_address"`
		ServerBaseURL  string   `yaml:"server_base_url"`
	} `yaml:"dependencies"`
	Editor struct {
		MaxFileSizeBytes      int64 `yaml:"max_file_size_bytes"`
		CallbackRatePerSecond int   `yaml:"callback_rate_per_second"`
	} `yaml:"editor"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:             "M82-Document-Editor-Service",
		HTTPPort:              8082,
		GRPCPort:              9092,
		RedisURL:              "redis://localhost:6379",
		CardAPIBaseURL:        "https://api.trello.com/1",
		MaxFileSizeBytes:      10 << 20,
		ProxySecretTTL:        80 * time.Second,
		CallbackRatePerSecond: 30,
		HTTPClientTimeout:     30 * time.Second,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.CardAPIBaseURL != "" {
			cfg.CardAPIBaseURL = f.Dependencies.CardAPIBaseURL
		}
		if f.Dependencies.ProxyAddress != "" {
			cfg.ProxyAddress = f.Dependencies.ProxyAddress
		}
		if f.Dependencies.ServerBaseURL != "" {
			cfg.ServerBaseURL = f.Dependencies.ServerBaseURL
		}
		if f.Editor.MaxFileSizeBytes > 0 {
			cfg.MaxFileSizeBytes = f.Editor.MaxFileSizeBytes
		}
		if f.Editor.CallbackRatePerSecond > 0 {
			cfg.CallbackRatePerSecond = f.Editor.CallbackRatePerSecond
		}
	}

	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.ServerBaseURL = envOrDefault("SERVER_HOST", cfg.ServerBaseURL)
	cfg.ProxyAddress = envOrDefault("PROXY_ADDRESS", cfg.ProxyAddress)
	cfg.CardAPIBaseURL = envOrDefault("CARD_API_BASE_URL", cfg.CardAPIBaseURL)
	cfg.CardConsumerKey = envOrDefault("TRELLO_API_KEY", cfg.CardConsumerKey)
	cfg.CardConsumerSecret = envOrDefault("TRELLO_API_SECRET", cfg.CardConsumerSecret)
	cfg.AppEncryptionKey = envOrDefault("APP_ENCRYPTION_KEY", cfg.AppEncryptionKey)
	cfg.ProxyEncryptionKey = envOrDefault("PROXY_ENCRYPTION_KEY", cfg.ProxyEncryptionKey)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxFileSizeBytes = int64(envInt("MAX_FILE_SIZE_BYTES", int(cfg.MaxFileSizeBytes)))
	cfg.ProxySecretTTL = time.Duration(envInt("PROXY_SECRET_TTL_SECONDS", int(cfg.ProxySecretTTL.Seconds()))) * time.Second
	cfg.CallbackRatePerSecond = envInt("CALLBACK_RATE_PER_SECOND", cfg.CallbackRatePerSecond)
	cfg.HTTPClientTimeout = time.Duration(envInt("HTTP_CLIENT_TIMEOUT_SECONDS", int(cfg.HTTPClientTimeout.Seconds()))) * time.Second
	cfg.CallbackBurst = envInt("CALLBACK_BURST", cfg.CallbackRatePerSecond)

	if cfg.AppEncryptionKey == "" {
		return Config{}, fmt.Errorf("missing APP_ENCRYPTION_KEY")
	}
	if cfg.ProxyEncryptionKey == "" {
		return Config{}, fmt.Errorf("missing PROXY_ENCRYPTION_KEY")
	}
	if cfg.CardConsumerKey == "" || cfg.CardConsumerSecret == "" {
		return Config{}, fmt.Errorf("missing TRELLO_API_KEY or TRELLO_API_SECRET")
	}
	if cfg.ServerBaseURL == "" {
		return Config{}, fmt.Errorf("missing SERVER_HOST")
	}
	if cfg.ProxyAddress == "" {
		return Config{}, fmt.Errorf("missing PROXY_ADDRESS")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := trimNonEmpty(strings.Split(raw, ","))
	if len(parts) == 0 {
		return fallback
	}
	return parts
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
