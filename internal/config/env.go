package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// GatewayConfig configures the local AI gateway provider.
type GatewayConfig struct {
    URL      string
    Provider string
    Model    string
    Enabled  bool
}

// OpenAIConfig configures the first-party image API provider.
type OpenAIConfig struct {
    URL    string
    APIKey string
    Model  string
}

// StabilityConfig configures the Stability AI provider.
type StabilityConfig struct {
    APIKey string
    Model  string
}

// GenerationConfig holds the shared retry/timeout policy for all providers.
type GenerationConfig struct {
    Timeout       time.Duration
    RetryAttempts int
    RetryDelay    time.Duration
}

// StorageConfig selects where generated image bytes are kept.
type StorageConfig struct {
    Backend            string // "local" | "s3"
    LocalDir           string
    S3Bucket           string
    EncryptionPassword string // optional; empty stores plaintext
}

// Config is the top-level configuration. The zero-env case must produce a
// system that runs entirely on the mock provider with local storage.
type Config struct {
    Logging    LoggingConfig
    Axiom      AxiomConfig
    Gateway    GatewayConfig
    OpenAI     OpenAIConfig
    Stability  StabilityConfig
    Generation GenerationConfig
    Storage    StorageConfig
    RedisURL   string // empty means in-memory status store
    Port       string
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/imagegen.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_imagegen",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.Gateway = GatewayConfig{
        URL:      getEnv("AI_GATEWAY_URL", "http://localhost:9999"),
        Provider: getEnv("AI_GATEWAY_PROVIDER", "openai"),
        Model:    getEnv("AI_GATEWAY_MODEL", "dall-e-3"),
        Enabled:  parseBool(getEnv("AI_GATEWAY_ENABLED", "0")),
    }

    cfg.OpenAI = OpenAIConfig{
        URL:    getEnv("OPENAI_API_URL", "https://api.openai.com/v1/images/generations"),
        APIKey: getEnv("OPENAI_API_KEY", ""),
        Model:  getEnv("OPENAI_MODEL", "dall-e-3"),
    }

    cfg.Stability = StabilityConfig{
        APIKey: getEnv("STABILITY_API_KEY", ""),
        Model:  getEnv("STABILITY_MODEL", "stable-diffusion-xl-1024-v1-0"),
    }

    cfg.Generation = GenerationConfig{
        Timeout:       parseDuration(getEnv("GENERATION_TIMEOUT", "60s"), 60*time.Second),
        RetryAttempts: parseInt(getEnv("GENERATION_RETRY_ATTEMPTS", "3"), 3),
        RetryDelay:    parseDuration(getEnv("GENERATION_RETRY_DELAY", "1s"), time.Second),
    }

    cfg.Storage = StorageConfig{
        Backend:            strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
        LocalDir:           getEnv("STORAGE_LOCAL_DIR", "data/designs"),
        S3Bucket:           getEnv("S3_BUCKET", ""),
        EncryptionPassword: getEnv("STORAGE_ENCRYPTION_PASSWORD", ""),
    }

    cfg.RedisURL = getEnv("REDIS_URL", "")
    cfg.Port = getEnv("PORT", "8080")

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
