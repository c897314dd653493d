package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	NATSURL          string
	EventSubjectBase string
	ModelCacheTTL    time.Duration

	// AI grading client settings. An empty provider disables AI grading and
	// every subjective question defers to manual review.
	AIProvider       string
	AIModel          string
	AIBaseURL        string
	AIAPIKey         string
	AIAppReferer     string
	AIAppTitle       string
	AIMaxTokens      int
	AITemperature    float64
	AIRequestTimeout time.Duration
	AIConnectTimeout time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIEnabled reports whether an AI provider is configured.
func (c Config) AIEnabled() bool {
	return c.AIProvider != "" && c.AIModel != ""
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Gradeflow API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.subject_base", "gradeflow.grading")
	v.SetDefault("model.cache_ttl", "5m")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.request_timeout", "3m")
	v.SetDefault("ai.connect_timeout", "30s")

	cacheTTL, err := time.ParseDuration(v.GetString("model.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid model cache ttl: %w", err)
	}

	requestTimeout, err := time.ParseDuration(v.GetString("ai.request_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai request timeout: %w", err)
	}

	connectTimeout, err := time.ParseDuration(v.GetString("ai.connect_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai connect timeout: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		NATSURL:          v.GetString("nats.url"),
		EventSubjectBase: v.GetString("events.subject_base"),
		ModelCacheTTL:    cacheTTL,
		AIProvider:       strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		AIModel:          v.GetString("ai.model"),
		AIBaseURL:        v.GetString("ai.base_url"),
		AIAPIKey:         v.GetString("ai.api_key"),
		AIAppReferer:     v.GetString("ai.app_referer"),
		AIAppTitle:       v.GetString("ai.app_title"),
		AIMaxTokens:      v.GetInt("ai.max_tokens"),
		AITemperature:    v.GetFloat64("ai.temperature"),
		AIRequestTimeout: requestTimeout,
		AIConnectTimeout: connectTimeout,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 1024
	}

	return cfg, nil
}
