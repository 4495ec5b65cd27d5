package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Session    SessionConfig
	Providers  ProvidersConfig
	Extraction ExtractionConfig
	Media      MediaConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type ProvidersConfig struct {
	OpenAIKey     string
	PerplexityKey string
	GeminiKey     string
	AnthropicKey  string

	// Which provider backs each capability.
	Text   string
	Vision string
	Media  string

	TextModel   string
	VisionModel string

	RequestTimeout time.Duration
}

type ExtractionConfig struct {
	// Minimum trimmed length of PDF text-layer output before the vision
	// fallback is skipped.
	MinPDFText int
	// When true, the PDF text must also contain at least one
	// ingredient/instruction marker to count as recipe-like.
	RequireKeywords bool
}

type MediaConfig struct {
	ImageModel   string
	VideoModel   string
	CraftModel   string
	PollInterval time.Duration
	MaxPolls     int
	JobTimeout   time.Duration
	ResultTTL    time.Duration
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionTTL, err := getEnvDuration("SESSION_TTL", 12*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	requestTimeout, err := getEnvDuration("PROVIDER_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}

	minPDFText, err := getEnvInt("EXTRACT_MIN_PDF_TEXT", 150)
	if err != nil {
		return nil, fmt.Errorf("invalid EXTRACT_MIN_PDF_TEXT: %w", err)
	}

	pollInterval, err := getEnvDuration("MEDIA_POLL_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIA_POLL_INTERVAL: %w", err)
	}

	maxPolls, err := getEnvInt("MEDIA_MAX_POLLS", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIA_MAX_POLLS: %w", err)
	}

	jobTimeout, err := getEnvDuration("MEDIA_JOB_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIA_JOB_TIMEOUT: %w", err)
	}

	resultTTL, err := getEnvDuration("MEDIA_RESULT_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIA_RESULT_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
			TTL:    sessionTTL,
		},
		Providers: ProvidersConfig{
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			PerplexityKey:  getEnv("PERPLEXITY_API_KEY", ""),
			GeminiKey:      getEnv("GEMINI_API_KEY", ""),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			Text:           getEnv("PROVIDER_TEXT", "perplexity"),
			Vision:         getEnv("PROVIDER_VISION", "gemini"),
			Media:          getEnv("PROVIDER_MEDIA", "gemini"),
			TextModel:      getEnv("PROVIDER_TEXT_MODEL", ""),
			VisionModel:    getEnv("PROVIDER_VISION_MODEL", ""),
			RequestTimeout: requestTimeout,
		},
		Extraction: ExtractionConfig{
			MinPDFText:      minPDFText,
			RequireKeywords: getEnvBool("EXTRACT_REQUIRE_KEYWORDS", true),
		},
		Media: MediaConfig{
			ImageModel:   getEnv("MEDIA_IMAGE_MODEL", ""),
			VideoModel:   getEnv("MEDIA_VIDEO_MODEL", ""),
			CraftModel:   getEnv("MEDIA_CRAFT_MODEL", ""),
			PollInterval: pollInterval,
			MaxPolls:     maxPolls,
			JobTimeout:   jobTimeout,
			ResultTTL:    resultTTL,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Session.Secret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.Providers.OpenAIKey == "" && c.Providers.PerplexityKey == "" &&
		c.Providers.GeminiKey == "" && c.Providers.AnthropicKey == "" {
		missing = append(missing, "at least one provider API key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
