// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the chat transport, API keys, rate limiting, and cooldown durations.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Chat transport
	ConvoWSURL    string // Convo chat websocket URL
	CommandPrefix string // Slash command prefix (default: "/")

	// API keys
	GeminiAPIKey  string // Gemini API key for AI responses
	GroqAPIKey    string // Groq API key (fallback AI provider, optional)
	YouTubeAPIKey string // YouTube Data v3 API key
	OddsAPIKey    string // The Odds API key

	// Model configuration (optional, defaults apply if empty)
	GeminiModel string // Gemini model for AI responses
	GroqModel   string // Groq model for fallback AI responses

	// Observability
	BetterstackToken    string // Better Stack log shipping token (empty = disabled)
	BetterstackEndpoint string // Better Stack ingesting host
	SentryToken         string // Sentry/Better Stack error token (empty = disabled)
	SentryHost          string // Sentry ingesting host
	Environment         string // Deployment environment for error tracking

	// Admin server
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Bot behaviour (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	// Rate limiting (fixed window per user)
	RateLimitMaxRequests int           // Maximum commands per window (default: 5)
	RateLimitWindow      time.Duration // Window length; also the state sweep interval (default: 60s)

	// Cooldowns per action type
	GeneralCooldown  time.Duration // AI responses (default: 10s)
	VideoCooldown    time.Duration // YouTube search (default: 15s)
	CommandsCooldown time.Duration // Command listing (default: 5s)
	SportsCooldown   time.Duration // Sports reports; configured but not gated by the handler (default: 20s)

	// Input limits
	MaxPromptLength int // Maximum AI prompt length in characters (default: 1500)

	// Sports report shape
	MaxGamesPerReport int           // Games retained per report (default: 3)
	UpcomingWindow    time.Duration // How far ahead scheduled games are included (default: 24h)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		ConvoWSURL:    getEnv("CONVO_WS_URL", ""),
		CommandPrefix: getEnv("COMMAND_PREFIX", "/"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:    getEnv("GROQ_API_KEY", ""),
		YouTubeAPIKey: getEnv("YOUTUBE_API_KEY", ""),
		OddsAPIKey:    getEnv("ODDS_API_KEY", ""),

		GeminiModel: getEnv("GEMINI_MODEL", ""),
		GroqModel:   getEnv("GROQ_MODEL", ""),

		BetterstackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterstackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),
		SentryToken:         getEnv("SENTRY_TOKEN", ""),
		SentryHost:          getEnv("SENTRY_HOST", ""),
		Environment:         getEnv("ENVIRONMENT", "production"),

		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", GracefulShutdown),

		Bot: BotConfig{
			RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 5),
			RateLimitWindow:      getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			GeneralCooldown:      getDurationEnv("GENERAL_COOLDOWN", 10*time.Second),
			VideoCooldown:        getDurationEnv("VIDEO_COOLDOWN", 15*time.Second),
			CommandsCooldown:     getDurationEnv("COMMANDS_COOLDOWN", 5*time.Second),
			SportsCooldown:       getDurationEnv("SPORTS_COOLDOWN", 20*time.Second),
			MaxPromptLength:      getIntEnv("MAX_PROMPT_LENGTH", 1500),
			MaxGamesPerReport:    getIntEnv("MAX_GAMES_PER_REPORT", 3),
			UpcomingWindow:       getDurationEnv("UPCOMING_WINDOW", 24*time.Hour),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.ConvoWSURL == "" {
		errs = append(errs, errors.New("CONVO_WS_URL is required"))
	}
	if c.CommandPrefix == "" {
		errs = append(errs, errors.New("COMMAND_PREFIX is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.GeminiAPIKey == "" && c.GroqAPIKey == "" {
		errs = append(errs, errors.New("at least one of GEMINI_API_KEY or GROQ_API_KEY is required"))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks bot behaviour values for sanity
func (c *BotConfig) Validate() error {
	var errs []error

	if c.RateLimitMaxRequests <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive, got %d", c.RateLimitMaxRequests))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.RateLimitWindow))
	}
	for name, d := range map[string]time.Duration{
		"GENERAL_COOLDOWN":  c.GeneralCooldown,
		"VIDEO_COOLDOWN":    c.VideoCooldown,
		"COMMANDS_COOLDOWN": c.CommandsCooldown,
		"SPORTS_COOLDOWN":   c.SportsCooldown,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.MaxPromptLength <= 0 {
		errs = append(errs, fmt.Errorf("MAX_PROMPT_LENGTH must be positive, got %d", c.MaxPromptLength))
	}
	if c.MaxGamesPerReport <= 0 {
		errs = append(errs, fmt.Errorf("MAX_GAMES_PER_REPORT must be positive, got %d", c.MaxGamesPerReport))
	}
	if c.UpcomingWindow <= 0 {
		errs = append(errs, fmt.Errorf("UPCOMING_WINDOW must be positive, got %v", c.UpcomingWindow))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasFallbackProvider returns true if a fallback AI provider is configured.
func (c *Config) HasFallbackProvider() bool {
	return c.GeminiAPIKey != "" && c.GroqAPIKey != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
