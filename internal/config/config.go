package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Identity tokens are issued by the hosted auth backend and signed with
	// its shared JWT secret.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	DemoMode  bool   `mapstructure:"DEMO_MODE"`

	GeminiAPIKey      string        `mapstructure:"GEMINI_API_KEY"`
	GeminiBaseURL     string        `mapstructure:"GEMINI_BASE_URL"`
	GeminiModel       string        `mapstructure:"GEMINI_MODEL"`
	CompletionTimeout time.Duration `mapstructure:"COMPLETION_TIMEOUT"`

	TelegramToken  string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	CareTeamChatID int64  `mapstructure:"CARE_TEAM_CHAT_ID"`
	ReportFontPath string `mapstructure:"REPORT_FONT_PATH"`

	CORSOrigins         []string      `mapstructure:"-"`
	RateLimitRPS        float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	DBConnectRetries    int           `mapstructure:"DB_CONNECT_RETRIES"`
	ShutdownGracePeriod time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"`
}

var keys = []string{
	"PORT",
	"ENV",
	"DATABASE_URL",
	"JWT_SECRET",
	"DEMO_MODE",
	"GEMINI_API_KEY",
	"GEMINI_BASE_URL",
	"GEMINI_MODEL",
	"COMPLETION_TIMEOUT",
	"TELEGRAM_BOT_TOKEN",
	"CARE_TEAM_CHAT_ID",
	"REPORT_FONT_PATH",
	"CORS_ORIGINS",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"DB_CONNECT_RETRIES",
	"SHUTDOWN_GRACE_PERIOD",
}

// Load reads configuration from the environment and an optional .env file in
// the working directory. Every key has a default, so an empty environment
// yields a runnable demo configuration backed by in-memory stores.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DEMO_MODE", true)
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("COMPLETION_TIMEOUT", "30s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("DB_CONNECT_RETRIES", 10)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("COMPLETION_TIMEOUT must be positive, got %s", c.CompletionTimeout)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasDatabase reports whether a Postgres connection string was configured.
// Without one the service keeps all state in memory.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
