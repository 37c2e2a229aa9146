package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config represents runtime configuration for the service. Everything is read
// from the environment; a .env file in the working directory is honored when
// present so local runs don't need exported variables.
type Config struct {
	Host  string `env:"HOST" env-default:"0.0.0.0"`
	Port  int    `env:"PORT" env-default:"8000"`
	Debug bool   `env:"DEBUG" env-default:"false"`

	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"https://truth-finder-ai.vercel.app,http://localhost:3000"`

	Model    ModelConfig
	Search   SearchConfig
	Twitter  TwitterConfig
	Supabase SupabaseConfig
	Database DatabaseConfig
}

// ModelConfig selects and authenticates the chat-model provider.
type ModelConfig struct {
	Provider string `env:"MODEL_PROVIDER" env-default:"gemini"`
	Name     string `env:"MODEL_NAME" env-default:"gemini-2.5-flash"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	// GOOGLE_API_KEY is the older name for the same credential; GEMINI_API_KEY
	// wins when both are set.
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

// GeminiKey resolves the Gemini credential from either accepted variable.
func (m ModelConfig) GeminiKey() string {
	if m.GeminiAPIKey != "" {
		return m.GeminiAPIKey
	}
	return m.GoogleAPIKey
}

// SearchConfig authenticates Google Programmable Search. When unset, web
// search falls back to DuckDuckGo, which needs no credential.
type SearchConfig struct {
	APIKey   string `env:"GOOGLE_SEARCH_API_KEY"`
	EngineID string `env:"GOOGLE_SEARCH_ENGINE_ID"`
}

type TwitterConfig struct {
	BearerToken   string `env:"TWITTER_BEARER_TOKEN"`
	MaxTweets     int    `env:"MAX_TWEETS_PER_REQUEST" env-default:"50"`
	DefaultTweets int    `env:"DEFAULT_TWEETS_COUNT" env-default:"10"`
}

// TweetCount returns the per-request tweet sample size, capped by the
// operator-set maximum.
func (t TwitterConfig) TweetCount() int {
	if t.MaxTweets > 0 && t.DefaultTweets > t.MaxTweets {
		return t.MaxTweets
	}
	return t.DefaultTweets
}

// SupabaseConfig points chat-history persistence at a hosted Supabase
// project. When both fields are set the REST backend is used instead of a
// direct SQL connection.
type SupabaseConfig struct {
	URL string `env:"SUPABASE_URL"`
	Key string `env:"SUPABASE_KEY"`
}

func (s SupabaseConfig) Configured() bool {
	return s.URL != "" && s.Key != ""
}

// DatabaseConfig configures the direct SQL backend. Driver is one of
// sqlite3, postgres, mysql.
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" env-default:"sqlite3"`
	URL        string `env:"DATABASE_URL"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"truthfinder.db"`

	MySQLHost     string `env:"MYSQL_HOST" env-default:"127.0.0.1"`
	MySQLPort     int    `env:"MYSQL_PORT" env-default:"3306"`
	MySQLUser     string `env:"MYSQL_USER" env-default:"root"`
	MySQLPassword string `env:"MYSQL_PASSWORD"`
	MySQLName     string `env:"MYSQL_DATABASE" env-default:"truthfinder"`
	MySQLParams   string `env:"MYSQL_PARAMS" env-default:"parseTime=true&charset=utf8mb4&loc=UTC"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.Model.Provider = strings.ToLower(strings.TrimSpace(cfg.Model.Provider))
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	switch cfg.Model.Provider {
	case "gemini", "openai", "claude":
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Model.Provider)
	}

	if cfg.Database.Driver == "postgres" && !cfg.Supabase.Configured() && cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set when DB_DRIVER=postgres")
	}

	return &cfg, nil
}

// Addr is the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
