package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings for the FindMyAI services
type Config struct {
	Environment string

	Server struct {
		Port        string
		CORSOrigins []string
	}

	Database struct {
		Driver   string // "postgres" or "sqlite"
		URL      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		Path     string // sqlite file path
	}

	Log struct {
		Level string
		File  string
	}

	Redis struct {
		URL string
	}

	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}

	Trending struct {
		Enabled  bool
		Interval time.Duration
	}

	Import struct {
		SourceTimeout   time.Duration
		EnrichTimeout   time.Duration
		PageTimeout     time.Duration
		EnrichEnabled   bool
		EnrichPerMinute int
		LockTTL         time.Duration
		GitHubToken     string
		HuggingFaceURL  string
		OpenRouterURL   string
		GitHubURL       string
		MaxPerSource    int
	}

	AI struct {
		Provider string // "openai", "gemini" or "none"
		APIKey   string
		Model    string
		BaseURL  string
	}

	Search struct {
		ElasticsearchURL string
	}

	Storage struct {
		Region     string
		LogoBucket string
		CDNBaseURL string
	}

	Telemetry struct {
		Enabled      bool
		OTLPEndpoint string
		SamplingRate float64
	}

	// RequiredServices lists optional backends whose absence fails startup
	// (redis, elasticsearch, s3, ai)
	RequiredServices []string
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads .env (if present) and environment variables into a Config.
// Environment keys follow the dotted key with dots replaced by underscores,
// e.g. database.url -> DATABASE_URL.
func Load() (*Config, error) {
	// .env is optional; system environment wins
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	cfg.Environment = v.GetString("environment")

	cfg.Server.Port = v.GetString("port")
	cfg.Server.CORSOrigins = splitList(v.GetString("cors.origins"))

	cfg.Database.Driver = v.GetString("database.driver")
	cfg.Database.URL = v.GetString("database.url")
	cfg.Database.Host = v.GetString("db.host")
	cfg.Database.Port = v.GetString("db.port")
	cfg.Database.User = v.GetString("db.user")
	cfg.Database.Password = v.GetString("db.password")
	cfg.Database.Name = v.GetString("db.name")
	cfg.Database.SSLMode = v.GetString("db.sslmode")
	cfg.Database.Path = v.GetString("sqlite.path")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.File = v.GetString("log.file")

	cfg.Redis.URL = v.GetString("redis.url")

	cfg.Auth.JWTSecret = v.GetString("jwt.secret")
	cfg.Auth.TokenTTL = v.GetDuration("jwt.ttl")

	cfg.Trending.Enabled = v.GetBool("trending.enabled")
	cfg.Trending.Interval = v.GetDuration("trending.interval")

	cfg.Import.SourceTimeout = v.GetDuration("import.source_timeout")
	cfg.Import.EnrichTimeout = v.GetDuration("import.enrich_timeout")
	cfg.Import.PageTimeout = v.GetDuration("import.page_timeout")
	cfg.Import.EnrichEnabled = v.GetBool("import.enrich")
	cfg.Import.EnrichPerMinute = v.GetInt("import.enrich_per_minute")
	cfg.Import.LockTTL = v.GetDuration("import.lock_ttl")
	cfg.Import.GitHubToken = v.GetString("github.token")
	cfg.Import.HuggingFaceURL = v.GetString("import.huggingface_url")
	cfg.Import.OpenRouterURL = v.GetString("import.openrouter_url")
	cfg.Import.GitHubURL = v.GetString("import.github_url")
	cfg.Import.MaxPerSource = v.GetInt("import.max_per_source")

	cfg.AI.Provider = strings.ToLower(v.GetString("ai.provider"))
	cfg.AI.APIKey = v.GetString("ai.api_key")
	cfg.AI.Model = v.GetString("ai.model")
	cfg.AI.BaseURL = v.GetString("ai.base_url")

	cfg.Search.ElasticsearchURL = v.GetString("elasticsearch.url")

	cfg.Storage.Region = v.GetString("aws.region")
	cfg.Storage.LogoBucket = v.GetString("logo.bucket")
	cfg.Storage.CDNBaseURL = v.GetString("cdn.base_url")

	cfg.Telemetry.Enabled = v.GetBool("otel.enabled")
	cfg.Telemetry.OTLPEndpoint = v.GetString("otel.endpoint")
	cfg.Telemetry.SamplingRate = v.GetFloat64("otel.sampling_rate")

	cfg.RequiredServices = splitList(strings.ToLower(v.GetString("required.services")))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList parses a comma-separated setting, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("cors.origins", "*")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.name", "findmyai")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("sqlite.path", "findmyai.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "server.log")

	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("trending.enabled", true)
	v.SetDefault("trending.interval", time.Hour)

	v.SetDefault("import.source_timeout", 30*time.Second)
	v.SetDefault("import.enrich_timeout", 60*time.Second)
	v.SetDefault("import.page_timeout", 10*time.Second)
	v.SetDefault("import.enrich", true)
	v.SetDefault("import.enrich_per_minute", 20)
	v.SetDefault("import.lock_ttl", 2*time.Hour)
	v.SetDefault("import.huggingface_url", "https://huggingface.co")
	v.SetDefault("import.openrouter_url", "https://openrouter.ai")
	v.SetDefault("import.github_url", "https://api.github.com")
	v.SetDefault("import.max_per_source", 50)

	v.SetDefault("ai.provider", "none")
	v.SetDefault("ai.model", "")

	v.SetDefault("aws.region", "us-east-1")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4318")
	v.SetDefault("otel.sampling_rate", 0.1)
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", cfg.Database.Driver)
	}
	switch cfg.AI.Provider {
	case "openai", "gemini", "none":
	default:
		return fmt.Errorf("ai.provider must be openai, gemini or none, got %q", cfg.AI.Provider)
	}
	if cfg.AI.Provider != "none" && cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.provider is %s", cfg.AI.Provider)
	}
	if cfg.IsProduction() && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	for _, svc := range cfg.RequiredServices {
		switch svc {
		case "redis", "elasticsearch", "s3", "ai":
		default:
			return fmt.Errorf("required.services: unknown service %q", svc)
		}
	}
	if cfg.Trending.Interval <= 0 {
		return fmt.Errorf("trending.interval must be positive")
	}
	return nil
}
