package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Gateway   GatewayConfig   `yaml:"gateway" mapstructure:"gateway"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Geo       GeoConfig       `yaml:"geo" mapstructure:"geo"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistent key-value slot that holds the lead list.
type StoreConfig struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	Dir         string      `yaml:"dir" mapstructure:"dir"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	LeadsKey    string      `yaml:"leads_key" mapstructure:"leads_key"`
	Redis       RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// GatewayConfig routes completion calls to providers and models.
type GatewayConfig struct {
	DiscoveryProvider   string  `yaml:"discovery_provider" mapstructure:"discovery_provider"`
	StructuringProvider string  `yaml:"structuring_provider" mapstructure:"structuring_provider"`
	DiscoveryModel      string  `yaml:"discovery_model" mapstructure:"discovery_model"`
	StructuringModel    string  `yaml:"structuring_model" mapstructure:"structuring_model"`
	ProposalModel       string  `yaml:"proposal_model" mapstructure:"proposal_model"`
	RequestsPerSecond   float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	TimeoutSecs         int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`

	// Temperature applies to structured completions. Nil keeps each
	// provider's default.
	Temperature *float64 `yaml:"temperature,omitempty" mapstructure:"temperature"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeoConfig configures the best-effort location probe.
type GeoConfig struct {
	GoogleKey   string  `yaml:"google_key" mapstructure:"google_key"`
	TimeoutSecs float64 `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the probe bound as a duration.
func (g GeoConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs * float64(time.Second))
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// File, when set, duplicates log output to a rotated file.
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets have empty defaults so AutomaticEnv can bind them on Unmarshal.
	for _, key := range []string{
		"gemini.key", "anthropic.key", "openai.key", "geo.google_key",
		"store.database_url", "store.redis.password", "log.file",
	} {
		v.SetDefault(key, "")
	}

	// Optional with no default; bound so the env var still applies.
	if err := v.BindEnv("gateway.temperature"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}

	// Defaults
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.dir", defaultDataDir())
	v.SetDefault("store.leads_key", "leads")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("gateway.discovery_provider", "gemini")
	v.SetDefault("gateway.structuring_provider", "gemini")
	v.SetDefault("gateway.discovery_model", "gemini-2.5-flash")
	v.SetDefault("gateway.structuring_model", "gemini-3-flash-preview")
	v.SetDefault("gateway.proposal_model", "gemini-3-flash-preview")
	v.SetDefault("gateway.requests_per_second", 2.0)
	v.SetDefault("gateway.timeout_secs", 120)
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("geo.timeout_secs", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command depends on are present.
func (c *Config) Validate(command string) error {
	var missing []string

	switch c.Store.Driver {
	case "file", "sqlite":
		if c.Store.Dir == "" {
			missing = append(missing, "store.dir")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			missing = append(missing, "store.redis.addr")
		}
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	switch command {
	case "search":
		missing = append(missing, c.providerKeyMissing(c.Gateway.DiscoveryProvider)...)
		missing = append(missing, c.providerKeyMissing(c.Gateway.StructuringProvider)...)
	case "proposal":
		missing = append(missing, c.providerKeyMissing(c.Gateway.StructuringProvider)...)
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port")
		}
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings for %s: %s", command, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) providerKeyMissing(provider string) []string {
	switch provider {
	case "gemini":
		if c.Gemini.Key == "" {
			return []string{"gemini.key"}
		}
	case "anthropic":
		if c.Anthropic.Key == "" {
			return []string{"anthropic.key"}
		}
	case "openai":
		if c.OpenAI.Key == "" {
			return []string{"openai.key"}
		}
	default:
		return []string{"gateway provider " + provider + " (unknown)"}
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/lead-cli"
	}
	return ".lead-cli"
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}

	if cfg.File != "" {
		rotated := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		})
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), rotated, zapCfg.Level)
		logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	zap.ReplaceGlobals(logger)

	return nil
}
