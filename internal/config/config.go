// Package config loads the figdex configuration from config.yaml and
// FIGDEX_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/figdex/figdex/pkg/bricklink"
)

// Config holds the full application configuration.
type Config struct {
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Rebrickable RebrickableConfig `yaml:"rebrickable" mapstructure:"rebrickable"`
	Brickset    BricksetConfig    `yaml:"brickset" mapstructure:"brickset"`
	Bricklink   BricklinkConfig   `yaml:"bricklink" mapstructure:"bricklink"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates the artifacts, caches, and run database.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" mapstructure:"data_dir"`
	CacheDir     string `yaml:"cache_dir" mapstructure:"cache_dir"`
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
	Overrides    string `yaml:"overrides" mapstructure:"overrides"`
}

// RebrickableConfig configures the CSV dump downloads and detail-page scrape.
type RebrickableConfig struct {
	CDNBaseURL  string        `yaml:"cdn_base_url" mapstructure:"cdn_base_url"`
	SiteBaseURL string        `yaml:"site_base_url" mapstructure:"site_base_url"`
	ItemDelay   time.Duration `yaml:"item_delay" mapstructure:"item_delay"`
	FlushEvery  int           `yaml:"flush_every" mapstructure:"flush_every"`
}

// BricksetConfig configures the bulk listing scrape.
type BricksetConfig struct {
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	TotalPages int           `yaml:"total_pages" mapstructure:"total_pages"`
	PageDelay  time.Duration `yaml:"page_delay" mapstructure:"page_delay"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// BricklinkConfig configures the price guide API.
type BricklinkConfig struct {
	BaseURL     string                `yaml:"base_url" mapstructure:"base_url"`
	Credentials bricklink.Credentials `yaml:"credentials" mapstructure:"credentials"`
	ItemDelay   time.Duration         `yaml:"item_delay" mapstructure:"item_delay"`
	PairDelay   time.Duration         `yaml:"pair_delay" mapstructure:"pair_delay"`
	FlushEvery  int                   `yaml:"flush_every" mapstructure:"flush_every"`
}

// FetchConfig tunes the shared HTTP fetcher.
type FetchConfig struct {
	MaxRetries  int `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the local preview server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads config.yaml (optional) plus FIGDEX_* environment overrides.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FIGDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.cache_dir", ".cache")
	v.SetDefault("paths.database_path", "figdex.db")
	v.SetDefault("paths.overrides", "overrides.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("rebrickable.cdn_base_url", "https://cdn.rebrickable.com")
	v.SetDefault("rebrickable.site_base_url", "https://rebrickable.com")
	v.SetDefault("rebrickable.item_delay", 700*time.Millisecond)
	v.SetDefault("rebrickable.flush_every", 50)
	v.SetDefault("brickset.base_url", "https://brickset.com")
	v.SetDefault("brickset.total_pages", 32)
	v.SetDefault("brickset.page_delay", 1000*time.Millisecond)
	v.SetDefault("brickset.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("bricklink.base_url", bricklink.DefaultBaseURL)
	v.SetDefault("bricklink.item_delay", 400*time.Millisecond)
	v.SetDefault("bricklink.pair_delay", 300*time.Millisecond)
	v.SetDefault("bricklink.flush_every", 100)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 30)

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

// InitLogger builds the global zap logger from LogConfig.
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
	zap.ReplaceGlobals(logger)

	return nil
}
