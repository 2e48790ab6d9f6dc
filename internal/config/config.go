// Package config loads the application configuration from an optional
// config.yaml plus SWARM_-prefixed environment variables, and initializes
// the global logger. The Config is built once at process start and passed
// by reference; no component reads ambient state directly.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	SerpAPI   SerpAPIConfig   `yaml:"serpapi" mapstructure:"serpapi"`
	Brave     BraveConfig     `yaml:"brave" mapstructure:"brave"`
	Hunter    HunterConfig    `yaml:"hunter" mapstructure:"hunter"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	SMTP      SMTPConfig      `yaml:"smtp" mapstructure:"smtp"`
	IMAP      IMAPConfig      `yaml:"imap" mapstructure:"imap"`
	Scout     ScoutConfig     `yaml:"scout" mapstructure:"scout"`
	Analyst   AnalystConfig   `yaml:"analyst" mapstructure:"analyst"`
	Sniper    SniperConfig    `yaml:"sniper" mapstructure:"sniper"`
	Closer    CloserConfig    `yaml:"closer" mapstructure:"closer"`
	Profiles  ProfilesConfig  `yaml:"profiles" mapstructure:"profiles"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the ledger backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "csv" or "sqlite"
	Dir    string `yaml:"dir" mapstructure:"dir"`       // csv file directory
	Path   string `yaml:"path" mapstructure:"path"`     // sqlite database path
}

// SerpAPIConfig holds SerpAPI settings (primary search tier).
type SerpAPIConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// BraveConfig holds Brave Search settings (fallback search tier).
type BraveConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// HunterConfig holds Hunter.io enrichment settings.
type HunterConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SMTPConfig holds the outbound mail transport settings.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
}

// IMAPConfig holds the reply-check mailbox settings. Username and password
// fall back to the SMTP credentials when empty.
type IMAPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// ScoutConfig configures the discovery stage.
type ScoutConfig struct {
	TargetCount int `yaml:"target_count" mapstructure:"target_count"`
	MaxPages    int `yaml:"max_pages" mapstructure:"max_pages"`
}

// AnalystConfig configures the analysis stage.
type AnalystConfig struct {
	MaxCombinedChars int `yaml:"max_combined_chars" mapstructure:"max_combined_chars"`
	FetchTimeoutSecs int `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	FetchRetries     int `yaml:"fetch_retries" mapstructure:"fetch_retries"`
}

// SniperConfig configures the outreach stage.
type SniperConfig struct {
	AttachmentPath  string `yaml:"attachment_path" mapstructure:"attachment_path"`
	SenderName      string `yaml:"sender_name" mapstructure:"sender_name"`
	SenderPhone     string `yaml:"sender_phone" mapstructure:"sender_phone"`
	ThrottleMinSecs int    `yaml:"throttle_min_secs" mapstructure:"throttle_min_secs"`
	ThrottleMaxSecs int    `yaml:"throttle_max_secs" mapstructure:"throttle_max_secs"`
	CooldownDays    int    `yaml:"cooldown_days" mapstructure:"cooldown_days"`
}

// ThrottleBounds returns the inter-send delay bounds as durations.
func (c SniperConfig) ThrottleBounds() (time.Duration, time.Duration) {
	return time.Duration(c.ThrottleMinSecs) * time.Second,
		time.Duration(c.ThrottleMaxSecs) * time.Second
}

// Cooldown returns the history cooldown window; zero blocks forever.
func (c SniperConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownDays) * 24 * time.Hour
}

// CloserConfig configures the reply stage.
type CloserConfig struct {
	FollowUpAfterDays int `yaml:"follow_up_after_days" mapstructure:"follow_up_after_days"`
}

// FollowUpAfter returns the waiting period before the nudge.
func (c CloserConfig) FollowUpAfter() time.Duration {
	return time.Duration(c.FollowUpAfterDays) * 24 * time.Hour
}

// ProfilesConfig locates the client profile file.
type ProfilesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SWARM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "csv")
	v.SetDefault("store.dir", ".")
	v.SetDefault("store.path", "swarm.db")
	// Secret keys default empty so env-only values bind through Unmarshal.
	v.SetDefault("serpapi.key", "")
	v.SetDefault("brave.key", "")
	v.SetDefault("hunter.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("sniper.sender_phone", "")
	v.SetDefault("sniper.cooldown_days", 0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("imap.host", "imap.gmail.com")
	v.SetDefault("imap.port", 993)
	v.SetDefault("scout.target_count", 10)
	v.SetDefault("scout.max_pages", 5)
	v.SetDefault("analyst.max_combined_chars", 12000)
	v.SetDefault("analyst.fetch_timeout_secs", 15)
	v.SetDefault("analyst.fetch_retries", 1)
	v.SetDefault("sniper.attachment_path", "sample_audit.pdf")
	v.SetDefault("sniper.sender_name", "The DBAI Team")
	v.SetDefault("sniper.throttle_min_secs", 30)
	v.SetDefault("sniper.throttle_max_secs", 60)
	v.SetDefault("closer.follow_up_after_days", 3)
	v.SetDefault("profiles.path", "profiles.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	if cfg.IMAP.Username == "" {
		cfg.IMAP.Username = cfg.SMTP.Username
	}
	if cfg.IMAP.Password == "" {
		cfg.IMAP.Password = cfg.SMTP.Password
	}

	return &cfg, nil
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
	zap.ReplaceGlobals(logger)

	return nil
}
