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
	DataDir   string          `yaml:"data_dir" mapstructure:"data_dir"`
	Feed      FeedConfig      `yaml:"feed" mapstructure:"feed"`
	Collect   CollectConfig   `yaml:"collect" mapstructure:"collect"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Filter    FilterConfig    `yaml:"filter" mapstructure:"filter"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Qualify   QualifyConfig   `yaml:"qualify" mapstructure:"qualify"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// FeedConfig configures the news feed endpoint.
type FeedConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Language    string `yaml:"language" mapstructure:"language"`
	Region      string `yaml:"region" mapstructure:"region"`
	Edition     string `yaml:"edition" mapstructure:"edition"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Signal is one named search query strategy.
type Signal struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Query string `yaml:"query" mapstructure:"query"`
}

// CollectConfig configures the feed collection stage.
type CollectConfig struct {
	WindowDays int      `yaml:"window_days" mapstructure:"window_days"`
	Signals    []Signal `yaml:"signals" mapstructure:"signals"`
}

// FetchConfig configures the content fetch stage.
type FetchConfig struct {
	Workers        int      `yaml:"workers" mapstructure:"workers"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	AllowedDomains []string `yaml:"allowed_domains" mapstructure:"allowed_domains"`
	AllowedTLDs    []string `yaml:"allowed_tlds" mapstructure:"allowed_tlds"`
	RenderHosts    []string `yaml:"render_hosts" mapstructure:"render_hosts"`
}

// RenderConfig configures the headless rendering service.
type RenderConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Key      string `yaml:"key" mapstructure:"key"`
	SettleMs int    `yaml:"settle_ms" mapstructure:"settle_ms"`
}

// FilterConfig configures the optional relevance filter stage.
type FilterConfig struct {
	Threshold    int `yaml:"threshold" mapstructure:"threshold"`
	DefaultScore int `yaml:"default_score" mapstructure:"default_score"`
	DelayMs      int `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// ExtractConfig configures the entity extraction stage.
type ExtractConfig struct {
	Workers  int `yaml:"workers" mapstructure:"workers"`
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// QualifyConfig configures the lead qualification stage.
type QualifyConfig struct {
	Workers     int `yaml:"workers" mapstructure:"workers"`
	MaxMentions int `yaml:"max_mentions" mapstructure:"max_mentions"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Window returns the collection recency window as a duration.
func (c CollectConfig) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// defaultSignals are the two broad legislative-action queries used when no
// signals are configured.
func defaultSignals() []Signal {
	return []Signal{
		{
			Name:  "organisations_action_legislative",
			Query: "(association OR fédération OR coalition OR ordre OR syndicat OR regroupement OR conseil OR collectif) (témoigne OR mémoire OR demande OR réclame OR appelle OR dénonce OR réagit OR s'oppose OR critique OR conteste OR interpelle OR exige) (Québec OR gouvernement québécois OR ministre)",
		},
		{
			Name:  "engagement_legislatif_organisationnel",
			Query: "(projet de loi OR règlement OR consultation publique OR commission parlementaire) (association OR fédération OR coalition OR ordre OR syndicat OR regroupement) (présente OR dépose OR recommande OR propose OR appuie OR critique OR s'inquiète OR dénonce) Québec",
		},
	}
}

// defaultAllowedDomains is the allow-list of Quebec and Canadian origins used
// when none are configured. Canadian .ca origins pass via the TLD suffix
// check, so only non-.ca outlets need listing here.
func defaultAllowedDomains() []string {
	return []string{
		"ledevoir.com",
		"journaldemontreal.com",
		"lequotidien.com",
		"lactualite.com",
		"lesoleil.com",
		"theglobeandmail.com",
		"nationalpost.com",
		"thestar.com",
		"dgeq.org",
		"oiiq.org",
		"cmq.org",
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_dir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("feed.base_url", "https://news.google.com/rss/search")
	v.SetDefault("feed.language", "fr-CA")
	v.SetDefault("feed.region", "CA")
	v.SetDefault("feed.edition", "CA:fr")
	v.SetDefault("feed.timeout_secs", 30)
	v.SetDefault("collect.window_days", 7)
	v.SetDefault("fetch.workers", 4)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.allowed_tlds", []string{".ca"})
	v.SetDefault("fetch.render_hosts", []string{"news.google.com"})
	v.SetDefault("render.base_url", "http://localhost:3000")
	v.SetDefault("render.settle_ms", 3000)
	v.SetDefault("filter.threshold", 4)
	v.SetDefault("filter.default_score", 3)
	v.SetDefault("filter.delay_ms", 500)
	v.SetDefault("extract.workers", 4)
	v.SetDefault("extract.max_chars", 3000)
	v.SetDefault("qualify.workers", 4)
	v.SetDefault("qualify.max_mentions", 5)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)

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

	if len(cfg.Collect.Signals) == 0 {
		cfg.Collect.Signals = defaultSignals()
	}
	if len(cfg.Fetch.AllowedDomains) == 0 {
		cfg.Fetch.AllowedDomains = defaultAllowedDomains()
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
