package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/insightloom/internal/ai"
	"github.com/KaramelBytes/insightloom/internal/analysis"
)

// EnvPrefix namespaces environment overrides, e.g. INSIGHTLOOM_LOG_LEVEL.
const EnvPrefix = "INSIGHTLOOM"

// Global configuration structure.
type Global struct {
	APIKey          string  `mapstructure:"api_key" yaml:"api_key"`
	DefaultProvider string  `mapstructure:"default_provider" yaml:"default_provider"`
	DefaultModel    string  `mapstructure:"default_model" yaml:"default_model"`
	MaxTokens       int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature" yaml:"temperature"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	OllamaHost       string `mapstructure:"ollama_host" yaml:"ollama_host"`
	ReportTimeoutSec int    `mapstructure:"report_timeout_sec" yaml:"report_timeout_sec"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Analysis caps
	OutlierColumns     int     `mapstructure:"outlier_columns" yaml:"outlier_columns"`
	TrendColumns       int     `mapstructure:"trend_columns" yaml:"trend_columns"`
	CategoricalColumns int     `mapstructure:"categorical_columns" yaml:"categorical_columns"`
	OverviewColumns    int     `mapstructure:"overview_columns" yaml:"overview_columns"`
	MissingThreshold   float64 `mapstructure:"missing_threshold" yaml:"missing_threshold"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"api_key", "default_provider", "default_model", "max_tokens", "temperature",
	"http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
	"ollama_host", "report_timeout_sec", "log_level", "log_format",
	"outlier_columns", "trend_columns", "categorical_columns", "overview_columns", "missing_threshold",
}

func setDefaults(v *viper.Viper) {
	lim := analysis.DefaultLimits()
	v.SetDefault("api_key", "")
	v.SetDefault("default_provider", ai.ProviderOpenRouter)
	v.SetDefault("default_model", "openai/gpt-4o-mini")
	v.SetDefault("max_tokens", 4000)
	v.SetDefault("temperature", 0.4)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", ai.DefaultOllamaHost)
	v.SetDefault("report_timeout_sec", 90)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("outlier_columns", lim.OutlierColumns)
	v.SetDefault("trend_columns", lim.TrendColumns)
	v.SetDefault("categorical_columns", lim.CategoricalColumns)
	v.SetDefault("overview_columns", lim.OverviewColumns)
	v.SetDefault("missing_threshold", 0.5)
}

// DefaultPath is ~/.insightloom/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".insightloom", "config.yaml"), nil
}

// Load loads configuration from a .env file in the working directory, the
// environment, the config file and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfgFile = p
	}
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes the configuration as YAML to cfgFile, or to DefaultPath when empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values that would make the pipeline misbehave.
func (c *Global) Validate() error {
	if !slices.Contains(ai.Providers(), c.DefaultProvider) {
		return fmt.Errorf("invalid default_provider: %s (use %s)", c.DefaultProvider, strings.Join(ai.Providers(), " or "))
	}
	if c.MissingThreshold <= 0 || c.MissingThreshold > 1 {
		return fmt.Errorf("missing_threshold must be in (0, 1], got %v", c.MissingThreshold)
	}
	if c.RetryMaxAttempts < 0 {
		return errors.New("retry_max_attempts cannot be negative")
	}
	if c.OutlierColumns < 0 || c.TrendColumns < 0 || c.CategoricalColumns < 0 || c.OverviewColumns < 0 {
		return errors.New("column caps cannot be negative")
	}
	return nil
}

// Set parses and assigns one key. c is left unchanged when the result would not validate.
func (c *Global) Set(key, val string) error {
	next := *c
	if err := next.assign(key, val); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Global) assign(key, val string) error {
	var err error
	switch key {
	case "api_key":
		c.APIKey = val
	case "default_provider":
		switch strings.ToLower(val) {
		case ai.ProviderOpenRouter:
			c.DefaultProvider = ai.ProviderOpenRouter
		case ai.ProviderOllama, "local":
			c.DefaultProvider = ai.ProviderOllama
		default:
			return fmt.Errorf("invalid default_provider: %s (use openrouter or ollama)", val)
		}
	case "default_model":
		c.DefaultModel = val
	case "max_tokens":
		c.MaxTokens, err = atoi(key, val)
	case "temperature":
		c.Temperature, err = atof(key, val)
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = atoi(key, val)
	case "retry_max_attempts":
		c.RetryMaxAttempts, err = atoi(key, val)
	case "retry_base_delay_ms":
		c.RetryBaseDelayMs, err = atoi(key, val)
	case "retry_max_delay_ms":
		c.RetryMaxDelayMs, err = atoi(key, val)
	case "ollama_host":
		c.OllamaHost = val
	case "report_timeout_sec":
		c.ReportTimeoutSec, err = atoi(key, val)
	case "log_level":
		c.LogLevel = val
	case "log_format":
		c.LogFormat = val
	case "outlier_columns":
		c.OutlierColumns, err = atoi(key, val)
	case "trend_columns":
		c.TrendColumns, err = atoi(key, val)
	case "categorical_columns":
		c.CategoricalColumns, err = atoi(key, val)
	case "overview_columns":
		c.OverviewColumns, err = atoi(key, val)
	case "missing_threshold":
		c.MissingThreshold, err = atof(key, val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

// Get returns the display value of one key. The API key is masked.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "api_key":
		return mask(c.APIKey), nil
	case "default_provider":
		return c.DefaultProvider, nil
	case "default_model":
		return c.DefaultModel, nil
	case "max_tokens":
		return strconv.Itoa(c.MaxTokens), nil
	case "temperature":
		return strconv.FormatFloat(c.Temperature, 'f', -1, 64), nil
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec), nil
	case "retry_max_attempts":
		return strconv.Itoa(c.RetryMaxAttempts), nil
	case "retry_base_delay_ms":
		return strconv.Itoa(c.RetryBaseDelayMs), nil
	case "retry_max_delay_ms":
		return strconv.Itoa(c.RetryMaxDelayMs), nil
	case "ollama_host":
		return c.OllamaHost, nil
	case "report_timeout_sec":
		return strconv.Itoa(c.ReportTimeoutSec), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "outlier_columns":
		return strconv.Itoa(c.OutlierColumns), nil
	case "trend_columns":
		return strconv.Itoa(c.TrendColumns), nil
	case "categorical_columns":
		return strconv.Itoa(c.CategoricalColumns), nil
	case "overview_columns":
		return strconv.Itoa(c.OverviewColumns), nil
	case "missing_threshold":
		return strconv.FormatFloat(c.MissingThreshold, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Limits returns the analysis column caps.
func (c *Global) Limits() analysis.Limits {
	return analysis.Limits{
		OutlierColumns:     c.OutlierColumns,
		TrendColumns:       c.TrendColumns,
		CategoricalColumns: c.CategoricalColumns,
		OverviewColumns:    c.OverviewColumns,
	}
}

// RuntimeConfig returns the knobs for ai.GetRuntime.
func (c *Global) RuntimeConfig() ai.RuntimeConfig {
	return ai.RuntimeConfig{
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		RetryMax:    c.RetryMaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
		APIKey:      c.APIKey,
		Host:        c.OllamaHost,
	}
}

// ReportTimeout bounds one report generation.
func (c *Global) ReportTimeout() time.Duration {
	return time.Duration(c.ReportTimeoutSec) * time.Second
}

func atoi(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid int for %s: %v", key, val)
	}
	return i, nil
}

func atof(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid float for %s: %v", key, val)
	}
	return f, nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
