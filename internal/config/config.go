package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/StockPredictor/internal/analysis/technical"
	"github.com/Alias1177/StockPredictor/models"
)

// Data sources.
const (
	SourceYahoo      = "yahoo"
	SourceTwelveData = "twelvedata"
)

// LLM providers.
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

// unsetRetries marks MaxRetries as not configured; 0 disables retries.
const (
	unsetRetries      = -1
	defaultMaxRetries = 2
)

// Config holds all application configuration
type Config struct {
	Defaults struct {
		Symbol       string `yaml:"symbol"`
		Interval     string `yaml:"interval"`
		LookbackDays int    `yaml:"lookback_days"`
		Strategy     string `yaml:"strategy"`
	} `yaml:"defaults"`

	DataSource struct {
		Name           string        `yaml:"name"`
		TwelveAPIKey   string        `yaml:"twelve_api_key"`
		Timeout        time.Duration `yaml:"timeout"`
		RequestsPerSec int           `yaml:"requests_per_sec"`
		Proxy          string        `yaml:"proxy"`
	} `yaml:"data_source"`

	LLM LLMConfig `yaml:"llm"`

	MaxRetries      int    `yaml:"max_retries"`
	DisplayTimezone string `yaml:"display_timezone"`
	HTTPAddr        string `yaml:"http_addr"`
	LogLevel        string `yaml:"log_level"`

	Database struct {
		Driver   string `yaml:"driver"` // postgres, sqlite or empty
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Telegram struct {
		BotToken     string `yaml:"bot_token"`
		DashboardURL string `yaml:"dashboard_url"`
	} `yaml:"telegram"`
}

// LLMConfig carries the recommendation service credentials. It is built
// once at startup and handed to the client by pointer.
type LLMConfig struct {
	Provider   string        `yaml:"provider"`
	APIKey     string        `yaml:"api_key"`
	Endpoint   string        `yaml:"endpoint"`
	APIVersion string        `yaml:"api_version"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Load reads .env files, then an optional YAML file at path, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	loadDotenv()

	cfg := &Config{MaxRetries: unsetRetries}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// loadDotenv loads ENV_FILE, or .env plus the credentials file the Azure
// deployment ships with. Missing files are not an error.
func loadDotenv() {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Warn().Str("file", envFile).Msg("env file not found, relying on actual environment variables")
		}
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}
	_ = godotenv.Load("credentials_gpt4.env")
}

func applyEnv(cfg *Config) {
	setString(&cfg.Defaults.Symbol, "SYMBOL")
	setString(&cfg.Defaults.Interval, "INTERVAL")
	setInt(&cfg.Defaults.LookbackDays, "LOOKBACK_DAYS")
	setString(&cfg.Defaults.Strategy, "LEVEL_STRATEGY")

	setString(&cfg.DataSource.Name, "DATA_SOURCE")
	setString(&cfg.DataSource.TwelveAPIKey, "TWELVE_API_KEY")
	setDuration(&cfg.DataSource.Timeout, "FETCH_TIMEOUT")
	setInt(&cfg.DataSource.RequestsPerSec, "REQUESTS_PER_SEC")
	setString(&cfg.DataSource.Proxy, "HTTPS_PROXY")

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")

	if cfg.LLM.Provider == "" && os.Getenv("AZURE_OPENAI_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") != "" {
		cfg.LLM.Provider = ProviderOpenAI
	}
	switch strings.ToLower(cfg.LLM.Provider) {
	case ProviderOpenAI:
		setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
		setString(&cfg.LLM.Endpoint, "OPENAI_BASE_URL")
	case "", ProviderAzure:
		setString(&cfg.LLM.APIKey, "AZURE_OPENAI_API_KEY")
		setString(&cfg.LLM.Endpoint, "AZURE_OPENAI_ENDPOINT")
		setString(&cfg.LLM.APIVersion, "AZURE_OPENAI_API_VERSION")
	}

	setInt(&cfg.MaxRetries, "MAX_RETRIES")
	setString(&cfg.DisplayTimezone, "DISPLAY_TIMEZONE")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")

	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Telegram.DashboardURL, "DASHBOARD_URL")
}

func applyDefaults(cfg *Config) {
	if cfg.Defaults.Symbol == "" {
		cfg.Defaults.Symbol = "BTC-USD"
	}
	if cfg.Defaults.Interval == "" {
		cfg.Defaults.Interval = "5m"
	}
	if cfg.Defaults.LookbackDays == 0 {
		cfg.Defaults.LookbackDays = 3
	}
	if cfg.Defaults.Strategy == "" {
		cfg.Defaults.Strategy = technical.StrategyExtrema
	}
	if cfg.DataSource.Name == "" {
		cfg.DataSource.Name = SourceYahoo
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 20 * time.Second
	}
	if cfg.DataSource.RequestsPerSec == 0 {
		cfg.DataSource.RequestsPerSec = 5
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderAzure
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o"
	}
	if cfg.LLM.APIVersion == "" && strings.EqualFold(cfg.LLM.Provider, ProviderAzure) {
		cfg.LLM.APIVersion = "2024-06-01"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries == unsetRetries {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.DisplayTimezone == "" {
		cfg.DisplayTimezone = "Asia/Kuala_Lumpur"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8501"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Database.Driver == "" && cfg.Database.Host != "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
}

// Validate checks the defaults users start from. Missing LLM credentials are
// not a startup error; the client reports them on first use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Defaults.Symbol) == "" {
		return fmt.Errorf("defaults.symbol is required")
	}
	if strings.TrimSpace(c.Defaults.Interval) == "" {
		return fmt.Errorf("defaults.interval is required")
	}
	if c.Defaults.LookbackDays < models.MinLookbackDays || c.Defaults.LookbackDays > models.MaxLookbackDays {
		return fmt.Errorf("defaults.lookback_days must be in [%d, %d], got %d",
			models.MinLookbackDays, models.MaxLookbackDays, c.Defaults.LookbackDays)
	}
	if _, err := technical.StrategyByName(c.Defaults.Strategy); err != nil {
		return err
	}
	switch c.DataSource.Name {
	case SourceYahoo, SourceTwelveData:
	default:
		return fmt.Errorf("data_source.name must be %s or %s, got %q", SourceYahoo, SourceTwelveData, c.DataSource.Name)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case ProviderAzure, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider must be %s or %s, got %q", ProviderAzure, ProviderOpenAI, c.LLM.Provider)
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres, sqlite or empty, got %q", c.Database.Driver)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves DisplayTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("display_timezone %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

// Helper functions for environment variable handling
func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			*dst = intValue
		} else {
			log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-integer environment value")
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			*dst = d
		} else if secs, err := strconv.Atoi(value); err == nil {
			*dst = time.Duration(secs) * time.Second
		} else {
			log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid duration")
		}
	}
}
