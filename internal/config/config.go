package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string   `mapstructure:"env"`              // current application environment (local, dev, prod etc)
	LogLevel         string   `mapstructure:"log_level"`        // minimal zap level (debug, info, warn, error)
	TelegramAPIToken string   `mapstructure:"-"`                // Telegram API token loaded from environment
	SurahsJSONPath   string   `mapstructure:"surahs_json_path"` // path to JSON file with the 114 surahs metadata
	MaxConcurrent    int      `mapstructure:"max_concurrent"`   // number of telegram updates processed at once
	DB               DB       `mapstructure:"database"`         // database configuration section
	QuranAPI         QuranAPI `mapstructure:"quran_api"`        // verse content API section
	Cache            Cache    `mapstructure:"cache"`            // in-memory cache section
	Reader           Reader   `mapstructure:"reader"`           // terminal reader section
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
	MinConnections  int           `mapstructure:"min_connections"`   // idle connections kept open
	HealthCheck     time.Duration `mapstructure:"health_check_period"`
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// QuranAPI describes the external verse content API.
type QuranAPI struct {
	BaseURL       string        `mapstructure:"base_url"`       // e.g. https://api.quran.com/api/v4
	AudioBaseURL  string        `mapstructure:"audio_base_url"` // prefix for relative recitation paths
	TranslationID int           `mapstructure:"translation_id"` // 31 = French (Hamidullah)
	RecitationID  int           `mapstructure:"recitation_id"`  // 7 = Mishary Rashid Alafasy
	PerPage       int           `mapstructure:"per_page"`       // verses per page, API maximum is 300
	Timeout       time.Duration `mapstructure:"timeout"`        // per request timeout
	UserAgent     string        `mapstructure:"user_agent"`
}

// Cache holds TTLs of in-memory state and the purge schedule.
type Cache struct {
	VerseTTL      time.Duration `mapstructure:"verse_ttl"`      // how long a loaded surah stays cached
	SessionTTL    time.Duration `mapstructure:"session_ttl"`    // idle reading sessions are dropped after this
	PurgeSchedule string        `mapstructure:"purge_schedule"` // cron spec of the janitor
}

// Reader configures the terminal front-end.
type Reader struct {
	DBPath        string `mapstructure:"db_path"`        // sqlite file with the local profile
	UserName      string `mapstructure:"user_name"`      // local profile; empty means anonymous (no bookmarks)
	PlayerCommand string `mapstructure:"player_command"` // external audio player, the URL is appended
	LogPath       string `mapstructure:"log_path"`       // the terminal is taken by the UI, logs go here
}

// Load reads configuration for the telegram bot. The bot token and the database
// URL are required.
func Load() (*Config, error) {
	cfg, v, err := load()
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return cfg, nil
}

// LoadReader reads configuration for the terminal reader, which needs no secrets.
func LoadReader() (*Config, error) {
	cfg, _, err := load()
	return cfg, err
}

func load() (*Config, *viper.Viper, error) {
	// A missing .env file is fine, real environment wins anyway.
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("reader.user_name", "READER_USER")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.QuranAPI.PerPage <= 0 || cfg.QuranAPI.PerPage > 300 {
		return nil, nil, fmt.Errorf("quran_api.per_page must be in 1..300, got %d", cfg.QuranAPI.PerPage)
	}

	return &cfg, v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "info")
	v.SetDefault("surahs_json_path", "assets/data/surahs.json")
	v.SetDefault("max_concurrent", 10)

	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("database.min_connections", 1)
	v.SetDefault("database.health_check_period", "1m")

	v.SetDefault("quran_api.base_url", "https://api.quran.com/api/v4")
	v.SetDefault("quran_api.audio_base_url", "https://verses.quran.com/")
	v.SetDefault("quran_api.translation_id", 31)
	v.SetDefault("quran_api.recitation_id", 7)
	v.SetDefault("quran_api.per_page", 300)
	v.SetDefault("quran_api.timeout", "10s")
	v.SetDefault("quran_api.user_agent", "quran-reader-bot")

	v.SetDefault("cache.verse_ttl", "6h")
	v.SetDefault("cache.session_ttl", "2h")
	v.SetDefault("cache.purge_schedule", "*/15 * * * *")

	v.SetDefault("reader.db_path", "data/reader.db")
	v.SetDefault("reader.player_command", "mpv --no-video --really-quiet")
	v.SetDefault("reader.log_path", "data/reader.log")
}
