package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

var (
	mu      sync.RWMutex
	current *viper.Viper
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Predictor PredictorConfig `mapstructure:"predictor"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port          string        `mapstructure:"port"`
	SessionSecret string        `mapstructure:"session_secret"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	AssetsDir     string        `mapstructure:"assets_dir"`
	FormFile      string        `mapstructure:"form_file"`
	PageTTL       time.Duration `mapstructure:"page_ttl"`
}

// PredictorConfig points the form controller at the prediction endpoint.
// A zero Timeout means the request waits for as long as the server takes.
type PredictorConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// RateLimitConfig caps requests per client IP per minute.
type RateLimitConfig struct {
	PerMinute uint `mapstructure:"per_minute"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", "change-me-in-production")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.assets_dir", "assets")
	v.SetDefault("server.form_file", "config/form.yaml")
	v.SetDefault("server.page_ttl", 7*24*time.Hour)

	// The calculator talks to its own API unless pointed elsewhere.
	v.SetDefault("predictor.url", "http://localhost:5050/api/predict")
	v.SetDefault("predictor.timeout", 0)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "garuda-db")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	v.SetDefault("ratelimit.per_minute", 60)
}

// Load reads projectRoot/config/config.yaml, then GARUDA_* environment variables, over the defaults.
func Load(projectRoot string) (*viper.Viper, *Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("GARUDA") // e.g., GARUDA_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return v, &conf, nil
}

// Init loads the configuration into Conf. Call Watch once a logger exists to enable hot-reloading.
func Init(projectRoot string) error {
	v, conf, err := Load(projectRoot)
	if err != nil {
		return err
	}
	set(conf)
	mu.Lock()
	current = v
	mu.Unlock()
	return nil
}

// Watch sets up a watch for configuration changes for hot-reloading.
func Watch(log *zap.Logger) {
	mu.RLock()
	v := current
	mu.RUnlock()
	if v == nil || v.ConfigFileUsed() == "" {
		log.Info("No configuration file in use, hot-reload disabled")
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		var reloaded Config
		if err := v.Unmarshal(&reloaded); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		set(&reloaded)
	})
	v.WatchConfig()
}

// Get returns the current configuration snapshot.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return Conf
}

func set(conf *Config) {
	mu.Lock()
	Conf = conf
	mu.Unlock()
}
