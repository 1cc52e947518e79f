package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant client
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Preview PreviewConfig `mapstructure:"preview"`
	Log     LogConfig     `mapstructure:"log"`
}

// BackendConfig holds the backend endpoint and per-call timeouts
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UploadTimeout  time.Duration `mapstructure:"upload_timeout"`
}

// MonitorConfig holds liveness polling configuration
type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// NotifyConfig holds toast configuration
type NotifyConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// PreviewConfig holds source preview configuration
type PreviewConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig holds file logging configuration
type LogConfig struct {
	Path       string `mapstructure:"path"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("BMASSIST")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.request_timeout", "30s")
	v.SetDefault("backend.upload_timeout", "2m")

	v.SetDefault("monitor.interval", "30s")

	v.SetDefault("notify.ttl", "5s")

	v.SetDefault("preview.dir", "./data/previews")

	v.SetDefault("log.path", "./data/bm-assist.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}
