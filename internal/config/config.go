package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Session    SessionConfig    `yaml:"session"`
	Uploads    UploadsConfig    `yaml:"uploads"`
	Journal    JournalConfig    `yaml:"journal"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type UpstreamConfig struct {
	BaseURL         string `yaml:"base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	DownloadSeconds int    `yaml:"download_timeout_seconds"`
	UploadSeconds   int    `yaml:"upload_timeout_seconds"`
}

func (c UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c UpstreamConfig) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadSeconds) * time.Second
}

func (c UpstreamConfig) UploadTimeout() time.Duration {
	return time.Duration(c.UploadSeconds) * time.Second
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit ServerRateLimit `yaml:"rate_limit"`
}

type ServerRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CacheConfig struct {
	TTLSeconds map[string]int `yaml:"ttl_seconds"` // per resource prefix
	DefaultTTL int            `yaml:"default_ttl_seconds"`
}

// TTLFor returns the configured TTL for a resource prefix, falling back to the
// default.
func (c CacheConfig) TTLFor(resource string) time.Duration {
	if sec, ok := c.TTLSeconds[resource]; ok && sec > 0 {
		return time.Duration(sec) * time.Second
	}
	return time.Duration(c.DefaultTTL) * time.Second
}

type SessionConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type UploadsConfig struct {
	MaxFiles     int      `yaml:"max_files"`
	MaxFileBytes int64    `yaml:"max_file_bytes"`
	AllowedTypes []string `yaml:"allowed_types"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

type WatcherConfig struct {
	Enabled             bool `yaml:"enabled"`
	PollIntervalSeconds int  `yaml:"poll_interval_seconds"`
	MaxAttempts         int  `yaml:"max_attempts"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env, если есть — не фатально при отсутствии
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream base_url is required")
	}
	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("upstream base_url %q must be an http(s) URL", c.Upstream.BaseURL)
	}
	if c.Journal.Path == "" {
		return errors.New("journal path is required")
	}
	if c.Uploads.MaxFiles < 0 {
		return errors.New("uploads max_files cannot be negative")
	}
	for _, mime := range c.Uploads.AllowedTypes {
		if !strings.Contains(mime, "/") {
			return fmt.Errorf("uploads allowed type %q is not a MIME type", mime)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "dormgate"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit.RPS == 0 {
		c.Server.RateLimit.RPS = 10
	}
	if c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = 20
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 10
	}
	if c.Upstream.DownloadSeconds == 0 {
		c.Upstream.DownloadSeconds = 30
	}
	if c.Upstream.UploadSeconds == 0 {
		c.Upstream.UploadSeconds = 120
	}
	if c.Cache.DefaultTTL == 0 {
		c.Cache.DefaultTTL = 180
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = 24 * 60 * 60
	}
	if c.Uploads.MaxFiles == 0 {
		c.Uploads.MaxFiles = 5
	}
	if c.Uploads.MaxFileBytes == 0 {
		c.Uploads.MaxFileBytes = 5 * 1024 * 1024
	}
	if len(c.Uploads.AllowedTypes) == 0 {
		c.Uploads.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif"}
	}
	if c.Watcher.PollIntervalSeconds == 0 {
		c.Watcher.PollIntervalSeconds = 60
	}
	if c.Watcher.MaxAttempts == 0 {
		c.Watcher.MaxAttempts = 30
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}
