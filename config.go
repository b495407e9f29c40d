package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultConfigFile = "config.yaml"

// Config is read once at startup. Values come from an optional YAML file
// and are then overridden by the environment (including a .env file).
type Config struct {
	Port               string        `yaml:"port"`
	DBPath             string        `yaml:"db_path"`
	PublicDir          string        `yaml:"public_dir"`
	AdminPassword      string        `yaml:"admin_pass"`
	SessionSecret      string        `yaml:"session_secret"`
	SessionMaxAge      time.Duration `yaml:"session_max_age"`
	SecureCookies      bool          `yaml:"secure_cookies"`
	MaxUploadBytes     int64         `yaml:"max_upload_bytes"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute"`
	MetricsAddr        string        `yaml:"metrics_addr"`
}

func defaultConfig() *Config {
	return &Config{
		Port:               "3000",
		DBPath:             "site.db",
		PublicDir:          "public",
		SessionSecret:      "trashcrew",
		SessionMaxAge:      24 * time.Hour,
		MaxUploadBytes:     10 << 20,
		LoginRatePerMinute: 10,
	}
}

func loadConfig() (*Config, error) {
	godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = defaultConfigFile
	}

	cfg, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if cfg.MaxUploadBytes <= 0 {
		slog.Warn("MAX_UPLOAD_BYTES must be positive, using default", "value", cfg.MaxUploadBytes)
		cfg.MaxUploadBytes = defaultConfig().MaxUploadBytes
	}
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASS not set, using default password")
		cfg.AdminPassword = "password"
	}

	return cfg, nil
}

// readConfigFile returns the defaults overlaid with path. A missing file is
// not an error.
func readConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnvString("PORT", cfg.Port)
	cfg.DBPath = getEnvString("DB_PATH", cfg.DBPath)
	cfg.PublicDir = getEnvString("PUBLIC_DIR", cfg.PublicDir)
	cfg.AdminPassword = getEnvString("ADMIN_PASS", cfg.AdminPassword)
	cfg.SessionSecret = getEnvString("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionMaxAge = getEnvDuration("SESSION_MAX_AGE", cfg.SessionMaxAge)
	cfg.SecureCookies = getEnvBool("SECURE_COOKIES", cfg.SecureCookies)
	cfg.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.LoginRatePerMinute = getEnvInt("LOGIN_RATE_PER_MINUTE", cfg.LoginRatePerMinute)
	cfg.MetricsAddr = getEnvString("METRICS_ADDR", cfg.MetricsAddr)
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
