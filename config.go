package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Config is the runtime configuration. Values come from an optional YAML
// file first and environment variables second.
type Config struct {
	Port           int      `yaml:"port"`
	MaxUploadBytes int64    `yaml:"maxUploadBytes"`
	AllowedOrigins []string `yaml:"allowedOrigins"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	DBURL       string   `yaml:"dbUrl"`
	RabbitMQURL string   `yaml:"rabbitmqUrl"`
	Workers     int      `yaml:"workers"`
	R2          R2Config `yaml:"r2"`

	GoogleAPIKey string `yaml:"googleApiKey"`
	AdvisorModel string `yaml:"advisorModel"`
}

func defaultConfig() Config {
	return Config{
		Port:           5000,
		MaxUploadBytes: 10 << 20,
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
		LogFormat:      "console",
		Workers:        3,
		AdvisorModel:   "gemini-2.5-pro",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.MaxUploadBytes <= 0 {
		return cfg, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	if cfg.Workers < 0 {
		return cfg, fmt.Errorf("WORKERS must not be negative, got %d", cfg.Workers)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"LOG_LEVEL":      &cfg.LogLevel,
		"LOG_FORMAT":     &cfg.LogFormat,
		"DB_URL":         &cfg.DBURL,
		"RABBITMQ_URL":   &cfg.RabbitMQURL,
		"R2_ACCOUNT_ID":  &cfg.R2.AccountID,
		"R2_BUCKET":      &cfg.R2.Bucket,
		"R2_ACCESS_KEY":  &cfg.R2.AccessKey,
		"R2_SECRET_KEY":  &cfg.R2.SecretKey,
		"GOOGLE_API_KEY": &cfg.GoogleAPIKey,
		"ADVISOR_MODEL":  &cfg.AdvisorModel,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = p
	}
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WORKERS %q: %w", v, err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		cfg.MaxUploadBytes = n
	}
	return nil
}

// missingR2 lists the R2 settings that are not configured.
func (c Config) missingR2() []string {
	var missing []string
	for key, v := range map[string]string{
		"R2_ACCOUNT_ID": c.R2.AccountID,
		"R2_BUCKET":     c.R2.Bucket,
		"R2_ACCESS_KEY": c.R2.AccessKey,
		"R2_SECRET_KEY": c.R2.SecretKey,
	} {
		if v == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// workerEnabled reports whether the queue consumer can run: it needs a
// broker, at least one worker and complete R2 credentials.
func (c Config) workerEnabled() bool {
	return c.RabbitMQURL != "" && c.Workers > 0 && len(c.missingR2()) == 0
}
