package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/emlakradar/api/pkg/model"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port           string
	GinMode        string
	DBDriver       string
	DatabaseURL    string
	SQLitePath     string
	CrawlWorkers   int
	SourcesFile    string
	AllowedOrigins string
	Debug          bool
}

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:     getEnv("SQLITE_PATH", "emlakradar.db"),
		SourcesFile:    getEnv("SOURCES_FILE", "configs/sources.yaml"),
		AllowedOrigins: strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
	}

	workers, err := parseIntEnv("CRAWL_WORKERS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_WORKERS: %w", err)
	}
	cfg.CrawlWorkers = workers

	debug, err := parseBoolEnv("DEBUG", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse DEBUG: %w", err)
	}
	cfg.Debug = debug

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present and coherent.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (postgres or sqlite)", c.DBDriver)
	}
	if c.CrawlWorkers < 1 {
		return errors.New("CRAWL_WORKERS must be at least 1")
	}
	return nil
}

// LoadSources reads the source roster from the yaml file at path.
func LoadSources(path string) ([]model.SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file struct {
		Sources []model.SourceConfig `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s lists no sources", path)
	}

	seen := make(map[string]bool, len(file.Sources))
	for i, src := range file.Sources {
		if src.Name == "" {
			return nil, fmt.Errorf("source #%d has no name", i+1)
		}
		if src.BaseURL == "" {
			return nil, fmt.Errorf("source %s has no base_url", src.Name)
		}
		// Segmented sites list one entry per segment under the same name.
		key := src.Name + "/" + src.Segment
		if seen[key] {
			return nil, fmt.Errorf("source %s segment %q listed twice", src.Name, src.Segment)
		}
		seen[key] = true
		if src.Pages < 1 {
			file.Sources[i].Pages = 1
		}
	}
	return file.Sources, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
