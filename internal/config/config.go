// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Data       DataConfig
	Server     ServerConfig
	LLM        LLMConfig
	Catalog    CatalogConfig
	Vocabulary VocabularyConfig
	Extraction ExtractionConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk storage configuration.
type DataConfig struct {
	BasePath string
}

// DatabasePath returns the SQLite database location under the data directory.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.BasePath, "readlog.db")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string

	// LLMRequestsPerMinute caps per-client calls to generator- and catalog-backed routes.
	LLMRequestsPerMinute int
}

// LLMConfig holds text-generation API configuration.
type LLMConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// CatalogConfig holds library-catalog search configuration.
type CatalogConfig struct {
	BaseURL      string
	BookCategory string
}

// VocabularyConfig points at the controlled vocabulary assets.
type VocabularyConfig struct {
	Path             string
	DescriptionsPath string
	Watch            bool
}

// ExtractionConfig controls batch pacing for concept extraction and discipline classification.
type ExtractionConfig struct {
	BatchSize     int
	Delay         time.Duration
	ClassifyDelay time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("readlog", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory holding the database")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 120s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	llmModel := fs.String("llm-model", "", "Text generation model name")
	vocabularyPath := fs.String("vocabulary", "", "Path to the concept vocabulary JSON array")
	batchSize := fs.String("batch-size", "", "Books per extraction batch (default: 30)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue("", "CORS_ORIGINS", "http://localhost:5173")),

			LLMRequestsPerMinute: getIntConfigValue("", "LLM_REQUESTS_PER_MINUTE", 20),
		},
		LLM: LLMConfig{
			BaseURL:    getConfigValue("", "LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:     getConfigValue("", "LLM_API_KEY", ""),
			Model:      getConfigValue(*llmModel, "LLM_MODEL", "gpt-4o-mini"),
			MaxRetries: getIntConfigValue("", "LLM_MAX_RETRIES", 2),
		},
		Catalog: CatalogConfig{
			BaseURL:      getConfigValue("", "CATALOG_BASE_URL", "https://ndlsearch.ndl.go.jp/api/opensearch"),
			BookCategory: getConfigValue("", "CATALOG_BOOK_CATEGORY", "図書"),
		},
		Vocabulary: VocabularyConfig{
			Path:             getConfigValue(*vocabularyPath, "VOCABULARY_PATH", ""),
			DescriptionsPath: getConfigValue("", "VOCABULARY_DESCRIPTIONS_PATH", ""),
			Watch:            getBoolConfigValue("", "VOCABULARY_WATCH", true),
		},
		Extraction: ExtractionConfig{
			BatchSize: getIntConfigValue(*batchSize, "EXTRACTION_BATCH_SIZE", 30),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		target    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		// Vocabulary refresh batches hold the request open for a minute or more.
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "120s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"", "LLM_TIMEOUT", "60s", &cfg.LLM.Timeout},
		{"", "EXTRACTION_DELAY", "1200ms", &cfg.Extraction.Delay},
		{"", "CLASSIFY_DELAY", "300ms", &cfg.Extraction.ClassifyDelay},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.target = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Vocabulary.Path == "" {
		return errors.New("VOCABULARY_PATH is required")
	}

	if c.Extraction.BatchSize <= 0 {
		return fmt.Errorf("extraction batch size must be positive, got %d", c.Extraction.BatchSize)
	}
	if c.Extraction.Delay < 0 || c.Extraction.ClassifyDelay < 0 {
		return errors.New("extraction delays cannot be negative")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM max retries cannot be negative, got %d", c.LLM.MaxRetries)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Data.BasePath, err = expandPath(c.Data.BasePath, filepath.Join(homeDir, ".readlog")); err != nil {
		return err
	}
	if c.Vocabulary.Path, err = expandPath(c.Vocabulary.Path, ""); err != nil {
		return err
	}
	if c.Vocabulary.DescriptionsPath, err = expandPath(c.Vocabulary.DescriptionsPath, ""); err != nil {
		return err
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
