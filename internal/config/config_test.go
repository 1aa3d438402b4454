package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:        AppConfig{Environment: "development"},
		Logger:     LoggerConfig{Level: "info"},
		Data:       DataConfig{BasePath: "/data"},
		Vocabulary: VocabularyConfig{Path: "/data/vocabulary.json"},
		Extraction: ExtractionConfig{BatchSize: 30, Delay: time.Second},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }},
		{"missing vocabulary", func(c *Config) { c.Vocabulary.Path = "" }},
		{"zero batch size", func(c *Config) { c.Extraction.BatchSize = 0 }},
		{"negative delay", func(c *Config) { c.Extraction.Delay = -time.Second }},
		{"negative retries", func(c *Config) { c.LLM.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# comment\nLOG_LEVEL=debug\nEXTRACTION_BATCH_SIZE=10\nLLM_MODEL=\"from-file\"\n"), 0o600))

	t.Setenv("VOCABULARY_PATH", filepath.Join(dir, "vocab.json"))
	t.Setenv("DATA_PATH", dir)
	t.Setenv("EXTRACTION_BATCH_SIZE", "12")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_MODEL", "")

	cfg, err := LoadConfig([]string{"-env-file", envFile, "-llm-model", "from-flag"})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level, ".env fills unset variables")
	assert.Equal(t, 12, cfg.Extraction.BatchSize, "environment wins over .env")
	assert.Equal(t, "from-flag", cfg.LLM.Model, "flag wins over everything")
	assert.Equal(t, 1200*time.Millisecond, cfg.Extraction.Delay)
	assert.Equal(t, 300*time.Millisecond, cfg.Extraction.ClassifyDelay)
	assert.Equal(t, filepath.Join(dir, "readlog.db"), cfg.Data.DatabasePath())
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VOCABULARY_PATH", filepath.Join(dir, "vocab.json"))
	t.Setenv("EXTRACTION_DELAY", "soon")

	_, err := LoadConfig([]string{"-env-file", filepath.Join(dir, "missing.env")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXTRACTION_DELAY")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), got)

	got, err = expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
