package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"ner_endpoint": "https://ner.example.com/models/bert-ner",
		"ner_timeout_seconds": 5,
		"max_pages": 2,
		"strict_tags": false,
		"log_format": "pretty"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://ner.example.com/models/bert-ner", cfg.NEREndpoint)
	assert.Equal(t, 5*time.Second, cfg.NERTimeout())
	assert.Equal(t, 2, cfg.MaxPages)
	assert.False(t, cfg.StrictTagsEnabled())
	assert.Equal(t, "pretty", cfg.LogFormat)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Defaults(), ""},
		{"empty", Config{}, ""},
		{"bad endpoint", Config{NEREndpoint: "not a url"}, "'ner_endpoint' fails 'url'"},
		{"port too high", Config{Port: 70000}, "'port' fails 'lte'"},
		{"negative pages", Config{MaxPages: -1}, "'max_pages' fails 'gte'"},
		{"bad level", Config{LogLevel: "verbose"}, "'log_level' fails 'oneof'"},
		{"bad format", Config{LogFormat: "xml"}, "'log_format' fails 'oneof'"},
		{"llm without key", Config{LLMTagger: true}, "'llm_tagger' requires 'gemini_api_key'"},
		{"llm with key", Config{LLMTagger: true, GeminiAPIKey: "k"}, ""},
		{"ner key without endpoint", Config{NERAPIKey: "k"}, "'ner_endpoint' is not"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	strict := false
	cfg := Config{Port: 9090, StrictTags: &strict, DatabaseURL: "postgres://a", EducationYears: true}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, "postgres://a", merged.DatabaseURL)
	assert.False(t, merged.StrictTagsEnabled())
	assert.True(t, merged.EducationYears)
	assert.Equal(t, 3, merged.MaxPages)
	assert.Equal(t, 10, merged.NERTimeoutSeconds)
	assert.Equal(t, 5.0, merged.RateLimitRPS)
	assert.Equal(t, 10, merged.RateLimitBurst)
	assert.Equal(t, "info", merged.LogLevel)
	assert.Equal(t, "json", merged.LogFormat)
	assert.Equal(t, ":9090", merged.Addr())
}

func TestMergeWithDefaults_StrictTagsDefaultIsCopied(t *testing.T) {
	defaults := Defaults()
	merged := (&Config{}).MergeWithDefaults(defaults)

	require.NotNil(t, merged.StrictTags)
	assert.True(t, merged.StrictTagsEnabled())
	assert.NotSame(t, defaults.StrictTags, merged.StrictTags)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL":   "postgres://env",
		"GEMINI_API_KEY": "gk",
		"NER_ENDPOINT":   "https://ner.example.com",
		"LOG_LEVEL":      "debug",
		"PORT":           "9000",
	}
	cfg := Config{DatabaseURL: "postgres://file", NERAPIKey: "kept"}

	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "gk", cfg.GeminiAPIKey)
	assert.Equal(t, "https://ner.example.com", cfg.NEREndpoint)
	assert.Equal(t, "kept", cfg.NERAPIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Port)
}

func TestApplyEnv_BadPort(t *testing.T) {
	cfg := Config{}
	err := cfg.ApplyEnv(func(k string) string {
		if k == "PORT" {
			return "eighty"
		}
		return ""
	})
	assert.Error(t, err)
}

func TestStrictTagsEnabled_Unset(t *testing.T) {
	assert.True(t, (&Config{}).StrictTagsEnabled())
}
