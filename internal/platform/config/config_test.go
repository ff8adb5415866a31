package config

import (
	"os"
	"testing"
)

// clearEnv unsets all FORGE_ environment variables for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"FORGE_SERVER_PORT",
		"FORGE_SERVER_HOST",
		"FORGE_DATABASE_URL",
		"FORGE_DATABASE_MAX_CONNS",
		"FORGE_DATABASE_MIN_CONNS",
		"FORGE_CACHE_ENABLED",
		"FORGE_CACHE_URL",
		"FORGE_CACHE_TTL_SECONDS",
		"FORGE_AI_GROQ_API_KEY",
		"FORGE_AI_GROQ_BASE_URL",
		"FORGE_AI_GROQ_MODEL",
		"FORGE_AI_BUDGET_TOKENS",
		"FORGE_EMBEDDING_DIMENSION",
		"FORGE_GENERATION_TEMPERATURE",
		"FORGE_GENERATION_MAX_TOKENS",
		"FORGE_GENERATION_TIMEOUT_SECONDS",
		"FORGE_LOG_LEVEL",
		"FORGE_LOG_FORMAT",
		"FORGE_PROFILES_DIR",
	}
	for _, v := range envVars {
		_ = os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("Database.MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("Embedding.Dimension = %d, want 1536", cfg.Embedding.Dimension)
	}
	if cfg.Generation.Temperature != 0.7 {
		t.Errorf("Generation.Temperature = %v, want 0.7", cfg.Generation.Temperature)
	}
	if cfg.AI.Groq.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("AI.Groq.BaseURL = %q, want groq default", cfg.AI.Groq.BaseURL)
	}
	if cfg.AI.Groq.Model != "llama-3.3-70b-versatile" {
		t.Errorf("AI.Groq.Model = %q, want llama-3.3-70b-versatile", cfg.AI.Groq.Model)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false by default")
	}
	if cfg.AI.BudgetTokens != 0 {
		t.Errorf("AI.BudgetTokens = %d, want 0 (disabled)", cfg.AI.BudgetTokens)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("FORGE_SERVER_PORT", "9090")
	t.Setenv("FORGE_AI_GROQ_API_KEY", "gsk_test")
	t.Setenv("FORGE_GENERATION_TEMPERATURE", "0.2")
	t.Setenv("FORGE_CACHE_ENABLED", "true")
	t.Setenv("FORGE_AI_BUDGET_TOKENS", "50000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.AI.Groq.APIKey != "gsk_test" {
		t.Errorf("AI.Groq.APIKey = %q, want gsk_test", cfg.AI.Groq.APIKey)
	}
	if cfg.Generation.Temperature != 0.2 {
		t.Errorf("Generation.Temperature = %v, want 0.2", cfg.Generation.Temperature)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true")
	}
	if cfg.AI.BudgetTokens != 50000 {
		t.Errorf("AI.BudgetTokens = %d, want 50000", cfg.AI.BudgetTokens)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"empty database url", func(c *Config) { c.Database.URL = "" }, true},
		{"zero embedding dimension", func(c *Config) { c.Embedding.Dimension = 0 }, true},
		{"temperature out of range", func(c *Config) { c.Generation.Temperature = 3 }, true},
		{"missing groq key ok", func(c *Config) { c.AI.Groq.APIKey = "" }, false},
		{"negative budget", func(c *Config) { c.AI.BudgetTokens = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
