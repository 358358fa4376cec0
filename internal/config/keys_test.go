package config

import (
	"errors"
	"testing"
)

func TestGetAPIKey(t *testing.T) {
	t.Run("from environment variable", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-key")

		key, err := GetAPIKey(&Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-config-key"}})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if key != "sk-ant-test-key" {
			t.Errorf("expected 'sk-ant-test-key', got %q", key)
		}
	})

	t.Run("from config", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		cfg := &Config{
			Anthropic: AnthropicConfig{
				APIKey: "sk-ant-config-key",
			},
		}
		key, err := GetAPIKey(cfg)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if key != "sk-ant-config-key" {
			t.Errorf("expected 'sk-ant-config-key', got %q", key)
		}
	})

	t.Run("unexpanded reference", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("NOVA_TEST_UNSET", "")

		_, err := GetAPIKey(&Config{Anthropic: AnthropicConfig{APIKey: "${NOVA_TEST_UNSET}"}})
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("no key configured", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		_, err := GetAPIKey(nil)
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "sk-ant-REDACTED", false},
		{"empty key", "", true},
		{"wrong prefix", "sk-openai-12345678901234567890", true},
		{"too short", "sk-ant-abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"valid key", "sk-ant-REDACTED", "sk-ant-...wxyz"},
		{"empty key", "", "(not set)"},
		{"short key", "short", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.expected {
				t.Errorf("MaskAPIKey() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetAPIKeySource(t *testing.T) {
	tests := []struct {
		name string
		env  string
		cfg  *Config
		want KeySource
	}{
		{"from environment", "test-key", &Config{}, KeySourceEnv},
		{"from config", "", &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-config-key"}}, KeySourceConfig},
		{"bedrock", "test-key", &Config{Anthropic: AnthropicConfig{UseBedrock: true}}, KeySourceBedrock},
		{"no key", "", &Config{}, KeySourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ANTHROPIC_API_KEY", tt.env)
			if got := GetAPIKeySource(tt.cfg); got != tt.want {
				t.Errorf("GetAPIKeySource() = %v, want %v", got, tt.want)
			}
		})
	}
}
