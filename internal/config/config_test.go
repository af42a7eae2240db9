package config

import (
	"strings"
	"testing"
)

func validTestConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxUploadSize:    50 * 1024 * 1024,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing server port",
			mutate:      func(c *Config) { c.Server.Port = "" },
			expectError: "server port is required",
		},
		{
			name:        "default format not in supported formats",
			mutate:      func(c *Config) { c.App.DefaultFormat = "yaml" },
			expectError: "invalid default format",
		},
		{
			name:        "non-positive upload size",
			mutate:      func(c *Config) { c.App.MaxUploadSize = 0 },
			expectError: "max upload size must be positive",
		},
		{
			name: "analytics enabled without spreadsheet",
			mutate: func(c *Config) {
				c.Analytics.Enabled = true
				c.Analytics.CredentialsFile = "/tmp/creds.json"
			},
			expectError: "analytics.spreadsheetId is required",
		},
		{
			name: "analytics enabled without credentials",
			mutate: func(c *Config) {
				c.Analytics.Enabled = true
				c.Analytics.SpreadsheetID = "sheet-id"
			},
			expectError: "analytics credentials are required",
		},
		{
			name: "analytics fully configured",
			mutate: func(c *Config) {
				c.Analytics.Enabled = true
				c.Analytics.SpreadsheetID = "sheet-id"
				c.Analytics.CredentialsJSON = "{}"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError == "" {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.expectError) {
				t.Errorf("Expected error containing %q, got %q", tt.expectError, err.Error())
			}
		})
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
	}{
		{
			name: "disabled mode",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem"},
		},
		{
			name: "server mode with content",
			tls:  TLSConfig{Mode: "server", CertContent: "PEM", KeyContent: "PEM"},
		},
		{
			name:        "server mode without cert",
			tls:         TLSConfig{Mode: "server"},
			expectError: true,
		},
		{
			name:        "server mode with both cert file and content",
			tls:         TLSConfig{Mode: "server", CertFile: "/tls/cert.pem", CertContent: "PEM", KeyFile: "/tls/key.pem"},
			expectError: true,
		},
		{
			name:        "mutual mode is not supported",
			tls:         TLSConfig{Mode: "mutual", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem"},
			expectError: true,
		},
		{
			name: "min version 1.3",
			tls:  TLSConfig{Mode: "server", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem", MinVersion: "1.3"},
		},
		{
			name:        "invalid min version",
			tls:         TLSConfig{Mode: "server", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem", MinVersion: "1.1"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestApplyFallbacks(t *testing.T) {
	t.Run("gemini key env fallback", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-key")
		cfg := validTestConfig()
		cfg.applyFallbacks()
		if cfg.AI.APIKey != "env-key" {
			t.Errorf("API key = %q, want env-key", cfg.AI.APIKey)
		}
	})

	t.Run("config key wins over env", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-key")
		cfg := validTestConfig()
		cfg.AI.APIKey = "config-key"
		cfg.applyFallbacks()
		if cfg.AI.APIKey != "config-key" {
			t.Errorf("API key = %q, want config-key", cfg.AI.APIKey)
		}
	})

	t.Run("server api keys from env", func(t *testing.T) {
		t.Setenv("RESUMELIFT_SERVER_APIKEYS", "key-a, key-b")
		cfg := validTestConfig()
		cfg.applyFallbacks()
		if len(cfg.Server.APIKeys) != 2 || cfg.Server.APIKeys[1] != "key-b" {
			t.Errorf("API keys = %v", cfg.Server.APIKeys)
		}
	})

	t.Run("tls min version default", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.Server.TLS.Mode = "server"
		cfg.applyFallbacks()
		if cfg.Server.TLS.MinVersion != "1.2" {
			t.Errorf("min version = %q, want 1.2", cfg.Server.TLS.MinVersion)
		}
	})

	t.Run("debug log level enables console output", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.App.LogLevel = "debug"
		cfg.applyFallbacks()
		if !cfg.Observability.ConsoleOutput {
			t.Error("console output not enabled for debug log level")
		}
	})
}
