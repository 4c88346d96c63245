package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:              "8080",
		LogLevel:          "info",
		ExtractionTimeout: 30 * time.Second,
		DigestHour:        9,
		QueueWorkers:      5,
		QueueBuffer:       100,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "chatty" },
			wantErr:     true,
			errorString: "invalid log level 'chatty'",
		},
		{
			name:        "timeout too short",
			mutate:      func(c *Config) { c.ExtractionTimeout = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name:        "digest hour out of range",
			mutate:      func(c *Config) { c.DigestHour = 24 },
			wantErr:     true,
			errorString: "invalid digest hour 24",
		},
		{
			name:        "no workers",
			mutate:      func(c *Config) { c.QueueWorkers = 0 },
			wantErr:     true,
			errorString: "invalid queue workers 0",
		},
		{
			name:        "notion db without token",
			mutate:      func(c *Config) { c.NotionDBID = "db" },
			wantErr:     true,
			errorString: "NOTION_TOKEN is required when NOTION_DB_ID is set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "x"
	cfg.DigestHour = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := strings.Count(err.Error(), "\n- "); got != 2 {
		t.Errorf("expected 2 listed problems, got %d: %v", got, err)
	}
}

func TestConfig_Require(t *testing.T) {
	cfg := validConfig()
	if err := cfg.RequireStorage(); err == nil || !strings.Contains(err.Error(), "GCP_PROJECT") {
		t.Errorf("RequireStorage() = %v, want GCP_PROJECT error", err)
	}
	if err := cfg.RequireTelegram(); err == nil {
		t.Error("RequireTelegram() expected error without token")
	}
	if err := cfg.RequireNotion(); err == nil || !strings.Contains(err.Error(), "NOTION_DB_ID") {
		t.Errorf("RequireNotion() = %v, want NOTION_DB_ID error", err)
	}

	cfg.GCPProject, cfg.BQDataset = "p", "d"
	cfg.TelegramToken = "t"
	cfg.NotionToken, cfg.NotionDBID = "n", "db"
	for name, err := range map[string]error{
		"storage":  cfg.RequireStorage(),
		"telegram": cfg.RequireTelegram(),
		"notion":   cfg.RequireNotion(),
	} {
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DIGEST_HOUR", "7")
	t.Setenv("QUEUE_WORKERS", "not-a-number")
	t.Setenv("EXTRACTION_TIMEOUT", "45s")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DigestHour != 7 {
		t.Errorf("DigestHour = %d, want 7", cfg.DigestHour)
	}
	if cfg.QueueWorkers != 5 {
		t.Errorf("QueueWorkers = %d, want default 5", cfg.QueueWorkers)
	}
	if cfg.ExtractionTimeout != 45*time.Second {
		t.Errorf("ExtractionTimeout = %v, want 45s", cfg.ExtractionTimeout)
	}
}
