package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunkers != "cdc4k" {
		t.Errorf("Expected default chunkers 'cdc4k', got '%s'", cfg.Chunkers)
	}

	if cfg.HashAlgo != "sha1" {
		t.Errorf("Expected default hash algo 'sha1', got '%s'", cfg.HashAlgo)
	}

	if cfg.HashSalt != "" {
		t.Errorf("Expected empty default salt, got '%s'", cfg.HashSalt)
	}

	if cfg.Jobs != 1 {
		t.Errorf("Expected default jobs 1, got %d", cfg.Jobs)
	}

	if cfg.FollowSymlinks {
		t.Error("Expected symlink following to be disabled by default")
	}

	if cfg.MetricsAddr != "" {
		t.Errorf("Expected metrics endpoint to be disabled by default, got '%s'", cfg.MetricsAddr)
	}

	if cfg.Progress {
		t.Error("Expected progress gauge to be disabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("CHUNKIQ_CHUNKERS", "file,sc1k")
	os.Setenv("CHUNKIQ_HASH_ALGO", "sha256")
	os.Setenv("CHUNKIQ_HASH_SALT", "pepper")
	os.Setenv("CHUNKIQ_JOBS", "8")
	os.Setenv("CHUNKIQ_FOLLOW_SYMLINKS", "true")
	os.Setenv("CHUNKIQ_METRICS_ADDR", ":9464")
	os.Setenv("CHUNKIQ_PROGRESS", "1")
	defer func() {
		os.Unsetenv("CHUNKIQ_CHUNKERS")
		os.Unsetenv("CHUNKIQ_HASH_ALGO")
		os.Unsetenv("CHUNKIQ_HASH_SALT")
		os.Unsetenv("CHUNKIQ_JOBS")
		os.Unsetenv("CHUNKIQ_FOLLOW_SYMLINKS")
		os.Unsetenv("CHUNKIQ_METRICS_ADDR")
		os.Unsetenv("CHUNKIQ_PROGRESS")
	}()

	cfg := LoadFromEnv()

	if cfg.Chunkers != "file,sc1k" {
		t.Errorf("Expected chunkers 'file,sc1k', got '%s'", cfg.Chunkers)
	}
	if cfg.HashAlgo != "sha256" {
		t.Errorf("Expected hash algo 'sha256', got '%s'", cfg.HashAlgo)
	}
	if cfg.HashSalt != "pepper" {
		t.Errorf("Expected salt 'pepper', got '%s'", cfg.HashSalt)
	}
	if cfg.Jobs != 8 {
		t.Errorf("Expected jobs 8, got %d", cfg.Jobs)
	}
	if !cfg.FollowSymlinks {
		t.Error("Expected symlink following to be enabled")
	}
	if cfg.MetricsAddr != ":9464" {
		t.Errorf("Expected metrics addr ':9464', got '%s'", cfg.MetricsAddr)
	}
	if !cfg.Progress {
		t.Error("Expected progress gauge to be enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TraceConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *TraceConfig) {}, false},
		{"sha256 accepted", func(c *TraceConfig) { c.HashAlgo = "sha256" }, false},
		{"md5 accepted", func(c *TraceConfig) { c.HashAlgo = "md5" }, false},
		{"empty chunkers rejected", func(c *TraceConfig) { c.Chunkers = "" }, true},
		{"unknown hash rejected", func(c *TraceConfig) { c.HashAlgo = "blake3" }, true},
		{"zero jobs rejected", func(c *TraceConfig) { c.Jobs = 0 }, true},
		{"negative jobs rejected", func(c *TraceConfig) { c.Jobs = -2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
