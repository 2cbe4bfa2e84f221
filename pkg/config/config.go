// Package config holds the runtime configuration for trace runs.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// TraceConfig captures everything a trace run needs beyond its input
// paths. Values come from defaults, then environment variables, then
// CLI flags.
type TraceConfig struct {
	// Chunkers is the comma-separated list of chunker type tags to
	// trace with ("file", "sc1k".."sc64k", "cdc1k".."cdc64k")
	Chunkers string

	// HashAlgo selects the chunk digest ("sha1", "sha256" or "md5")
	HashAlgo string

	// HashSalt, when non-empty, is prefixed to every chunk before
	// digesting
	HashSalt string

	// Jobs is the number of worker threads draining the task queue
	Jobs int

	// FollowSymlinks resolves symlinked inputs instead of skipping them
	FollowSymlinks bool

	// MetricsAddr, when non-empty, serves Prometheus metrics on this
	// address
	MetricsAddr string

	// Progress renders an inline task gauge while the queue drains
	Progress bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *TraceConfig {
	return &TraceConfig{
		Chunkers:       "cdc4k",
		HashAlgo:       "sha1",
		HashSalt:       "",
		Jobs:           1,
		FollowSymlinks: false,
		MetricsAddr:    "",
		Progress:       false,
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *TraceConfig {
	cfg := DefaultConfig()

	if chunkers := os.Getenv("CHUNKIQ_CHUNKERS"); chunkers != "" {
		cfg.Chunkers = chunkers
	}

	if algo := os.Getenv("CHUNKIQ_HASH_ALGO"); algo != "" {
		cfg.HashAlgo = algo
	}

	if salt := os.Getenv("CHUNKIQ_HASH_SALT"); salt != "" {
		cfg.HashSalt = salt
	}

	if jobs := os.Getenv("CHUNKIQ_JOBS"); jobs != "" {
		if n, err := strconv.Atoi(jobs); err == nil {
			cfg.Jobs = n
		}
	}

	if follow := os.Getenv("CHUNKIQ_FOLLOW_SYMLINKS"); follow != "" {
		cfg.FollowSymlinks = follow == "1" || follow == "true" || follow == "TRUE"
	}

	if addr := os.Getenv("CHUNKIQ_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}

	if progress := os.Getenv("CHUNKIQ_PROGRESS"); progress != "" {
		cfg.Progress = progress == "1" || progress == "true" || progress == "TRUE"
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *TraceConfig) Validate() error {
	if c.Chunkers == "" {
		return fmt.Errorf("at least one chunker type must be selected")
	}

	switch c.HashAlgo {
	case "sha1", "sha-1", "sha256", "sha-256", "md5", "md-5":
	default:
		return fmt.Errorf("invalid hash algorithm: %s (must be 'sha1', 'sha256' or 'md5')", c.HashAlgo)
	}

	if c.Jobs <= 0 {
		return fmt.Errorf("jobs must be positive, got: %d", c.Jobs)
	}

	return nil
}
