package config

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Host = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty host")
	}

	cfg = DefaultConfig()
	cfg.Cache.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty cache root")
	}

	cfg = DefaultConfig()
	cfg.Cache.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unknown cache backend")
	}

	cfg = DefaultConfig()
	cfg.Cache.CompressionLevel = 9
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for out-of-range compression level")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APMFETCH_HOST", "api.eu.example.com")
	t.Setenv("APMFETCH_CACHE_BACKEND", BackendBadger)
	t.Setenv("APMFETCH_CACHE", "false")

	cfg := DefaultConfig()
	if cfg.API.Host != "api.eu.example.com" {
		t.Errorf("Expected host override, got %q", cfg.API.Host)
	}
	if cfg.Cache.Backend != BackendBadger {
		t.Errorf("Expected badger backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Enabled {
		t.Error("Expected cache to be disabled")
	}
}
