// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
	if cfg.Server.Port != 8460 {
		t.Errorf("Expected default port 8460, got %d", cfg.Server.Port)
	}
	if cfg.Events.Topic != "feedback.events" {
		t.Errorf("Expected default topic feedback.events, got %q", cfg.Events.Topic)
	}
	if cfg.Events.SessionTopic != "session.events" {
		t.Errorf("Expected default session topic session.events, got %q", cfg.Events.SessionTopic)
	}
	if cfg.Recommend.FusionAlpha != 0.6 {
		t.Errorf("Expected default fusion alpha 0.6, got %f", cfg.Recommend.FusionAlpha)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"unknown store backend", func(c *Config) { c.Store.Backend = "redis" }, true},
		{"badger without path", func(c *Config) { c.Store.Path = "" }, true},
		{"memory without path ok", func(c *Config) { c.Store.Backend = "memory"; c.Store.Path = "" }, false},
		{"zero op timeout", func(c *Config) { c.Store.OpTimeout = 0 }, true},
		{"unknown transport", func(c *Config) { c.Events.Transport = "kafka" }, true},
		{"nats without url", func(c *Config) {
			c.Events.Transport = "nats"
			c.Events.NATS.URL = ""
		}, true},
		{"nats embedded without url ok", func(c *Config) {
			c.Events.Transport = "nats"
			c.Events.NATS.URL = ""
			c.Events.NATS.EmbeddedServer = true
		}, false},
		{"empty topic", func(c *Config) { c.Events.Topic = "" }, true},
		{"empty session topic", func(c *Config) { c.Events.SessionTopic = "" }, true},
		{"default k zero", func(c *Config) { c.Recommend.DefaultK = 0 }, true},
		{"max k below default", func(c *Config) { c.Recommend.MaxK = 1 }, true},
		{"alpha out of range", func(c *Config) { c.Recommend.FusionAlpha = 1.5 }, true},
		{"negative workers", func(c *Config) { c.Recommend.Workers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env      string
		expected string
	}{
		{"CARPICK_SERVER_PORT", "server.port"},
		{"CARPICK_SERVER_RATE_LIMIT_REQS", "server.rate_limit_reqs"},
		{"CARPICK_LOGGING_LEVEL", "logging.level"},
		{"CARPICK_STORE_BREAKER_OPEN_TIMEOUT", "store.breaker_open_timeout"},
		{"CARPICK_EVENTS_NATS_URL", "events.nats.url"},
		{"CARPICK_EVENTS_NATS_EMBEDDED_SERVER", "events.nats.embedded_server"},
		{"CARPICK_RECOMMEND_FUSION_ALPHA", "recommend.fusion_alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLoadLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 9000\nstore:\n  backend: memory\nrecommend:\n  default_k: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CARPICK_SERVER_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Env beats file beats defaults.
	if cfg.Server.Port != 9100 {
		t.Errorf("Expected env override 9100, got %d", cfg.Server.Port)
	}
	if cfg.Recommend.DefaultK != 7 {
		t.Errorf("Expected file value 7, got %d", cfg.Recommend.DefaultK)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Expected file backend memory, got %q", cfg.Store.Backend)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
}

func TestLoadInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected validation failure, got nil")
	}
}

func TestAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8460}
	if got := s.Addr(); got != "0.0.0.0:8460" {
		t.Errorf("Expected 0.0.0.0:8460, got %q", got)
	}
}
