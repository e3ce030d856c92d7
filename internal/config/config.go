// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

// Package config loads and validates engine configuration using Koanf v2
// with layered sources: built-in defaults, an optional YAML file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the engine.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Database  DatabaseConfig  `koanf:"database"`
	Events    EventsConfig    `koanf:"events"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig holds personalization store settings.
type StoreConfig struct {
	// Backend is "badger" or "memory".
	Backend string `koanf:"backend"`

	// Path is the BadgerDB directory (badger backend only).
	Path string `koanf:"path"`

	// OpTimeout bounds a single get/put. On timeout the caller proceeds
	// with the profile it already has.
	OpTimeout time.Duration `koanf:"op_timeout"`

	// Breaker settings for the circuit breaker around the store.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerOpenTimeout      time.Duration `koanf:"breaker_open_timeout"`
}

// DatabaseConfig holds learning-log (DuckDB) settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty string uses an in-memory database.
	Path string `koanf:"path"`

	// Threads for DuckDB. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// EventsConfig holds feedback event pipeline settings.
type EventsConfig struct {
	// Transport is "gochannel" (in-process, default) or "nats".
	Transport string `koanf:"transport"`

	// Topic for feedback events.
	Topic string `koanf:"topic"`

	// SessionTopic for session summaries feeding pattern analysis.
	SessionTopic string `koanf:"session_topic"`

	// PoisonTopic receives events that exhaust retries.
	PoisonTopic string `koanf:"poison_topic"`

	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	ThrottlePerSecond    int64         `koanf:"throttle_per_second"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`

	// NATS settings (transport=nats only).
	NATS NATSConfig `koanf:"nats"`
}

// NATSConfig holds NATS JetStream settings for the feedback pipeline.
type NATSConfig struct {
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	DurableName    string `koanf:"durable_name"`
	QueueGroup     string `koanf:"queue_group"`
}

// RecommendConfig holds scoring engine settings.
type RecommendConfig struct {
	// Workers bounds concurrent candidate scoring. 0 = min(8, NumCPU).
	Workers int `koanf:"workers"`

	// DefaultK and MaxK bound the number of returned recommendations.
	DefaultK int `koanf:"default_k"`
	MaxK     int `koanf:"max_k"`

	// FusionAlpha weights the bilinear branch in collaborative fusion.
	FusionAlpha float64 `koanf:"fusion_alpha"`

	// ParamsPath optionally loads collaborative weight matrices from YAML.
	// Empty string uses the built-in deterministic parameter set.
	ParamsPath string `koanf:"params_path"`
}

// defaultConfig returns a Config with all sensible default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			Backend:                 "badger",
			Path:                    "/data/profiles",
			OpTimeout:               2 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerOpenTimeout:      15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:    "/data/carpick.duckdb",
			Threads: 0,
		},
		Events: EventsConfig{
			Transport:            "gochannel",
			Topic:                "feedback.events",
			SessionTopic:         "session.events",
			PoisonTopic:          "feedback.poison",
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			ThrottlePerSecond:    0, // unlimited
			CloseTimeout:         30 * time.Second,
			NATS: NATSConfig{
				URL:            "nats://127.0.0.1:4222",
				EmbeddedServer: false,
				StoreDir:       "/data/nats/jetstream",
				DurableName:    "feedback-learner",
				QueueGroup:     "learners",
			},
		},
		Recommend: RecommendConfig{
			Workers:     0,
			DefaultK:    5,
			MaxK:        50,
			FusionAlpha: 0.6,
			ParamsPath:  "",
		},
	}
}

// Validate checks the configuration for invalid combinations.
// Misconfiguration is fatal at startup, never per request.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Store.Backend {
	case "badger":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for badger backend")
		}
	case "memory":
	default:
		return fmt.Errorf("store.backend %q unknown (want badger or memory)", c.Store.Backend)
	}
	if c.Store.OpTimeout <= 0 {
		return fmt.Errorf("store.op_timeout must be positive")
	}
	switch c.Events.Transport {
	case "gochannel":
	case "nats":
		if c.Events.NATS.URL == "" && !c.Events.NATS.EmbeddedServer {
			return fmt.Errorf("events.nats.url required when embedded server is disabled")
		}
	default:
		return fmt.Errorf("events.transport %q unknown (want gochannel or nats)", c.Events.Transport)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("events.topic must not be empty")
	}
	if c.Events.SessionTopic == "" {
		return fmt.Errorf("events.session_topic must not be empty")
	}
	if c.Recommend.DefaultK < 1 {
		return fmt.Errorf("recommend.default_k must be >= 1")
	}
	if c.Recommend.MaxK < c.Recommend.DefaultK {
		return fmt.Errorf("recommend.max_k %d < default_k %d", c.Recommend.MaxK, c.Recommend.DefaultK)
	}
	if c.Recommend.FusionAlpha < 0 || c.Recommend.FusionAlpha > 1 {
		return fmt.Errorf("recommend.fusion_alpha %f out of [0,1]", c.Recommend.FusionAlpha)
	}
	if c.Recommend.Workers < 0 {
		return fmt.Errorf("recommend.workers must not be negative")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
