// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

// Package database holds the DuckDB-backed learning log: the append-only
// record of feedback events and the per-user session summaries that
// pattern analysis aggregates on demand.
//
// The learning log is observability for the learner, not the source of
// truth for profiles (that is the personalization store). Log failures
// are logged and swallowed at call sites; they never block learning.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"
)

// Config holds learning-log settings.
type Config struct {
	// Path is the database file. Empty uses an in-memory database.
	Path string

	// Threads for DuckDB. 0 = runtime.NumCPU().
	Threads int
}

// DB wraps the DuckDB connection for the learning log.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open opens the learning log and creates the schema. Failing here is a
// startup error.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg Config, logger zerolog.Logger) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	connStr := cfg.Path
	if connStr != "" {
		connStr = fmt.Sprintf("%s?access_mode=read_write&threads=%d", cfg.Path, threads)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	db := &DB{
		conn:   conn,
		logger: logger.With().Str("component", "learning-log").Logger(),
	}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate learning log: %w", err)
	}

	return db, nil
}

// migrate creates the learning-log schema.
func (db *DB) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS feedback_events (
			user_id VARCHAR NOT NULL,
			candidate_id VARCHAR NOT NULL,
			action VARCHAR NOT NULL,
			view_duration_seconds INTEGER DEFAULT 0,
			price DOUBLE DEFAULT 0,
			brand VARCHAR DEFAULT '',
			body_type VARCHAR DEFAULT '',
			fuel_efficiency DOUBLE DEFAULT 0,
			safety_rating DOUBLE DEFAULT 0,
			occurred_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			user_id VARCHAR NOT NULL,
			persona VARCHAR DEFAULT '',
			budget_range VARCHAR DEFAULT '',
			vehicle_type VARCHAR DEFAULT '',
			satisfaction DOUBLE DEFAULT 0,
			started_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// Ping verifies the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
