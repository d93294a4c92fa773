// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storage is the storefront's embedded document store.
//
// BadgerDB holds every collection (products, orders, carts, users, sessions)
// as JSON documents under a per-collection key prefix:
//
//	<collection>/doc/<id>              JSON document
//	<collection>/idx/<name>/<value>    unique index entry, value is the doc id
//
// Carts and sessions are written with a TTL and expire on their own.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Config holds configuration for the store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests and demo mode.
	InMemory bool

	// SyncWrites fsyncs every commit. Default: true for persistent stores.
	SyncWrites bool

	// Logger receives BadgerDB's internal log lines.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger

	// GCInterval is how often to run value log garbage collection.
	// Default: 5 minutes. Zero disables GC.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum ratio of discardable data before GC.
	// Default: 0.5
	GCDiscardRatio float64
}

// DefaultConfig returns defaults for a persistent store at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns configuration for tests: no disk I/O, no GC.
func InMemoryConfig() Config {
	return Config{
		InMemory: true,
	}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// DB is the opened store.
//
// # Thread Safety
//
// Safe for concurrent use. Close must be called exactly once.
type DB struct {
	db       *badger.DB
	cfg      Config
	inMemory bool
}

// Open opens the store described by cfg.
//
// # Description
//
// Opens BadgerDB at cfg.Path (created if missing) or in memory. One version
// per key is kept; the store never reads history.
//
// # Outputs
//
//   - *DB: The opened store. Caller must call Close() when done.
//   - error: Non-nil if the path is missing or BadgerDB cannot open.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &DB{db: db, cfg: cfg, inMemory: cfg.InMemory}, nil
}

// OpenInMemory opens an empty in-memory store.
func OpenInMemory() (*DB, error) {
	return Open(InMemoryConfig())
}

// Close flushes and closes the store.
func (d *DB) Close() error {
	return d.db.Close()
}

// InMemory returns true if this is an in-memory store.
func (d *DB) InMemory() bool {
	return d.inMemory
}

// Path returns the database path, or empty string for in-memory stores.
func (d *DB) Path() string {
	if d.inMemory {
		return ""
	}
	return d.cfg.Path
}

// Update executes fn within a read-write transaction and commits if fn
// returns nil. A write-write conflict with a concurrent transaction is
// reported as ErrConflict.
func (d *DB) Update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	txn := d.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// View executes fn within a read-only transaction.
func (d *DB) View(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	txn := d.db.NewTransaction(false)
	defer txn.Discard()

	return fn(txn)
}

// =============================================================================
// Value Log GC
// =============================================================================

// RunGC runs value log garbage collection every cfg.GCInterval until ctx is
// cancelled. It returns immediately for in-memory stores or when GC is
// disabled, so it can always be started from an errgroup.
func (d *DB) RunGC(ctx context.Context) error {
	if d.inMemory || d.cfg.GCInterval <= 0 {
		return nil
	}
	ratio := d.cfg.GCDiscardRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}

	ticker := time.NewTicker(d.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.runGC(ratio)
		}
	}
}

func (d *DB) runGC(ratio float64) {
	// Keep rewriting while BadgerDB finds files worth collecting.
	for i := 0; i < 10; i++ {
		err := d.db.RunValueLogGC(ratio)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) && d.cfg.Logger != nil {
			d.cfg.Logger.Warn("badger value log GC error", "error", err)
		}
		return
	}
}
