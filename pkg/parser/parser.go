package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var errPoolClosed = errors.New("parser manager is closed")

// ParserManager hands out tree-sitter parsers for script blocks.
//
// Each Parse call checks a parser out of a per-language pool, uses it
// exclusively and checks it back in before Parse returns. The resulting Tree
// is owned by the caller and shares nothing with other calls, so extractions
// running in parallel never observe each other's programs.
//
// Pools are created lazily on first use per language. Callers must Close the
// returned trees and, when done, the manager itself.
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse(ctx, []byte("export let x: number = 1;"), LanguageTypeScript)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	mu       sync.RWMutex
	pools    map[Language]*parserPool
	poolSize int
	closed   bool
	parses   int

	logger *slog.Logger
}

// Option configures a ParserManager.
type Option func(*ParserManager)

// WithPoolSize caps the number of parsers per language. Values <= 0 keep the
// CPU-based default.
func WithPoolSize(size int) Option {
	return func(pm *ParserManager) {
		pm.poolSize = getPoolSize(size)
	}
}

// NewParserManager creates a ParserManager. It must be closed via Close.
func NewParserManager(logger *slog.Logger, opts ...Option) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	pm := &ParserManager{
		pools:    make(map[Language]*parserPool),
		poolSize: getDefaultPoolSize(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(pm)
	}
	return pm
}

// Parse parses source with the grammar for lang.
//
// When every parser for lang is checked out, Parse waits until one comes back
// or ctx ends. Trees containing syntax errors are still returned; callers
// decide whether the damaged regions matter to them. The returned Tree must
// be closed by the caller.
func (pm *ParserManager) Parse(ctx context.Context, source []byte, lang Language) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pool, err := pm.pool(lang)
	if err != nil {
		return nil, err
	}

	parser, err := pool.checkout(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s parser: %w", lang, err)
	}
	tree := parser.Parse(source, nil)
	pool.checkin(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser returned no tree for %d bytes of %s", len(source), lang)
	}
	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors",
			"language", lang.String(),
			"bytes", len(source))
	}
	return tree, nil
}

// Close frees all pooled parsers. Parse fails after Close.
func (pm *ParserManager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		return nil
	}
	pm.closed = true

	for _, pool := range pm.pools {
		pool.close()
	}
	pm.logger.Debug("closed parser manager",
		"parses", pm.parses,
		"pools", len(pm.pools))
	return nil
}

// pool returns the pool for lang, creating it on first use, and counts the
// parse against the manager.
func (pm *ParserManager) pool(lang Language) (*parserPool, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		return nil, errPoolClosed
	}
	pm.parses++

	if pool, ok := pm.pools[lang]; ok {
		return pool, nil
	}

	grammar, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}
	pool := newParserPool(lang, grammar, pm.poolSize, pm.logger)
	pm.pools[lang] = pool

	pm.logger.Debug("created parser pool",
		"language", lang.String(),
		"max_size", pm.poolSize)
	return pool, nil
}

func grammarFor(lang Language) (*ts.Language, error) {
	switch lang {
	case LanguageTypeScript:
		return ts.NewLanguage(ts_typescript.LanguageTypescript()), nil
	case LanguageJavaScript:
		return ts.NewLanguage(ts_javascript.Language()), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	stats := ParserStats{
		ParsesCalled: pm.parses,
		PoolSize:     pm.poolSize,
	}
	for _, pool := range pm.pools {
		stats.ParsersCreated += pool.createdCount()
	}
	return stats
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the total number of parser instances created.
	ParsersCreated int

	// ParsesCalled counts Parse calls that reached a pool.
	ParsesCalled int

	// PoolSize is the per-language cap on parser instances.
	PoolSize int
}
