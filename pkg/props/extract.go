package props

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/propspec/pkg/checker"
	"github.com/gnana997/propspec/pkg/parser"
	"github.com/gnana997/propspec/pkg/script"
	"github.com/gnana997/propspec/pkg/util"
)

// ExtractorConfig configures an Extractor.
type ExtractorConfig struct {
	// CacheSize is the number of results kept in the LRU cache. Zero
	// disables caching.
	CacheSize int

	// AllowUntyped also extracts props from plain <script> blocks, parsed
	// as JavaScript.
	AllowUntyped bool

	// PoolSize caps the parsers per language. Zero picks a size from the
	// CPU count.
	PoolSize int

	// Reader loads component files. Defaults to a util.MmapReader.
	Reader util.SourceReader
}

// ExtractorStats reports extractor activity.
type ExtractorStats struct {
	Extractions int64
	CacheHits   int64
	CacheMisses int64
	Failures    int64

	// ParsersCreated counts parser instances across all language pools.
	ParsersCreated int
}

// Extractor runs the read, extract and classify pipeline. It is safe for
// concurrent use: every call checks out its own parser.
type Extractor struct {
	config  ExtractorConfig
	reader  util.SourceReader
	parsers *parser.ParserManager
	checker *checker.Checker
	cache   *lru.Cache[string, []Prop]
	logger  *slog.Logger

	extractions atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	failures    atomic.Int64
}

// NewExtractor creates an Extractor. Call Close when done.
func NewExtractor(config ExtractorConfig, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reader := config.Reader
	if reader == nil {
		reader = util.NewMmapReader(logger)
	}

	var opts []parser.Option
	if config.PoolSize > 0 {
		opts = append(opts, parser.WithPoolSize(config.PoolSize))
	}
	pm := parser.NewParserManager(logger, opts...)

	e := &Extractor{
		config:  config,
		reader:  reader,
		parsers: pm,
		checker: checker.New(pm, logger),
		logger:  logger,
	}

	if config.CacheSize > 0 {
		cache, err := lru.New[string, []Prop](config.CacheSize)
		if err != nil {
			pm.Close()
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// ExtractFile reads path and extracts its props. Read errors are returned
// unchanged.
func (e *Extractor) ExtractFile(ctx context.Context, path string, opts Options) ([]Prop, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := e.reader.ReadSource(path)
	if err != nil {
		e.failures.Add(1)
		return nil, err
	}

	props, err := e.ExtractSource(ctx, content, opts)
	if err != nil {
		e.logger.Debug("extraction failed", "path", path, "error", err)
		return nil, err
	}
	return props, nil
}

// ExtractSource extracts props from component text already in memory.
func (e *Extractor) ExtractSource(ctx context.Context, content []byte, opts Options) ([]Prop, error) {
	e.extractions.Add(1)

	var key string
	if e.cache != nil {
		key = cacheKey(content, opts)
		if cached, ok := e.cache.Get(key); ok {
			e.cacheHits.Add(1)
			return cloneProps(cached), nil
		}
		e.cacheMisses.Add(1)
	}

	block, err := script.Extract(string(content), script.ExtractOptions{AllowUntyped: e.config.AllowUntyped})
	if err != nil {
		e.failures.Add(1)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	props, err := Classify(ctx, e.checker, block, opts)
	if err != nil {
		e.failures.Add(1)
		return nil, err
	}

	if e.cache != nil {
		e.cache.Add(key, cloneProps(props))
	}
	return props, nil
}

// Stats returns a snapshot of the extractor counters.
func (e *Extractor) Stats() ExtractorStats {
	return ExtractorStats{
		Extractions: e.extractions.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
		Failures:    e.failures.Load(),

		ParsersCreated: e.parsers.GetStats().ParsersCreated,
	}
}

// Close releases the pooled parsers.
func (e *Extractor) Close() error {
	if e.cache != nil {
		e.cache.Purge()
	}
	return e.parsers.Close()
}

func cacheKey(content []byte, opts Options) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]) + "|" + opts.key()
}

// ExtractTypesFromFile reads a component file and returns its props.
//
// Errors from reading (such as fs.ErrNotExist), script.ErrBlockNotFound and
// checker.ErrParse propagate to the caller. For many files, reuse an
// Extractor instead.
func ExtractTypesFromFile(ctx context.Context, path string, opts Options) ([]Prop, error) {
	e, err := NewExtractor(ExtractorConfig{PoolSize: 1}, slog.Default())
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.ExtractFile(ctx, path, opts)
}
