package parser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool is a channel-backed pool of parsers sharing one grammar.
//
// A parser is held by exactly one caller between checkout and checkin.
// Parsers are created lazily up to maxSize; after that checkout waits for a
// checkin or for the context to end.
type parserPool struct {
	idle    chan *ts.Parser
	grammar *ts.Language
	lang    Language
	maxSize int

	mu      sync.Mutex
	created int
	closed  bool

	logger *slog.Logger
}

func newParserPool(lang Language, grammar *ts.Language, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		idle:    make(chan *ts.Parser, maxSize),
		grammar: grammar,
		lang:    lang,
		maxSize: maxSize,
		logger:  logger,
	}
}

// checkout hands out an idle parser, builds a new one while under the cap,
// or waits for one to be checked in.
func (p *parserPool) checkout(ctx context.Context) (*ts.Parser, error) {
	select {
	case parser, ok := <-p.idle:
		if !ok {
			return nil, errPoolClosed
		}
		return parser, nil
	default:
	}

	parser, err := p.grow()
	if parser != nil || err != nil {
		return parser, err
	}

	select {
	case parser, ok := <-p.idle:
		if !ok {
			return nil, errPoolClosed
		}
		return parser, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// grow creates a parser if the pool is below its cap. It returns (nil, nil)
// when the cap is reached.
func (p *parserPool) grow() (*ts.Parser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errPoolClosed
	}
	if p.created >= p.maxSize {
		return nil, nil
	}

	parser := ts.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("failed to create parser")
	}
	if err := parser.SetLanguage(p.grammar); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	p.created++
	p.logger.Debug("created parser in pool",
		"language", p.lang.String(),
		"pool_size", p.created)
	return parser, nil
}

// checkin resets a parser and makes it available again. Parsers checked in
// after close are freed.
func (p *parserPool) checkin(parser *ts.Parser) {
	if parser == nil {
		return
	}
	parser.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		parser.Close()
		return
	}
	select {
	case p.idle <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser",
			"language", p.lang.String())
	}
}

// close frees idle parsers. Parsers still checked out are freed on checkin.
func (p *parserPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.idle)

	freed := 0
	for parser := range p.idle {
		parser.Close()
		freed++
	}

	p.logger.Debug("closed parser pool",
		"language", p.lang.String(),
		"parsers_closed", freed)
}

func (p *parserPool) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
