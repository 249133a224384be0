// Package checker answers type questions about a script block.
//
// It stands in for a TypeScript type-checker: the block is parsed with
// tree-sitter and every top-level variable declaration is given a type,
// either from its annotation or inferred from its initializer the way a
// non-strict TypeScript compiler widens `let` bindings. The result is
// reported as a TypeInfo with one of three shapes: primitive/named, union,
// or opaque (anonymous function and object types).
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/propspec/pkg/parser"
)

// ErrParse is the sentinel behind every ParseError.
var ErrParse = errors.New("parse failed")

// ParseError reports a syntax error in a region of the program that had to be
// inspected. Line and Column are 1-based and relative to the program text.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", ErrParse, e.Message)
	}
	return fmt.Sprintf("%s at %d:%d: %s", ErrParse, e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Checker turns program text into Programs. It holds no per-program state,
// so one Checker can serve any number of goroutines.
type Checker struct {
	parsers *parser.ParserManager
	logger  *slog.Logger
}

// New creates a Checker that borrows parsers from pm.
func New(pm *parser.ParserManager, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{parsers: pm, logger: logger}
}

// Check parses source as a standalone program. The returned Program owns its
// syntax tree and must be closed.
func (c *Checker) Check(ctx context.Context, source []byte, lang parser.Language) (*Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := c.parsers.Parse(ctx, source, lang)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ParseError{Message: err.Error()}
	}

	prog := newProgram(tree, source, lang)

	if root := tree.RootNode(); root.HasError() {
		if pe := firstSyntaxError(root, source); pe != nil {
			c.logger.Warn("script block contains syntax errors",
				"language", lang.String(),
				"line", pe.Line,
				"column", pe.Column,
				"error", pe.Message)
		}
	}

	return prog, nil
}

// firstSyntaxError returns the first ERROR or MISSING node under n, in
// document order.
func firstSyntaxError(n *ts.Node, source []byte) *ParseError {
	if n == nil {
		return nil
	}
	if n.IsMissing() {
		return newParseError(n, "missing "+n.Kind())
	}
	if n.IsError() {
		return newParseError(n, fmt.Sprintf("unexpected %q", snippet(n.Utf8Text(source))))
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if pe := firstSyntaxError(n.Child(i), source); pe != nil {
			return pe
		}
	}
	return nil
}

func newParseError(n *ts.Node, msg string) *ParseError {
	pos := n.StartPosition()
	return &ParseError{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Message: msg,
	}
}

func snippet(s string) string {
	const max = 40
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
