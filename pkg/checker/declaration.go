package checker

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Declaration is a single top-level variable declarator.
type Declaration struct {
	Name     string
	Kind     DeclKind
	Exported bool
	// Line is 1-based and relative to the program text.
	Line int

	prog *Program
	stmt *ts.Node
	node *ts.Node
}

// Err returns a *ParseError when the statement holding the declaration
// contains a syntax error.
func (d *Declaration) Err() error {
	if !d.stmt.HasError() {
		return nil
	}
	if pe := firstSyntaxError(d.stmt, d.prog.source); pe != nil {
		return pe
	}
	return &ParseError{Line: d.Line, Message: fmt.Sprintf("malformed declaration of %s", d.Name)}
}

// Type returns the checker's view of the binding's type.
func (d *Declaration) Type() TypeInfo {
	return d.prog.declaratorType(d.node, nil).info()
}

// Literal returns the initializer when it is a string, numeric or boolean
// literal. Any other initializer, including a missing one, reports false.
func (d *Declaration) Literal() (Literal, bool) {
	value := d.node.ChildByFieldName("value")
	if value == nil {
		return Literal{}, false
	}

	switch value.Kind() {
	case "string":
		return Literal{Kind: LiteralString, String: decodeString(d.prog.text(value))}, true
	case "number":
		if v, ok := parseNumber(d.prog.text(value)); ok {
			return Literal{Kind: LiteralNumber, Number: v}, true
		}
	case "true":
		return Literal{Kind: LiteralBoolean, Bool: true}, true
	case "false":
		return Literal{Kind: LiteralBoolean, Bool: false}, true
	}
	return Literal{}, false
}

// InitializerText returns the raw source of the initializer, or "".
func (d *Declaration) InitializerText() string {
	if value := d.node.ChildByFieldName("value"); value != nil {
		return d.prog.text(value)
	}
	return ""
}
