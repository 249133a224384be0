package checker

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/propspec/pkg/parser"
)

// DeclKind is the binding keyword of a variable declaration.
type DeclKind int

const (
	DeclLet DeclKind = iota
	DeclConst
	DeclVar
)

// String returns the keyword.
func (k DeclKind) String() string {
	switch k {
	case DeclLet:
		return "let"
	case DeclConst:
		return "const"
	default:
		return "var"
	}
}

// Program is one parsed script block.
//
// A Program is not safe for concurrent use; each extraction gets its own.
type Program struct {
	tree   *ts.Tree
	source []byte
	lang   parser.Language

	decls []*Declaration

	// top-level names, resolved lazily
	aliases   map[string]*ts.Node
	bindings  map[string]*ts.Node
	typeCache map[string]ty
	resolving map[string]bool
}

func newProgram(tree *ts.Tree, source []byte, lang parser.Language) *Program {
	p := &Program{
		tree:      tree,
		source:    source,
		lang:      lang,
		aliases:   make(map[string]*ts.Node),
		bindings:  make(map[string]*ts.Node),
		typeCache: make(map[string]ty),
		resolving: make(map[string]bool),
	}
	p.collect()
	return p
}

// Close releases the syntax tree.
func (p *Program) Close() {
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
}

// Language returns the grammar the program was parsed with.
func (p *Program) Language() parser.Language {
	return p.lang
}

// Declarations returns every top-level variable declarator in source order.
func (p *Program) Declarations() []*Declaration {
	return p.decls
}

// collect walks the top-level statements once, recording declarations,
// type aliases and named bindings.
func (p *Program) collect() {
	root := p.tree.RootNode()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		p.collectStatement(stmt, stmt, false)
	}
}

func (p *Program) collectStatement(stmt, node *ts.Node, exported bool) {
	switch node.Kind() {
	case "export_statement":
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			p.collectStatement(stmt, decl, true)
		}

	case "lexical_declaration", "variable_declaration":
		kind := declKind(node)
		for i := uint(0); i < node.NamedChildCount(); i++ {
			declarator := node.NamedChild(i)
			if declarator.Kind() != "variable_declarator" {
				continue
			}
			name := declarator.ChildByFieldName("name")
			// Destructuring patterns are not bindings we can describe.
			if name == nil || name.Kind() != "identifier" {
				continue
			}
			d := &Declaration{
				Name:     name.Utf8Text(p.source),
				Kind:     kind,
				Exported: exported,
				Line:     int(declarator.StartPosition().Row) + 1,
				prog:     p,
				stmt:     stmt,
				node:     declarator,
			}
			p.decls = append(p.decls, d)
			if _, seen := p.bindings[d.Name]; !seen {
				p.bindings[d.Name] = declarator
			}
		}

	case "function_declaration", "class_declaration", "enum_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			p.bindings[name.Utf8Text(p.source)] = node
		}

	case "type_alias_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			p.aliases[name.Utf8Text(p.source)] = node
		}
	}
}

func declKind(node *ts.Node) DeclKind {
	if node.Kind() == "variable_declaration" {
		return DeclVar
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		switch node.Child(i).Kind() {
		case "let":
			return DeclLet
		case "const":
			return DeclConst
		}
	}
	return DeclLet
}

// bindingType returns the type of a top-level name, or any when the name is
// unknown or its type depends on itself.
func (p *Program) bindingType(name string) ty {
	if t, ok := p.typeCache[name]; ok {
		return t
	}
	node, ok := p.bindings[name]
	if !ok || p.resolving[name] {
		return anyType
	}

	p.resolving[name] = true
	var t ty
	switch node.Kind() {
	case "variable_declarator":
		t = p.declaratorType(node, nil)
	case "function_declaration":
		t = p.functionType(node, nil)
	case "class_declaration":
		t = opaque("typeof " + name)
	default:
		t = named(name)
	}
	delete(p.resolving, name)

	p.typeCache[name] = t
	return t
}

// declaratorType is the declared type if annotated, otherwise the widened
// type of the initializer, otherwise any.
func (p *Program) declaratorType(declarator *ts.Node, sc *scope) ty {
	if anno := declarator.ChildByFieldName("type"); anno != nil {
		return p.resolveAnnotation(anno)
	}
	if value := declarator.ChildByFieldName("value"); value != nil {
		if declKind(declarator.Parent()) == DeclConst {
			return p.inferExpr(value, sc)
		}
		return widen(p.inferExpr(value, sc))
	}
	return anyType
}

// ExportErr returns a *ParseError for the first syntax error that touches an
// exported statement: either the top-level statement holding the error
// contains an export keyword, or the error sits on a line that starts with
// one. Errors anywhere else are ignored.
func (p *Program) ExportErr() error {
	root := p.tree.RootNode()
	if !root.HasError() {
		return nil
	}
	lines := strings.Split(string(p.source), "\n")
	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		if !stmt.HasError() && !stmt.IsError() && !stmt.IsMissing() {
			continue
		}
		exported := containsKind(stmt, "export")
		var found *ParseError
		walkErrors(stmt, func(n *ts.Node) bool {
			row := int(n.StartPosition().Row)
			onExportLine := row < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[row]), "export")
			if exported || onExportLine {
				found = firstSyntaxError(n, p.source)
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// walkErrors calls fn for each ERROR or MISSING node under n in document
// order until fn returns false.
func walkErrors(n *ts.Node, fn func(*ts.Node) bool) bool {
	if n.IsError() || n.IsMissing() {
		return fn(n)
	}
	if !n.HasError() {
		return true
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if !walkErrors(n.Child(i), fn) {
			return false
		}
	}
	return true
}

func containsKind(n *ts.Node, kind string) bool {
	if n.Kind() == kind {
		return true
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if containsKind(n.Child(i), kind) {
			return true
		}
	}
	return false
}

func (p *Program) text(n *ts.Node) string {
	return n.Utf8Text(p.source)
}
