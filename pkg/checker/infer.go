package checker

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// scope maps parameter names to types inside function bodies.
type scope struct {
	vars   map[string]ty
	parent *scope
}

func (s *scope) lookup(name string) (ty, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return ty{}, false
}

// inferExpr returns the unwidened type of an expression.
func (p *Program) inferExpr(node *ts.Node, sc *scope) ty {
	if node == nil {
		return anyType
	}

	switch node.Kind() {
	case "string":
		return stringLiteral(decodeString(p.text(node)))
	case "template_string":
		return stringType
	case "number":
		if v, ok := parseNumber(p.text(node)); ok {
			return numberLiteral(formatNumber(v))
		}
		return numberType
	case "true":
		return booleanLiteral(true)
	case "false":
		return booleanLiteral(false)
	case "null", "undefined":
		return anyType
	case "regex":
		return named("RegExp")

	case "identifier":
		return p.identifierType(p.text(node), sc)

	case "arrow_function", "function_expression", "function":
		return p.functionType(node, sc)

	case "object":
		return p.objectLiteral(node, sc)

	case "array":
		return p.arrayLiteral(node, sc)

	case "new_expression":
		if ctor := node.ChildByFieldName("constructor"); ctor != nil {
			return named(p.text(ctor))
		}

	case "as_expression", "satisfies_expression":
		return p.assertionType(node, sc)

	case "parenthesized_expression", "non_null_expression":
		if inner := node.NamedChild(0); inner != nil {
			return p.inferExpr(inner, sc)
		}

	case "unary_expression":
		return p.unaryType(node)

	case "update_expression":
		return numberType

	case "binary_expression":
		return p.binaryType(node, sc)

	case "ternary_expression":
		cons := widen(p.inferExpr(node.ChildByFieldName("consequence"), sc))
		alt := widen(p.inferExpr(node.ChildByFieldName("alternative"), sc))
		return union(dedupe([]ty{cons, alt}))

	case "call_expression":
		return p.callType(node, sc)

	case "await_expression":
		if inner := node.NamedChild(0); inner != nil {
			return unwrapPromise(p.inferExpr(inner, sc))
		}
	}

	return anyType
}

func (p *Program) identifierType(name string, sc *scope) ty {
	if t, ok := sc.lookup(name); ok {
		return t
	}
	switch name {
	case "undefined":
		return anyType
	case "NaN", "Infinity":
		return numberType
	}
	return p.bindingType(name)
}

func (p *Program) assertionType(node *ts.Node, sc *scope) ty {
	expr := node.NamedChild(0)
	last := node.Child(node.ChildCount() - 1)
	if last == nil {
		return anyType
	}
	if node.Kind() == "satisfies_expression" {
		return p.inferExpr(expr, sc)
	}
	if last.Kind() == "const" {
		// "as const" keeps literal types
		t := p.inferExpr(expr, sc)
		t.literal = false
		return t
	}
	return p.resolveType(last)
}

func (p *Program) unaryType(node *ts.Node) ty {
	op := node.ChildByFieldName("operator")
	if op == nil {
		return anyType
	}
	switch p.text(op) {
	case "!", "delete":
		return booleanType()
	case "typeof":
		return stringType
	case "void":
		return anyType
	default:
		return numberType
	}
}

func (p *Program) binaryType(node *ts.Node, sc *scope) ty {
	op := node.ChildByFieldName("operator")
	if op == nil {
		return anyType
	}

	switch p.text(op) {
	case "==", "!=", "===", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return booleanType()
	case "&&":
		return widen(p.inferExpr(node.ChildByFieldName("right"), sc))
	case "||", "??":
		left := widen(p.inferExpr(node.ChildByFieldName("left"), sc))
		right := widen(p.inferExpr(node.ChildByFieldName("right"), sc))
		return union(dedupe([]ty{left, right}))
	case "+":
		left := widen(p.inferExpr(node.ChildByFieldName("left"), sc))
		right := widen(p.inferExpr(node.ChildByFieldName("right"), sc))
		switch {
		case left.text == "string" || right.text == "string":
			return stringType
		case left.text == "number" && right.text == "number":
			return numberType
		}
		return anyType
	default:
		return numberType
	}
}

// callType returns the return type of calls to functions declared in the
// same block. Everything else is any.
func (p *Program) callType(node *ts.Node, sc *scope) ty {
	callee := node.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "identifier" {
		return anyType
	}
	if _, local := sc.lookup(p.text(callee)); local {
		return anyType
	}
	target, ok := p.bindings[p.text(callee)]
	if !ok {
		return anyType
	}

	fn := target
	if target.Kind() == "variable_declarator" {
		fn = target.ChildByFieldName("value")
	}
	if fn == nil {
		return anyType
	}
	switch fn.Kind() {
	case "function_declaration", "arrow_function", "function_expression", "function":
		key := "call " + p.text(callee)
		if p.resolving[key] {
			return anyType
		}
		p.resolving[key] = true
		defer delete(p.resolving, key)
		ret, _ := p.returnType(fn, p.paramScope(fn, sc))
		return ret
	}
	return anyType
}

func unwrapPromise(t ty) ty {
	if strings.HasPrefix(t.text, "Promise<") && strings.HasSuffix(t.text, ">") {
		inner := t.text[len("Promise<") : len(t.text)-1]
		if inner == "boolean" {
			return booleanType()
		}
		return named(inner)
	}
	return t
}

func (p *Program) objectLiteral(node *ts.Node, sc *scope) ty {
	var members []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		m := node.NamedChild(i)
		switch m.Kind() {
		case "pair":
			key := m.ChildByFieldName("key")
			if key == nil || key.Kind() == "computed_property_name" {
				continue
			}
			name := p.text(key)
			if key.Kind() == "string" {
				name = decodeString(name)
			}
			t := widen(p.inferExpr(m.ChildByFieldName("value"), sc))
			members = append(members, name+": "+t.text+";")
		case "shorthand_property_identifier":
			name := p.text(m)
			t := widen(p.identifierType(name, sc))
			members = append(members, name+": "+t.text+";")
		case "method_definition":
			name := ""
			if n := m.ChildByFieldName("name"); n != nil {
				name = p.text(n)
			}
			sig := p.signatureParts(m, sc)
			members = append(members, name+sig.params+": "+sig.ret.text+";")
		}
	}
	return objectText(members)
}

func (p *Program) arrayLiteral(node *ts.Node, sc *scope) ty {
	var elems []ty
	for i := uint(0); i < node.NamedChildCount(); i++ {
		el := node.NamedChild(i)
		if el.Kind() == "comment" {
			continue
		}
		if el.Kind() == "spread_element" {
			return named("any[]")
		}
		elems = append(elems, widen(p.inferExpr(el, sc)))
	}
	if len(elems) == 0 {
		return named("any[]")
	}
	return arrayOf(union(dedupe(elems)))
}

// functionType prints a function or arrow as "(a: T, b?: U) => R".
func (p *Program) functionType(node *ts.Node, sc *scope) ty {
	sig := p.signatureParts(node, sc)
	return opaque(sig.typeParams + sig.params + " => " + sig.ret.text)
}

// signatureType prints a function_type annotation.
func (p *Program) signatureType(node *ts.Node, sc *scope) ty {
	return p.functionType(node, sc)
}

type signature struct {
	typeParams string
	params     string
	ret        ty
}

func (p *Program) signatureParts(node *ts.Node, sc *scope) signature {
	var sig signature
	if tp := node.ChildByFieldName("type_parameters"); tp != nil {
		sig.typeParams = collapseSpace(p.text(tp))
	}

	inner := p.paramScope(node, sc)
	sig.params = "(" + strings.Join(p.paramTexts(node, sc), ", ") + ")"
	sig.ret, _ = p.returnType(node, inner)
	return sig
}

// param is one formal parameter.
type param struct {
	name     string
	optional bool
	rest     bool
	t        ty
}

func (p *Program) params(node *ts.Node, sc *scope) []param {
	if single := node.ChildByFieldName("parameter"); single != nil {
		return []param{{name: p.text(single), t: anyType}}
	}
	list := node.ChildByFieldName("parameters")
	if list == nil {
		list = childOfKind(node, "formal_parameters")
	}
	if list == nil {
		return nil
	}

	var out []param
	for i := uint(0); i < list.NamedChildCount(); i++ {
		n := list.NamedChild(i)
		switch n.Kind() {
		case "required_parameter", "optional_parameter":
			out = append(out, p.typedParam(n, sc))
		case "identifier":
			out = append(out, param{name: p.text(n), t: anyType})
		case "assignment_pattern":
			prm := param{name: p.text(n.ChildByFieldName("left")), optional: true}
			prm.t = widen(p.inferExpr(n.ChildByFieldName("right"), sc))
			out = append(out, prm)
		case "rest_pattern":
			out = append(out, param{name: strings.TrimPrefix(p.text(n), "..."), rest: true, t: named("any[]")})
		case "object_pattern", "array_pattern":
			out = append(out, param{name: collapseSpace(p.text(n)), t: anyType})
		}
	}
	return out
}

func (p *Program) typedParam(n *ts.Node, sc *scope) param {
	prm := param{optional: n.Kind() == "optional_parameter", t: anyType}

	pattern := n.ChildByFieldName("pattern")
	if pattern != nil {
		if pattern.Kind() == "rest_pattern" {
			prm.rest = true
			prm.name = strings.TrimPrefix(p.text(pattern), "...")
			prm.t = named("any[]")
		} else if pattern.Kind() == "this" {
			prm.name = "this"
		} else {
			prm.name = collapseSpace(p.text(pattern))
		}
	}

	if anno := n.ChildByFieldName("type"); anno != nil {
		prm.t = p.resolveAnnotation(anno)
	} else if value := n.ChildByFieldName("value"); value != nil {
		prm.t = widen(p.inferExpr(value, sc))
	}
	if n.ChildByFieldName("value") != nil {
		prm.optional = true
	}
	return prm
}

func (p *Program) paramTexts(node *ts.Node, sc *scope) []string {
	var out []string
	for _, prm := range p.params(node, sc) {
		var sb strings.Builder
		if prm.rest {
			sb.WriteString("...")
		}
		sb.WriteString(prm.name)
		if prm.optional {
			sb.WriteString("?")
		}
		sb.WriteString(": ")
		sb.WriteString(prm.t.text)
		out = append(out, sb.String())
	}
	return out
}

func (p *Program) paramScope(node *ts.Node, sc *scope) *scope {
	inner := &scope{vars: make(map[string]ty), parent: sc}
	for _, prm := range p.params(node, sc) {
		inner.vars[prm.name] = prm.t
	}
	return inner
}

// returnType returns the declared or inferred return type and whether it was
// declared.
func (p *Program) returnType(node *ts.Node, sc *scope) (ty, bool) {
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		return p.resolveAnnotation(rt), true
	}
	if node.Kind() == "function_type" {
		if n := node.NamedChildCount(); n > 0 {
			return p.resolveType(node.NamedChild(n - 1)), true
		}
		return anyType, true
	}

	async := false
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == "async" {
			async = true
			break
		}
	}

	ret := voidType
	body := node.ChildByFieldName("body")
	switch {
	case body == nil:
	case body.Kind() == "statement_block":
		var returns []ty
		p.collectReturns(body, sc, &returns)
		if len(returns) > 0 {
			ret = union(dedupe(returns))
		}
	default:
		ret = widen(p.inferExpr(body, sc))
	}

	if async {
		return named("Promise<" + ret.text + ">"), false
	}
	return ret, false
}

// collectReturns gathers the types of return statements in body without
// descending into nested functions.
func (p *Program) collectReturns(n *ts.Node, sc *scope, out *[]ty) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "return_statement":
			if expr := child.NamedChild(0); expr != nil {
				*out = append(*out, widen(p.inferExpr(expr, sc)))
			}
		case "arrow_function", "function_expression", "function", "function_declaration",
			"generator_function", "generator_function_declaration", "class_declaration", "class":
			continue
		default:
			p.collectReturns(child, sc, out)
		}
	}
}

func childOfKind(node *ts.Node, kind string) *ts.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child.Kind() == kind {
			return child
		}
	}
	return nil
}
