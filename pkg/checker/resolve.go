package checker

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// resolveAnnotation resolves a type_annotation node (": T").
func (p *Program) resolveAnnotation(anno *ts.Node) ty {
	if anno.Kind() != "type_annotation" {
		return p.resolveType(anno)
	}
	if anno.NamedChildCount() == 0 {
		return anyType
	}
	return p.resolveType(anno.NamedChild(0))
}

// resolveType resolves a type node to its printed form and shape.
func (p *Program) resolveType(node *ts.Node) ty {
	if node == nil {
		return anyType
	}

	switch node.Kind() {
	case "predefined_type":
		text := p.text(node)
		if text == "boolean" {
			return booleanType()
		}
		return named(text)

	case "type_identifier":
		return p.resolveTypeName(p.text(node))

	case "nested_type_identifier":
		return named(p.text(node))

	case "literal_type":
		return p.resolveLiteralType(node)

	case "union_type":
		var members []ty
		for _, m := range flattenUnion(node) {
			members = append(members, p.resolveType(m))
		}
		return union(members)

	case "parenthesized_type":
		if inner := node.NamedChild(0); inner != nil {
			return p.resolveType(inner)
		}

	case "array_type":
		if elem := node.NamedChild(0); elem != nil {
			return arrayOf(p.resolveType(elem))
		}

	case "readonly_type":
		if inner := node.NamedChild(0); inner != nil {
			return named("readonly " + p.resolveType(inner).text)
		}

	case "generic_type":
		return p.resolveGeneric(node)

	case "tuple_type":
		var elems []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			elems = append(elems, p.resolveTupleElement(node.NamedChild(i)))
		}
		return named("[" + strings.Join(elems, ", ") + "]")

	case "function_type":
		return p.signatureType(node, nil)

	case "object_type":
		return p.objectTypeLiteral(node)

	case "intersection_type":
		var parts []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			parts = append(parts, p.resolveType(node.NamedChild(i)).text)
		}
		return named(strings.Join(parts, " & "))

	case "type_query":
		// typeof x
		if target := node.NamedChild(0); target != nil && target.Kind() == "identifier" {
			return p.bindingType(p.text(target))
		}

	case "this_type":
		return named("this")
	}

	return named(collapseSpace(p.text(node)))
}

// resolveTypeName follows local type aliases. Interfaces, classes, enums and
// imported names stay nominal.
func (p *Program) resolveTypeName(name string) ty {
	alias, ok := p.aliases[name]
	key := "type " + name
	if !ok || p.resolving[key] {
		return named(name)
	}
	if alias.ChildByFieldName("type_parameters") != nil {
		return named(name)
	}

	p.resolving[key] = true
	defer delete(p.resolving, key)
	return p.resolveType(alias.ChildByFieldName("value"))
}

func (p *Program) resolveLiteralType(node *ts.Node) ty {
	inner := node.NamedChild(0)
	if inner == nil {
		// true, false, null and undefined may appear as anonymous children
		inner = node.Child(0)
	}
	if inner == nil {
		return named(p.text(node))
	}

	switch inner.Kind() {
	case "string":
		return stringLiteral(decodeString(p.text(inner)))
	case "number":
		if v, ok := parseNumber(p.text(inner)); ok {
			return numberLiteral(formatNumber(v))
		}
	case "unary_expression":
		if arg := inner.ChildByFieldName("argument"); arg != nil && arg.Kind() == "number" {
			if v, ok := parseNumber(p.text(arg)); ok {
				return numberLiteral(formatNumber(-v))
			}
		}
	case "true":
		return booleanLiteral(true)
	case "false":
		return booleanLiteral(false)
	}
	return named(p.text(inner))
}

func (p *Program) resolveGeneric(node *ts.Node) ty {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = node.NamedChild(0)
	}
	argsNode := node.ChildByFieldName("type_arguments")
	if argsNode == nil {
		argsNode = childOfKind(node, "type_arguments")
	}
	if nameNode == nil {
		return named(p.text(node))
	}
	name := p.text(nameNode)

	var args []ty
	if argsNode != nil {
		for i := uint(0); i < argsNode.NamedChildCount(); i++ {
			args = append(args, p.resolveType(argsNode.NamedChild(i)))
		}
	}

	if (name == "Array" || name == "ReadonlyArray") && len(args) == 1 {
		elem := arrayOf(args[0])
		if name == "ReadonlyArray" {
			return named("readonly " + elem.text)
		}
		return elem
	}

	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = a.text
	}
	return named(name + "<" + strings.Join(texts, ", ") + ">")
}

func (p *Program) resolveTupleElement(node *ts.Node) string {
	switch node.Kind() {
	case "optional_type":
		if inner := node.NamedChild(0); inner != nil {
			return p.resolveType(inner).text + "?"
		}
	case "rest_type":
		if inner := node.NamedChild(0); inner != nil {
			return "..." + p.resolveType(inner).text
		}
	case "required_parameter", "optional_parameter":
		// labelled tuple member: [x: number]
		return collapseSpace(p.text(node))
	}
	return p.resolveType(node).text
}

// objectTypeLiteral prints an inline object type as "{ a: string; b?: number; }".
func (p *Program) objectTypeLiteral(node *ts.Node) ty {
	var members []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		m := node.NamedChild(i)
		switch m.Kind() {
		case "property_signature":
			members = append(members, p.propertySignature(m))
		case "comment":
			continue
		default:
			members = append(members, strings.TrimRight(collapseSpace(p.text(m)), ";,")+";")
		}
	}
	return objectText(members)
}

func (p *Program) propertySignature(sig *ts.Node) string {
	name := ""
	if n := sig.ChildByFieldName("name"); n != nil {
		name = p.text(n)
	}
	optional := false
	readonly := false
	for i := uint(0); i < sig.ChildCount(); i++ {
		switch sig.Child(i).Kind() {
		case "?":
			optional = true
		case "readonly":
			readonly = true
		}
	}

	t := anyType
	if anno := sig.ChildByFieldName("type"); anno != nil {
		t = p.resolveAnnotation(anno)
	}

	var sb strings.Builder
	if readonly {
		sb.WriteString("readonly ")
	}
	sb.WriteString(name)
	if optional {
		sb.WriteString("?")
	}
	sb.WriteString(": ")
	sb.WriteString(t.text)
	sb.WriteString(";")
	return sb.String()
}

func objectText(members []string) ty {
	if len(members) == 0 {
		return opaque("{}")
	}
	return opaque("{ " + strings.Join(members, " ") + " }")
}

// flattenUnion flattens the left-recursive union_type tree tree-sitter
// produces for "A | B | C" into its leaf members.
func flattenUnion(node *ts.Node) []*ts.Node {
	if node == nil {
		return nil
	}
	if node.Kind() != "union_type" {
		return []*ts.Node{node}
	}
	var members []*ts.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		members = append(members, flattenUnion(node.NamedChild(i))...)
	}
	return members
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
