package checker

import "strings"

// TypeKind is the shape of a classified type.
type TypeKind int

const (
	// KindPrimitive covers every type with a name: predefined types,
	// references, arrays, tuples and single literal types.
	KindPrimitive TypeKind = iota
	// KindUnion is an alternation of member types.
	KindUnion
	// KindOpaque is an anonymous structural type: function signatures and
	// object shapes.
	KindOpaque
)

// String returns the lower-case name of the kind.
func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindUnion:
		return "union"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// TypeInfo is the checker's answer for one declaration.
type TypeInfo struct {
	Kind TypeKind

	// Text is the type as a TypeScript compiler would print it, e.g.
	// "string", "Foo[]", "\"SMALL\" | \"LARGE\"" or "() => void".
	Text string

	// Members lists the printed member types of a union in declared order.
	// String literal members keep their double quotes.
	Members []string
}

// IsUnion reports whether the type is a union.
func (t TypeInfo) IsUnion() bool {
	return t.Kind == KindUnion
}

// IsAnonymous reports whether the type has no nominal name.
func (t TypeInfo) IsAnonymous() bool {
	return t.Kind == KindOpaque
}

// ty is the internal type representation used during resolution.
type ty struct {
	kind    TypeKind
	text    string
	members []ty
	// literal marks a fresh literal type ("a", 1, true) that let-widening
	// turns into its base primitive.
	literal bool
	// base is the widened form of a literal: string, number or boolean.
	base string
}

var (
	anyType    = named("any")
	voidType   = named("void")
	stringType = named("string")
	numberType = named("number")
)

func named(text string) ty {
	return ty{kind: KindPrimitive, text: text}
}

func opaque(text string) ty {
	return ty{kind: KindOpaque, text: text}
}

func stringLiteral(value string) ty {
	return ty{kind: KindPrimitive, text: `"` + value + `"`, literal: true, base: "string"}
}

func numberLiteral(text string) ty {
	return ty{kind: KindPrimitive, text: text, literal: true, base: "number"}
}

func booleanLiteral(v bool) ty {
	if v {
		return ty{kind: KindPrimitive, text: "true", literal: true, base: "boolean"}
	}
	return ty{kind: KindPrimitive, text: "false", literal: true, base: "boolean"}
}

// booleanType is the union false | true, printed as "boolean".
func booleanType() ty {
	return ty{
		kind:    KindUnion,
		text:    "boolean",
		members: []ty{booleanLiteral(false), booleanLiteral(true)},
	}
}

func (t ty) isBoolean() bool {
	return t.kind == KindUnion && len(t.members) == 2 &&
		t.members[0].text == "false" && t.members[1].text == "true"
}

// widen converts fresh literal types to their base type, as TypeScript does
// for mutable bindings and inferred return types.
func widen(t ty) ty {
	switch {
	case t.literal && t.base == "boolean":
		return booleanType()
	case t.literal:
		return named(t.base)
	case t.kind == KindUnion:
		members := make([]ty, len(t.members))
		for i, m := range t.members {
			members[i] = widen(m)
		}
		return union(members)
	}
	return t
}

// union builds a union the way a non-strict compiler reports it: nested
// unions and boolean are flattened, undefined and null disappear, literals
// are absorbed by their primitive, and any swallows everything.
// Member order follows declaration order; duplicates are kept.
func union(members []ty) ty {
	var flat []ty
	for _, m := range members {
		if m.kind == KindUnion {
			flat = append(flat, m.members...)
			continue
		}
		flat = append(flat, m)
	}

	primitives := make(map[string]bool)
	var kept []ty
	for _, m := range flat {
		switch m.text {
		case "any", "unknown":
			return named(m.text)
		case "undefined", "null":
			continue
		}
		if !m.literal && m.kind == KindPrimitive {
			primitives[m.text] = true
		}
		kept = append(kept, m)
	}

	var out []ty
	for _, m := range kept {
		if m.literal && primitives[m.base] {
			continue
		}
		out = append(out, m)
	}

	switch len(out) {
	case 0:
		if len(flat) > 0 {
			return flat[0]
		}
		return anyType
	case 1:
		return out[0]
	}

	u := ty{kind: KindUnion, members: out}
	if u.isBoolean() {
		u.text = "boolean"
		return u
	}
	texts := make([]string, len(out))
	for i, m := range out {
		texts[i] = m.text
	}
	u.text = strings.Join(texts, " | ")
	return u
}

// dedupe drops members whose printed text was already seen. Used for
// inferred types, where repeated evidence should not repeat members.
func dedupe(types []ty) []ty {
	seen := make(map[string]bool, len(types))
	var out []ty
	for _, t := range types {
		if seen[t.text] {
			continue
		}
		seen[t.text] = true
		out = append(out, t)
	}
	return out
}

// arrayOf prints T[] with parentheses around unions and functions.
func arrayOf(elem ty) ty {
	text := elem.text
	if (elem.kind == KindUnion && !elem.isBoolean()) || elem.kind == KindOpaque && strings.Contains(text, "=>") {
		text = "(" + text + ")"
	}
	return named(text + "[]")
}

func (t ty) info() TypeInfo {
	info := TypeInfo{Kind: t.kind, Text: t.text}
	if t.kind == KindUnion {
		info.Members = make([]string, len(t.members))
		for i, m := range t.members {
			info.Members[i] = m.text
		}
	}
	return info
}
