package props

import (
	"context"
	"strings"

	"github.com/gnana997/propspec/pkg/checker"
	"github.com/gnana997/propspec/pkg/parser"
	"github.com/gnana997/propspec/pkg/script"
)

// Classify checks the block as a standalone program and describes each
// exported let binding in declaration order.
//
// Only `export let` declarations are props; const, var and unexported
// bindings are component internals.
func Classify(ctx context.Context, c *checker.Checker, block *script.Block, opts Options) ([]Prop, error) {
	lang := block.Lang
	if lang == parser.LanguageUnknown {
		lang = parser.LanguageTypeScript
	}
	return classify(ctx, c, block.Source(), lang, opts)
}

// ClassifyLines is Classify for lines already isolated by
// script.ExtractLines.
func ClassifyLines(ctx context.Context, c *checker.Checker, lines []string, opts Options) ([]Prop, error) {
	return classify(ctx, c, strings.Join(lines, "\n"), parser.LanguageTypeScript, opts)
}

func classify(ctx context.Context, c *checker.Checker, source string, lang parser.Language, opts Options) ([]Prop, error) {
	prog, err := c.Check(ctx, []byte(source), lang)
	if err != nil {
		return nil, err
	}
	defer prog.Close()

	if err := prog.ExportErr(); err != nil {
		return nil, err
	}

	var out []Prop
	for _, d := range prog.Declarations() {
		if !d.Exported || d.Kind != checker.DeclLet {
			continue
		}
		if err := d.Err(); err != nil {
			return nil, err
		}

		info := d.Type()
		if dropped(info, opts) {
			continue
		}

		p := Prop{Name: d.Name, Type: typeName(info)}
		if info.IsUnion() {
			p.Values = make([]string, len(info.Members))
			for i, m := range info.Members {
				p.Values[i] = unquote(m)
			}
		}
		if lit, ok := d.Literal(); ok {
			p.AssignedValue = lit.Value()
		}
		out = append(out, p)
	}
	return out, nil
}

// dropped applies the exclude rules in order: VARIABLES removes every named
// type (unions included), UNIONS removes unions, FUNCTIONS removes
// anonymous types.
func dropped(info checker.TypeInfo, opts Options) bool {
	switch {
	case opts.excludes(CategoryVariables) && !info.IsAnonymous():
		return true
	case opts.excludes(CategoryUnions) && info.IsUnion():
		return true
	case opts.excludes(CategoryFunctions) && info.IsAnonymous():
		return true
	}
	return false
}

func typeName(info checker.TypeInfo) string {
	switch {
	case info.IsUnion():
		return "UNION"
	case info.IsAnonymous():
		return info.Text
	default:
		return strings.ToUpper(info.Text)
	}
}

// unquote strips one pair of matching quotes from a union member.
func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
