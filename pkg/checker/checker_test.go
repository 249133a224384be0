package checker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/propspec/pkg/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func check(t *testing.T, lang parser.Language, lines ...string) *Program {
	t.Helper()
	pm := parser.NewParserManager(testLogger())
	t.Cleanup(func() { pm.Close() })

	c := New(pm, testLogger())
	prog, err := c.Check(context.Background(), []byte(strings.Join(lines, "\n")), lang)
	require.NoError(t, err)
	t.Cleanup(prog.Close)
	return prog
}

func decl(t *testing.T, prog *Program, name string) *Declaration {
	t.Helper()
	for _, d := range prog.Declarations() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("declaration %q not found", name)
	return nil
}

func TestDeclarations(t *testing.T) {
	prog := check(t, parser.LanguageTypeScript,
		"import { onMount } from 'svelte';",
		"export let label: string;",
		"let local = 'a', other = 2;",
		"export const VERSION = '1';",
		"var legacy;",
		"const { a, b } = obj;",
		"function helper() {}",
	)

	decls := prog.Declarations()
	require.Len(t, decls, 5)

	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"label", "local", "other", "VERSION", "legacy"}, names)

	assert.True(t, decls[0].Exported)
	assert.Equal(t, DeclLet, decls[0].Kind)
	assert.Equal(t, 2, decls[0].Line)

	assert.False(t, decls[1].Exported)
	assert.Equal(t, 3, decls[2].Line)

	assert.True(t, decls[3].Exported)
	assert.Equal(t, DeclConst, decls[3].Kind)
	assert.Equal(t, DeclVar, decls[4].Kind)
	assert.Equal(t, "var", decls[4].Kind.String())
}

func TestAnnotatedTypes(t *testing.T) {
	prog := check(t, parser.LanguageTypeScript,
		"type Size = 'S' | 'L';",
		"interface Item { id: number }",
		"export let label: string;",
		"export let size: 'SMALL' | 'MEDIUM' | 'LARGE' = 'MEDIUM';",
		"export let alias: Size;",
		"export let maybe: string | undefined;",
		"export let flag: boolean;",
		"export let items: Item[];",
		"export let list: Array<string>;",
		"export let pair: [string, number];",
		"export let cb: (value: string) => void;",
		"export let shape: { x: number; y?: string };",
		"export let count: 1 | 2;",
	)

	tests := []struct {
		name    string
		kind    TypeKind
		text    string
		members []string
	}{
		{"label", KindPrimitive, "string", nil},
		{"size", KindUnion, `"SMALL" | "MEDIUM" | "LARGE"`, []string{`"SMALL"`, `"MEDIUM"`, `"LARGE"`}},
		{"alias", KindUnion, `"S" | "L"`, []string{`"S"`, `"L"`}},
		{"maybe", KindPrimitive, "string", nil},
		{"flag", KindUnion, "boolean", []string{"false", "true"}},
		{"items", KindPrimitive, "Item[]", nil},
		{"list", KindPrimitive, "string[]", nil},
		{"pair", KindPrimitive, "[string, number]", nil},
		{"cb", KindOpaque, "(value: string) => void", nil},
		{"shape", KindOpaque, "{ x: number; y?: string; }", nil},
		{"count", KindUnion, "1 | 2", []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := decl(t, prog, tt.name).Type()
			assert.Equal(t, tt.kind, info.Kind)
			assert.Equal(t, tt.text, info.Text)
			assert.Equal(t, tt.members, info.Members)
		})
	}
}

func TestInferredTypes(t *testing.T) {
	prog := check(t, parser.LanguageTypeScript,
		"export let name = 'x';",
		"export const fixed = 'x';",
		"export let n = 5;",
		"export let disabled = false;",
		"export let click = () => { alert('clicked'); };",
		"export let add = (a: number, b = 1) => a + b;",
		"export let greet = function (who: string) { return 'hi ' + who; };",
		"export let load = async () => { return 1; };",
		"export let obj = { a: 1, b: 'x' };",
		"export let mixed = [1, 'a'];",
		"export let empty = [];",
		"export let when = new Date();",
		"export let casted = input as string;",
		"export let neg = -1;",
		"export let nothing;",
		"export let nil = null;",
		"export let copy = n;",
		"export let tpl = `a${n}`;",
		"export let cmp = n > 2;",
	)

	tests := []struct {
		name string
		kind TypeKind
		text string
	}{
		{"name", KindPrimitive, "string"},
		{"fixed", KindPrimitive, `"x"`},
		{"n", KindPrimitive, "number"},
		{"disabled", KindUnion, "boolean"},
		{"click", KindOpaque, "() => void"},
		{"add", KindOpaque, "(a: number, b?: number) => number"},
		{"greet", KindOpaque, "(who: string) => string"},
		{"load", KindOpaque, "() => Promise<number>"},
		{"obj", KindOpaque, "{ a: number; b: string; }"},
		{"mixed", KindPrimitive, "(number | string)[]"},
		{"empty", KindPrimitive, "any[]"},
		{"when", KindPrimitive, "Date"},
		{"casted", KindPrimitive, "string"},
		{"neg", KindPrimitive, "number"},
		{"nothing", KindPrimitive, "any"},
		{"nil", KindPrimitive, "any"},
		{"copy", KindPrimitive, "number"},
		{"tpl", KindPrimitive, "string"},
		{"cmp", KindUnion, "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := decl(t, prog, tt.name).Type()
			assert.Equal(t, tt.kind, info.Kind, info.Text)
			assert.Equal(t, tt.text, info.Text)
		})
	}
}

func TestRecursiveAliasDoesNotLoop(t *testing.T) {
	prog := check(t, parser.LanguageTypeScript,
		"type A = B;",
		"type B = A;",
		"export let v: A;",
		"export let w = w;",
	)

	assert.Equal(t, "A", decl(t, prog, "v").Type().Text)
	assert.Equal(t, "any", decl(t, prog, "w").Type().Text)
}

func TestLiteral(t *testing.T) {
	prog := check(t, parser.LanguageTypeScript,
		`export let s = 'a\nb';`,
		`export let d = "MEDIUM";`,
		"export let hex = 0x10;",
		"export let big = 1_000;",
		"export let f = 1.5;",
		"export let yes = true;",
		"export let no = false;",
		"export let neg = -1;",
		"export let tpl = `x`;",
		"export let none;",
		"export let call = make();",
	)

	tests := []struct {
		name  string
		ok    bool
		value any
	}{
		{"s", true, "a\nb"},
		{"d", true, "MEDIUM"},
		{"hex", true, float64(16)},
		{"big", true, float64(1000)},
		{"f", true, 1.5},
		{"yes", true, true},
		{"no", true, false},
		{"neg", false, nil},
		{"tpl", false, nil},
		{"none", false, nil},
		{"call", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, ok := decl(t, prog, tt.name).Literal()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.value, lit.Value())
			}
		})
	}
}

func TestJavaScriptInference(t *testing.T) {
	prog := check(t, parser.LanguageJavaScript,
		"export let title = 'x';",
		"export let onClick = (event) => {};",
	)

	assert.Equal(t, "string", decl(t, prog, "title").Type().Text)
	assert.Equal(t, "(event: any) => void", decl(t, prog, "onClick").Type().Text)
	assert.Equal(t, parser.LanguageJavaScript, prog.Language())
}

func TestExportErr(t *testing.T) {
	t.Run("clean program", func(t *testing.T) {
		prog := check(t, parser.LanguageTypeScript, "export let a: string;")
		assert.NoError(t, prog.ExportErr())
	})

	t.Run("broken export", func(t *testing.T) {
		prog := check(t, parser.LanguageTypeScript,
			"export let ok: string;",
			"export let broken: = ;",
		)
		err := prog.ExportErr()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrParse))

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 2, pe.Line)
	})

	t.Run("error outside exports is tolerated", func(t *testing.T) {
		prog := check(t, parser.LanguageTypeScript,
			"export let ok: string;",
			"function broken( {",
		)
		assert.NoError(t, prog.ExportErr())
		assert.NoError(t, decl(t, prog, "ok").Err())
	})
}

func TestCheckCanceledContext(t *testing.T) {
	pm := parser.NewParserManager(testLogger())
	defer pm.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(pm, testLogger()).Check(ctx, []byte("let a = 1;"), parser.LanguageTypeScript)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckUnknownLanguage(t *testing.T) {
	pm := parser.NewParserManager(testLogger())
	defer pm.Close()

	_, err := New(pm, testLogger()).Check(context.Background(), []byte("x"), parser.LanguageUnknown)
	assert.ErrorIs(t, err, ErrParse)
}
