package props

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/propspec/pkg/checker"
	"github.com/gnana997/propspec/pkg/parser"
	"github.com/gnana997/propspec/pkg/script"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

var (
	labelProp = Prop{Name: "label", Type: "STRING"}
	sizeProp  = Prop{
		Name:          "size",
		Type:          "UNION",
		Values:        []string{"SMALL", "MEDIUM", "LARGE"},
		AssignedValue: "MEDIUM",
	}
	clickProp = Prop{Name: "clickFunction", Type: "() => void"}
)

func TestExtractTypesFromFile(t *testing.T) {
	got, err := ExtractTypesFromFile(context.Background(), fixture("Button.svelte"), Options{})
	require.NoError(t, err)

	want := []Prop{
		labelProp,
		sizeProp,
		clickProp,
		{Name: "fontsize", Type: "UNION", Values: []string{"SMALL", "MEDIUM", "LARGE"}, AssignedValue: "MEDIUM"},
		{Name: "icontype", Type: "STRING"},
		{Name: "disabled", Type: "UNION", Values: []string{"false", "true"}},
	}
	assert.Equal(t, want, got)
}

func TestExtractTypesFromFile_Exclude(t *testing.T) {
	tests := []struct {
		name    string
		exclude []Category
		want    []Prop
	}{
		{"none", nil, []Prop{labelProp, sizeProp, clickProp}},
		{"functions", []Category{CategoryFunctions}, []Prop{labelProp, sizeProp}},
		{"unions", []Category{CategoryUnions}, []Prop{labelProp, clickProp}},
		{"variables", []Category{CategoryVariables}, []Prop{clickProp}},
		{"everything", Categories(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTypesFromFile(context.Background(), fixture("Basic.svelte"), Options{Exclude: tt.exclude})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTypesFromFile_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := ExtractTypesFromFile(ctx, fixture("Nope.svelte"), Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))

		var pathErr *fs.PathError
		assert.ErrorAs(t, err, &pathErr)
	})

	t.Run("no script block", func(t *testing.T) {
		props, err := ExtractTypesFromFile(ctx, fixture("NoScript.svelte"), Options{})
		assert.ErrorIs(t, err, script.ErrBlockNotFound)
		assert.Nil(t, props)
	})

	t.Run("untyped script is not a block by default", func(t *testing.T) {
		_, err := ExtractTypesFromFile(ctx, fixture("Untyped.svelte"), Options{})
		assert.ErrorIs(t, err, script.ErrBlockNotFound)
	})

	t.Run("syntax error in a prop", func(t *testing.T) {
		props, err := ExtractTypesFromFile(ctx, fixture("Broken.svelte"), Options{})
		assert.ErrorIs(t, err, checker.ErrParse)
		assert.Nil(t, props)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ExtractTypesFromFile(canceled, fixture("Basic.svelte"), Options{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExtractNamedAndInferredTypes(t *testing.T) {
	got, err := ExtractTypesFromFile(context.Background(), fixture("Card.svelte"), Options{})
	require.NoError(t, err)

	want := []Prop{
		{Name: "title", Type: "STRING", AssignedValue: "Untitled"},
		{Name: "variant", Type: "UNION", Values: []string{"primary", "secondary"}, AssignedValue: "primary"},
		{Name: "author", Type: "AUTHOR"},
		{Name: "tags", Type: "STRING[]"},
		{Name: "elevation", Type: "NUMBER", AssignedValue: float64(2)},
		{Name: "rounded", Type: "UNION", Values: []string{"false", "true"}, AssignedValue: true},
		{Name: "style", Type: "{ color: string; padding?: number; }"},
		{Name: "onSelect", Type: "(id: number) => void"},
	}
	assert.Equal(t, want, got)
}

func TestClassifyLines(t *testing.T) {
	pm := parser.NewParserManager(testLogger())
	defer pm.Close()
	c := checker.New(pm, testLogger())

	lines := []string{
		"export let label: string;",
		"export let size: 'SMALL'|'MEDIUM'|'LARGE' = 'MEDIUM';",
		"export let clickFunction = () => {};",
	}

	got, err := ClassifyLines(context.Background(), c, lines, Options{})
	require.NoError(t, err)
	assert.Equal(t, []Prop{labelProp, sizeProp, clickProp}, got)

	again, err := ClassifyLines(context.Background(), c, lines, Options{})
	require.NoError(t, err)
	assert.Equal(t, got, again, "repeated calls must be identical")
}

func TestClassifyIgnoresSyntaxErrorsOutsideProps(t *testing.T) {
	pm := parser.NewParserManager(testLogger())
	defer pm.Close()
	c := checker.New(pm, testLogger())

	got, err := ClassifyLines(context.Background(), c, []string{
		"export let label: string;",
		"function helper( {",
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []Prop{labelProp}, got)
}

func TestPropJSON(t *testing.T) {
	data, err := json.Marshal([]Prop{labelProp, sizeProp, {Name: "disabled", Type: "UNION", Values: []string{"false", "true"}, AssignedValue: false}})
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"name":"label","type":"STRING"},
		{"name":"size","type":"UNION","values":["SMALL","MEDIUM","LARGE"],"assignedValue":"MEDIUM"},
		{"name":"disabled","type":"UNION","values":["false","true"],"assignedValue":false}
	]`, string(data))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" functions ")
	require.NoError(t, err)
	assert.Equal(t, CategoryFunctions, c)

	_, err = ParseCategory("CLASSES")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	cats, err := ParseCategories([]string{"unions", "", "Variables"})
	require.NoError(t, err)
	assert.Equal(t, []Category{CategoryUnions, CategoryVariables}, cats)

	_, err = ParseCategories([]string{"unions", "bogus"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestOptionsKeyIsOrderIndependent(t *testing.T) {
	a := Options{Exclude: []Category{CategoryFunctions, CategoryUnions}}
	b := Options{Exclude: []Category{CategoryUnions, CategoryFunctions, CategoryUnions}}
	assert.Equal(t, a.key(), b.key())
	assert.NotEqual(t, a.key(), Options{}.key())
}
