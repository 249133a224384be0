// Package props turns a component's script block into the list of
// properties a parent can set on it.
package props

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownCategory is returned when an exclude category is not one of
// VARIABLES, FUNCTIONS or UNIONS.
var ErrUnknownCategory = errors.New("unknown category")

// Prop describes one public property of a component.
type Prop struct {
	Name string `json:"name"`

	// Type is "UNION", the upper-cased name of a named type ("STRING",
	// "ITEM[]"), or the structural text of an anonymous type ("() => void").
	Type string `json:"type"`

	// Values holds the union members with quotes stripped. Set only for
	// unions.
	Values []string `json:"values,omitempty"`

	// AssignedValue is the literal initializer: a string, float64 or bool.
	AssignedValue any `json:"assignedValue,omitempty"`
}

// Category names a group of props that can be excluded.
type Category string

const (
	// CategoryVariables covers every prop whose type has a name, unions
	// included.
	CategoryVariables Category = "VARIABLES"
	// CategoryFunctions covers props with anonymous types: function
	// signatures and object shapes.
	CategoryFunctions Category = "FUNCTIONS"
	// CategoryUnions covers union-typed props.
	CategoryUnions Category = "UNIONS"
)

// Categories returns every category in filter evaluation order.
func Categories() []Category {
	return []Category{CategoryVariables, CategoryUnions, CategoryFunctions}
}

// ParseCategory parses a category name, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(Categories(), c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// ParseCategories parses a list of category names. Empty entries are skipped.
func ParseCategories(names []string) ([]Category, error) {
	var out []Category
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Options controls which props are reported.
type Options struct {
	// Exclude drops props by classification. Nil or empty keeps everything.
	Exclude []Category
}

func (o Options) excludes(c Category) bool {
	return slices.Contains(o.Exclude, c)
}

// key returns a canonical form of the exclude set for cache keys.
func (o Options) key() string {
	var parts []string
	for _, c := range Categories() {
		if o.excludes(c) {
			parts = append(parts, string(c))
		}
	}
	return strings.Join(parts, ",")
}

func cloneProps(in []Prop) []Prop {
	if in == nil {
		return nil
	}
	out := make([]Prop, len(in))
	for i, p := range in {
		out[i] = p
		out[i].Values = slices.Clone(p.Values)
	}
	return out
}
