// Package script isolates the script block of a single-file component.
package script

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gnana997/propspec/pkg/parser"
)

// ErrBlockNotFound is returned when a component has no complete
// opening/closing script tag pair.
var ErrBlockNotFound = errors.New("no script block found")

const closingTag = "</script>"

var (
	openingTagRe = regexp.MustCompile(`(?i)<script(\s[^>]*)?>`)
	langAttrRe   = regexp.MustCompile(`(?i)\blang\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)
)

// Block is the script section of a component file.
type Block struct {
	// Lines holds the non-empty lines between the tags, untrimmed.
	Lines []string

	// StartLine is the 1-based line number of the opening tag.
	StartLine int

	// Lang is the language declared by the tag's lang attribute.
	Lang parser.Language
}

// Source joins the block's lines into one program text.
func (b *Block) Source() string {
	return strings.Join(b.Lines, "\n")
}

// ExtractOptions controls which script tags are recognised.
type ExtractOptions struct {
	// AllowUntyped also accepts <script> tags without lang="ts".
	AllowUntyped bool
}

// ExtractLines returns the lines of the first <script lang="ts"> block.
func ExtractLines(content string) ([]string, error) {
	block, err := Extract(content, ExtractOptions{})
	if err != nil {
		return nil, err
	}
	return block.Lines, nil
}

// Extract locates the first matching opening tag and the first closing tag at
// or after it, and returns the lines strictly between them.
//
// Empty lines are dropped; all other lines keep their whitespace so
// column offsets still line up with the file.
func Extract(content string, opts ExtractOptions) (*Block, error) {
	lines := strings.Split(content, "\n")

	start := -1
	closeFrom := 0
	lang := parser.LanguageUnknown
	for i, line := range lines {
		if l, tagEnd, ok := matchOpeningTag(line, opts.AllowUntyped); ok {
			start, closeFrom, lang = i, tagEnd, l
			break
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("%w: missing opening <script> tag", ErrBlockNotFound)
	}

	end := -1
	if strings.Contains(lines[start][closeFrom:], closingTag) {
		end = start
	} else {
		for i := start + 1; i < len(lines); i++ {
			if strings.Contains(lines[i], closingTag) {
				end = i
				break
			}
		}
	}
	if end == -1 {
		return nil, fmt.Errorf("%w: missing closing %s tag", ErrBlockNotFound, closingTag)
	}

	block := &Block{
		StartLine: start + 1,
		Lang:      lang,
	}
	for i := start + 1; i < end; i++ {
		if lines[i] == "" {
			continue
		}
		block.Lines = append(block.Lines, lines[i])
	}

	return block, nil
}

// matchOpeningTag reports whether line holds an acceptable opening script
// tag, returning the declared language and the byte offset just past the tag.
func matchOpeningTag(line string, allowUntyped bool) (parser.Language, int, bool) {
	for _, loc := range openingTagRe.FindAllStringSubmatchIndex(line, -1) {
		attrs := ""
		if loc[2] >= 0 {
			attrs = line[loc[2]:loc[3]]
		}

		lang := parser.ParseLanguageString(langAttr(attrs))
		switch {
		case lang == parser.LanguageTypeScript:
			return lang, loc[1], true
		case lang == parser.LanguageJavaScript && allowUntyped:
			return lang, loc[1], true
		}
	}
	return parser.LanguageUnknown, 0, false
}

// langAttr returns the value of the lang attribute, or "" when absent.
func langAttr(attrs string) string {
	m := langAttrRe.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	for _, v := range m[1:] {
		if v != "" {
			return v
		}
	}
	return ""
}
