package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a script language found inside a component file.
type Language int

const (
	// LanguageTypeScript represents <script lang="ts"> blocks
	LanguageTypeScript Language = iota
	// LanguageJavaScript represents untyped <script> blocks
	LanguageJavaScript
	// LanguageUnknown represents an unsupported language
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// ParseLanguageString converts the value of a script tag's lang attribute to
// a Language. An empty value means plain JavaScript, as in the browser.
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "ts", "typescript":
		return LanguageTypeScript
	case "", "js", "javascript":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsComponentFile reports whether path names a single-file component.
func IsComponentFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".svelte")
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{
		LanguageTypeScript,
		LanguageJavaScript,
	}
}
