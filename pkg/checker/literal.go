package checker

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LiteralKind identifies the syntax of a literal initializer.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
)

// Literal is a decoded literal initializer.
type Literal struct {
	Kind   LiteralKind
	String string
	Number float64
	Bool   bool
}

// Value returns the literal as a string, float64 or bool.
func (l Literal) Value() any {
	switch l.Kind {
	case LiteralNumber:
		return l.Number
	case LiteralBoolean:
		return l.Bool
	default:
		return l.String
	}
}

// decodeString strips the quotes from a JavaScript string literal and
// resolves its escape sequences.
func decodeString(raw string) string {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		raw = raw[1 : len(raw)-1]
	}
	if !strings.Contains(raw, `\`) {
		return raw
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			if r, ok := parseHexRune(raw, i+1, 2); ok {
				sb.WriteRune(r)
				i += 2
			} else {
				sb.WriteByte('x')
			}
		case 'u':
			if i+1 < len(raw) && raw[i+1] == '{' {
				if end := strings.IndexByte(raw[i+1:], '}'); end > 1 {
					if r, ok := parseHexRune(raw, i+2, end-1); ok {
						sb.WriteRune(r)
						i += end + 1
						continue
					}
				}
			}
			if r, ok := parseHexRune(raw, i+1, 4); ok {
				sb.WriteRune(r)
				i += 4
			} else {
				sb.WriteByte('u')
			}
		default:
			// \' \" \\ and unknown escapes stand for the character itself.
			r, size := utf8.DecodeRuneInString(raw[i:])
			sb.WriteRune(r)
			i += size - 1
		}
	}
	return sb.String()
}

func parseHexRune(s string, start, n int) (rune, bool) {
	if start+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:start+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// parseNumber parses a JavaScript numeric literal.
func parseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, "_", "")
	s = strings.TrimSuffix(s, "n") // bigint

	if len(s) > 1 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			v, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return 0, false
			}
			return float64(v), true
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// formatNumber prints a number the way JavaScript's Number#toString does for
// the common cases.
func formatNumber(v float64) string {
	if math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
