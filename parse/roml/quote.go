package roml

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// =========================
// Reserved Tokens
// =========================

const (
	DocumentMarker = "~ROML~"
	PrimeMarker    = "~PRIME~"
	PrimePrefix    = '^'
	CommentPrefix  = "#"

	NullToken      = "__NULL__"
	EmptyToken     = "__EMPTY__"
	UndefinedToken = "__UNDEFINED__"
)

const hexDigits = "0123456789abcdef"

// structuralChars are the characters any style uses as a delimiter.
const structuralChars = "=:~#$%;!&<>|[]{}@/_^,\"\\"

// collidingKeys would read as something other than a key when bare.
var collidingKeys = map[string]bool{
	"true":         true,
	"false":        true,
	"null":         true,
	"yes":          true,
	"no":           true,
	NullToken:      true,
	EmptyToken:     true,
	UndefinedToken: true,
}

func isStructural(r rune) bool {
	return r < utf8.RuneSelf && strings.IndexByte(structuralChars, byte(r)) >= 0
}

// =========================
// Scalar Rendering
// =========================

// formatNumber writes f in the shortest form that parses back to f.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// scalarText is the unquoted text of a scalar, used for hashing.
func scalarText(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.boolVal)
	case KindNumber:
		return formatNumber(v.numVal)
	case KindString:
		return v.strVal
	default:
		return v.String()
	}
}

// isAmbiguous reports whether s would decode as something other than the
// same string if written without quotes.
func isAmbiguous(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	switch s {
	case "true", "false", "null", "yes", "no", NullToken, EmptyToken, UndefinedToken:
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return true
	}
	for _, r := range s {
		if isStructural(r) || unicode.IsControl(r) {
			return true
		}
	}
	return false
}

func needsKeyQuote(k string) bool {
	if k == "" || collidingKeys[k] {
		return true
	}
	for _, r := range k {
		if isStructural(r) || unicode.IsSpace(r) || unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// quote wraps s in double quotes, escaping backslash, quote, newline,
// carriage return, tab and other control characters.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if ch < 0x20 || ch == 0x7f {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[ch>>4])
				b.WriteByte(hexDigits[ch&0xf])
				continue
			}
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func renderKey(k string) string {
	if needsKeyQuote(k) {
		return quote(k)
	}
	return k
}

// =========================
// Quote-aware Scanning
// =========================

// scanQuoted decodes the quoted span starting at s[i] == '"'. It returns the
// unescaped content and the index just past the closing quote.
func scanQuoted(s string, i int) (string, int, bool) {
	if i >= len(s) || s[i] != '"' {
		return "", i, false
	}
	var b strings.Builder
	for j := i + 1; j < len(s); j++ {
		ch := s[j]
		if ch == '"' {
			return b.String(), j + 1, true
		}
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		if j+1 >= len(s) {
			return "", i, false
		}
		j++
		switch s[j] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			if j+4 >= len(s) {
				return "", i, false
			}
			v, err := strconv.ParseUint(s[j+1:j+5], 16, 32)
			if err != nil {
				return "", i, false
			}
			b.WriteRune(rune(v))
			j += 4
		default:
			// \\ \" and unknown escapes keep the escaped byte
			b.WriteByte(s[j])
		}
	}
	return "", i, false
}

// unquoteWhole decodes s when it is exactly one quoted span.
func unquoteWhole(s string) (string, bool) {
	content, end, ok := scanQuoted(s, 0)
	if !ok || end != len(s) {
		return "", false
	}
	return content, true
}

// skipQuoted returns the index past the quoted span at s[i], or len(s)
// when the span is unterminated.
func skipQuoted(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

// indexUnquoted finds the first sep at or after from that is outside a
// quoted span.
func indexUnquoted(s string, sep byte, from int) int {
	for i := from; i < len(s); {
		ch := s[i]
		if ch == '"' {
			i = skipQuoted(s, i)
			continue
		}
		if ch == sep {
			return i
		}
		i++
	}
	return -1
}

// splitUnquoted splits s on every sep outside quotes.
func splitUnquoted(s string, sep byte) []string {
	var parts []string
	start := 0
	for {
		idx := indexUnquoted(s, sep, start)
		if idx < 0 {
			parts = append(parts, s[start:])
			return parts
		}
		parts = append(parts, s[start:idx])
		start = idx + 1
	}
}

// parseKey reads an optional prime prefix and a bare or quoted key from
// the start of s, returning what follows it.
func parseKey(s string) (key string, prime bool, rest string, ok bool) {
	if strings.HasPrefix(s, string(PrimePrefix)) {
		prime = true
		s = s[1:]
	}
	if strings.HasPrefix(s, `"`) {
		content, end, qok := scanQuoted(s, 0)
		if !qok {
			return "", prime, "", false
		}
		return content, prime, s[end:], true
	}
	end := len(s)
	for i, r := range s {
		if isStructural(r) || unicode.IsSpace(r) {
			end = i
			break
		}
	}
	if end == 0 {
		return "", prime, "", false
	}
	return s[:end], prime, s[end:], true
}

// parseScalar converts a rendered value back into a Value. Quoted text is
// always a string. yes/no become booleans only when allowYesNo is set.
func parseScalar(s string, allowYesNo bool) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, false
	}
	if s[0] == '"' {
		content, ok := unquoteWhole(s)
		if !ok {
			return Value{}, false
		}
		return String(content), true
	}
	switch s {
	case "true":
		return Bool(true), true
	case "false":
		return Bool(false), true
	case NullToken, UndefinedToken:
		return Null(), true
	case EmptyToken:
		return String(""), true
	}
	if allowYesNo {
		switch s {
		case "yes":
			return Bool(true), true
		case "no":
			return Bool(false), true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && formatNumber(f) == s {
		return Number(f), true
	}
	return String(s), true
}
