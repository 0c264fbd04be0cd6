package roml

import (
	"hash/fnv"
	"math"
	"strings"
)

// =========================
// Styles
// =========================

// Style is one of the sixteen key-value encodings. The first eight are
// the odd-counter family, the last eight the even-counter family.
type Style uint8

const (
	StyleQuoted Style = iota
	StyleBrackets
	StylePipes
	StyleAmpersand
	StyleFakeComment
	StyleAtSandwich
	StyleDoubleColon
	StyleUnderscore

	StyleEquals
	StyleColon
	StyleTilde
	StyleHash
	StyleDollar
	StylePercent
	StyleJSON
	StyleColonDelim

	numStyles
)

var styleNames = [numStyles]string{
	StyleQuoted:      "QUOTED",
	StyleBrackets:    "BRACKETS",
	StylePipes:       "PIPES",
	StyleAmpersand:   "AMPERSAND",
	StyleFakeComment: "FAKE_COMMENT",
	StyleAtSandwich:  "AT_SANDWICH",
	StyleDoubleColon: "DOUBLE_COLON",
	StyleUnderscore:  "UNDERSCORE",
	StyleEquals:      "EQUALS",
	StyleColon:       "COLON",
	StyleTilde:       "TILDE",
	StyleHash:        "HASH",
	StyleDollar:      "DOLLAR",
	StylePercent:     "PERCENT",
	StyleJSON:        "JSON_STYLE",
	StyleColonDelim:  "COLON_DELIM",
}

func (s Style) String() string {
	if s < numStyles {
		return styleNames[s]
	}
	return "UNKNOWN"
}

// Odd reports whether s belongs to the odd-counter family.
func (s Style) Odd() bool { return s < StyleEquals }

// ParseStyle looks a style up by its name.
func ParseStyle(name string) (Style, bool) {
	for i, n := range styleNames {
		if strings.EqualFold(n, name) {
			return Style(i), true
		}
	}
	return 0, false
}

var (
	oddFamily  = [8]Style{StyleQuoted, StyleBrackets, StylePipes, StyleAmpersand, StyleFakeComment, StyleAtSandwich, StyleDoubleColon, StyleUnderscore}
	evenFamily = [8]Style{StyleEquals, StyleColon, StyleTilde, StyleHash, StyleDollar, StylePercent, StyleJSON, StyleColonDelim}

	arrayStyles = [4]Style{StylePipes, StyleBrackets, StyleJSON, StyleColonDelim}
)

// evenSeparators maps the single-character separator of every even style.
var evenSeparators = map[byte]Style{
	'=': StyleEquals,
	':': StyleColon,
	'~': StyleTilde,
	'#': StyleHash,
	'$': StyleDollar,
	'%': StylePercent,
	';': StyleJSON,
	'!': StyleColonDelim,
}

var separatorOf = func() map[Style]byte {
	m := make(map[Style]byte, len(evenSeparators))
	for sep, s := range evenSeparators {
		m[s] = sep
	}
	return m
}()

// LineContext is the position a key-value pair is emitted at.
type LineContext struct {
	Counter uint64
	Depth   int
}

func (c LineContext) Odd() bool { return c.Counter%2 == 1 }

// =========================
// Semantic Keywords
// =========================

type category struct {
	name  string
	style Style
	keys  map[string]bool
}

func keywordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var categories = []category{
	{"PERSONAL", StyleQuoted, keywordSet("name", "firstname", "first_name", "lastname", "last_name", "fullname", "username", "nickname", "email", "phone", "address", "title")},
	{"STATUS", StyleBrackets, keywordSet("status", "state", "active", "enabled", "disabled", "visible", "verified", "valid", "ready", "online")},
	{"COLLECTIONS", StylePipes, keywordSet("items", "list", "tags", "elements", "entries", "values", "children", "members", "collection", "array")},
	{"TECHNICAL", StyleAmpersand, keywordSet("id", "uuid", "version", "host", "port", "url", "path", "config", "type", "code")},
	{"FINANCIAL", StyleFakeComment, keywordSet("price", "cost", "amount", "total", "balance", "salary", "budget", "fee", "tax", "currency")},
	{"TEMPORAL", StyleAtSandwich, keywordSet("date", "time", "timestamp", "created", "updated", "year", "month", "day", "duration", "deadline")},
}

// Category returns the semantic category name of key, if any.
func Category(key string) (string, bool) {
	k := strings.ToLower(key)
	for _, c := range categories {
		if c.keys[k] {
			return c.name, true
		}
	}
	return "", false
}

// =========================
// Selection Rules
// =========================

// noStyle marks a rule that does not apply to one parity.
const noStyle = numStyles

type styleRule struct {
	name  string
	match func(key string, v Value) bool
	odd   Style
	even  Style
}

func semanticRule(c category) styleRule {
	return styleRule{
		name:  "semantic:" + c.name,
		match: func(key string, _ Value) bool { return c.keys[strings.ToLower(key)] },
		odd:   c.style,
		even:  noStyle,
	}
}

func isString(v Value) bool { return v.kind == KindString && v.strVal != "" }

func startsWithVowel(key string) bool {
	return key != "" && strings.ContainsRune("aeiouAEIOU", rune(key[0]))
}

// styleRules is evaluated top to bottom; the first applicable match wins.
var styleRules = func() []styleRule {
	rules := make([]styleRule, 0, len(categories)+6)
	for _, c := range categories {
		rules = append(rules, semanticRule(c))
	}
	return append(rules,
		styleRule{"bool", func(_ string, v Value) bool { return v.kind == KindBool }, StyleBrackets, StyleEquals},
		styleRule{"number", func(_ string, v Value) bool {
			return v.kind == KindNumber && !math.IsNaN(v.numVal) && !math.IsInf(v.numVal, 0)
		}, StyleAmpersand, StyleColon},
		styleRule{"string:vowel-key", func(k string, v Value) bool { return isString(v) && startsWithVowel(k) }, StyleQuoted, StyleTilde},
		styleRule{"string:long", func(_ string, v Value) bool { return isString(v) && len(v.strVal) > 10 }, StyleDoubleColon, StyleHash},
		styleRule{"string", func(_ string, v Value) bool { return isString(v) }, StyleFakeComment, StyleEquals},
		styleRule{"special", func(_ string, v Value) bool {
			return v.kind == KindNull || (v.kind == KindString && v.strVal == "")
		}, StyleFakeComment, StyleDollar},
	)
}()

func keyHash(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}

// SelectStyle picks the encoding of the scalar pair (key, v) at ctx.
func SelectStyle(key string, v Value, ctx LineContext) Style {
	odd := ctx.Odd()
	for _, r := range styleRules {
		s := r.even
		if odd {
			s = r.odd
		}
		if s == noStyle || !r.match(key, v) {
			continue
		}
		return s
	}
	idx := (uint64(keyHash(key)) + uint64(ctx.Depth) + uint64(len(scalarText(v)))) % 8
	if odd {
		return oddFamily[idx]
	}
	return evenFamily[idx]
}

// SelectArrayStyle picks the inline layout of a primitive array. It does
// not depend on parity.
func SelectArrayStyle(key string) Style {
	return arrayStyles[keyHash(key)%4]
}

// isInlineArray reports whether v can be written on one line at depth.
func isInlineArray(v Value, depth int) bool {
	if v.kind != KindList || depth > 0 || len(v.items) == 0 {
		return false
	}
	for _, item := range v.items {
		if item.kind == KindList || item.kind == KindMap {
			return false
		}
	}
	return true
}

// =========================
// Rendering
// =========================

// renderValue writes a scalar for style s.
func renderValue(v Value, s Style) string {
	switch v.kind {
	case KindNull:
		return NullToken
	case KindBool:
		if s == StyleEquals {
			if v.boolVal {
				return "yes"
			}
			return "no"
		}
		if v.boolVal {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.numVal)
	case KindString:
		switch {
		case s == StyleQuoted:
			return quote(v.strVal)
		case v.strVal == "":
			return EmptyToken
		case isAmbiguous(v.strVal):
			return quote(v.strVal)
		}
		return v.strVal
	}
	return NullToken
}

func keyText(key string, prime bool) string {
	if prime {
		return string(PrimePrefix) + renderKey(key)
	}
	return renderKey(key)
}

// RenderPair writes the scalar pair (key, v) in style s. prime adds the
// prime prefix to the key.
func RenderPair(s Style, key string, v Value, prime bool) string {
	k := keyText(key, prime)
	r := renderValue(v, s)
	switch s {
	case StyleQuoted:
		if v.kind != KindString {
			return k + "=" + renderValue(v, StyleFakeComment)
		}
		return k + "=" + r
	case StyleBrackets:
		return k + "<" + r + ">"
	case StylePipes:
		return k + "|" + r + "|"
	case StyleAmpersand:
		return k + "&" + r
	case StyleFakeComment:
		return "//" + k + "//" + r
	case StyleAtSandwich:
		return "@" + k + "@" + r + "@"
	case StyleDoubleColon:
		return "::" + k + "::" + r + "::"
	case StyleUnderscore:
		return "_" + k + "_" + r + "_"
	default:
		return k + string(separatorOf[s]) + r
	}
}

// RenderArray writes a primitive array inline in one of the four array
// styles.
func RenderArray(s Style, key string, items []Value, prime bool) string {
	k := keyText(key, prime)
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = renderValue(item, StyleBrackets)
	}
	switch s {
	case StyleBrackets:
		return k + "[" + strings.Join(parts, "][") + "]"
	case StyleJSON:
		return k + "=[" + strings.Join(parts, ", ") + "]"
	case StyleColonDelim:
		return k + ":" + strings.Join(parts, ":") + ":"
	default:
		return k + "||" + strings.Join(parts, "|") + "||"
	}
}
