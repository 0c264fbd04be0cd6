package roml

import (
	"strconv"
	"strings"
)

// =========================
// Tokens
// =========================

type TokenKind uint8

const (
	TokenHeader TokenKind = iota
	TokenMapOpen
	TokenMapClose
	TokenListOpen
	TokenListClose
	TokenItemMap
	TokenItemList
	TokenItemValue
	TokenKeyValue
	TokenInvalid
)

func (k TokenKind) String() string {
	switch k {
	case TokenHeader:
		return "header"
	case TokenMapOpen:
		return "map_open"
	case TokenMapClose:
		return "map_close"
	case TokenListOpen:
		return "list_open"
	case TokenListClose:
		return "list_close"
	case TokenItemMap:
		return "item_map"
	case TokenItemList:
		return "item_list"
	case TokenItemValue:
		return "item_value"
	case TokenKeyValue:
		return "key_value"
	case TokenInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Token is one classified content line. The header token is always first
// and carries whether the document marker and the prime tag were seen.
type Token struct {
	Kind    TokenKind
	Line    int
	Counter uint64
	Depth   int
	Key     string
	Index   int
	Prime   bool
	Style   Style
	Array   bool
	Value   Value
	Raw     string

	Document bool
	Marker   bool
}

// =========================
// Lexer
// =========================

// Tokenize classifies every content line of text. Blank and comment
// lines produce no token and do not advance the counter.
func Tokenize(text string) []Token {
	header := Token{Kind: TokenHeader}
	var body []Token
	var counter uint64 = 1

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		raw = strings.TrimRight(raw, "\r")
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if i == 0 && line == DocumentMarker {
			header.Line = 1
			header.Document = true
			continue
		}
		if strings.HasPrefix(line, CommentPrefix) {
			if strings.Contains(line, PrimeMarker) {
				header.Marker = true
				// the tag occupies the first counter slot
				if len(body) == 0 {
					counter = 2
				}
			}
			continue
		}
		tok := lexLine(line)
		tok.Line = i + 1
		tok.Counter = counter
		tok.Depth = indentDepth(raw)
		tok.Raw = line
		body = append(body, tok)
		counter++
	}
	return append([]Token{header}, body...)
}

// indentDepth counts two spaces, or one tab, per level.
func indentDepth(raw string) int {
	spaces := 0
	for _, ch := range raw {
		switch ch {
		case ' ':
			spaces++
		case '\t':
			spaces += 2
		default:
			return spaces / 2
		}
	}
	return spaces / 2
}

func invalid() Token { return Token{Kind: TokenInvalid} }

func lexLine(line string) Token {
	switch {
	case line == "}":
		return Token{Kind: TokenMapClose}
	case line == "]":
		return Token{Kind: TokenListClose}
	case strings.HasPrefix(line, "["):
		return lexItem(line)
	case strings.HasPrefix(line, "::"):
		return lexSandwich(line[2:], "::", StyleDoubleColon)
	case strings.HasPrefix(line, "//"):
		return lexSandwich(line[2:], "//", StyleFakeComment)
	case strings.HasPrefix(line, "@"):
		return lexSandwich(line[1:], "@", StyleAtSandwich)
	case strings.HasPrefix(line, "_"):
		return lexSandwich(line[1:], "_", StyleUnderscore)
	}

	key, prime, rest, ok := parseKey(line)
	if !ok || rest == "" {
		return invalid()
	}
	switch rest {
	case "{":
		return Token{Kind: TokenMapOpen, Key: key, Prime: prime}
	case "[":
		return Token{Kind: TokenListOpen, Key: key, Prime: prime}
	}
	tok, ok := lexPair(rest)
	if !ok {
		return invalid()
	}
	tok.Kind = TokenKeyValue
	tok.Key = key
	tok.Prime = prime
	return tok
}

// lexItem handles "[i]{", "[i][" and "[i]=value".
func lexItem(line string) Token {
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return invalid()
	}
	idx, err := strconv.Atoi(line[1:end])
	if err != nil || idx < 0 {
		return invalid()
	}
	rest := line[end+1:]
	switch {
	case rest == "{":
		return Token{Kind: TokenItemMap, Index: idx}
	case rest == "[":
		return Token{Kind: TokenItemList, Index: idx}
	case strings.HasPrefix(rest, "="):
		v, ok := parseScalar(rest[1:], false)
		if !ok {
			return invalid()
		}
		return Token{Kind: TokenItemValue, Index: idx, Value: v}
	}
	return invalid()
}

// lexSandwich handles the four styles that wrap the key in delimiters.
// body is the line after the opening delimiter.
func lexSandwich(body, delim string, style Style) Token {
	key, prime, rest, ok := parseKey(body)
	if !ok || !strings.HasPrefix(rest, delim) {
		return invalid()
	}
	rest = rest[len(delim):]
	if style != StyleFakeComment {
		if !strings.HasSuffix(rest, delim) {
			return invalid()
		}
		rest = rest[:len(rest)-len(delim)]
	}
	v, ok := parseScalar(rest, false)
	if !ok {
		return invalid()
	}
	return Token{Kind: TokenKeyValue, Key: key, Prime: prime, Style: style, Value: v}
}

// lexPair matches what follows a key against the remaining styles, in
// order: quoted, ampersand, single angle bracket, the even separators,
// then the inline array forms.
func lexPair(rest string) (Token, bool) {
	sep := rest[0]
	body := rest[1:]

	if sep == '=' {
		if content, ok := unquoteWhole(body); ok {
			return Token{Style: StyleQuoted, Value: String(content)}, true
		}
		if strings.HasPrefix(body, "[") {
			if !strings.HasSuffix(body, "]") {
				return Token{}, false
			}
			return lexArray(StyleJSON, splitUnquoted(body[1:len(body)-1], ','))
		}
	}

	switch sep {
	case '&':
		v, ok := parseScalar(body, false)
		return Token{Style: StyleAmpersand, Value: v}, ok
	case '<':
		if !strings.HasSuffix(body, ">") {
			return Token{}, false
		}
		v, ok := parseScalar(body[:len(body)-1], false)
		return Token{Style: StyleBrackets, Value: v}, ok
	case '|':
		if strings.HasPrefix(body, "|") {
			if len(body) < 3 || !strings.HasSuffix(body, "||") {
				return Token{}, false
			}
			return lexArray(StylePipes, splitUnquoted(body[1:len(body)-2], '|'))
		}
		if !strings.HasSuffix(body, "|") {
			return Token{}, false
		}
		v, ok := parseScalar(body[:len(body)-1], false)
		return Token{Style: StylePipes, Value: v}, ok
	case '[':
		parts, ok := splitBracketed("[" + body)
		if !ok {
			return Token{}, false
		}
		return lexArray(StyleBrackets, parts)
	case ':':
		// a lone colon with another unquoted colon later is an array
		if indexUnquoted(body, ':', 0) >= 0 {
			if !strings.HasSuffix(body, ":") {
				return Token{}, false
			}
			return lexArray(StyleColonDelim, splitUnquoted(body[:len(body)-1], ':'))
		}
	}

	if style, ok := evenSeparators[sep]; ok {
		v, ok := parseScalar(body, true)
		return Token{Style: style, Value: v}, ok
	}
	return Token{}, false
}

func lexArray(style Style, parts []string) (Token, bool) {
	items := make([]Value, 0, len(parts))
	for _, p := range parts {
		v, ok := parseScalar(p, false)
		if !ok {
			return Token{}, false
		}
		items = append(items, v)
	}
	return Token{Style: style, Array: true, Value: Value{kind: KindList, items: items}}, true
}

// splitBracketed splits "[a][b][c]" into its elements, honouring quotes.
func splitBracketed(s string) ([]string, bool) {
	var parts []string
	for i := 0; i < len(s); {
		if s[i] != '[' {
			return nil, false
		}
		end := indexUnquoted(s, ']', i+1)
		if end < 0 {
			return nil, false
		}
		parts = append(parts, s[i+1:end])
		i = end + 1
	}
	return parts, len(parts) > 0
}
