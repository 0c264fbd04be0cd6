package toml

// toml 包实现了一个保持键顺序的 TOML 解析器，解析结果可以投影为 roml.Value，供 roml encode -f toml 使用。
//
// 范围：
// - TOML v1.0.0 核心功能
// - 显式 AST（表 / 数组 / 值），表内键保持文档顺序
// - 点分键与引号键
// - 数组表（[[x]]）及其子表
// - 确定性错误
//
// 非目标：
// - 注释保留
// - 格式化往返

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/robbyt/roml/parse/roml"
)

var ErrSyntax = errors.New("toml: syntax error")

// =========================
// AST Definitions
// =========================

type ValueKind string

var tomlValueKinds = struct {
	ValueString        ValueKind
	ValueInt           ValueKind
	ValueFloat         ValueKind
	ValueBool          ValueKind
	ValueDatetime      ValueKind
	ValueLocalDate     ValueKind
	ValueLocalTime     ValueKind
	ValueLocalDatetime ValueKind
	ValueTable         ValueKind
	ValueArray         ValueKind
}{
	ValueString:        "string",
	ValueInt:           "int",
	ValueFloat:         "float",
	ValueBool:          "bool",
	ValueDatetime:      "datetime",
	ValueLocalDate:     "local_date",
	ValueLocalTime:     "local_time",
	ValueLocalDatetime: "local_datetime",
	ValueTable:         "table",
	ValueArray:         "array",
}

type Node interface {
	Kind() ValueKind
}

// -------- Table --------

// Table keeps its keys in the order they were first defined.
type Table struct {
	Keys  []string
	Items map[string]Node
}

func NewTable() *Table {
	return &Table{Items: make(map[string]Node)}
}

func (*Table) Kind() ValueKind { return tomlValueKinds.ValueTable }

func (t *Table) set(key string, n Node) {
	if _, ok := t.Items[key]; !ok {
		t.Keys = append(t.Keys, key)
	}
	t.Items[key] = n
}

// -------- Array --------

type Array struct {
	Elems []Node
}

func (*Array) Kind() ValueKind { return tomlValueKinds.ValueArray }

// -------- Value --------

type Value struct {
	Type ValueKind
	V    any
}

func (v *Value) Kind() ValueKind { return v.Type }

// =========================
// Public API
// =========================

// Parse parses TOML input from r and returns the root Table.
func Parse(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	p := &parser{scanner: sc, root: NewTable()}
	p.cur = p.root

	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		p.lineNo++

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var err error
		if strings.HasPrefix(line, "[") {
			err = p.parseTableHeader(line)
		} else {
			err = p.parseKeyValue(line)
		}
		if err != nil {
			return nil, p.errf(err)
		}
	}

	if err := p.scanner.Err(); err != nil {
		return nil, err
	}
	return p.root, nil
}

// ToValue projects a node into the ROML value model. Integers and floats
// become numbers; dates and times become strings in their TOML form.
func ToValue(n Node) roml.Value {
	switch v := n.(type) {
	case *Table:
		entries := make([]roml.Entry, 0, len(v.Keys))
		for _, k := range v.Keys {
			entries = append(entries, roml.Pair(k, ToValue(v.Items[k])))
		}
		return roml.Map(entries...)
	case *Array:
		items := make([]roml.Value, 0, len(v.Elems))
		for _, e := range v.Elems {
			items = append(items, ToValue(e))
		}
		return roml.List(items...)
	case *Value:
		switch x := v.V.(type) {
		case string:
			return roml.String(x)
		case bool:
			return roml.Bool(x)
		case int64:
			return roml.Number(float64(x))
		case float64:
			return roml.Number(x)
		case time.Time:
			return roml.String(formatTime(v.Type, x))
		}
	}
	return roml.Null()
}

func formatTime(kind ValueKind, t time.Time) string {
	switch kind {
	case tomlValueKinds.ValueLocalDate:
		return t.Format("2006-01-02")
	case tomlValueKinds.ValueLocalTime:
		return t.Format("15:04:05.999999999")
	case tomlValueKinds.ValueLocalDatetime:
		return t.Format("2006-01-02T15:04:05.999999999")
	default:
		return t.Format(time.RFC3339Nano)
	}
}

// =========================
// Parser Implementation
// =========================

type parser struct {
	scanner *bufio.Scanner
	root    *Table
	cur     *Table
	lineNo  int
}

func (p *parser) errf(err error) error {
	return fmt.Errorf("%w: line %d: %v", ErrSyntax, p.lineNo, err)
}

// descend returns the table under key, creating it when missing. An array
// of tables resolves to its last element.
func descend(t *Table, key string) (*Table, error) {
	switch n := t.Items[key].(type) {
	case nil:
		next := NewTable()
		t.set(key, next)
		return next, nil
	case *Table:
		return n, nil
	case *Array:
		if len(n.Elems) > 0 {
			if last, ok := n.Elems[len(n.Elems)-1].(*Table); ok {
				return last, nil
			}
		}
	}
	return nil, fmt.Errorf("key %q already defined and is not a table", key)
}

func (p *parser) parseTableHeader(line string) error {
	s := strings.TrimSpace(stripComments(line))
	isArray := strings.HasPrefix(s, "[[")

	var name string
	switch {
	case isArray && strings.HasSuffix(s, "]]"):
		name = s[2 : len(s)-2]
	case !isArray && strings.HasSuffix(s, "]"):
		name = s[1 : len(s)-1]
	default:
		return errors.New("invalid table header")
	}
	parts, err := parseKeyParts(name)
	if err != nil {
		return err
	}

	t := p.root
	for _, part := range parts[:len(parts)-1] {
		if t, err = descend(t, part); err != nil {
			return err
		}
	}
	last := parts[len(parts)-1]

	if !isArray {
		p.cur, err = descend(t, last)
		return err
	}

	var arr *Array
	switch n := t.Items[last].(type) {
	case nil:
		arr = &Array{}
		t.set(last, arr)
	case *Array:
		arr = n
	default:
		return fmt.Errorf("key %q already defined and is not an array", last)
	}
	p.cur = NewTable()
	arr.Elems = append(arr.Elems, p.cur)
	return nil
}

func (p *parser) parseKeyValue(line string) error {
	idx := findUnquoted(line, '=')
	if idx < 0 {
		return errors.New("invalid syntax")
	}
	parts, err := parseKeyParts(line[:idx])
	if err != nil {
		return err
	}

	t := p.cur
	for _, part := range parts[:len(parts)-1] {
		if t, err = descend(t, part); err != nil {
			return err
		}
	}

	last := parts[len(parts)-1]
	if _, exists := t.Items[last]; exists {
		return fmt.Errorf("duplicate key %q", last)
	}

	full, err := p.consumeValue(line[idx+1:])
	if err != nil {
		return err
	}
	v, err := parseValue(full)
	if err != nil {
		return err
	}
	t.set(last, v)
	return nil
}

// consumeValue pulls further lines while the value is an open multi-line
// string, array or inline table.
func (p *parser) consumeValue(initial string) (string, error) {
	var b strings.Builder
	b.WriteString(initial)
	for pending(b.String()) {
		if !p.scanner.Scan() {
			return "", errors.New("unterminated multi-line value")
		}
		p.lineNo++
		b.WriteByte('\n')
		b.WriteString(p.scanner.Text())
	}
	return b.String(), nil
}

// =========================
// Value Parsing
// =========================

func parseValue(s string) (Node, error) {
	s = strings.TrimSpace(stripComments(s))
	if s == "" {
		return nil, errors.New("empty value")
	}

	switch {
	case strings.HasPrefix(s, `"""`):
		content, ok := extractTripleQuoted(s, `"""`)
		if !ok {
			return nil, errors.New("unterminated multiline string")
		}
		decoded, err := decodeBasicString(content, true)
		if err != nil {
			return nil, err
		}
		return &Value{Type: tomlValueKinds.ValueString, V: decoded}, nil
	case strings.HasPrefix(s, `'''`):
		content, ok := extractTripleQuoted(s, `'''`)
		if !ok {
			return nil, errors.New("unterminated multiline literal string")
		}
		return &Value{Type: tomlValueKinds.ValueString, V: content}, nil
	case s[0] == '"':
		if len(s) < 2 || s[len(s)-1] != '"' {
			return nil, errors.New("unterminated string")
		}
		decoded, err := decodeBasicString(s[1:len(s)-1], false)
		if err != nil {
			return nil, err
		}
		return &Value{Type: tomlValueKinds.ValueString, V: decoded}, nil
	case s[0] == '\'':
		if len(s) < 2 || s[len(s)-1] != '\'' {
			return nil, errors.New("unterminated literal string")
		}
		return &Value{Type: tomlValueKinds.ValueString, V: s[1 : len(s)-1]}, nil
	case s[0] == '[':
		return parseArrayToken(s)
	case s[0] == '{':
		return parseInlineTableToken(s)
	case s == "true" || s == "false":
		return &Value{Type: tomlValueKinds.ValueBool, V: s == "true"}, nil
	}

	if t, ok := parseDateTime(s); ok {
		return t, nil
	}
	if i, err := parseIntToken(s); err == nil {
		return &Value{Type: tomlValueKinds.ValueInt, V: i}, nil
	}
	if f, err := parseFloatToken(s); err == nil {
		return &Value{Type: tomlValueKinds.ValueFloat, V: f}, nil
	}
	return nil, fmt.Errorf("unsupported value %q", s)
}

func parseArrayToken(s string) (*Array, error) {
	if !strings.HasSuffix(s, "]") {
		return nil, errors.New("invalid array")
	}
	arr := &Array{}
	for _, part := range splitTopLevel(s[1:len(s)-1], ',') {
		if part == "" {
			continue
		}
		v, err := parseValue(part)
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, v)
	}
	return arr, nil
}

func parseInlineTableToken(s string) (*Table, error) {
	if !strings.HasSuffix(s, "}") {
		return nil, errors.New("invalid inline table")
	}
	t := NewTable()
	for _, pair := range splitTopLevel(s[1:len(s)-1], ',') {
		if pair == "" {
			continue
		}
		idx := findUnquoted(pair, '=')
		if idx < 0 {
			return nil, errors.New("invalid inline table kv")
		}
		parts, err := parseKeyParts(pair[:idx])
		if err != nil {
			return nil, err
		}
		cur := t
		for _, part := range parts[:len(parts)-1] {
			if cur, err = descend(cur, part); err != nil {
				return nil, errors.New("inline table path conflict")
			}
		}
		last := parts[len(parts)-1]
		if _, exists := cur.Items[last]; exists {
			return nil, errors.New("duplicate inline table key")
		}
		v, err := parseValue(pair[idx+1:])
		if err != nil {
			return nil, err
		}
		cur.set(last, v)
	}
	return t, nil
}

func parseDateTime(s string) (Node, bool) {
	for _, l := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999Z07:00"} {
		if t, err := time.Parse(l, s); err == nil {
			return &Value{Type: tomlValueKinds.ValueDatetime, V: t}, true
		}
	}
	for _, l := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999"} {
		if t, err := time.Parse(l, s); err == nil {
			return &Value{Type: tomlValueKinds.ValueLocalDatetime, V: t}, true
		}
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return &Value{Type: tomlValueKinds.ValueLocalDate, V: d}, true
	}
	if t, err := time.Parse("15:04:05.999999999", s); err == nil {
		return &Value{Type: tomlValueKinds.ValueLocalTime, V: t}, true
	}
	return nil, false
}

var intBases = []struct {
	prefix string
	base   int
}{{"0x", 16}, {"0o", 8}, {"0b", 2}}

func parseIntToken(s string) (int64, error) {
	s = strings.ReplaceAll(s, "_", "")
	sign := int64(1)
	body := s
	switch {
	case strings.HasPrefix(body, "-"):
		sign, body = -1, body[1:]
	case strings.HasPrefix(body, "+"):
		body = body[1:]
	}
	for _, b := range intBases {
		if strings.HasPrefix(body, b.prefix) {
			v, err := strconv.ParseUint(body[2:], b.base, 63)
			if err != nil {
				return 0, err
			}
			return int64(v) * sign, nil
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseFloatToken(s string) (float64, error) {
	switch s {
	case "inf", "+inf":
		return math.Inf(+1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan", "+nan", "-nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
}

func decodeBasicString(s string, multiline bool) (string, error) {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			out.WriteByte(ch)
			continue
		}
		if i+1 >= len(s) {
			return "", errors.New("invalid escape")
		}
		i++
		switch s[i] {
		case 'b':
			out.WriteByte('\b')
		case 't':
			out.WriteByte('\t')
		case 'n':
			out.WriteByte('\n')
		case 'f':
			out.WriteByte('\f')
		case 'r':
			out.WriteByte('\r')
		case '"':
			out.WriteByte('"')
		case '\\':
			out.WriteByte('\\')
		case 'u', 'U':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			if i+width >= len(s) {
				return "", errors.New("invalid unicode escape")
			}
			v, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", err
			}
			out.WriteRune(rune(v))
			i += width
		default:
			// line ending backslash trims the newline and leading whitespace
			if multiline && (s[i] == '\n' || s[i] == ' ' || s[i] == '\t' || s[i] == '\r') {
				for i+1 < len(s) && strings.IndexByte(" \t\r\n", s[i+1]) >= 0 {
					i++
				}
				continue
			}
			return "", errors.New("unsupported escape")
		}
	}
	return out.String(), nil
}

func extractTripleQuoted(s, delim string) (string, bool) {
	if len(s) < 6 || !strings.HasSuffix(s, delim) {
		return "", false
	}
	content := s[3 : len(s)-3]
	content = strings.TrimPrefix(content, "\r")
	content = strings.TrimPrefix(content, "\n")
	return content, true
}

// =========================
// Utilities
// =========================

func isBareKey(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			return false
		}
	}
	return s != ""
}

func parseKeyParts(s string) ([]string, error) {
	var parts []string
	s = strings.TrimSpace(s)
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return nil, errors.New("empty key")
		}
		var part string
		switch s[0] {
		case '"':
			end := closingQuote(s)
			if end < 0 {
				return nil, errors.New("unterminated quoted key")
			}
			decoded, err := decodeBasicString(s[1:end], false)
			if err != nil {
				return nil, err
			}
			part, s = decoded, s[end+1:]
		case '\'':
			end := strings.IndexByte(s[1:], '\'')
			if end < 0 {
				return nil, errors.New("unterminated quoted key")
			}
			part, s = s[1:end+1], s[end+2:]
		default:
			end := strings.IndexByte(s, '.')
			if end < 0 {
				end = len(s)
			}
			part = strings.TrimSpace(s[:end])
			if !isBareKey(part) {
				return nil, fmt.Errorf("invalid key %q", part)
			}
			s = s[end:]
		}
		parts = append(parts, part)

		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return parts, nil
		}
		if s[0] != '.' {
			return nil, errors.New("invalid quoted key position")
		}
		s = s[1:]
	}
}

// closingQuote finds the quote ending the basic string that opens s.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// quoteScanner tracks whether a scan position is inside a TOML string.
type quoteScanner struct {
	quote byte
	multi bool
}

// advance consumes the token at s[i] and returns its width. Escapes in
// basic strings and triple quotes are single tokens.
func (q *quoteScanner) advance(s string, i int) int {
	ch := s[i]
	if q.quote == 0 {
		if ch != '"' && ch != '\'' {
			return 1
		}
		q.quote = ch
		if strings.HasPrefix(s[i:], strings.Repeat(string(ch), 3)) {
			q.multi = true
			return 3
		}
		return 1
	}
	if q.quote == '"' && ch == '\\' && i+1 < len(s) {
		return 2
	}
	if ch != q.quote {
		return 1
	}
	if !q.multi {
		q.quote = 0
		return 1
	}
	if strings.HasPrefix(s[i:], strings.Repeat(string(ch), 3)) {
		q.quote, q.multi = 0, false
		return 3
	}
	return 1
}

// stripComments removes # comments outside strings, line by line.
func stripComments(s string) string {
	var b strings.Builder
	q := &quoteScanner{}
	for i := 0; i < len(s); {
		if q.quote == 0 && s[i] == '#' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			continue
		}
		n := q.advance(s, i)
		b.WriteString(s[i : i+n])
		i += n
	}
	return b.String()
}

func findUnquoted(s string, sep byte) int {
	q := &quoteScanner{}
	for i := 0; i < len(s); {
		if q.quote == 0 && s[i] == sep {
			return i
		}
		i += q.advance(s, i)
	}
	return -1
}

// pending reports whether s stops inside a multi-line string or an open
// array or inline table.
func pending(s string) bool {
	q := &quoteScanner{}
	depth := 0
	for i := 0; i < len(s); {
		if q.quote == 0 {
			switch s[i] {
			case '#':
				for i < len(s) && s[i] != '\n' {
					i++
				}
				continue
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
		i += q.advance(s, i)
	}
	return depth > 0 || q.multi
}

// splitTopLevel splits s on sep outside strings and nested brackets. Parts
// are trimmed.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	q := &quoteScanner{}
	depth, start := 0, 0
	for i := 0; i < len(s); {
		if q.quote == 0 {
			switch s[i] {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			case sep:
				if depth == 0 {
					parts = append(parts, strings.TrimSpace(s[start:i]))
					start = i + 1
				}
			}
		}
		i += q.advance(s, i)
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// =========================
// Safe Access Helpers
// =========================

func Get(root *Table, path ...string) (Node, bool) {
	var cur Node = root
	for _, p := range path {
		t, ok := cur.(*Table)
		if !ok {
			return nil, false
		}
		if cur, ok = t.Items[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func MustString(n Node) string {
	return n.(*Value).V.(string)
}

func MustInt(n Node) int64 {
	return n.(*Value).V.(int64)
}
