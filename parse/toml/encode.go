package toml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/robbyt/roml/parse/roml"
)

var ErrUnsupported = errors.New("toml: value cannot be represented")

// Marshal renders a map value as a TOML document. Within each table the
// plain keys come first, then sub-tables and arrays of tables, each group
// in map order.
func Marshal(v roml.Value) ([]byte, error) {
	if v.Kind() != roml.KindMap {
		return nil, fmt.Errorf("%w: document root must be a map, got %s", ErrUnsupported, v.Kind())
	}
	w := &writer{}
	if err := w.table(nil, v); err != nil {
		return nil, err
	}
	return []byte(w.b.String()), nil
}

type writer struct {
	b strings.Builder
}

func (w *writer) table(path []string, v roml.Value) error {
	var nested []roml.Entry
	for _, e := range v.Entries() {
		if e.Value.Kind() == roml.KindMap || isTableArray(e.Value) {
			nested = append(nested, e)
			continue
		}
		text, err := inline(e.Value)
		if err != nil {
			return fmt.Errorf("key %q: %w", e.Key, err)
		}
		w.b.WriteString(formatKey(e.Key) + " = " + text + "\n")
	}

	for _, e := range nested {
		sub := append(append([]string{}, path...), e.Key)
		if e.Value.Kind() == roml.KindMap {
			w.header("[", sub, "]")
			if err := w.table(sub, e.Value); err != nil {
				return err
			}
			continue
		}
		for _, item := range e.Value.Items() {
			w.header("[[", sub, "]]")
			if err := w.table(sub, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) header(open string, path []string, close string) {
	if w.b.Len() > 0 {
		w.b.WriteByte('\n')
	}
	keys := make([]string, len(path))
	for i, k := range path {
		keys[i] = formatKey(k)
	}
	w.b.WriteString(open + strings.Join(keys, ".") + close + "\n")
}

// isTableArray reports whether v is written as [[key]] sections.
func isTableArray(v roml.Value) bool {
	items := v.Items()
	if v.Kind() != roml.KindList || len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Kind() != roml.KindMap {
			return false
		}
	}
	return true
}

func inline(v roml.Value) (string, error) {
	switch v.Kind() {
	case roml.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case roml.KindNumber:
		f, _ := v.AsNumber()
		return formatFloat(f), nil
	case roml.KindString:
		s, _ := v.AsString()
		return quoteString(s), nil
	case roml.KindList:
		parts := make([]string, 0, v.Len())
		for _, item := range v.Items() {
			text, err := inline(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case roml.KindMap:
		if v.Len() == 0 {
			return "{}", nil
		}
		parts := make([]string, 0, v.Len())
		for _, e := range v.Entries() {
			text, err := inline(e.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, formatKey(e.Key)+" = "+text)
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	default:
		return "", fmt.Errorf("%w: null", ErrUnsupported)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0 && math.Signbit(f):
		return "-0.0"
	case f == math.Trunc(f) && math.Abs(f) < 1<<53:
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatKey(k string) string {
	if isBareKey(k) {
		return k
	}
	return quoteString(k)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
