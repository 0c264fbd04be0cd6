package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/robbyt/roml/parse/roml"
)

// decodeJSON walks the token stream so object keys keep their order.
func decodeJSON(data []byte) (roml.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return roml.Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return roml.Value{}, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidInput)
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (roml.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return roml.Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var entries []roml.Entry
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return roml.Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
				}
				key, ok := kt.(string)
				if !ok {
					return roml.Value{}, fmt.Errorf("%w: object key %v", ErrInvalidInput, kt)
				}
				child, err := readJSONValue(dec)
				if err != nil {
					return roml.Value{}, err
				}
				entries = append(entries, roml.Pair(key, child))
			}
			if _, err := dec.Token(); err != nil {
				return roml.Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return roml.Map(entries...), nil
		case '[':
			var items []roml.Value
			for dec.More() {
				item, err := readJSONValue(dec)
				if err != nil {
					return roml.Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return roml.Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return roml.List(items...), nil
		}
		return roml.Value{}, fmt.Errorf("%w: unexpected %v", ErrInvalidInput, t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return roml.Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return roml.Number(f), nil
	case string:
		return roml.String(t), nil
	case bool:
		return roml.Bool(t), nil
	case nil:
		return roml.Null(), nil
	}
	return roml.Value{}, fmt.Errorf("%w: unexpected token %v", ErrInvalidInput, tok)
}

// encodeJSON writes v as indented JSON with map order preserved.
func encodeJSON(v roml.Value) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, v); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSON(b *bytes.Buffer, v roml.Value) error {
	switch v.Kind() {
	case roml.KindNull:
		b.WriteString("null")
	case roml.KindBool:
		x, _ := v.AsBool()
		if x {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case roml.KindNumber:
		f, _ := v.AsNumber()
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("%w: %v", roml.ErrUnsupportedValue, err)
		}
		b.Write(data)
	case roml.KindString:
		s, _ := v.AsString()
		writeJSONString(b, s)
	case roml.KindList:
		b.WriteByte('[')
		for i, item := range v.Items() {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSON(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case roml.KindMap:
		b.WriteByte('{')
		for i, e := range v.Entries() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, e.Key)
			b.WriteByte(':')
			if err := writeJSON(b, e.Value); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	}
	return nil
}

func writeJSONString(b *bytes.Buffer, s string) {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	// Encode only fails for unsupported types
	_ = enc.Encode(s)
	// drop the newline Encode appends
	b.Truncate(b.Len() - 1)
}
