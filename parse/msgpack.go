package parse

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/robbyt/roml/parse/roml"
)

func decodeMsgPack(data []byte) (roml.Value, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := readMsgPack(dec)
	if err != nil {
		return roml.Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return v, nil
}

// readMsgPack walks maps and arrays by hand so map order survives.
func readMsgPack(dec *msgpack.Decoder) (roml.Value, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return roml.Value{}, err
	}
	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return roml.Value{}, err
		}
		entries := make([]roml.Entry, 0, n)
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return roml.Value{}, err
			}
			child, err := readMsgPack(dec)
			if err != nil {
				return roml.Value{}, err
			}
			entries = append(entries, roml.Pair(key, child))
		}
		return roml.Map(entries...), nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return roml.Value{}, err
		}
		items := make([]roml.Value, 0, n)
		for i := 0; i < n; i++ {
			item, err := readMsgPack(dec)
			if err != nil {
				return roml.Value{}, err
			}
			items = append(items, item)
		}
		return roml.List(items...), nil
	}

	x, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return roml.Value{}, err
	}
	switch t := x.(type) {
	case nil:
		return roml.Null(), nil
	case bool:
		return roml.Bool(t), nil
	case int64:
		return roml.Number(float64(t)), nil
	case uint64:
		return roml.Number(float64(t)), nil
	case float64:
		return roml.Number(t), nil
	case string:
		return roml.String(t), nil
	case []byte:
		return roml.String(string(t)), nil
	}
	return roml.Value{}, fmt.Errorf("unsupported msgpack value %T", x)
}

func encodeMsgPack(v roml.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := writeMsgPack(enc, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMsgPack(enc *msgpack.Encoder, v roml.Value) error {
	switch v.Kind() {
	case roml.KindBool:
		b, _ := v.AsBool()
		return enc.EncodeBool(b)
	case roml.KindNumber:
		f, _ := v.AsNumber()
		// negative zero stays a float so the sign survives
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 && !(f == 0 && math.Signbit(f)) {
			return enc.EncodeInt(int64(f))
		}
		return enc.EncodeFloat64(f)
	case roml.KindString:
		s, _ := v.AsString()
		return enc.EncodeString(s)
	case roml.KindList:
		items := v.Items()
		if err := enc.EncodeArrayLen(len(items)); err != nil {
			return err
		}
		for _, item := range items {
			if err := writeMsgPack(enc, item); err != nil {
				return err
			}
		}
		return nil
	case roml.KindMap:
		entries := v.Entries()
		if err := enc.EncodeMapLen(len(entries)); err != nil {
			return err
		}
		for _, e := range entries {
			if err := enc.EncodeString(e.Key); err != nil {
				return err
			}
			if err := writeMsgPack(enc, e.Value); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.EncodeNil()
	}
}
