package parse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/roml/parse/roml"
	"github.com/robbyt/roml/parse/toml"
)

func sample() roml.Value {
	return roml.Map(
		roml.Pair("zeta", roml.String("last key first")),
		roml.Pair("age", roml.Number(7)),
		roml.Pair("ratio", roml.Number(0.25)),
		roml.Pair("ok", roml.Bool(true)),
		roml.Pair("tags", roml.List(roml.String("a"), roml.String("true"), roml.Number(3))),
		roml.Pair("nested", roml.Map(
			roml.Pair("b", roml.Number(-2)),
			roml.Pair("a", roml.String("<html> & \"q\"")),
		)),
	)
}

func TestFormatsRoundTrip(t *testing.T) {
	for _, f := range Formats() {
		t.Run(f.Name, func(t *testing.T) {
			data, err := f.Encode(sample())
			require.NoError(t, err)

			got, err := f.Decode(data)
			require.NoError(t, err)
			assert.True(t, roml.Equal(sample(), got), "got %s", got)
		})
	}
}

func TestNullRoundTrip(t *testing.T) {
	v := roml.Map(roml.Pair("nothing", roml.Null()), roml.Pair("xs", roml.List(roml.Null())))
	for _, f := range []Format{JSON, YAML, MsgPack} {
		data, err := f.Encode(v)
		require.NoError(t, err, f.Name)
		got, err := f.Decode(data)
		require.NoError(t, err, f.Name)
		assert.True(t, roml.Equal(v, got), "%s: got %s", f.Name, got)
	}

	_, err := TOML.Encode(v)
	assert.ErrorIs(t, err, toml.ErrUnsupported)
}

func TestTOMLBridge(t *testing.T) {
	v, err := TOML.Decode([]byte("title = \"x\"\n\n[owner]\nname = \"Tom\"\ndob = 1979-05-27T07:32:00Z\n\n[[items]]\nsku = 7\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x","owner":{"name":"Tom","dob":"1979-05-27T07:32:00Z"},"items":[{"sku":7}]}`, v.String())

	_, err = TOML.Decode([]byte("a = \n"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	f, ok := DetectFormat("Cargo.toml")
	assert.True(t, ok)
	assert.Equal(t, "toml", f.Name)
}

func TestMsgPackNegativeZero(t *testing.T) {
	data, err := MsgPack.Encode(roml.Number(math.Copysign(0, -1)))
	require.NoError(t, err)
	v, err := MsgPack.Decode(data)
	require.NoError(t, err)
	n, _ := v.AsNumber()
	assert.True(t, n == 0 && math.Signbit(n))

	data, err = MsgPack.Encode(roml.Number(0))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, data)
}

func TestJSONKeepsOrder(t *testing.T) {
	v, err := JSON.Decode([]byte(`{"z": 1, "a": {"y": [true, null, "s"], "b": 2.5}}`))
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"y":[true,null,"s"],"b":2.5}}`, v.String())

	data, err := JSON.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": {\n    \"y\": [\n      true,\n      null,\n      \"s\"\n    ],\n    \"b\": 2.5\n  }\n}\n", string(data))
}

func TestJSONErrors(t *testing.T) {
	for _, in := range []string{``, `{"a":`, `[1, 2`, `{"a": 1} {"b": 2}`} {
		_, err := JSON.Decode([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", in)
	}

	_, err := JSON.Encode(roml.Map(roml.Pair("n", roml.Number(math.NaN()))))
	assert.ErrorIs(t, err, roml.ErrUnsupportedValue)
}

func TestYAMLScalars(t *testing.T) {
	v, err := YAML.Decode([]byte("b: 1\na: \"1\"\nc: ~\nd: yes\ne: true\nf: 0x10\ng: .inf\nh: [x, 2]\n"))
	require.NoError(t, err)

	a, _ := v.Get("a")
	assert.Equal(t, roml.KindString, a.Kind())
	b, _ := v.Get("b")
	assert.Equal(t, roml.KindNumber, b.Kind())
	c, _ := v.Get("c")
	assert.True(t, c.IsNull())
	d, _ := v.Get("d")
	assert.Equal(t, roml.KindString, d.Kind(), "yaml 1.2 treats yes as a string")
	e, _ := v.Get("e")
	assert.Equal(t, roml.KindBool, e.Kind())
	f, _ := v.Get("f")
	n, _ := f.AsNumber()
	assert.Equal(t, 16.0, n)
	g, _ := v.Get("g")
	n, _ = g.AsNumber()
	assert.True(t, math.IsInf(n, 1))

	keys := []string{}
	for _, entry := range v.Entries() {
		keys = append(keys, entry.Key)
	}
	assert.Equal(t, []string{"b", "a", "c", "d", "e", "f", "g", "h"}, keys)
}

func TestYAMLEncodeQuotesAmbiguousStrings(t *testing.T) {
	data, err := YAML.Encode(roml.Map(roml.Pair("s", roml.String("true")), roml.Pair("n", roml.Number(3))))
	require.NoError(t, err)
	assert.Equal(t, "s: \"true\"\nn: 3\n", string(data))

	v, err := YAML.Decode([]byte(""))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestMsgPack(t *testing.T) {
	data, err := MsgPack.Encode(roml.Map(roml.Pair("b", roml.Number(1)), roml.Pair("a", roml.Number(1.5))))
	require.NoError(t, err)
	// fixmap(2) "b" 1 "a" float64(1.5)
	assert.Equal(t, byte(0x82), data[0])

	v, err := MsgPack.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":1.5}`, v.String())

	_, err = MsgPack.Decode([]byte{0x82, 0xa1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLookupFormat(t *testing.T) {
	f, err := LookupFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, "yaml", f.Name)

	_, err = LookupFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	f, ok := DetectFormat("data/config.yml")
	assert.True(t, ok)
	assert.Equal(t, "yaml", f.Name)

	f, ok = DetectFormat("blob.MSGPACK")
	assert.True(t, ok)
	assert.True(t, f.Binary)

	_, ok = DetectFormat("README")
	assert.False(t, ok)
}
