// Package roml implements a bidirectional codec between a JSON-equivalent
// value model and ROML, a deliberately multi-grammar text format.
//
// Every key-value pair is written in one of sixteen styles chosen from the
// parity of its line counter, the semantics of its key, the type of its
// value and a hash fallback. Keys whose value holds a prime number carry a
// '^' prefix, and the document header declares ~PRIME~ exactly when such a
// key exists. Decoding reverses all of it:
//
//	text := roml.Encode(roml.Map(roml.Pair("name", roml.String("Robert"))))
//	res := roml.Decode(text)
//	// res.Value equals the input, res.Errors is empty
//
// Scope:
// - Encode is total and deterministic
// - Decode never fails; malformed lines are skipped and prime side-channel
//   inconsistencies are reported in Result.Errors
//
// Non-goals:
// - Human friendliness
// - A canonical serialization
// - Streaming or partial documents
package roml

import (
	"fmt"
	"strings"
)

// =========================
// Public API
// =========================

// Result is the outcome of a decode. Value is populated even when Errors
// is not empty.
type Result struct {
	Value  Value
	Errors []string
	Issues []*Issue
	Primes PrimeInfo
}

// OK reports whether no issue was reported.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Codec encodes and decodes ROML. The zero value is not usable; use New.
// A Codec holds no per-call state and may be shared between goroutines.
type Codec struct {
	log Logger
}

type Option func(*Codec)

// WithLogger routes codec diagnostics to l.
func WithLogger(l Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.log = l
		}
	}
}

func New(opts ...Option) *Codec {
	c := &Codec{log: noopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode renders v as a ROML document.
func (c *Codec) Encode(v Value) string {
	e := &encoder{log: c.log}
	return e.encode(v)
}

// Decode parses a ROML document.
func (c *Codec) Decode(text string) Result {
	tokens := Tokenize(text)
	doc, info, issues := parseTokens(tokens, c.log)
	res := Result{
		Value:  doc.Value(),
		Errors: reportedMessages(issues),
		Issues: issues,
		Primes: info,
	}
	for _, msg := range res.Errors {
		c.log.Warn("roml: decode issue", "error", msg)
	}
	return res
}

// DecodeStrict is Decode that treats any reported issue as an error. The
// best-effort value is returned either way.
func (c *Codec) DecodeStrict(text string) (Value, error) {
	res := c.Decode(text)
	if !res.OK() {
		return res.Value, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(res.Errors, "; "))
	}
	return res.Value, nil
}

var defaultCodec = New()

// Encode renders v with the default codec.
func Encode(v Value) string { return defaultCodec.Encode(v) }

// Decode parses text with the default codec.
func Decode(text string) Result { return defaultCodec.Decode(text) }

// Marshal converts untyped Go data and encodes it.
func Marshal(x any) ([]byte, error) {
	v, err := FromAny(x)
	if err != nil {
		return nil, err
	}
	return []byte(Encode(v)), nil
}

// Unmarshal decodes data into untyped Go data. A document with reported
// issues yields the best-effort data and an error wrapping
// ErrInvalidDocument.
func Unmarshal(data []byte) (any, error) {
	v, err := defaultCodec.DecodeStrict(string(data))
	return v.ToAny(), err
}
