package roml

import (
	"strconv"
	"strings"
)

// Keys of the synthetic map wrapping a non-map root.
const (
	wrapItemsKey = "_items"
	wrapValueKey = "_value"
)

// wrapRoot turns v into the map the grammar starts from. Maps that would
// be mistaken for a wrapper on decode are wrapped once more.
func wrapRoot(v Value) Value {
	switch v.kind {
	case KindMap:
		if len(v.entries) == 1 && (v.entries[0].Key == wrapItemsKey || v.entries[0].Key == wrapValueKey) {
			return Map(Pair(wrapValueKey, v))
		}
		return v
	case KindList:
		return Map(Pair(wrapItemsKey, v))
	default:
		return Map(Pair(wrapValueKey, v))
	}
}

// unwrapRoot reverses wrapRoot.
func unwrapRoot(v Value) Value {
	if v.kind != KindMap || len(v.entries) != 1 {
		return v
	}
	e := v.entries[0]
	switch {
	case e.Key == wrapItemsKey && e.Value.kind == KindList:
		return e.Value
	case e.Key == wrapValueKey:
		return e.Value
	}
	return v
}

type encoder struct {
	b       strings.Builder
	counter uint64
	log     Logger
}

func (e *encoder) line(depth int, text string) {
	for i := 0; i < depth; i++ {
		e.b.WriteString("  ")
	}
	e.b.WriteString(text)
	e.b.WriteByte('\n')
	e.counter++
}

func (e *encoder) ctx(depth int) LineContext {
	return LineContext{Counter: e.counter, Depth: depth}
}

func (e *encoder) encode(v Value) string {
	root := wrapRoot(v)
	marker := ContainsPrime(root)

	e.b.WriteString(DocumentMarker)
	e.b.WriteByte('\n')
	e.counter = 1
	if marker {
		e.b.WriteString(CommentPrefix + " " + PrimeMarker)
		e.b.WriteByte('\n')
		e.counter = 2
	}
	e.entries(root.entries, 0)
	e.log.Debug("roml: encoded document", "counter", e.counter, "prime_marker", marker)
	return e.b.String()
}

func (e *encoder) entries(entries []Entry, depth int) {
	for _, en := range entries {
		e.entry(en.Key, en.Value, depth)
	}
}

func (e *encoder) entry(key string, v Value, depth int) {
	switch v.kind {
	case KindMap:
		e.line(depth, renderKey(key)+"{")
		e.entries(v.entries, depth+1)
		e.line(depth, "}")
	case KindList:
		prime := ContainsPrime(v)
		if isInlineArray(v, depth) {
			e.line(depth, RenderArray(SelectArrayStyle(key), key, v.items, prime))
			return
		}
		e.line(depth, keyText(key, prime)+"[")
		for i, item := range v.items {
			e.item(i, item, depth+1)
		}
		e.line(depth, "]")
	default:
		style := SelectStyle(key, v, e.ctx(depth))
		e.line(depth, RenderPair(style, key, v, IsPrime(v.numVal) && v.kind == KindNumber))
	}
}

func (e *encoder) item(i int, v Value, depth int) {
	idx := "[" + strconv.Itoa(i) + "]"
	switch v.kind {
	case KindMap:
		e.line(depth, idx+"{")
		e.entries(v.entries, depth+1)
		e.line(depth, "}")
	case KindList:
		e.line(depth, idx+"[")
		for j, sub := range v.items {
			e.item(j, sub, depth+1)
		}
		e.line(depth, "]")
	default:
		e.line(depth, idx+"="+renderValue(v, StyleBrackets))
	}
}
