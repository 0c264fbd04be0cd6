package roml

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func sampleDocument() Value {
	return Map(
		Pair("name", String("Robert")),
		Pair("age", Number(7)),
		Pair("email", String("robert@example.com")),
		Pair("active", Bool(true)),
		Pair("balance", Number(-12.5)),
		Pair("created", String("2024-01-01T00:00:00Z")),
		Pair("nickname", Null()),
		Pair("tags", List(String("a"), String("b"), Number(11))),
		Pair("address", Map(
			Pair("street", String("1 Infinite Loop")),
			Pair("zip", String("95014")),
			Pair("coords", List(Number(37.33), Number(-122.03))),
		)),
		Pair("orders", List(
			Map(Pair("id", Number(1)), Pair("total", Number(19.99))),
			Map(Pair("id", Number(2)), Pair("items", List(String("x"), Map(Pair("sku", Number(13)))))),
		)),
	)
}

func roundTripCases() map[string]Value {
	return map[string]Value{
		"empty map":      Map(),
		"empty list":     List(),
		"null root":      Null(),
		"string root":    String("hello"),
		"empty string":   String(""),
		"number root":    Number(42),
		"prime root":     Number(13),
		"bool root":      Bool(false),
		"list root":      List(Number(2), Number(3), Number(5)),
		"string list":    List(String("a"), String("b c")),
		"sample":         sampleDocument(),
		"scenario":       Map(Pair("name", String("Robert")), Pair("age", Number(7))),
		"wrapper items":  Map(Pair("_items", List(Number(1), Number(2)))),
		"wrapper value":  Map(Pair("_value", Number(3))),
		"wrapper scalar": Map(Pair("_items", Number(5))),
		"wrapper nested": Map(Pair("_value", Map(Pair("_value", Null())))),
		"ambiguous strings": Map(
			Pair("a", String("7")), Pair("b", String("true")), Pair("c", String("yes")),
			Pair("d", String("null")), Pair("e", String(NullToken)), Pair("f", String(" pad ")),
			Pair("g", String("multi\nline")), Pair("h", String("\t")), Pair("i", String("")),
			Pair("j", String(EmptyToken)), Pair("k", String("-0")), Pair("l", String("1e5")),
			Pair("m", String(`"quoted"`)), Pair("n", String(`back\slash`)), Pair("o", String("no")),
		),
		"awkward keys": Map(
			Pair("", Number(1)), Pair("my key", Number(2)), Pair("a=b", Number(3)),
			Pair("^", Number(4)), Pair("#c", Number(5)), Pair("true", Number(6)),
			Pair("__NULL__", Number(7)), Pair(`q"k`, Number(8)), Pair("[0]", Number(9)),
			Pair("x{", Map(Pair("y[", List(Number(10))))),
		),
		"numbers": Map(
			Pair("big", Number(1e21)), Pair("small", Number(1e-7)), Pair("neg", Number(-0.5)),
			Pair("int", Number(123456789012)), Pair("p", Number(10007)), Pair("zero", Number(0)),
			Pair("nan", Number(math.NaN())), Pair("inf", Number(math.Inf(1))), Pair("ninf", Number(math.Inf(-1))),
		),
		"mixed arrays": Map(
			Pair("mix", List(Number(1), Map(Pair("a", Number(2))), List(Number(3), List(Number(4))), String("x"), Null())),
			Pair("empties", List(List(), Map(), String(""))),
			Pair("flat", List(Null(), Bool(true), String("a,b"), String("x|y"), String("c:d"), String("[z]"))),
		),
		"deep": Map(Pair("a", Map(Pair("b", Map(Pair("c", Map(Pair("d", List(Map(Pair("e", Number(17)))))))))))),
		"keywords": Map(
			Pair("status", String("ok")), Pair("state", Number(3)), Pair("items", Bool(false)),
			Pair("list", Null()), Pair("port", Number(8080)), Pair("url", String("http://x/y")),
			Pair("price", Number(9.99)), Pair("currency", String("EUR")), Pair("date", String("today")),
			Pair("year", Number(2023)), Pair("title", String("")), Pair("elephant", String("big")),
			Pair("long", String("a rather long string value")),
		),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, v := range roundTripCases() {
		v := v
		convey.Convey("round trip: "+name, t, func() {
			text := Encode(v)
			res := Decode(text)
			convey.So(res.Errors, convey.ShouldBeEmpty)
			convey.So(res.Value.String(), convey.ShouldEqual, v.String())
			convey.So(Equal(res.Value, v), convey.ShouldBeTrue)
			convey.So(res.Primes.Marker, convey.ShouldEqual, ContainsPrime(v))
			convey.So(strings.Contains(text, PrimeMarker), convey.ShouldEqual, ContainsPrime(v))
		})
	}
}

func TestRoundTripParityShift(t *testing.T) {
	convey.Convey("adding a prime shifts every line into the other family", t, func() {
		base := Map(Pair("x", Number(4)), Pair("word", String("abc")), Pair("flag", Bool(true)))
		shifted := Map(Pair("x", Number(4)), Pair("word", String("abc")), Pair("flag", Bool(true)), Pair("p", Number(2)))

		baseTokens := Tokenize(Encode(base))
		shiftedTokens := Tokenize(Encode(shifted))
		for i := 1; i < len(baseTokens); i++ {
			convey.So(baseTokens[i].Counter, convey.ShouldEqual, uint64(i))
			convey.So(shiftedTokens[i].Counter, convey.ShouldEqual, uint64(i+1))
			convey.So(baseTokens[i].Style.Odd(), convey.ShouldNotEqual, shiftedTokens[i].Style.Odd())
		}
		convey.So(Decode(Encode(shifted)).OK(), convey.ShouldBeTrue)
	})
}

func TestScenario(t *testing.T) {
	convey.Convey("name and prime age", t, func() {
		v := Map(Pair("name", String("Robert")), Pair("age", Number(7)))
		text := Encode(v)
		convey.So(text, convey.ShouldEqual, "~ROML~\n# ~PRIME~\nname=Robert\n^age&7\n")
		res := Decode(text)
		convey.So(res.OK(), convey.ShouldBeTrue)
		convey.So(Equal(res.Value, v), convey.ShouldBeTrue)
	})

	convey.Convey("quoted and bare seven differ", t, func() {
		str := Encode(Map(Pair("n", String("7"))))
		num := Encode(Map(Pair("n", Number(7))))
		convey.So(str, convey.ShouldNotEqual, num)

		s, _ := Decode(str).Value.Get("n")
		n, _ := Decode(num).Value.Get("n")
		convey.So(s.Kind(), convey.ShouldEqual, KindString)
		convey.So(n.Kind(), convey.ShouldEqual, KindNumber)
	})
}

type captureLogger struct {
	debug, warn []string
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.debug = append(l.debug, msg) }
func (l *captureLogger) Info(string, ...any)        {}
func (l *captureLogger) Warn(msg string, _ ...any)  { l.warn = append(l.warn, msg) }
func (l *captureLogger) Error(string, ...any)       {}

func TestCodec(t *testing.T) {
	convey.Convey("codec logs skipped lines and issues", t, func() {
		log := &captureLogger{}
		c := New(WithLogger(log))
		res := c.Decode("~ROML~\ngarbage here\n^x&4\n")
		convey.So(res.OK(), convey.ShouldBeFalse)
		convey.So(log.debug, convey.ShouldContain, "roml: skipping line")
		convey.So(len(log.warn), convey.ShouldEqual, len(res.Errors))
	})

	convey.Convey("strict decoding", t, func() {
		c := New(WithLogger(nil))
		v, err := c.DecodeStrict(c.Encode(sampleDocument()))
		convey.So(err, convey.ShouldBeNil)
		convey.So(Equal(v, sampleDocument()), convey.ShouldBeTrue)

		v, err = c.DecodeStrict("~ROML~\n^x&4\n")
		convey.So(errors.Is(err, ErrInvalidDocument), convey.ShouldBeTrue)
		convey.So(Equal(v, Map(Pair("x", Number(4)))), convey.ShouldBeTrue)
	})

	convey.Convey("codecs are safe to share", t, func() {
		c := New()
		want := c.Encode(sampleDocument())
		done := make(chan string, 8)
		for i := 0; i < 8; i++ {
			go func() { done <- c.Encode(sampleDocument()) }()
		}
		for i := 0; i < 8; i++ {
			convey.So(<-done, convey.ShouldEqual, want)
		}
	})
}

func TestMarshal(t *testing.T) {
	convey.Convey("untyped data round trips", t, func() {
		in := map[string]any{"b": []any{1.0, "x", nil}, "a": map[string]any{"ok": true}}
		data, err := Marshal(in)
		convey.So(err, convey.ShouldBeNil)
		out, err := Unmarshal(data)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldResemble, in)
	})

	convey.Convey("unsupported values", t, func() {
		_, err := Marshal(map[string]any{"c": make(chan int)})
		convey.So(errors.Is(err, ErrUnsupportedValue), convey.ShouldBeTrue)
	})

	convey.Convey("integers become numbers", t, func() {
		v, err := FromAny([]any{int64(3), uint8(4), float32(0.5)})
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.String(), convey.ShouldEqual, "[3,4,0.5]")
	})
}

func ExampleEncode() {
	text := Encode(Map(Pair("name", String("Robert")), Pair("age", Number(7))))
	fmt.Print(text)
	// Output:
	// ~ROML~
	// # ~PRIME~
	// name=Robert
	// ^age&7
}
