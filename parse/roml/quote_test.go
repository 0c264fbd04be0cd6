package roml

import (
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestAmbiguousStrings(t *testing.T) {
	convey.Convey("strings that must be quoted", t, func() {
		for _, s := range []string{
			"7", "-1.5", "1e3", "NaN", "inf", "true", "false", "null", "yes", "no",
			NullToken, EmptyToken, UndefinedToken, "   ", "\t", " lead", "trail ",
			"a\nb", "a=b", "x|y", "under_score", "quo\"te", `back\slash`, "a,b",
		} {
			convey.So(isAmbiguous(s), convey.ShouldBeTrue)
		}
	})

	convey.Convey("strings that stay raw", t, func() {
		for _, s := range []string{"Robert", "hello world", "1.0.0-rc", "ключ", "Yes", "TRUE"} {
			convey.So(isAmbiguous(s), convey.ShouldBeFalse)
		}
	})
}

func TestQuoteRoundTrip(t *testing.T) {
	convey.Convey("quote and scanQuoted are inverse", t, func() {
		for _, s := range []string{"", "plain", "a\"b", `c:\path`, "tab\there", "cr\rlf\n", "\x00\x1f\x7f", "ünï"} {
			q := quote(s)
			got, ok := unquoteWhole(q)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(got, convey.ShouldEqual, s)
		}
	})

	convey.Convey("unterminated quotes are rejected", t, func() {
		_, ok := unquoteWhole(`"abc`)
		convey.So(ok, convey.ShouldBeFalse)
		_, ok = unquoteWhole(`"abc\"`)
		convey.So(ok, convey.ShouldBeFalse)
		_, ok = unquoteWhole(`"abc"x`)
		convey.So(ok, convey.ShouldBeFalse)
	})
}

func TestUnquotedScanning(t *testing.T) {
	convey.Convey("separators inside quotes are ignored", t, func() {
		convey.So(indexUnquoted(`"a:b":c`, ':', 0), convey.ShouldEqual, 5)
		convey.So(indexUnquoted(`"a\":b"`, ':', 0), convey.ShouldEqual, -1)
		convey.So(splitUnquoted(`1|"x|y"|z`, '|'), convey.ShouldResemble, []string{"1", `"x|y"`, "z"})
	})

	convey.Convey("keys", t, func() {
		key, prime, rest, ok := parseKey(`^"my key"&7`)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(key, convey.ShouldEqual, "my key")
		convey.So(prime, convey.ShouldBeTrue)
		convey.So(rest, convey.ShouldEqual, "&7")

		key, prime, rest, ok = parseKey("name=Robert")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(key, convey.ShouldEqual, "name")
		convey.So(prime, convey.ShouldBeFalse)
		convey.So(rest, convey.ShouldEqual, "=Robert")

		_, _, _, ok = parseKey("=x")
		convey.So(ok, convey.ShouldBeFalse)
	})

	convey.Convey("key quoting", t, func() {
		convey.So(renderKey("plain"), convey.ShouldEqual, "plain")
		convey.So(renderKey(""), convey.ShouldEqual, `""`)
		convey.So(renderKey("my key"), convey.ShouldEqual, `"my key"`)
		convey.So(renderKey("true"), convey.ShouldEqual, `"true"`)
		convey.So(renderKey("#c"), convey.ShouldEqual, `"#c"`)
		convey.So(renderKey("_items"), convey.ShouldEqual, `"_items"`)
	})
}

func TestParseScalar(t *testing.T) {
	convey.Convey("unquoted conversion", t, func() {
		check := func(text string, yesNo bool, want Value) {
			got, ok := parseScalar(text, yesNo)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(Equal(got, want), convey.ShouldBeTrue)
		}
		check("true", false, Bool(true))
		check("false", false, Bool(false))
		check("yes", true, Bool(true))
		check("no", true, Bool(false))
		check("yes", false, String("yes"))
		check(NullToken, false, Null())
		check(UndefinedToken, false, Null())
		check(EmptyToken, false, String(""))
		check("42", false, Number(42))
		check("-0.25", false, Number(-0.25))
		check("1e+21", false, Number(1e21))
		check("1.0", false, String("1.0"))
		check("007", false, String("007"))
		check(`"42"`, false, String("42"))
		check(`"__NULL__"`, false, String(NullToken))
		check("+Inf", false, Number(math.Inf(1)))

		_, ok := parseScalar("", false)
		convey.So(ok, convey.ShouldBeFalse)
	})

	convey.Convey("numbers format to their shortest form", t, func() {
		convey.So(formatNumber(7), convey.ShouldEqual, "7")
		convey.So(formatNumber(-0.5), convey.ShouldEqual, "-0.5")
		convey.So(formatNumber(1e20), convey.ShouldEqual, "100000000000000000000")
		convey.So(formatNumber(1e21), convey.ShouldEqual, "1e+21")
		convey.So(formatNumber(1e-7), convey.ShouldEqual, "1e-07")
		convey.So(formatNumber(math.Inf(-1)), convey.ShouldEqual, "-Inf")
	})
}
