package roml

import (
	"fmt"
	"strconv"
)

// =========================
// AST Definitions
// =========================

// Node is a member of a MapNode or an item of a ListNode.
type Node interface {
	node()
}

type Document struct {
	HeaderMarker bool
	Body         *MapNode
}

// MapNode keeps key-value leaves and child blocks in document order.
type MapNode struct {
	Key     string
	Line    int
	Prime   bool
	Members []Node
}

type ListNode struct {
	Key   string
	Line  int
	Prime bool
	Items []Node
}

type KeyValueNode struct {
	Key   string
	Line  int
	Prime bool
	Style Style
	Value Value
}

// ValueNode is a scalar list item.
type ValueNode struct {
	Line  int
	Value Value
}

func (*MapNode) node()      {}
func (*ListNode) node()     {}
func (*KeyValueNode) node() {}
func (*ValueNode) node()    {}

func (m *MapNode) Value() Value {
	entries := make([]Entry, 0, len(m.Members))
	for _, n := range m.Members {
		switch t := n.(type) {
		case *KeyValueNode:
			entries = append(entries, Pair(t.Key, t.Value))
		case *MapNode:
			entries = append(entries, Pair(t.Key, t.Value()))
		case *ListNode:
			entries = append(entries, Pair(t.Key, t.Value()))
		}
	}
	return Map(entries...)
}

func (l *ListNode) Value() Value {
	items := make([]Value, 0, len(l.Items))
	for _, n := range l.Items {
		switch t := n.(type) {
		case *ValueNode:
			items = append(items, t.Value)
		case *MapNode:
			items = append(items, t.Value())
		case *ListNode:
			items = append(items, t.Value())
		}
	}
	return Value{kind: KindList, items: items}
}

// Value projects the document, removing the synthetic root wrapper.
func (d *Document) Value() Value {
	return unwrapRoot(d.Body.Value())
}

// PrimeInfo summarises the prime side channel of a decoded document.
type PrimeInfo struct {
	Marker   bool
	Detected bool
	Keys     []string
	Primes   []float64
}

// =========================
// Parser Implementation
// =========================

type frame struct {
	depth int
	m     *MapNode
	l     *ListNode
	item  bool // opened by a [i]{ or [i][ line, carries no key
}

type parser struct {
	doc    *Document
	stack  []frame
	issues []*Issue
	info   PrimeInfo
	log    Logger
}

// Parse builds the document from tokens and projects it into a Value. The
// returned strings are the reported issues.
func Parse(tokens []Token) (Value, []string, PrimeInfo) {
	doc, info, issues := ParseDocument(tokens)
	return doc.Value(), reportedMessages(issues), info
}

// ParseDocument builds the AST and returns every issue, skipped lines
// included.
func ParseDocument(tokens []Token) (*Document, PrimeInfo, []*Issue) {
	return parseTokens(tokens, noopLogger{})
}

func parseTokens(tokens []Token, log Logger) (*Document, PrimeInfo, []*Issue) {
	body := &MapNode{}
	p := &parser{
		doc:   &Document{Body: body},
		stack: []frame{{depth: -1, m: body}},
		log:   log,
	}
	for i := range tokens {
		p.token(&tokens[i])
	}
	for len(p.stack) > 1 {
		p.pop()
	}
	p.checkMarker()
	return p.doc, p.info, p.issues
}

func (p *parser) top() frame { return p.stack[len(p.stack)-1] }

func (p *parser) push(f frame) { p.stack = append(p.stack, f) }

func (p *parser) pop() {
	f := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	switch {
	case f.l != nil && !f.item:
		p.checkPrime(f.l.Line, f.l.Key, f.l.Prime, f.l.Value(), true)
	case f.m != nil && f.m.Prime:
		p.checkPrime(f.m.Line, f.m.Key, true, f.m.Value(), true)
	}
}

func (p *parser) token(t *Token) {
	top := p.top()
	switch t.Kind {
	case TokenHeader:
		p.doc.HeaderMarker = t.Marker
		p.info.Marker = t.Marker
	case TokenMapClose, TokenListClose:
		p.close(t)
	case TokenMapOpen:
		if top.m == nil {
			p.skip(t, "map open inside a list")
			return
		}
		child := &MapNode{Key: t.Key, Line: t.Line, Prime: t.Prime}
		p.detect(t)
		top.m.Members = append(top.m.Members, child)
		p.push(frame{depth: t.Depth, m: child})
	case TokenListOpen:
		if top.m == nil {
			p.skip(t, "list open inside a list")
			return
		}
		child := &ListNode{Key: t.Key, Line: t.Line, Prime: t.Prime}
		p.detect(t)
		top.m.Members = append(top.m.Members, child)
		p.push(frame{depth: t.Depth, l: child})
	case TokenItemMap:
		if top.l == nil {
			p.skip(t, "list item outside a list")
			return
		}
		child := &MapNode{Line: t.Line}
		top.l.Items = append(top.l.Items, child)
		p.push(frame{depth: t.Depth, m: child, item: true})
	case TokenItemList:
		if top.l == nil {
			p.skip(t, "list item outside a list")
			return
		}
		child := &ListNode{Line: t.Line}
		top.l.Items = append(top.l.Items, child)
		p.push(frame{depth: t.Depth, l: child, item: true})
	case TokenItemValue:
		if top.l == nil {
			p.skip(t, "list item outside a list")
			return
		}
		top.l.Items = append(top.l.Items, &ValueNode{Line: t.Line, Value: t.Value})
	case TokenKeyValue:
		if top.m == nil {
			p.skip(t, "key-value inside a list")
			return
		}
		top.m.Members = append(top.m.Members, &KeyValueNode{
			Key:   t.Key,
			Line:  t.Line,
			Prime: t.Prime,
			Style: t.Style,
			Value: t.Value,
		})
		p.detect(t)
		p.checkPrime(t.Line, t.Key, t.Prime, t.Value, t.Array)
	default:
		p.skip(t, "no style matches")
	}
}

// close pops to the nearest open block at the same depth, or just the
// innermost block when indentation does not line up.
func (p *parser) close(t *Token) {
	if len(p.stack) == 1 {
		p.skip(t, "unmatched close")
		return
	}
	target := len(p.stack) - 1
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i].depth == t.Depth {
			target = i
			break
		}
	}
	for len(p.stack) > target {
		p.pop()
	}
}

func (p *parser) skip(t *Token, reason string) {
	p.log.Debug("roml: skipping line", "line", t.Line, "reason", reason, "text", t.Raw)
	p.issues = append(p.issues, &Issue{
		Line:    t.Line,
		Kind:    IssueSkippedLine,
		Message: fmt.Sprintf("%s: %q", reason, t.Raw),
	})
}

func (p *parser) detect(t *Token) {
	if !t.Prime {
		return
	}
	p.info.Detected = true
	p.info.Keys = append(p.info.Keys, t.Key)
}

// checkPrime compares the prefix claim on key with the primality of v.
// Containers compare against ContainsPrime; strings are checked only when
// prefixed and numeric.
func (p *parser) checkPrime(line int, key string, claimed bool, v Value, container bool) {
	var actual bool
	switch {
	case container:
		actual = ContainsPrime(v)
	case v.kind == KindNumber:
		actual = IsPrime(v.numVal)
		if actual && claimed {
			p.info.Primes = append(p.info.Primes, v.numVal)
		}
	case v.kind == KindString && claimed:
		f, err := strconv.ParseFloat(v.strVal, 64)
		if err != nil {
			p.mismatch(line, key, v, claimed, false, "value is not numeric")
			return
		}
		actual = IsPrime(f)
	case claimed:
		p.mismatch(line, key, v, claimed, false, "value is not numeric")
		return
	default:
		return
	}
	if claimed != actual {
		p.mismatch(line, key, v, claimed, actual, "")
	}
}

func (p *parser) mismatch(line int, key string, v Value, claimed, actual bool, note string) {
	msg := fmt.Sprintf("prime mismatch for key %q: value %s, claimed prime=%t, actual prime=%t", key, v.String(), claimed, actual)
	if note != "" {
		msg += " (" + note + ")"
	}
	p.log.Debug("roml: prime mismatch", "line", line, "key", key, "claimed", claimed, "actual", actual)
	p.issues = append(p.issues, &Issue{Line: line, Kind: IssuePrimeMismatch, Message: msg})
}

func (p *parser) checkMarker() {
	switch {
	case p.info.Detected && !p.info.Marker:
		p.issues = append(p.issues, &Issue{
			Kind: IssueMarkerMissing,
			Message: fmt.Sprintf("document has prime-prefixed keys but is missing the %s tag; add a %q line after the %s header",
				PrimeMarker, CommentPrefix+" "+PrimeMarker, DocumentMarker),
		})
	case p.info.Marker && !p.info.Detected:
		p.issues = append(p.issues, &Issue{
			Kind: IssueMarkerUnused,
			Message: fmt.Sprintf("document declares %s but contains no prime-prefixed keys; remove the tag or prefix prime-valued keys with %q",
				PrimeMarker, string(PrimePrefix)),
		})
	}
}

func reportedMessages(issues []*Issue) []string {
	var out []string
	for _, is := range issues {
		if is.Reported() {
			out = append(out, is.Error())
		}
	}
	return out
}
