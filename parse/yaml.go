package parse

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/robbyt/roml/parse/roml"
)

func decodeYAML(data []byte) (roml.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return roml.Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(n *yaml.Node) (roml.Value, error) {
	switch n.Kind {
	case 0:
		return roml.Null(), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return roml.Null(), nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		entries := make([]roml.Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return roml.Value{}, fmt.Errorf("%w: line %d: non-scalar mapping key", ErrInvalidInput, k.Line)
			}
			child, err := fromYAMLNode(v)
			if err != nil {
				return roml.Value{}, err
			}
			entries = append(entries, roml.Pair(k.Value, child))
		}
		return roml.Map(entries...), nil
	case yaml.SequenceNode:
		items := make([]roml.Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := fromYAMLNode(c)
			if err != nil {
				return roml.Value{}, err
			}
			items = append(items, item)
		}
		return roml.List(items...), nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return roml.Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return roml.Value{}, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, n.Line, err)
			}
			return roml.Bool(b), nil
		case "!!int", "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return roml.Value{}, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, n.Line, err)
			}
			return roml.Number(f), nil
		default:
			return roml.String(n.Value), nil
		}
	}
	return roml.Value{}, fmt.Errorf("%w: unsupported YAML node kind %d", ErrInvalidInput, n.Kind)
}

func encodeYAML(v roml.Value) ([]byte, error) {
	return yaml.Marshal(toYAMLNode(v))
}

func toYAMLNode(v roml.Value) *yaml.Node {
	switch v.Kind() {
	case roml.KindBool:
		b, _ := v.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	case roml.KindNumber:
		f, _ := v.AsNumber()
		return yamlNumber(f)
	case roml.KindString:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	case roml.KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items() {
			n.Content = append(n.Content, toYAMLNode(item))
		}
		return n
	case roml.KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v.Entries() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				toYAMLNode(e.Value),
			)
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func yamlNumber(f float64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float"}
	switch {
	case math.IsNaN(f):
		n.Value = ".nan"
	case math.IsInf(f, 1):
		n.Value = ".inf"
	case math.IsInf(f, -1):
		n.Value = "-.inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		n.Tag = "!!int"
		n.Value = strconv.FormatFloat(f, 'f', -1, 64)
	default:
		n.Value = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return n
}
