package fieldpath

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

var _ yaml.Marshaler = Value{}
var _ yaml.Unmarshaler = (*Value)(nil)

// MarshalYAML renders the Value as a yaml.Node tree so object fields keep
// their insertion order in the output.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlNode()
}

func (v Value) yamlNode() (*yaml.Node, error) {
	node := &yaml.Node{}

	switch v.kind {
	case KindNull:
		node.Kind = yaml.ScalarNode
		node.Tag = "!!null"
		node.Value = "null"

	case KindBool:
		node.Kind = yaml.ScalarNode
		node.Tag = "!!bool"
		node.Value = strconv.FormatBool(v.b)

	case KindNumber:
		node.Kind = yaml.ScalarNode
		if v.isInt {
			node.Tag = "!!int"
		} else {
			node.Tag = "!!float"
		}
		node.Value = formatNumber(v)

	case KindString:
		node.Kind = yaml.ScalarNode
		node.Tag = "!!str"
		node.Value = v.s

	case KindArray:
		node.Kind = yaml.SequenceNode
		for _, item := range v.items {
			child, err := item.yamlNode()
			if err != nil {
				return nil, err
			}

			node.Content = append(node.Content, child)
		}

	case KindObject:
		node.Kind = yaml.MappingNode
		for _, key := range v.keys {
			child, err := v.obj[key].yamlNode()
			if err != nil {
				return nil, err
			}

			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
			node.Content = append(node.Content, keyNode, child)
		}
	}

	return node, nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := valueFromYAML(node)
	if err != nil {
		return err
	}

	*v = parsed
	return nil
}

func valueFromYAML(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) != 1 {
			return Value{}, fmt.Errorf("yaml document with %d root nodes", len(node.Content))
		}

		return valueFromYAML(node.Content[0])

	case yaml.AliasNode:
		return valueFromYAML(node.Alias)

	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return Null(), nil

		case "!!bool":
			b, err := strconv.ParseBool(node.Value)
			if err != nil {
				return Value{}, err
			}

			return Bool(b), nil

		case "!!int":
			// base 0 also accepts yaml's 0x / 0o integer forms
			i, err := strconv.ParseInt(node.Value, 0, 64)
			if err != nil {
				return Value{}, err
			}

			return Int(i), nil

		case "!!float":
			f, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return Value{}, err
			}

			return Float(f), nil

		default:
			return String(node.Value), nil
		}

	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := valueFromYAML(child)
			if err != nil {
				return Value{}, err
			}

			items = append(items, item)
		}

		return Array(items...), nil

	case yaml.MappingNode:
		obj := Object()
		for i := 0; i+1 < len(node.Content); i += 2 {
			fv, err := valueFromYAML(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}

			obj.SetField(node.Content[i].Value, fv)
		}

		return obj, nil
	}

	return Value{}, fmt.Errorf("unsupported yaml node kind %v", node.Kind)
}
