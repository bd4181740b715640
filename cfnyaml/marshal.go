// Package cfnyaml encodes rendered templates as CloudFormation YAML.
//
// Intrinsic functions keep their long form ("Fn::Join:" rather than
// "!Join"), so the output carries no custom tags and reads back with any
// YAML parser.
package cfnyaml

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
)

// Marshal encodes the given document as YAML with two-space indentation,
// keeping the document's key order.
func Marshal(doc *cfn.Object) ([]byte, error) {
	node, err := toNode(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalTemplate renders the given template and encodes the result.
func MarshalTemplate(t *cfn.Template) ([]byte, error) {
	return Marshal(t.Render())
}

func toNode(v interface{}) (*yaml.Node, error) {
	switch tv := v.(type) {
	case *cfn.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range tv.Keys() {
			val, _ := tv.Get(key)
			if err := appendPair(node, key, val); err != nil {
				return nil, err
			}
		}
		return node, nil

	case map[string]interface{}:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range keys {
			if err := appendPair(node, key, tv[key]); err != nil {
				return nil, err
			}
		}
		return node, nil

	case []interface{}:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range tv {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	default:
		// Scalars and any other values a caller placed in a literal are
		// left to the YAML library, which also takes care of quoting
		// strings that would otherwise read back as another type.
		node := &yaml.Node{}
		if err := node.Encode(tv); err != nil {
			return nil, fmt.Errorf("encoding %T value: %w", v, err)
		}
		return node, nil
	}
}

func appendPair(node *yaml.Node, key string, val interface{}) error {
	child, err := toNode(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		child,
	)
	return nil
}
