// Package docparse turns filter and fixture text into ordered domain
// documents.
//
// The accepted syntax is JSON with the relaxations store shells allow:
// unquoted keys, single-document YAML flow style, comments and trailing
// commas all parse. Field order in the input is preserved in the output,
// which plain JSON decoding into maps would lose.
package docparse

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// ErrNotDocument reports input whose root is not a document.
var ErrNotDocument = errors.New("root is not a document")

const objectIDKey = "$oid"

// Document parses one filter document. Empty or blank input yields the
// empty document, the match-everything filter.
func Document(text string) (domain.Document, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Document{}, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	node := unwrap(&root)
	if node == nil {
		return domain.Document{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, ErrNotDocument
	}

	v, err := convert(node)
	if err != nil {
		return nil, err
	}
	return v.Document(), nil
}

// Documents parses a fixture payload holding any number of documents:
// a single document, an array of documents, or a multi-document YAML
// stream. Array and stream forms may be mixed.
func Documents(text string) ([]domain.Document, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))
	var out []domain.Document
	for {
		var root yaml.Node
		err := dec.Decode(&root)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse documents: %w", err)
		}

		node := unwrap(&root)
		if node == nil {
			continue
		}
		switch node.Kind {
		case yaml.MappingNode:
			v, err := convert(node)
			if err != nil {
				return nil, err
			}
			out = append(out, v.Document())
		case yaml.SequenceNode:
			for _, elem := range node.Content {
				elem = resolveAlias(elem)
				if elem.Kind != yaml.MappingNode {
					return nil, fmt.Errorf("line %d: %w", elem.Line, ErrNotDocument)
				}
				v, err := convert(elem)
				if err != nil {
					return nil, err
				}
				out = append(out, v.Document())
			}
		default:
			return nil, fmt.Errorf("line %d: %w", node.Line, ErrNotDocument)
		}
	}
}

// Value parses a single value of any kind.
func Value(text string) (domain.Value, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Null(), nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return domain.Null(), fmt.Errorf("parse value: %w", err)
	}
	node := unwrap(&root)
	if node == nil {
		return domain.Null(), nil
	}
	return convert(node)
}

func unwrap(root *yaml.Node) *yaml.Node {
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		return resolveAlias(root.Content[0])
	}
	return resolveAlias(root)
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func convert(n *yaml.Node) (domain.Value, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return convertScalar(n)
	case yaml.SequenceNode:
		elems := make([]domain.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := convert(c)
			if err != nil {
				return domain.Null(), err
			}
			elems = append(elems, v)
		}
		return domain.List(elems...), nil
	case yaml.MappingNode:
		if id, ok := objectIDLiteral(n); ok {
			return domain.ObjectID(id), nil
		}
		doc := make(domain.Document, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := resolveAlias(n.Content[i])
			if keyNode.Kind != yaml.ScalarNode {
				return domain.Null(), fmt.Errorf("line %d: document key is not a scalar", keyNode.Line)
			}
			v, err := convert(n.Content[i+1])
			if err != nil {
				return domain.Null(), err
			}
			doc = append(doc, domain.Field{Key: keyNode.Value, Value: v})
		}
		return domain.Nested(doc), nil
	default:
		return domain.Null(), fmt.Errorf("line %d: unsupported node", n.Line)
	}
}

// objectIDLiteral recognises the {"$oid": "<hex>"} wrapper and collapses it
// to an object id value.
func objectIDLiteral(n *yaml.Node) (string, bool) {
	if len(n.Content) != 2 {
		return "", false
	}
	key, val := resolveAlias(n.Content[0]), resolveAlias(n.Content[1])
	if key.Kind != yaml.ScalarNode || key.Value != objectIDKey {
		return "", false
	}
	if val.Kind != yaml.ScalarNode {
		return "", false
	}
	return val.Value, true
}

func convertScalar(n *yaml.Node) (domain.Value, error) {
	switch n.Tag {
	case "!!null":
		return domain.Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return domain.String(n.Value), nil
		}
		return domain.Bool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			// Out-of-range integer literals degrade the way doubles do.
			f, ferr := strconv.ParseFloat(n.Value, 64)
			if ferr != nil {
				return domain.String(n.Value), nil
			}
			return domain.Double(f), nil
		}
		return domain.Int(i), nil
	case "!!float":
		switch strings.ToLower(n.Value) {
		case ".inf", "+.inf":
			return domain.Double(math.Inf(1)), nil
		case "-.inf":
			return domain.Double(math.Inf(-1)), nil
		case ".nan":
			return domain.Double(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return domain.String(n.Value), nil
		}
		return domain.Double(f), nil
	default:
		// Strings, timestamps and anything else keep their literal text.
		return domain.String(n.Value), nil
	}
}
